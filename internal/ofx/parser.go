// Package ofx turns OFX/QFX bank and credit-card statements into
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// DefaultCategory is used when the OFX transaction type says nothing useful.
const DefaultCategory = "Imported"

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// SGML tags left open at end of line, e.g. "<BANKTRANLIST"
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	leadingDateForm = regexp.MustCompile(`^\d{2}/\d{2}\s+`)

	cardPrefixes = []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	genericNames = map[string]bool{
		"DEBIT":           true,
		"CREDIT":          true,
		"PURCHASE":        true,
		"PAYMENT":         true,
		"POS TRANSACTION": true,
		"CARD PURCHASE":   true,
	}

	categoryByType = map[string]string{
		"INT": "Interest",
		"FEE": "Bank Fees",
		"ATM": "Cash & ATM",
	}
)

type Parser struct {
	logger *log.Logger
}

func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Discard()
	}
	return &Parser{logger: logger.WithComponent(log.ComponentImport)}
}

// Parse reads every bank and credit-card statement in r and returns the
// transactions owned by userID, in file order. IDs are left unset.
func (p *Parser) Parse(ctx context.Context, r io.Reader, userID int64) ([]core.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("parse OFX file: %w", err)
	}

	out := []core.Transaction{}
	var bankStmts, cardStmts, skipped int

	collect := func(list *ofxgo.TransactionList) {
		if list == nil {
			return
		}
		for _, raw := range list.Transactions {
			t, ok := convert(raw, userID)
			if !ok {
				skipped++
				continue
			}
			out = append(out, t)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			collect(stmt.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			cardStmts++
			collect(stmt.BankTranList)
		}
	}

	p.logger.InfoContext(ctx, "Parsed OFX file",
		log.FieldOperation, log.OpImport,
		log.FieldUserID, userID,
		log.FieldCount, len(out),
		"skipped", skipped,
		"bank_statements", bankStmts,
		"card_statements", cardStmts)

	return out, nil
}

// preprocess repairs formatting mistakes common in bank exports.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

func convert(raw ofxgo.Transaction, userID int64) (core.Transaction, bool) {
	amount, err := decimal.NewFromString(raw.TrnAmt.Rat.FloatString(2))
	if err != nil || amount.IsZero() {
		return core.Transaction{}, false
	}

	typ := core.Income
	if amount.IsNegative() {
		typ = core.Expense
	}

	category, ok := categoryByType[raw.TrnType.String()]
	if !ok {
		category = DefaultCategory
	}

	description := describe(raw)
	if r := []rune(description); len(r) > core.MaxDescriptionLen {
		description = string(r[:core.MaxDescriptionLen])
	}

	return core.Transaction{
		UserID:      userID,
		Type:        typ,
		Category:    category,
		Amount:      core.MoneyFromDecimal(amount.Abs()),
		Date:        core.DateOf(raw.DtPosted.Time),
		Description: description,
	}, true
}

// describe prefers the payee, then the name, then the memo when the name is
// a generic bank label.
func describe(raw ofxgo.Transaction) string {
	if raw.Payee != nil && strings.TrimSpace(string(raw.Payee.Name)) != "" {
		return strings.TrimSpace(string(raw.Payee.Name))
	}

	name := strings.TrimSpace(string(raw.Name))
	memo := strings.TrimSpace(string(raw.Memo))
	if memo != "" && (name == "" || genericNames[strings.ToUpper(name)]) {
		name = memo
	}

	upper := strings.ToUpper(name)
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(leadingDateForm.ReplaceAllString(name, ""))
}
