package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

// Client writes the ledger into one sheet of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ ports.LedgerWriter = (*Client)(nil)

// Config selects the spreadsheet and the service-account credentials.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated as a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger)
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Transactions"
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	if js := strings.TrimSpace(cfg.CredentialsJSON); js != "" {
		return []byte(js), nil
	}
	path := strings.TrimSpace(cfg.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// AppendTransaction adds one row after the last non-empty row.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) error {
	if t.ID <= 0 {
		return errors.New("transaction has no ID")
	}
	vr := &gsheet.ValueRange{Values: [][]any{toRow(t)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, columnRange(c.sheetName), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row for transaction %d: %w", t.ID, err)
	}

	c.logger.DebugContext(ctx, "Appended ledger row",
		log.FieldTransactionID, t.ID,
		log.FieldOperation, log.OpExport)
	return nil
}

// RemoveTransaction clears the row carrying id. The row is blanked rather
// than deleted so that other rows keep their positions.
func (c *Client) RemoveTransaction(ctx context.Context, id int64) error {
	rng := fmt.Sprintf("%s!A:A", quoteSheet(c.sheetName))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read ID column of %s: %w", c.sheetName, err)
	}

	row := findRow(resp.Values, id)
	if row == 0 {
		c.logger.DebugContext(ctx, "No ledger row to remove", log.FieldTransactionID, id)
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rowRange(c.sheetName, row), &gsheet.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear row %d for transaction %d: %w", row, id, err)
	}

	c.logger.DebugContext(ctx, "Cleared ledger row",
		log.FieldTransactionID, id,
		"row", row)
	return nil
}

// EnsureHeader writes Header into row 1 when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:%s1", quoteSheet(c.sheetName), lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{Header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	c.logger.InfoContext(ctx, "Wrote ledger header", "sheet", c.sheetName)
	return nil
}
