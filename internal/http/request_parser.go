// This file implements decoding and validation of request bodies and
// URL parameters.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads exactly one JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errBadRequest)
	}
	return nil
}

// amountField accepts "12.34", "12,34" or a bare JSON number.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amountField(n.String())
	return nil
}

// TransactionRequest is the body of POST and PUT /api/transactions.
type TransactionRequest struct {
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Amount      amountField `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

func invalidField(field string, err error) error {
	return &core.ValidationError{Field: field, Err: err}
}

// toTransaction converts the request for userID. A blank date means today.
func (req TransactionRequest) toTransaction(userID int64, today time.Time) (core.Transaction, error) {
	typ, err := core.ParseTxType(req.Type)
	if err != nil {
		return core.Transaction{}, invalidField("type", err)
	}

	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		return core.Transaction{}, invalidField("amount", err)
	}

	date := core.DateOf(today)
	if strings.TrimSpace(req.Date) != "" {
		if date, err = core.ParseDate(req.Date); err != nil {
			return core.Transaction{}, invalidField("date", core.ErrInvalidDate)
		}
	}

	return core.Transaction{
		UserID:      userID,
		Type:        typ,
		Category:    sanitizeInput(req.Category),
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Description: sanitizeInput(req.Description),
	}, nil
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sanitizeInput trims and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// parseID reads a positive integer URL parameter.
func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

// parseLimit reads ?limit=, returning 0 when absent so the service default applies.
func parseLimit(r *http.Request, max int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, invalidField("limit", errors.New("limit must be a positive integer"))
	}
	return min(n, max), nil
}
