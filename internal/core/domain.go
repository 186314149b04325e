package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	MaxCategoryLen    = 50
	MaxDescriptionLen = 200
	MinNameLen        = 2
	MaxNameLen        = 100
	MinPasswordLen    = 6
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

type (
	TxType string

	// Date is a calendar date normalized to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64     `json:"id"`
		UserID      int64     `json:"user_id"`
		Type        TxType    `json:"type"`
		Category    string    `json:"category"`
		Amount      Money     `json:"amount"`
		Date        Date      `json:"date"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	User struct {
		ID           int64     `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = errors.New("category too long (max 50 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidName        = errors.New("name must be between 2 and 100 characters")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	errMissingOwner       = errors.New("transaction has no owner")
	emailPattern          = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidationError ties a validation failure to the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ParseTxType accepts "income" or "expense" in any case.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (t TxType) String() string {
	return string(t)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day, keeping the wall-clock date of t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Validate rejects the zero date. Any other Date is a normalized calendar day.
func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return errMissingOwner
	}
	if !t.Type.Valid() {
		return invalid("type", ErrInvalidType)
	}
	if err := t.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	category := strings.TrimSpace(t.Category)
	if category == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if utf8.RuneCountInString(category) > MaxCategoryLen {
		return invalid("category", ErrCategoryTooLong)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLen {
		return invalid("description", ErrDescriptionTooLong)
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	return nil
}

// IsExpense reports whether the transaction reduces the balance.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}

func (u User) Validate() error {
	name := strings.TrimSpace(u.Name)
	if n := utf8.RuneCountInString(name); n < MinNameLen || n > MaxNameLen {
		return invalid("name", ErrInvalidName)
	}
	if !ValidEmail(u.Email) {
		return invalid("email", ErrInvalidEmail)
	}
	return nil
}

// ValidEmail checks the address against a permissive pattern.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the registration password policy.
func ValidatePassword(password, confirm string) error {
	if len(password) < MinPasswordLen {
		return invalid("password", ErrWeakPassword)
	}
	if password != confirm {
		return invalid("confirm_password", ErrPasswordMismatch)
	}
	return nil
}
