// Package core provides money parsing and handling utilities.
//
// Amounts are carried as integer cents so that sums are exact. Conversions to
// and from decimal strings go through shopspring/decimal.
package core

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every rendered amount.
const CurrencySymbol = "$"

// maxCents keeps amount parsing inside int64 range with room for sums.
var maxCents = decimal.New(1, 15)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (half-up)
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() || cents.GreaterThanOrEqual(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// MoneyFromDecimal rounds a currency amount to cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Plain renders the amount with two decimals and no symbol, e.g. "1234.50".
func (m Money) Plain() string {
	return m.Decimal().StringFixed(2)
}

// String renders the amount for people, e.g. "$1,234.50" or "-$3.00".
func (m Money) String() string {
	return FormatAmount(m.Decimal())
}

// FormatAmount renders any currency amount rounded to cents with thousands separators.
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	units := d.IntPart()
	cents := d.Sub(decimal.NewFromInt(units)).Shift(2).IntPart()
	return fmt.Sprintf("%s%s%s.%02d", sign, CurrencySymbol, humanize.Comma(units), cents)
}

// MarshalText encodes the amount as a plain decimal string.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.Plain()), nil
}

// UnmarshalText accepts any decimal with a dot or comma separator. Zero and
// negative values are allowed since balances use Money too.
func (m *Money) UnmarshalText(b []byte) error {
	s := strings.ReplaceAll(strings.TrimSpace(string(b)), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil || d.Abs().Shift(2).GreaterThanOrEqual(maxCents) {
		return ErrInvalidAmount
	}
	*m = MoneyFromDecimal(d)
	return nil
}
