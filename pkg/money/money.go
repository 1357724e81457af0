package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is the fixed-precision value type used for every quantity and
// monetary amount in the ledger. It keeps at most 2 fractional digits
// and always renders exactly 2. Never use float64 for stock or price
// math; repeated buy/sell corrections drift.
type Amount struct {
	d decimal.Decimal
}

func Zero() Amount {
	return Amount{}
}

// Parse builds an Amount from a decimal-formatted string. The empty
// string is treated as zero. Inputs with more than 2 fractional digits
// are rejected.
func Parse(s string) (Amount, error) {
	if s == "" {
		return Amount{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	if !d.Equal(d.Round(2)) {
		return Amount{}, fmt.Errorf("invalid decimal %q: more than 2 decimal places", s)
	}
	return Amount{d: d}, nil
}

// MustParse panics on malformed input. Test helper.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func FromInt(n int64) Amount {
	return Amount{d: decimal.NewFromInt(n)}
}

// FromDecimal rounds to 2 places.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d.Round(2)}
}

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }
func (a Amount) Abs() Amount         { return Amount{d: a.d.Abs()} }

func (a Amount) MulInt(n int64) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(n))}
}

// Div returns a/b at decimal's full division precision. Callers round
// once, at render time; rounding the ratio early and again when
// formatting can flip boundary digits.
func (a Amount) Div(b Amount) Amount {
	return Amount{d: a.d.Div(b.d)}
}

func (a Amount) Cmp(b Amount) int       { return a.d.Cmp(b.d) }
func (a Amount) Equal(b Amount) bool    { return a.d.Equal(b.d) }
func (a Amount) LessThan(b Amount) bool { return a.d.LessThan(b.d) }
func (a Amount) IsZero() bool           { return a.d.IsZero() }
func (a Amount) IsNegative() bool       { return a.d.IsNegative() }
func (a Amount) IsPositive() bool       { return a.d.IsPositive() }

// String renders with exactly 2 fractional digits.
func (a Amount) String() string {
	return a.d.StringFixed(2)
}

func (a Amount) StringFixed(places int32) string {
	return a.d.StringFixed(places)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" || s == "" {
		a.d = decimal.Decimal{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	a.d = d.Round(2)
	return nil
}

// Value implements driver.Valuer so gorm can persist Amount into
// decimal columns.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	a.d = d.Round(2)
	return nil
}
