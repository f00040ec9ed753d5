// internal/domain/common/money.go
package common

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrCurrencyMismatch = fmt.Errorf("%w: currency mismatch", ErrInvalidInput)
	ErrInvalidMoney     = fmt.Errorf("%w: invalid money", ErrInvalidInput)
)

// Money is an amount in a single currency.
type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney parses amount ("12.50") and an ISO 4217 code ("USD").
func NewMoney(amount, code string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: amount %q", ErrInvalidMoney, amount)
	}
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: negative amount", ErrInvalidMoney)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("%w: currency %q", ErrInvalidMoney, code)
	}
	return Money{Amount: d, Currency: unit}, nil
}

// Zero returns a zero amount in the given currency.
func Zero(unit currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: unit}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Mul multiplies by a line quantity.
func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(qty))), Currency: m.Currency}
}

// Add sums two amounts of the same currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// MinorUnits converts to an integer amount in the currency's smallest unit
// (cents for USD). Used for range filtering in stores.
func (m Money) MinorUnits() int64 {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return m.Amount.Shift(int32(scale)).Round(0).IntPart()
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency.String()
}

// Equal compares amount numerically and currency exactly.
func (m Money) Equal(o Money) bool {
	return m.Currency == o.Currency && m.Amount.Equal(o.Amount)
}

// Sum adds all amounts. Empty input yields zero in fallback.
func Sum(fallback currency.Unit, ms ...Money) (Money, error) {
	total := Zero(fallback)
	if len(ms) > 0 {
		total = Zero(ms[0].Currency)
	}
	for _, m := range ms {
		var err error
		total, err = total.Add(m)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.Amount.StringFixed(2), Currency: m.Currency.String()})
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
