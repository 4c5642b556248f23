package money

import "fmt"

// DefaultCurrency is the currency every catalog price is quoted in.
const DefaultCurrency = "RUB"

// Money keeps amounts in whole currency units; prices never carry fractions.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// RUB is a shorthand for amounts in the default currency.
func RUB(amount int64) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
