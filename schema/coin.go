package schema

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Coin struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

func NewCoin(denom string, amount int64) Coin {
	return Coin{Denom: denom, Amount: decimal.NewFromInt(amount)}
}

func ParseCoin(denom, amount string) (Coin, error) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return Coin{}, fmt.Errorf("%w: %v", ErrInvalidCoin, err)
	}
	c := Coin{Denom: denom, Amount: amt}
	return c, c.Validate()
}

// Validate checks the amount is a non-negative integer and the denom is set.
func (c Coin) Validate() error {
	if len(strings.TrimSpace(c.Denom)) == 0 {
		return fmt.Errorf("%w: empty denom", ErrInvalidCoin)
	}
	if c.Amount.IsNegative() || !c.Amount.Equal(c.Amount.Truncate(0)) {
		return fmt.Errorf("%w: amount %s", ErrInvalidCoin, c.Amount.String())
	}
	return nil
}

func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

type Coins []Coin

func (cs Coins) AmountOf(denom string) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cs {
		if c.Denom == denom {
			total = total.Add(c.Amount)
		}
	}
	return total
}

func (cs Coins) Validate() error {
	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (cs Coins) String() string {
	ss := make([]string, 0, len(cs))
	for _, c := range cs {
		ss = append(ss, c.String())
	}
	return strings.Join(ss, ",")
}
