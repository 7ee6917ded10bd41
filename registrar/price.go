package registrar

import (
	"fmt"
	"math"

	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
	"github.com/shopspring/decimal"
)

// Years converts a duration in seconds to whole years.
func Years(durations uint64) uint64 {
	return durations / schema.SecondsPerYear
}

func checkDuration(cfg schema.RegistrarConfig, durations uint64) (uint64, error) {
	years := Years(durations)
	if years == 0 {
		return 0, fmt.Errorf("%w: %d seconds is less than a year", schema.ErrInvalidDuration, durations)
	}
	if years > cfg.MaxYearRegister {
		return 0, fmt.Errorf("%w: %d > %d years", schema.ErrDurationExceedsLimit, years, cfg.MaxYearRegister)
	}
	return years, nil
}

// addDuration returns base+durations, rejecting sums past the uint64 range.
func addDuration(base, durations uint64) (uint64, error) {
	if durations > math.MaxUint64-base {
		return 0, fmt.Errorf("%w: %d + %d overflows", schema.ErrDurationExceedsLimit, base, durations)
	}
	return base + durations, nil
}

// priceOf returns the yearly price for name, falling back to bucket 0.
func priceOf(s vm.Storage, name string) (schema.Coin, error) {
	if len(name) <= 255 {
		c, ok, err := prices.MayLoad(s, priceKey(uint8(len(name))))
		if err != nil || ok {
			return c, err
		}
	}
	c, ok, err := prices.MayLoad(s, priceKey(0))
	if err != nil {
		return c, err
	}
	if !ok {
		return c, fmt.Errorf("%w: length %d", schema.ErrPriceNotConfigured, len(name))
	}
	return c, nil
}

func Fee(price schema.Coin, years uint64) schema.Coin {
	return schema.Coin{Denom: price.Denom, Amount: price.Amount.Mul(decimal.NewFromInt(int64(years)))}
}

// checkFunds accepts exact payment.
func checkFunds(funds schema.Coins, fee schema.Coin) error {
	paid := funds.AmountOf(fee.Denom)
	if paid.LessThan(fee.Amount) {
		return fmt.Errorf("%w: paid %s%s, fee %s", schema.ErrInsufficientFunds, paid.String(), fee.Denom, fee.String())
	}
	return nil
}
