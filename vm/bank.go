package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/schema"
	"github.com/shopspring/decimal"
)

func balanceKey(addr, denom string) string {
	return addr + "/" + denom
}

func getBalance(tx rawdb.Tx, addr, denom string) (decimal.Decimal, error) {
	data, err := tx.Get(schema.BankBucket, balanceKey(addr, denom))
	if errors.Is(err, schema.ErrNotExist) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(string(data))
}

func setBalance(tx rawdb.Tx, addr, denom string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return tx.Delete(schema.BankBucket, balanceKey(addr, denom))
	}
	return tx.Put(schema.BankBucket, balanceKey(addr, denom), []byte(amount.String()))
}

func mint(tx rawdb.Tx, addr string, coins schema.Coins) error {
	for _, c := range coins {
		bal, err := getBalance(tx, addr, c.Denom)
		if err != nil {
			return err
		}
		if err := setBalance(tx, addr, c.Denom, bal.Add(c.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func transfer(tx rawdb.Tx, from, to string, coins schema.Coins) error {
	if err := coins.Validate(); err != nil {
		return err
	}
	for _, c := range coins {
		if c.Amount.IsZero() {
			continue
		}
		bal, err := getBalance(tx, from, c.Denom)
		if err != nil {
			return err
		}
		if bal.LessThan(c.Amount) {
			return fmt.Errorf("%w: %s has %s%s, needs %s", schema.ErrInsufficientBalance, from, bal.String(), c.Denom, c.String())
		}
		if err := setBalance(tx, from, c.Denom, bal.Sub(c.Amount)); err != nil {
			return err
		}
		if err := mint(tx, to, schema.Coins{c}); err != nil {
			return err
		}
	}
	return nil
}

func balances(tx rawdb.Tx, addr string) (schema.Coins, error) {
	coins := make(schema.Coins, 0)
	prefix := addr + "/"
	err := tx.Iterate(schema.BankBucket, prefix, "", func(key string, val []byte) (bool, error) {
		amt, err := decimal.NewFromString(string(val))
		if err != nil {
			return false, err
		}
		coins = append(coins, schema.Coin{Denom: strings.TrimPrefix(key, prefix), Amount: amt})
		return true, nil
	})
	return coins, err
}

func transferEvent(from, to string, coins schema.Coins) schema.Event {
	return schema.Event{
		Type: "transfer",
		Attributes: []schema.Attribute{
			{Key: "sender", Value: from},
			{Key: "recipient", Value: to},
			{Key: "amount", Value: coins.String()},
		},
	}
}
