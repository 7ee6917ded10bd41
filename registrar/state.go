package registrar

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

const (
	nameReplyId = 1
	nameLabel   = "name"
)

var (
	configItem       = vm.NewItem[schema.RegistrarConfig]("config")
	verifierItem     = vm.NewItem[schema.Verifier]("verifier")
	nameContractItem = vm.NewItem[string]("name_contract")

	// zero padded length -> yearly price
	prices = vm.NewMap[schema.Coin]("prices")
	// name -> expires at
	registry = vm.NewMap[uint64]("registry")

	pending = vm.NewPending()
)

func priceKey(length uint8) string {
	return fmt.Sprintf("%03d", length)
}

func savePrices(s vm.Storage, entries []schema.PriceEntry) error {
	for _, p := range entries {
		if err := p.Price.Validate(); err != nil {
			return err
		}
		if err := prices.Save(s, priceKey(p.Length), p.Price); err != nil {
			return err
		}
	}
	return nil
}

func allPrices(s vm.Storage) ([]schema.PriceEntry, error) {
	entries := make([]schema.PriceEntry, 0)
	err := prices.Range(s, "", "", 0, func(k string, c schema.Coin) error {
		length, err := strconv.ParseUint(k, 10, 8)
		if err != nil {
			return err
		}
		entries = append(entries, schema.PriceEntry{Length: uint8(length), Price: c})
		return nil
	})
	return entries, err
}

func expiresAt(s vm.Storage, name string) (uint64, error) {
	exp, err := registry.Load(s, name)
	if errors.Is(err, schema.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", schema.ErrNameNotRegistered, name)
	}
	return exp, err
}

func batchLimit(cfg schema.RegistrarConfig) int {
	if cfg.MaxBatchSize == 0 {
		return int(schema.DefaultBatchSize)
	}
	return int(cfg.MaxBatchSize)
}
