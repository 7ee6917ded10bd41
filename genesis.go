package arname

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

// genesisRegistrar turns the config file section into the registrar
// instantiate message. The admin instantiates it.
func genesisRegistrar(g schema.GenesisRegistrar) (vm.GenesisContract, error) {
	var pubkey []byte
	if g.BackendPubkey != "" {
		var err error
		pubkey, err = hex.DecodeString(g.BackendPubkey)
		if err != nil {
			return vm.GenesisContract{}, fmt.Errorf("%w: backendPubkey: %v", schema.ErrMalformedPayload, err)
		}
	}
	prices := make([]schema.PriceEntry, 0, len(g.Prices))
	for _, p := range g.Prices {
		coin, err := schema.ParseCoin(p.Denom, p.Amount)
		if err != nil {
			return vm.GenesisContract{}, err
		}
		prices = append(prices, schema.PriceEntry{Length: p.Length, Price: coin})
	}
	msg, err := json.Marshal(schema.RegistrarInstantiateMsg{
		Admin:           g.Admin,
		Operator:        g.Operator,
		Prices:          prices,
		BackendPubkey:   pubkey,
		NameCodeId:      NameCodeId,
		ResolverCodeId:  ResolverCodeId,
		MaxYearRegister: g.MaxYearRegister,
		MaxBatchSize:    g.MaxBatchSize,
	})
	if err != nil {
		return vm.GenesisContract{}, err
	}
	return vm.GenesisContract{
		Sender: g.Admin,
		CodeId: RegistrarCodeId,
		Admin:  g.Admin,
		Label:  RegistrarLabel,
		Msg:    msg,
	}, nil
}
