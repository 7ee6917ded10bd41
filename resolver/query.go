package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

func (r *Resolver) Query(deps vm.Deps, env vm.Env, raw []byte) ([]byte, error) {
	var msg schema.ResolverQueryMsg
	if err := vm.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Config != nil:
		cfg, err := configItem.Load(deps.Storage)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(cfg)
	case msg.NameContract != nil:
		addr, err := nameContractItem.Load(deps.Storage)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.AddressResponse{Address: addr})
	case msg.IsIgnoreAddress != nil:
		ok, err := isIgnored(deps.Storage, msg.IsIgnoreAddress.Address)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.BoolResponse{Value: ok})
	case msg.AddressOf != nil:
		res, err := addressOf(deps.Storage, msg.AddressOf.PrimaryName, msg.AddressOf.Bech32Prefix)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(res)
	case msg.AllAddressesOf != nil:
		res, err := allAddressesOf(deps.Storage, *msg.AllAddressesOf)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(res)
	case msg.Names != nil:
		res, err := namesOf(deps.Storage, *msg.Names)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(res)
	}
	return nil, vm.UnknownMsg(raw)
}

// addressOf fails when the resolved address is ignore-listed.
func addressOf(s vm.Storage, name, prefix string) (schema.ResolvedAddress, error) {
	addr, err := records.Load(s, recordKey(name, prefix))
	if errors.Is(err, schema.ErrNotExist) {
		return schema.ResolvedAddress{}, fmt.Errorf("%w: %s.%s", schema.ErrRecordNotFound, name, prefix)
	}
	if err != nil {
		return schema.ResolvedAddress{}, err
	}
	ignored, err := isIgnored(s, addr)
	if err != nil {
		return schema.ResolvedAddress{}, err
	}
	if ignored {
		return schema.ResolvedAddress{}, fmt.Errorf("%w: %s", schema.ErrIgnoredAddress, addr)
	}
	return schema.ResolvedAddress{Address: addr, Bech32Prefix: prefix}, nil
}

// allAddressesOf pages over the prefixes of a name and skips ignore-listed
// addresses. Skipped entries count against the page limit.
func allAddressesOf(s vm.Storage, q schema.AllAddressesOfQuery) (schema.AllAddressesResponse, error) {
	res := schema.AllAddressesResponse{Addresses: make([]schema.ResolvedAddress, 0)}
	startAfter := ""
	if q.StartAfter != nil {
		startAfter = recordKey(q.PrimaryName, *q.StartAfter)
	}
	err := records.Range(s, q.PrimaryName+sep, startAfter, schema.PageLimit(q.Limit), func(k string, addr string) error {
		ignored, err := isIgnored(s, addr)
		if err != nil || ignored {
			return err
		}
		res.Addresses = append(res.Addresses, schema.ResolvedAddress{
			Address:      addr,
			Bech32Prefix: strings.TrimPrefix(k, q.PrimaryName+sep),
		})
		return nil
	})
	return res, err
}

// namesOf lists "name.prefix" entries resolving to owner. An ignore-listed
// owner is an error, not an empty page.
func namesOf(s vm.Storage, q schema.NamesQuery) (schema.NamesResponse, error) {
	res := schema.NamesResponse{Names: make([]string, 0)}
	ignored, err := isIgnored(s, q.Owner)
	if err != nil {
		return res, err
	}
	if ignored {
		return res, fmt.Errorf("%w: %s", schema.ErrIgnoredAddress, q.Owner)
	}
	startAfter := ""
	if q.StartAfter != nil {
		name, prefix, _ := strings.Cut(*q.StartAfter, ".")
		startAfter = indexKey(q.Owner, name, prefix)
	}
	err = addressIndex.Range(s, q.Owner+sep, startAfter, schema.PageLimit(q.Limit), func(k string, _ string) error {
		name, prefix := splitIndexKey(q.Owner, k)
		res.Names = append(res.Names, name+"."+prefix)
		return nil
	})
	return res, err
}
