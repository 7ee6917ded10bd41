package resolver

import (
	"strings"

	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

const sep = "\x00"

var (
	configItem       = vm.NewItem[schema.ResolverConfig]("config")
	nameContractItem = vm.NewItem[string]("name_contract")

	// name+sep+prefix -> encoded address
	records = vm.NewMap[string]("records")
	// encoded address+sep+name+sep+prefix -> name
	addressIndex = vm.NewMap[string]("records__address")
	ignoreAddrs  = vm.NewMap[bool]("ignore_addrs")
)

func recordKey(name, prefix string) string {
	return name + sep + prefix
}

func indexKey(addr, name, prefix string) string {
	return addr + sep + name + sep + prefix
}

// splitIndexKey returns name and prefix of an index key under addr.
func splitIndexKey(addr, key string) (string, string) {
	rest := strings.TrimPrefix(key, addr+sep)
	name, prefix, _ := strings.Cut(rest, sep)
	return name, prefix
}

func roles(s vm.Storage) (schema.Roles, error) {
	cfg, err := configItem.Load(s)
	if err != nil {
		return schema.Roles{}, err
	}
	nameContract, _, err := nameContractItem.MayLoad(s)
	if err != nil {
		return schema.Roles{}, err
	}
	return schema.Roles{Admin: cfg.Admin, Operator: nameContract}, nil
}

// putRecord upserts (name, prefix) -> addr and keeps the address index in
// step with it.
func putRecord(s vm.Storage, name, prefix, addr string) error {
	old, ok, err := records.MayLoad(s, recordKey(name, prefix))
	if err != nil {
		return err
	}
	if ok && old != addr {
		if err := addressIndex.Remove(s, indexKey(old, name, prefix)); err != nil {
			return err
		}
	}
	if err := records.Save(s, recordKey(name, prefix), addr); err != nil {
		return err
	}
	return addressIndex.Save(s, indexKey(addr, name, prefix), name)
}

// deleteName clears every (name, *) record and returns how many were removed.
func deleteName(s vm.Storage, name string) (int, error) {
	indexed := make([]string, 0)
	err := records.Range(s, name+sep, "", 0, func(k string, addr string) error {
		indexed = append(indexed, indexKey(addr, name, strings.TrimPrefix(k, name+sep)))
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, k := range indexed {
		if err := addressIndex.Remove(s, k); err != nil {
			return 0, err
		}
	}
	return records.RemovePrefix(s, name+sep)
}

func isIgnored(s vm.Storage, addr string) (bool, error) {
	return ignoreAddrs.Has(s, addr)
}
