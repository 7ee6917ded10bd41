package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/everFinance/arname/common"
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

var log = common.NewLog("resolver")

// Resolver keeps the (name, bech32 prefix) -> address index of every live
// name token and the reverse index by address.
type Resolver struct{}

func New() *Resolver {
	return &Resolver{}
}

// Instantiate records the instantiating contract as the name contract.
func (r *Resolver) Instantiate(deps vm.Deps, env vm.Env, info vm.MessageInfo, raw []byte) (*vm.Response, error) {
	var msg schema.ResolverInstantiateMsg
	if err := vm.DecodeJSON(raw, &msg); err != nil {
		return nil, err
	}
	if err := deps.Api.AddrValidate(msg.Admin); err != nil {
		return nil, err
	}
	if err := configItem.Save(deps.Storage, schema.ResolverConfig{Admin: msg.Admin}); err != nil {
		return nil, err
	}
	if err := nameContractItem.Save(deps.Storage, info.Sender); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("admin", msg.Admin), nil
}

func (r *Resolver) Execute(deps vm.Deps, env vm.Env, info vm.MessageInfo, raw []byte) (*vm.Response, error) {
	var msg schema.ResolverExecuteMsg
	if err := vm.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.UpdateConfig != nil:
		return r.updateConfig(deps, info, *msg.UpdateConfig)
	case msg.UpdateNameContract != nil:
		return r.updateNameContract(deps, info, msg.UpdateNameContract.NameContract)
	case msg.UpdateRecord != nil:
		return r.updateRecord(deps, info, *msg.UpdateRecord)
	case msg.DeleteNames != nil:
		return r.deleteNames(deps, info, msg.DeleteNames.Names)
	case msg.AddIgnoreAddress != nil:
		return r.addIgnoreAddress(deps, info, msg.AddIgnoreAddress.Address)
	case msg.RemoveIgnoreAddress != nil:
		return r.removeIgnoreAddress(deps, info, msg.RemoveIgnoreAddress.Address)
	}
	return nil, vm.UnknownMsg(raw)
}

func (r *Resolver) Reply(deps vm.Deps, env vm.Env, reply vm.Reply) (*vm.Response, error) {
	return nil, fmt.Errorf("%w: %d", schema.ErrUnknownReply, reply.ID)
}

func (r *Resolver) require(deps vm.Deps, sender string, need schema.Privilege) error {
	rs, err := roles(deps.Storage)
	if err != nil {
		return err
	}
	return rs.Require(sender, need)
}

func (r *Resolver) updateConfig(deps vm.Deps, info vm.MessageInfo, cfg schema.ResolverConfig) (*vm.Response, error) {
	if err := r.require(deps, info.Sender, schema.Admin); err != nil {
		return nil, err
	}
	if err := deps.Api.AddrValidate(cfg.Admin); err != nil {
		return nil, err
	}
	if err := configItem.Save(deps.Storage, cfg); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "update_config").
		AddAttribute("admin", cfg.Admin), nil
}

func (r *Resolver) updateNameContract(deps vm.Deps, info vm.MessageInfo, nameContract string) (*vm.Response, error) {
	if err := r.require(deps, info.Sender, schema.Admin); err != nil {
		return nil, err
	}
	if err := deps.Api.AddrValidate(nameContract); err != nil {
		return nil, err
	}
	if err := nameContractItem.Save(deps.Storage, nameContract); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "update_name_contract").
		AddAttribute("name_contract", nameContract), nil
}

// updateRecord re-encodes the address once per prefix and upserts it.
func (r *Resolver) updateRecord(deps vm.Deps, info vm.MessageInfo, msg schema.UpdateRecordMsg) (*vm.Response, error) {
	// admin or name contract
	if err := r.require(deps, info.Sender, schema.Operator); err != nil {
		return nil, err
	}
	if _, _, err := vm.DecodeAddress(msg.Address); err != nil {
		return nil, err
	}
	for _, prefix := range msg.Bech32Prefixes {
		encoded, err := deps.Api.AddrConvert(msg.Address, prefix)
		if err != nil {
			return nil, err
		}
		if err := putRecord(deps.Storage, msg.Name, prefix, encoded); err != nil {
			return nil, err
		}
	}
	log.Debug("record updated", "name", msg.Name, "prefixes", len(msg.Bech32Prefixes), "address", msg.Address)
	return vm.NewResponse().
		AddAttribute("action", "update_record").
		AddAttribute("name", msg.Name).
		AddAttribute("bech32_prefixes", strings.Join(msg.Bech32Prefixes, ",")).
		AddAttribute("address", msg.Address), nil
}

func (r *Resolver) deleteNames(deps vm.Deps, info vm.MessageInfo, names []string) (*vm.Response, error) {
	if err := r.require(deps, info.Sender, schema.Operator); err != nil {
		return nil, err
	}
	removed := 0
	for _, name := range names {
		n, err := deleteName(deps.Storage, name)
		if err != nil {
			return nil, err
		}
		removed += n
	}
	return vm.NewResponse().
		AddAttribute("action", "delete_names").
		AddAttribute("names", strings.Join(names, ",")).
		AddAttribute("removed", strconv.Itoa(removed)), nil
}

func (r *Resolver) addIgnoreAddress(deps vm.Deps, info vm.MessageInfo, addr string) (*vm.Response, error) {
	if err := r.require(deps, info.Sender, schema.Admin); err != nil {
		return nil, err
	}
	if err := ignoreAddrs.Save(deps.Storage, addr, true); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "add_ignore_address").
		AddAttribute("address", addr), nil
}

func (r *Resolver) removeIgnoreAddress(deps vm.Deps, info vm.MessageInfo, addr string) (*vm.Response, error) {
	if err := r.require(deps, info.Sender, schema.Admin); err != nil {
		return nil, err
	}
	ok, err := isIgnored(deps.Storage, addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrNotIgnoredAddress, addr)
	}
	if err := ignoreAddrs.Remove(deps.Storage, addr); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "remove_ignore_address").
		AddAttribute("address", addr), nil
}
