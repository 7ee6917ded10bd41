package registrar

import (
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

func (r *Registrar) Query(deps vm.Deps, env vm.Env, raw []byte) ([]byte, error) {
	var msg schema.RegistrarQueryMsg
	if err := vm.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	s := deps.Storage
	switch {
	case msg.Config != nil:
		cfg, err := configItem.Load(s)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(cfg)
	case msg.Verifier != nil:
		v, err := verifierItem.Load(s)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(v)
	case msg.Prices != nil:
		entries, err := allPrices(s)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.PricesResponse{Prices: entries})
	case msg.NameContract != nil:
		addr, err := nameContractItem.Load(s)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.AddressResponse{Address: addr})
	case msg.HasRegister != nil:
		has, err := registry.Has(s, msg.HasRegister.Name)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.BoolResponse{Value: has})
	case msg.Registration != nil:
		exp, err := expiresAt(s, msg.Registration.Name)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.RegistrationResponse{Name: msg.Registration.Name, ExpiresAt: exp})
	case msg.Registrations != nil:
		return r.registrations(s, *msg.Registrations)
	case msg.Fee != nil:
		if err := schema.ValidateName(msg.Fee.Name); err != nil {
			return nil, err
		}
		cfg, err := configItem.Load(s)
		if err != nil {
			return nil, err
		}
		fee, err := r.quote(s, cfg, msg.Fee.Name, msg.Fee.Durations)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(fee)
	}
	return nil, vm.UnknownMsg(raw)
}

func (r *Registrar) registrations(s vm.Storage, q schema.PageQuery) ([]byte, error) {
	startAfter := ""
	if q.StartAfter != nil {
		startAfter = *q.StartAfter
	}
	out := make([]schema.RegistrationResponse, 0)
	err := registry.Range(s, "", startAfter, schema.PageLimit(q.Limit), func(name string, exp uint64) error {
		out = append(out, schema.RegistrationResponse{Name: name, ExpiresAt: exp})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vm.Marshal(schema.RegistrationsResponse{Registrations: out})
}
