package registrar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/everFinance/arname/common"
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

var log = common.NewLog("registrar")

// Registrar sells names. It owns the price table, the backend verifier key
// and the name -> expiry registry, and drives the name ledger through
// Mint, Burn and BurnBatch messages.
type Registrar struct{}

func New() *Registrar {
	return &Registrar{}
}

// Instantiate stores the config and asks the host for a name ledger whose
// minter is this registrar. The ledger address arrives in Reply.
func (r *Registrar) Instantiate(deps vm.Deps, env vm.Env, info vm.MessageInfo, raw []byte) (*vm.Response, error) {
	var msg schema.RegistrarInstantiateMsg
	if err := vm.DecodeJSON(raw, &msg); err != nil {
		return nil, err
	}
	cfg := schema.RegistrarConfig{
		Admin:           msg.Admin,
		Operator:        msg.Operator,
		NameCodeId:      msg.NameCodeId,
		ResolverCodeId:  msg.ResolverCodeId,
		MaxYearRegister: msg.MaxYearRegister,
		MaxBatchSize:    msg.MaxBatchSize,
	}
	if err := validateConfig(deps.Api, cfg); err != nil {
		return nil, err
	}
	if len(msg.BackendPubkey) > 0 {
		if err := validatePubkey(msg.BackendPubkey); err != nil {
			return nil, err
		}
	}
	if err := configItem.Save(deps.Storage, cfg); err != nil {
		return nil, err
	}
	if err := savePrices(deps.Storage, msg.Prices); err != nil {
		return nil, err
	}
	if err := verifierItem.Save(deps.Storage, schema.Verifier{BackendPubkey: msg.BackendPubkey}); err != nil {
		return nil, err
	}

	sub, err := vm.NewInstantiateMsg(cfg.NameCodeId, cfg.Admin, nameLabel, schema.NameInstantiateMsg{
		Admin:          cfg.Admin,
		Minter:         env.Contract,
		ResolverCodeId: cfg.ResolverCodeId,
		MaxBatchSize:   cfg.MaxBatchSize,
	}, nil)
	if err != nil {
		return nil, err
	}
	if err := pending.Submit(deps.Storage, nameReplyId, nameLabel); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddSubMessage(nameReplyId, sub).
		AddAttribute("action", "instantiate").
		AddAttribute("admin", cfg.Admin).
		AddAttribute("operator", cfg.Operator), nil
}

func (r *Registrar) Reply(deps vm.Deps, env vm.Env, reply vm.Reply) (*vm.Response, error) {
	label, err := pending.Take(deps.Storage, reply.ID)
	if err != nil {
		return nil, err
	}
	if label != nameLabel || reply.Result.ContractAddress == "" {
		return nil, fmt.Errorf("%w: %d (%s)", schema.ErrUnknownReply, reply.ID, label)
	}
	if err := nameContractItem.Save(deps.Storage, reply.Result.ContractAddress); err != nil {
		return nil, err
	}
	log.Info("name contract instantiated", "registrar", env.Contract, "name_contract", reply.Result.ContractAddress)
	return vm.NewResponse().AddAttribute("name_contract", reply.Result.ContractAddress), nil
}

func (r *Registrar) Execute(deps vm.Deps, env vm.Env, info vm.MessageInfo, raw []byte) (*vm.Response, error) {
	var msg schema.RegistrarExecuteMsg
	if err := vm.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Register != nil:
		return r.register(deps, env, info, *msg.Register)
	case msg.Extend != nil:
		return r.extend(deps, env, info, *msg.Extend)
	case msg.Unregister != nil:
		return r.unregister(deps, info, msg.Unregister.Names)
	case msg.Withdraw != nil:
		return r.withdraw(deps, info, *msg.Withdraw)
	case msg.UpdateConfig != nil:
		return r.updateConfig(deps, info, *msg.UpdateConfig)
	case msg.UpdatePrices != nil:
		return r.updatePrices(deps, info, msg.UpdatePrices.Prices)
	case msg.UpdateVerifier != nil:
		return r.updateVerifier(deps, info, msg.UpdateVerifier.BackendPubkey)
	}
	return nil, vm.UnknownMsg(raw)
}

func validateConfig(api vm.Api, cfg schema.RegistrarConfig) error {
	if err := api.AddrValidate(cfg.Admin); err != nil {
		return err
	}
	if cfg.Operator != "" {
		if err := api.AddrValidate(cfg.Operator); err != nil {
			return err
		}
	}
	return nil
}

// authorize loads the config and fails unless sender holds need.
func (r *Registrar) authorize(s vm.Storage, sender string, need schema.Privilege) (schema.RegistrarConfig, error) {
	cfg, err := configItem.Load(s)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Roles().Require(sender, need)
}

// quote validates the duration and returns the fee for name.
func (r *Registrar) quote(s vm.Storage, cfg schema.RegistrarConfig, name string, durations uint64) (schema.Coin, error) {
	years, err := checkDuration(cfg, durations)
	if err != nil {
		return schema.Coin{}, err
	}
	price, err := priceOf(s, name)
	if err != nil {
		return schema.Coin{}, err
	}
	return Fee(price, years), nil
}

// checkBackend runs the signature gate. The admin is never checked.
func (r *Registrar) checkBackend(s vm.Storage, cfg schema.RegistrarConfig, sender string, msg schema.VerifyMsg, sig []byte) error {
	if cfg.Roles().Of(sender) == schema.Admin {
		return nil
	}
	v, err := verifierItem.Load(s)
	if err != nil {
		return err
	}
	return verify(v, msg, sig)
}

func ledgerMsg(s vm.Storage, msg schema.NameExecuteMsg) (vm.Msg, error) {
	nameContract, err := nameContractItem.Load(s)
	if err != nil {
		return vm.Msg{}, err
	}
	return vm.NewExecuteMsg(nameContract, msg, nil)
}

func (r *Registrar) register(deps vm.Deps, env vm.Env, info vm.MessageInfo, msg schema.RegisterMsg) (*vm.Response, error) {
	if err := schema.ValidateName(msg.Name); err != nil {
		return nil, err
	}
	has, err := registry.Has(deps.Storage, msg.Name)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, fmt.Errorf("%w: %s", schema.ErrNameAlreadyRegistered, msg.Name)
	}
	cfg, err := configItem.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	meta := msg.Metadata
	fee, err := r.quote(deps.Storage, cfg, msg.Name, meta.Durations)
	if err != nil {
		return nil, err
	}
	if err := checkFunds(info.Funds, fee); err != nil {
		return nil, err
	}
	err = r.checkBackend(deps.Storage, cfg, info.Sender, schema.VerifyMsg{Register: &schema.RegisterVerify{
		Name:           msg.Name,
		Sender:         info.Sender,
		ChainId:        env.ChainId,
		Bech32Prefixes: meta.Bech32Prefixes,
		Durations:      meta.Durations,
	}}, msg.BackendSignature)
	if err != nil {
		return nil, err
	}

	expires, err := addDuration(env.Time, meta.Durations)
	if err != nil {
		return nil, err
	}
	if err := registry.Save(deps.Storage, msg.Name, expires); err != nil {
		return nil, err
	}
	meta.ExpiresAt = expires
	mint, err := ledgerMsg(deps.Storage, schema.NameExecuteMsg{Mint: &schema.MintMsg{
		TokenId:   msg.Name,
		Owner:     info.Sender,
		Extension: meta,
	}})
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(mint).
		AddAttribute("action", "register").
		AddAttribute("name", msg.Name).
		AddAttribute("owner", info.Sender).
		AddAttribute("fee", fee.String()).
		AddAttribute("expires_at", strconv.FormatUint(expires, 10)), nil
}

// extend re-mints the token to its current owner with the new expiry.
func (r *Registrar) extend(deps vm.Deps, env vm.Env, info vm.MessageInfo, msg schema.ExtendMsg) (*vm.Response, error) {
	if err := schema.ValidateName(msg.Name); err != nil {
		return nil, err
	}
	oldExpires, err := expiresAt(deps.Storage, msg.Name)
	if err != nil {
		return nil, err
	}
	cfg, err := configItem.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	fee, err := r.quote(deps.Storage, cfg, msg.Name, msg.Durations)
	if err != nil {
		return nil, err
	}
	if err := checkFunds(info.Funds, fee); err != nil {
		return nil, err
	}
	err = r.checkBackend(deps.Storage, cfg, info.Sender, schema.VerifyMsg{Extend: &schema.ExtendVerify{
		Name:       msg.Name,
		Sender:     info.Sender,
		ChainId:    env.ChainId,
		OldExpires: oldExpires,
		Durations:  msg.Durations,
	}}, msg.BackendSignature)
	if err != nil {
		return nil, err
	}

	nameContract, err := nameContractItem.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	var tok schema.AllNftInfoResponse
	err = vm.QueryJSON(deps.Querier, nameContract, schema.NameQueryMsg{AllNftInfo: &schema.TokenIdMsg{TokenId: msg.Name}}, &tok)
	if err != nil {
		return nil, err
	}

	expires, err := addDuration(oldExpires, msg.Durations)
	if err != nil {
		return nil, err
	}
	meta := tok.Info.Extension
	if meta.Durations, err = addDuration(meta.Durations, msg.Durations); err != nil {
		return nil, err
	}
	if err := registry.Save(deps.Storage, msg.Name, expires); err != nil {
		return nil, err
	}
	meta.ExpiresAt = expires
	burn, err := vm.NewExecuteMsg(nameContract, schema.NameExecuteMsg{Burn: &schema.TokenIdMsg{TokenId: msg.Name}}, nil)
	if err != nil {
		return nil, err
	}
	mint, err := vm.NewExecuteMsg(nameContract, schema.NameExecuteMsg{Mint: &schema.MintMsg{
		TokenId:   msg.Name,
		Owner:     tok.Access.Owner,
		TokenUri:  tok.Info.TokenUri,
		Extension: meta,
	}}, nil)
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(burn).
		AddMessage(mint).
		AddAttribute("action", "extend").
		AddAttribute("name", msg.Name).
		AddAttribute("owner", tok.Access.Owner).
		AddAttribute("fee", fee.String()).
		AddAttribute("expires_at", strconv.FormatUint(expires, 10)), nil
}

// unregister evicts names regardless of expiry; there is no automatic
// eviction.
func (r *Registrar) unregister(deps vm.Deps, info vm.MessageInfo, names []string) (*vm.Response, error) {
	cfg, err := r.authorize(deps.Storage, info.Sender, schema.Operator)
	if err != nil {
		return nil, err
	}
	if len(names) > batchLimit(cfg) {
		return nil, fmt.Errorf("%w: %d > %d", schema.ErrBatchTooLong, len(names), batchLimit(cfg))
	}
	for _, name := range names {
		if _, err := expiresAt(deps.Storage, name); err != nil {
			return nil, err
		}
		if err := registry.Remove(deps.Storage, name); err != nil {
			return nil, err
		}
	}
	burn, err := ledgerMsg(deps.Storage, schema.NameExecuteMsg{BurnBatch: &schema.TokenIdsMsg{TokenIds: names}})
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(burn).
		AddAttribute("action", "unregister").
		AddAttribute("names", strings.Join(names, ",")), nil
}

func (r *Registrar) withdraw(deps vm.Deps, info vm.MessageInfo, msg schema.WithdrawMsg) (*vm.Response, error) {
	if _, err := r.authorize(deps.Storage, info.Sender, schema.Admin); err != nil {
		return nil, err
	}
	if err := deps.Api.AddrValidate(msg.Receiver); err != nil {
		return nil, err
	}
	if err := msg.Coin.Validate(); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(vm.NewBankSend(msg.Receiver, msg.Coin)).
		AddAttribute("action", "withdraw").
		AddAttribute("receiver", msg.Receiver).
		AddAttribute("amount", msg.Coin.String()), nil
}

func (r *Registrar) updateConfig(deps vm.Deps, info vm.MessageInfo, cfg schema.RegistrarConfig) (*vm.Response, error) {
	if _, err := r.authorize(deps.Storage, info.Sender, schema.Admin); err != nil {
		return nil, err
	}
	if err := validateConfig(deps.Api, cfg); err != nil {
		return nil, err
	}
	if err := configItem.Save(deps.Storage, cfg); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "update_config").
		AddAttribute("admin", cfg.Admin).
		AddAttribute("operator", cfg.Operator), nil
}

func (r *Registrar) updatePrices(deps vm.Deps, info vm.MessageInfo, entries []schema.PriceEntry) (*vm.Response, error) {
	if _, err := r.authorize(deps.Storage, info.Sender, schema.Admin); err != nil {
		return nil, err
	}
	if err := savePrices(deps.Storage, entries); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "update_prices").
		AddAttribute("count", strconv.Itoa(len(entries))), nil
}

func (r *Registrar) updateVerifier(deps vm.Deps, info vm.MessageInfo, pubkey []byte) (*vm.Response, error) {
	if _, err := r.authorize(deps.Storage, info.Sender, schema.Admin); err != nil {
		return nil, err
	}
	if err := validatePubkey(pubkey); err != nil {
		return nil, err
	}
	if err := verifierItem.Save(deps.Storage, schema.Verifier{BackendPubkey: pubkey}); err != nil {
		return nil, err
	}
	return vm.NewResponse().AddAttribute("action", "update_verifier"), nil
}
