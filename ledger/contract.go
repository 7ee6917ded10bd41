package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/everFinance/arname/common"
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

var log = common.NewLog("ledger")

// Ledger owns the name tokens. A token id is the name itself. Every change
// of who owns a name, or whether it exists, is paired with exactly one
// message to the resolver.
type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

// Instantiate stores config and minter, then asks the host for a resolver.
// Its address arrives in Reply.
func (l *Ledger) Instantiate(deps vm.Deps, env vm.Env, info vm.MessageInfo, raw []byte) (*vm.Response, error) {
	var msg schema.NameInstantiateMsg
	if err := vm.DecodeJSON(raw, &msg); err != nil {
		return nil, err
	}
	if err := deps.Api.AddrValidate(msg.Admin); err != nil {
		return nil, err
	}
	if err := deps.Api.AddrValidate(msg.Minter); err != nil {
		return nil, err
	}
	cfg := schema.LedgerConfig{Admin: msg.Admin, MaxBatchSize: msg.MaxBatchSize}
	if err := configItem.Save(deps.Storage, cfg); err != nil {
		return nil, err
	}
	if err := minterItem.Save(deps.Storage, msg.Minter); err != nil {
		return nil, err
	}
	if err := countItem.Save(deps.Storage, 0); err != nil {
		return nil, err
	}

	sub, err := vm.NewInstantiateMsg(msg.ResolverCodeId, env.Contract, resolverLabel, schema.ResolverInstantiateMsg{Admin: msg.Admin}, nil)
	if err != nil {
		return nil, err
	}
	if err := pending.Submit(deps.Storage, resolverReplyId, resolverLabel); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddSubMessage(resolverReplyId, sub).
		AddAttribute("action", "instantiate").
		AddAttribute("admin", msg.Admin).
		AddAttribute("minter", msg.Minter).
		AddAttribute("resolver_code_id", strconv.FormatUint(msg.ResolverCodeId, 10)), nil
}

func (l *Ledger) Reply(deps vm.Deps, env vm.Env, reply vm.Reply) (*vm.Response, error) {
	label, err := pending.Take(deps.Storage, reply.ID)
	if err != nil {
		return nil, err
	}
	if label != resolverLabel || reply.Result.ContractAddress == "" {
		return nil, fmt.Errorf("%w: %d (%s)", schema.ErrUnknownReply, reply.ID, label)
	}
	if err := resolverItem.Save(deps.Storage, reply.Result.ContractAddress); err != nil {
		return nil, err
	}
	log.Info("resolver instantiated", "ledger", env.Contract, "resolver", reply.Result.ContractAddress)
	return vm.NewResponse().AddAttribute("resolver_address", reply.Result.ContractAddress), nil
}

func (l *Ledger) Execute(deps vm.Deps, env vm.Env, info vm.MessageInfo, raw []byte) (*vm.Response, error) {
	var msg schema.NameExecuteMsg
	if err := vm.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Mint != nil:
		return l.mint(deps, info, *msg.Mint)
	case msg.Burn != nil:
		return l.burn(deps, env, info, msg.Burn.TokenId)
	case msg.BurnBatch != nil:
		return l.burnBatch(deps, info, msg.BurnBatch.TokenIds)
	case msg.TransferNft != nil:
		return l.transferNft(deps, env, info, msg.TransferNft.Recipient, msg.TransferNft.TokenId)
	case msg.SendNft != nil:
		return l.sendNft(deps, env, info, *msg.SendNft)
	case msg.Approve != nil:
		return l.approve(deps, env, info, *msg.Approve)
	case msg.Revoke != nil:
		return l.revoke(deps, info, *msg.Revoke)
	case msg.ExtendExpires != nil:
		return l.extendExpires(deps, info, *msg.ExtendExpires)
	case msg.EvictBatch != nil:
		return l.evictBatch(deps, info, msg.EvictBatch.TokenIds)
	case msg.UpdateResolver != nil:
		return l.updateResolver(deps, info, msg.UpdateResolver.Resolver)
	case msg.UpdateConfig != nil:
		return l.updateConfig(deps, info, *msg.UpdateConfig)
	}
	return nil, vm.UnknownMsg(raw)
}

func (l *Ledger) roles(s vm.Storage) (schema.LedgerConfig, schema.Roles, error) {
	cfg, err := configItem.Load(s)
	if err != nil {
		return cfg, schema.Roles{}, err
	}
	minter, err := minterItem.Load(s)
	if err != nil {
		return cfg, schema.Roles{}, err
	}
	return cfg, schema.Roles{Admin: cfg.Admin, Operator: minter}, nil
}

func (l *Ledger) requireMinter(s vm.Storage, sender string) (schema.LedgerConfig, error) {
	cfg, rs, err := l.roles(s)
	if err != nil {
		return cfg, err
	}
	// the admin is not a minter
	if sender != rs.Operator {
		return cfg, fmt.Errorf("%w: %s is not the minter", schema.ErrUnauthorized, sender)
	}
	return cfg, nil
}

func (l *Ledger) requireAdmin(s vm.Storage, sender string) (schema.LedgerConfig, error) {
	cfg, rs, err := l.roles(s)
	if err != nil {
		return cfg, err
	}
	return cfg, rs.Require(sender, schema.Admin)
}

// canSend reports whether sender may move or burn tok: its owner or a live
// approved spender.
func canSend(tok schema.TokenInfo, sender string, now uint64) bool {
	if tok.Owner == sender {
		return true
	}
	for _, a := range liveApprovals(tok.Approvals, now) {
		if a.Spender == sender {
			return true
		}
	}
	return false
}

func resolverMsg(s vm.Storage, msg schema.ResolverExecuteMsg) (vm.Msg, error) {
	resolver, err := resolverItem.Load(s)
	if err != nil {
		return vm.Msg{}, err
	}
	return vm.NewExecuteMsg(resolver, msg, nil)
}

func updateRecordMsg(s vm.Storage, name string, ext schema.Metadata, owner string) (vm.Msg, error) {
	return resolverMsg(s, schema.ResolverExecuteMsg{UpdateRecord: &schema.UpdateRecordMsg{
		Name:           name,
		Bech32Prefixes: ext.Bech32Prefixes,
		Address:        owner,
	}})
}

func deleteNamesMsg(s vm.Storage, names []string) (vm.Msg, error) {
	return resolverMsg(s, schema.ResolverExecuteMsg{DeleteNames: &schema.DeleteNamesMsg{Names: names}})
}

func validateTokenId(id string) error {
	if err := schema.ValidateName(id); err != nil {
		return fmt.Errorf("%w: %v", schema.ErrInvalidTokenId, err)
	}
	return nil
}

func (l *Ledger) mint(deps vm.Deps, info vm.MessageInfo, msg schema.MintMsg) (*vm.Response, error) {
	if _, err := l.requireMinter(deps.Storage, info.Sender); err != nil {
		return nil, err
	}
	if err := validateTokenId(msg.TokenId); err != nil {
		return nil, err
	}
	if err := deps.Api.AddrValidate(msg.Owner); err != nil {
		return nil, err
	}
	tok := schema.TokenInfo{
		Owner:     msg.Owner,
		Approvals: []schema.Approval{},
		TokenUri:  msg.TokenUri,
		Extension: msg.Extension,
	}
	if err := addToken(deps.Storage, msg.TokenId, tok); err != nil {
		return nil, err
	}
	sync, err := updateRecordMsg(deps.Storage, msg.TokenId, msg.Extension, msg.Owner)
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(sync).
		AddAttribute("action", "mint").
		AddAttribute("minter", info.Sender).
		AddAttribute("owner", msg.Owner).
		AddAttribute("token_id", msg.TokenId).
		AddAttribute("expires", strconv.FormatUint(msg.Extension.ExpiresAt, 10)).
		AddAttribute("bech32_prefixes", strings.Join(msg.Extension.Bech32Prefixes, ",")), nil
}

func (l *Ledger) burn(deps vm.Deps, env vm.Env, info vm.MessageInfo, id string) (*vm.Response, error) {
	tok, err := loadToken(deps.Storage, id)
	if err != nil {
		return nil, err
	}
	minter, err := minterItem.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	if info.Sender != minter && !canSend(tok, info.Sender, env.Time) {
		return nil, fmt.Errorf("%w: %s cannot burn %s", schema.ErrUnauthorized, info.Sender, id)
	}
	if _, err := removeToken(deps.Storage, id); err != nil {
		return nil, err
	}
	sync, err := deleteNamesMsg(deps.Storage, []string{id})
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(sync).
		AddAttribute("action", "burn").
		AddAttribute("sender", info.Sender).
		AddAttribute("token_id", id), nil
}

func (l *Ledger) removeBatch(s vm.Storage, cfg schema.LedgerConfig, ids []string) (vm.Msg, error) {
	if len(ids) > batchLimit(cfg) {
		return vm.Msg{}, fmt.Errorf("%w: %d > %d", schema.ErrBatchTooLong, len(ids), batchLimit(cfg))
	}
	// ids burned earlier are skipped but still cleared from the resolver
	for _, id := range ids {
		if _, err := removeToken(s, id); err != nil && !errors.Is(err, schema.ErrTokenNotFound) {
			return vm.Msg{}, err
		}
	}
	return deleteNamesMsg(s, ids)
}

func (l *Ledger) burnBatch(deps vm.Deps, info vm.MessageInfo, ids []string) (*vm.Response, error) {
	cfg, err := l.requireMinter(deps.Storage, info.Sender)
	if err != nil {
		return nil, err
	}
	sync, err := l.removeBatch(deps.Storage, cfg, ids)
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(sync).
		AddAttribute("action", "burn_batch").
		AddAttribute("sender", info.Sender).
		AddAttribute("token_ids", strings.Join(ids, ",")), nil
}

func (l *Ledger) evictBatch(deps vm.Deps, info vm.MessageInfo, ids []string) (*vm.Response, error) {
	cfg, err := l.requireAdmin(deps.Storage, info.Sender)
	if err != nil {
		return nil, err
	}
	sync, err := l.removeBatch(deps.Storage, cfg, ids)
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(sync).
		AddAttribute("action", "evict_batch").
		AddAttribute("sender", info.Sender).
		AddAttribute("token_ids", strings.Join(ids, ",")), nil
}

// transfer hands the token to recipient and clears its approvals.
func (l *Ledger) transfer(deps vm.Deps, env vm.Env, sender, recipient, id string) (schema.TokenInfo, error) {
	tok, err := loadToken(deps.Storage, id)
	if err != nil {
		return tok, err
	}
	if !canSend(tok, sender, env.Time) {
		return tok, fmt.Errorf("%w: %s cannot transfer %s", schema.ErrUnauthorized, sender, id)
	}
	if err := deps.Api.AddrValidate(recipient); err != nil {
		return tok, err
	}
	prev := tok.Owner
	tok.Owner = recipient
	tok.Approvals = []schema.Approval{}
	return tok, saveToken(deps.Storage, id, tok, prev)
}

func (l *Ledger) transferNft(deps vm.Deps, env vm.Env, info vm.MessageInfo, recipient, id string) (*vm.Response, error) {
	tok, err := l.transfer(deps, env, info.Sender, recipient, id)
	if err != nil {
		return nil, err
	}
	sync, err := updateRecordMsg(deps.Storage, id, tok.Extension, recipient)
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(sync).
		AddAttribute("action", "transfer_nft").
		AddAttribute("sender", info.Sender).
		AddAttribute("recipient", recipient).
		AddAttribute("token_id", id), nil
}

func (l *Ledger) sendNft(deps vm.Deps, env vm.Env, info vm.MessageInfo, msg schema.SendNftMsg) (*vm.Response, error) {
	tok, err := l.transfer(deps, env, info.Sender, msg.Contract, msg.TokenId)
	if err != nil {
		return nil, err
	}
	receive, err := vm.NewExecuteMsg(msg.Contract, schema.ReceiveNftMsg{ReceiveNft: &schema.ReceiveNft{
		Sender:  info.Sender,
		TokenId: msg.TokenId,
		Msg:     msg.Msg,
	}}, nil)
	if err != nil {
		return nil, err
	}
	sync, err := updateRecordMsg(deps.Storage, msg.TokenId, tok.Extension, msg.Contract)
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(receive).
		AddMessage(sync).
		AddAttribute("action", "send_nft").
		AddAttribute("sender", info.Sender).
		AddAttribute("recipient", msg.Contract).
		AddAttribute("token_id", msg.TokenId), nil
}

func (l *Ledger) approve(deps vm.Deps, env vm.Env, info vm.MessageInfo, msg schema.ApproveMsg) (*vm.Response, error) {
	tok, err := loadToken(deps.Storage, msg.TokenId)
	if err != nil {
		return nil, err
	}
	if tok.Owner != info.Sender {
		return nil, fmt.Errorf("%w: %s does not own %s", schema.ErrUnauthorized, info.Sender, msg.TokenId)
	}
	if err := deps.Api.AddrValidate(msg.Spender); err != nil {
		return nil, err
	}
	if msg.Expires != 0 && msg.Expires <= env.Time {
		return nil, fmt.Errorf("%w: approval already expired", schema.ErrInvalidDuration)
	}
	approvals := make([]schema.Approval, 0, len(tok.Approvals)+1)
	for _, a := range tok.Approvals {
		if a.Spender != msg.Spender {
			approvals = append(approvals, a)
		}
	}
	tok.Approvals = append(approvals, schema.Approval{Spender: msg.Spender, Expires: msg.Expires})
	if err := saveToken(deps.Storage, msg.TokenId, tok, tok.Owner); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "approve").
		AddAttribute("sender", info.Sender).
		AddAttribute("spender", msg.Spender).
		AddAttribute("token_id", msg.TokenId), nil
}

func (l *Ledger) revoke(deps vm.Deps, info vm.MessageInfo, msg schema.RevokeMsg) (*vm.Response, error) {
	tok, err := loadToken(deps.Storage, msg.TokenId)
	if err != nil {
		return nil, err
	}
	if tok.Owner != info.Sender {
		return nil, fmt.Errorf("%w: %s does not own %s", schema.ErrUnauthorized, info.Sender, msg.TokenId)
	}
	approvals := make([]schema.Approval, 0, len(tok.Approvals))
	for _, a := range tok.Approvals {
		if a.Spender != msg.Spender {
			approvals = append(approvals, a)
		}
	}
	tok.Approvals = approvals
	if err := saveToken(deps.Storage, msg.TokenId, tok, tok.Owner); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "revoke").
		AddAttribute("sender", info.Sender).
		AddAttribute("spender", msg.Spender).
		AddAttribute("token_id", msg.TokenId), nil
}

// extendExpires updates the expiry in place and resyncs the resolver entry.
func (l *Ledger) extendExpires(deps vm.Deps, info vm.MessageInfo, msg schema.ExtendExpiresMsg) (*vm.Response, error) {
	if _, err := l.requireMinter(deps.Storage, info.Sender); err != nil {
		return nil, err
	}
	tok, err := loadToken(deps.Storage, msg.TokenId)
	if err != nil {
		return nil, err
	}
	tok.Extension.ExpiresAt = msg.NewExpires
	if err := saveToken(deps.Storage, msg.TokenId, tok, tok.Owner); err != nil {
		return nil, err
	}
	sync, err := updateRecordMsg(deps.Storage, msg.TokenId, tok.Extension, tok.Owner)
	if err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddMessage(sync).
		AddAttribute("action", "extend_expires").
		AddAttribute("token_id", msg.TokenId).
		AddAttribute("expires", strconv.FormatUint(msg.NewExpires, 10)), nil
}

func (l *Ledger) updateResolver(deps vm.Deps, info vm.MessageInfo, resolver string) (*vm.Response, error) {
	if _, err := l.requireAdmin(deps.Storage, info.Sender); err != nil {
		return nil, err
	}
	if err := deps.Api.AddrValidate(resolver); err != nil {
		return nil, err
	}
	if err := resolverItem.Save(deps.Storage, resolver); err != nil {
		return nil, err
	}
	return vm.NewResponse().
		AddAttribute("action", "update_resolver").
		AddAttribute("resolver", resolver), nil
}

func (l *Ledger) updateConfig(deps vm.Deps, info vm.MessageInfo, cfg schema.LedgerConfig) (*vm.Response, error) {
	if _, err := l.requireAdmin(deps.Storage, info.Sender); err != nil {
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
		AddAttribute("admin", cfg.Admin).
		AddAttribute("max_batch_size", strconv.FormatUint(cfg.MaxBatchSize, 10)), nil
}
