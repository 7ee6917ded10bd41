package ledger

import (
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

func (l *Ledger) Query(deps vm.Deps, env vm.Env, raw []byte) ([]byte, error) {
	var msg schema.NameQueryMsg
	if err := vm.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	s := deps.Storage
	switch {
	case msg.ContractInfo != nil:
		return vm.Marshal(schema.ContractInfoResponse{Name: schema.LedgerName, Symbol: schema.LedgerSymbol})
	case msg.Minter != nil:
		minter, err := minterItem.Load(s)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.MinterResponse{Minter: minter})
	case msg.Config != nil:
		cfg, err := configItem.Load(s)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(cfg)
	case msg.Resolver != nil:
		resolver, err := resolverItem.Load(s)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.AddressResponse{Address: resolver})
	case msg.OwnerOf != nil:
		tok, err := loadToken(s, msg.OwnerOf.TokenId)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(ownerOf(tok, env.Time))
	case msg.NftInfo != nil:
		tok, err := loadToken(s, msg.NftInfo.TokenId)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.NftInfoResponse{TokenUri: tok.TokenUri, Extension: tok.Extension})
	case msg.AllNftInfo != nil:
		tok, err := loadToken(s, msg.AllNftInfo.TokenId)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.AllNftInfoResponse{
			Access: ownerOf(tok, env.Time),
			Info:   schema.NftInfoResponse{TokenUri: tok.TokenUri, Extension: tok.Extension},
		})
	case msg.NumTokens != nil:
		n, _, err := countItem.MayLoad(s)
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.NumTokensResponse{Count: n})
	case msg.Tokens != nil:
		q := msg.Tokens
		startAfter := ""
		if q.StartAfter != nil {
			startAfter = q.Owner + sep + *q.StartAfter
		}
		ids := make([]string, 0)
		err := ownerIndex.Range(s, q.Owner+sep, startAfter, schema.PageLimit(q.Limit), func(_ string, id string) error {
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.TokensResponse{Tokens: ids})
	case msg.AllTokens != nil:
		startAfter := ""
		if msg.AllTokens.StartAfter != nil {
			startAfter = *msg.AllTokens.StartAfter
		}
		ids, err := tokens.Keys(s, "", startAfter, schema.PageLimit(msg.AllTokens.Limit))
		if err != nil {
			return nil, err
		}
		return vm.Marshal(schema.TokensResponse{Tokens: ids})
	}
	return nil, vm.UnknownMsg(raw)
}

func ownerOf(tok schema.TokenInfo, now uint64) schema.OwnerOfResponse {
	return schema.OwnerOfResponse{Owner: tok.Owner, Approvals: liveApprovals(tok.Approvals, now)}
}
