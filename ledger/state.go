package ledger

import (
	"errors"
	"fmt"

	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

const (
	sep = "\x00"

	resolverReplyId = 1
	resolverLabel   = "resolver"
)

var (
	configItem   = vm.NewItem[schema.LedgerConfig]("config")
	minterItem   = vm.NewItem[string]("minter")
	resolverItem = vm.NewItem[string]("resolver")
	countItem    = vm.NewItem[uint64]("num_tokens")

	tokens = vm.NewMap[schema.TokenInfo]("tokens")
	// owner+sep+token id -> token id
	ownerIndex = vm.NewMap[string]("tokens__owner")

	pending = vm.NewPending()
)

func loadToken(s vm.Storage, id string) (schema.TokenInfo, error) {
	tok, err := tokens.Load(s, id)
	if errors.Is(err, schema.ErrNotExist) {
		return tok, fmt.Errorf("%w: %s", schema.ErrTokenNotFound, id)
	}
	return tok, err
}

// saveToken stores tok and moves its owner index entry from prevOwner.
func saveToken(s vm.Storage, id string, tok schema.TokenInfo, prevOwner string) error {
	if prevOwner != "" && prevOwner != tok.Owner {
		if err := ownerIndex.Remove(s, prevOwner+sep+id); err != nil {
			return err
		}
	}
	if err := tokens.Save(s, id, tok); err != nil {
		return err
	}
	return ownerIndex.Save(s, tok.Owner+sep+id, id)
}

func addToken(s vm.Storage, id string, tok schema.TokenInfo) error {
	has, err := tokens.Has(s, id)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", schema.ErrAlreadyMinted, id)
	}
	if err := saveToken(s, id, tok, ""); err != nil {
		return err
	}
	return addCount(s, 1)
}

func removeToken(s vm.Storage, id string) (schema.TokenInfo, error) {
	tok, err := loadToken(s, id)
	if err != nil {
		return tok, err
	}
	if err := tokens.Remove(s, id); err != nil {
		return tok, err
	}
	if err := ownerIndex.Remove(s, tok.Owner+sep+id); err != nil {
		return tok, err
	}
	return tok, addCount(s, -1)
}

func addCount(s vm.Storage, delta int) error {
	n, _, err := countItem.MayLoad(s)
	if err != nil {
		return err
	}
	if delta < 0 {
		n -= uint64(-delta)
	} else {
		n += uint64(delta)
	}
	return countItem.Save(s, n)
}

// liveApprovals drops approvals expired at now.
func liveApprovals(approvals []schema.Approval, now uint64) []schema.Approval {
	out := make([]schema.Approval, 0, len(approvals))
	for _, a := range approvals {
		if a.Expires == 0 || a.Expires > now {
			out = append(out, a)
		}
	}
	return out
}

func batchLimit(cfg schema.LedgerConfig) int {
	if cfg.MaxBatchSize == 0 {
		return int(schema.DefaultBatchSize)
	}
	return int(cfg.MaxBatchSize)
}
