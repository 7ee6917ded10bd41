package vm

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/schema"
)

func loadAccount(tx rawdb.Tx, addr string) (schema.Account, error) {
	acc := schema.Account{Address: addr}
	data, err := tx.Get(schema.AccountBucket, addr)
	if errors.Is(err, schema.ErrNotExist) {
		return acc, nil
	}
	if err != nil {
		return acc, err
	}
	err = Decode(data, &acc)
	return acc, err
}

func saveAccount(tx rawdb.Tx, acc schema.Account) error {
	data, err := Encode(acc)
	if err != nil {
		return err
	}
	return tx.Put(schema.AccountBucket, acc.Address, data)
}

func (h *Host) Account(addr string) (acc schema.Account, err error) {
	err = h.db.View(func(tx rawdb.Tx) error {
		acc, err = loadAccount(tx, addr)
		return err
	})
	return
}

// VerifyTx authenticates stx and returns the signer address.
func (h *Host) VerifyTx(stx schema.SignedTx) (string, error) {
	body := stx.Body
	if body.ChainId != h.chainId {
		return "", fmt.Errorf("%w: got %s, want %s", schema.ErrChainIdMismatch, body.ChainId, h.chainId)
	}
	pub, err := hex.DecodeString(strings.TrimPrefix(stx.PubKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: pub_key: %v", schema.ErrTxSignature, err)
	}
	if _, err := crypto.DecompressPubkey(pub); err != nil {
		return "", fmt.Errorf("%w: pub_key: %v", schema.ErrTxSignature, err)
	}
	sender, err := AccountAddress(h.Prefix(), pub)
	if err != nil {
		return "", err
	}
	if sender != body.Sender {
		return "", fmt.Errorf("%w: sender %s does not match pub_key", schema.ErrTxSignature, body.Sender)
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(stx.Signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: signature: %v", schema.ErrTxSignature, err)
	}
	if len(sig) == 65 {
		sig = sig[:64]
	}
	if len(sig) != 64 {
		return "", fmt.Errorf("%w: signature length %d", schema.ErrTxSignature, len(sig))
	}
	signBytes, err := body.SignBytes()
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(signBytes)
	if !crypto.VerifySignature(pub, digest[:], sig) {
		return "", schema.ErrTxSignature
	}
	return sender, nil
}

// DeliverTx authenticates a client transaction and executes it. The
// account sequence is bumped in its own write ahead of execution, so a
// failed transaction still consumes it.
func (h *Host) DeliverTx(stx schema.SignedTx) (*schema.TxResult, error) {
	sender, err := h.VerifyTx(stx)
	if err != nil {
		return nil, err
	}
	body := stx.Body
	if err := h.consumeSequence(sender, body.Sequence); err != nil {
		return nil, err
	}
	seed := hashSeed("tx", stx.PubKey, stx.Signature)
	return h.run(seed, func(c *execCtx) ([]byte, []schema.Event, error) {
		return c.execute(0, sender, body.Contract, body.Msg, body.Funds)
	})
}

func (h *Host) consumeSequence(sender string, seq uint64) error {
	return h.db.Update(func(tx rawdb.Tx) error {
		acc, err := loadAccount(tx, sender)
		if err != nil {
			return err
		}
		if acc.Sequence != seq {
			return fmt.Errorf("%w: got %d, want %d", schema.ErrInvalidSequence, seq, acc.Sequence)
		}
		acc.Sequence++
		return saveAccount(tx, acc)
	})
}

// GenesisContract is instantiated by Genesis and recorded under its label.
type GenesisContract struct {
	Sender string
	CodeId uint64
	Admin  string
	Label  string
	Msg    []byte
}

func genesisContractKey(label string) string {
	return "genesis-contract-" + label
}

// Genesis credits the initial balances and instantiates contracts, once.
func (h *Host) Genesis(balances []schema.GenesisBalance, contracts ...GenesisContract) (*schema.TxResult, error) {
	return h.run(hashSeed("genesis", h.chainId), func(c *execCtx) ([]byte, []schema.Event, error) {
		if _, err := c.tx.Get(schema.ConstantsBucket, schema.KeyGenesis); err == nil {
			return nil, nil, schema.ErrGenesisDone
		}
		events := make([]schema.Event, 0)
		for _, b := range balances {
			if err := h.api.AddrValidate(b.Address); err != nil {
				return nil, nil, err
			}
			coin, err := schema.ParseCoin(b.Denom, b.Amount)
			if err != nil {
				return nil, nil, err
			}
			if err := mint(c.tx, b.Address, schema.Coins{coin}); err != nil {
				return nil, nil, err
			}
			events = append(events, schema.Event{Type: "coinbase", Attributes: []schema.Attribute{
				{Key: "minter", Value: b.Address},
				{Key: "amount", Value: coin.String()},
			}})
		}
		for _, gc := range contracts {
			addr, _, evs, err := c.instantiate(0, gc.Sender, gc.CodeId, gc.Msg, nil, gc.Label, gc.Admin)
			if err != nil {
				return nil, nil, err
			}
			if err := c.tx.Put(schema.ConstantsBucket, genesisContractKey(gc.Label), []byte(addr)); err != nil {
				return nil, nil, err
			}
			events = append(events, evs...)
		}
		return nil, events, c.tx.Put(schema.ConstantsBucket, schema.KeyGenesis, []byte("done"))
	})
}

func (h *Host) Initialized() bool {
	return h.db.Exist(schema.ConstantsBucket, schema.KeyGenesis)
}

// GenesisContractAddress returns the address of the contract instantiated at
// genesis under label.
func (h *Host) GenesisContractAddress(label string) (string, error) {
	data, err := h.db.Get(schema.ConstantsBucket, genesisContractKey(label))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
