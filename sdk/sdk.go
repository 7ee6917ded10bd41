package sdk

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everFinance/arname/registrar"
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
)

// SignTx signs body with key. The signature is [R || S] over the sha256 of
// the body's sign bytes.
func SignTx(key *ecdsa.PrivateKey, body schema.TxBody) (schema.SignedTx, error) {
	bz, err := body.SignBytes()
	if err != nil {
		return schema.SignedTx{}, err
	}
	digest := sha256.Sum256(bz)
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return schema.SignedTx{}, err
	}
	return schema.SignedTx{
		Body:      body,
		PubKey:    hex.EncodeToString(crypto.CompressPubkey(&key.PublicKey)),
		Signature: hex.EncodeToString(sig[:64]),
	}, nil
}

type SDK struct {
	Key     *ecdsa.PrivateKey
	Address string
	Info    schema.RespInfo
	Cli     *ArnameCli
}

func NewSDK(arnameUrl string, key *ecdsa.PrivateKey) (*SDK, error) {
	cli := New(arnameUrl)
	info, err := cli.GetInfo()
	if err != nil {
		return nil, err
	}
	addr, err := vm.AccountAddress(info.Bech32Prefix, crypto.CompressPubkey(&key.PublicKey))
	if err != nil {
		return nil, err
	}
	return &SDK{
		Key:     key,
		Address: addr,
		Info:    info,
		Cli:     cli,
	}, nil
}

// Execute signs and submits msg to contract with the account's current
// sequence.
func (s *SDK) Execute(contract string, msg interface{}, funds schema.Coins) (*schema.TxResult, error) {
	bz, err := vm.Marshal(msg)
	if err != nil {
		return nil, err
	}
	acc, err := s.Cli.GetAccount(s.Address)
	if err != nil {
		return nil, err
	}
	stx, err := SignTx(s.Key, schema.TxBody{
		ChainId:  s.Info.ChainId,
		Sender:   s.Address,
		Contract: contract,
		Msg:      bz,
		Funds:    funds,
		Sequence: acc.Sequence,
	})
	if err != nil {
		return nil, err
	}
	return s.Cli.SubmitTx(stx)
}

// Register pays the quoted fee for meta.Durations and registers name.
func (s *SDK) Register(name string, meta schema.Metadata, backendSig []byte) (*schema.TxResult, error) {
	fee, err := s.Cli.GetFee(name, meta.Durations)
	if err != nil {
		return nil, err
	}
	return s.Execute(s.Info.Registrar, schema.RegistrarExecuteMsg{Register: &schema.RegisterMsg{
		Name:             name,
		BackendSignature: backendSig,
		Metadata:         meta,
	}}, schema.Coins{fee})
}

func (s *SDK) Extend(name string, durations uint64, backendSig []byte) (*schema.TxResult, error) {
	fee, err := s.Cli.GetFee(name, durations)
	if err != nil {
		return nil, err
	}
	return s.Execute(s.Info.Registrar, schema.RegistrarExecuteMsg{Extend: &schema.ExtendMsg{
		Name:             name,
		BackendSignature: backendSig,
		Durations:        durations,
	}}, schema.Coins{fee})
}

func (s *SDK) Unregister(names ...string) (*schema.TxResult, error) {
	return s.Execute(s.Info.Registrar, schema.RegistrarExecuteMsg{Unregister: &schema.UnregisterMsg{Names: names}}, nil)
}

func (s *SDK) Withdraw(receiver string, coin schema.Coin) (*schema.TxResult, error) {
	return s.Execute(s.Info.Registrar, schema.RegistrarExecuteMsg{Withdraw: &schema.WithdrawMsg{Receiver: receiver, Coin: coin}}, nil)
}

func (s *SDK) TransferName(recipient, name string) (*schema.TxResult, error) {
	return s.Execute(s.Info.NameContract, schema.NameExecuteMsg{TransferNft: &schema.TransferNftMsg{Recipient: recipient, TokenId: name}}, nil)
}

// Backend signs registration payloads for the registrar's verifier.
type Backend struct {
	Key     *ecdsa.PrivateKey
	ChainId string
}

func NewBackend(key *ecdsa.PrivateKey, chainId string) *Backend {
	return &Backend{Key: key, ChainId: chainId}
}

// Pubkey is the compressed key to install with UpdateVerifier.
func (b *Backend) Pubkey() []byte {
	return crypto.CompressPubkey(&b.Key.PublicKey)
}

func (b *Backend) SignRegister(sender, name string, meta schema.Metadata) ([]byte, error) {
	return registrar.SignVerifyMsg(b.Key, schema.VerifyMsg{Register: &schema.RegisterVerify{
		Name:           name,
		Sender:         sender,
		ChainId:        b.ChainId,
		Bech32Prefixes: meta.Bech32Prefixes,
		Durations:      meta.Durations,
	}})
}

// SignExtend binds the signature to the current expiry, so it cannot be
// replayed after the extension lands.
func (b *Backend) SignExtend(sender, name string, oldExpires, durations uint64) ([]byte, error) {
	return registrar.SignVerifyMsg(b.Key, schema.VerifyMsg{Extend: &schema.ExtendVerify{
		Name:       name,
		Sender:     sender,
		ChainId:    b.ChainId,
		OldExpires: oldExpires,
		Durations:  durations,
	}})
}
