package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/everFinance/arname/schema"
	"golang.org/x/crypto/ripemd160"
)

// DecodeAddress splits a bech32 address into its prefix and payload bytes.
func DecodeAddress(addr string) (string, []byte, error) {
	hrp, data, err := bech32.DecodeToBase256(addr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", schema.ErrBech32, addr, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: %s: empty payload", schema.ErrBech32, addr)
	}
	return hrp, data, nil
}

func EncodeAddress(prefix string, data []byte) (string, error) {
	addr, err := bech32.EncodeFromBase256(prefix, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", schema.ErrBech32, err)
	}
	return addr, nil
}

// ConvertAddress re-encodes addr under another prefix. The payload is kept.
func ConvertAddress(addr, prefix string) (string, error) {
	_, data, err := DecodeAddress(addr)
	if err != nil {
		return "", err
	}
	return EncodeAddress(prefix, data)
}

// AccountAddress derives the address of a compressed secp256k1 public key.
func AccountAddress(prefix string, compressedPubkey []byte) (string, error) {
	sha := sha256.Sum256(compressedPubkey)
	hasher := ripemd160.New()
	hasher.Write(sha[:])
	return EncodeAddress(prefix, hasher.Sum(nil))
}

// ContractAddress is deterministic in the code id and the global contract
// sequence.
func ContractAddress(prefix string, codeId, seq uint64) (string, error) {
	buf := make([]byte, 0, 8+16)
	buf = append(buf, []byte("contract")...)
	buf = binary.BigEndian.AppendUint64(buf, codeId)
	buf = binary.BigEndian.AppendUint64(buf, seq)
	h := sha256.Sum256(buf)
	return EncodeAddress(prefix, h[:20])
}

// Api exposes address helpers to contracts.
type Api struct {
	prefix string
}

func NewApi(prefix string) Api {
	return Api{prefix: prefix}
}

func (a Api) Prefix() string {
	return a.prefix
}

// AddrValidate checks addr is a bech32 address under the host prefix.
func (a Api) AddrValidate(addr string) error {
	hrp, _, err := DecodeAddress(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrInvalidAddress, err)
	}
	if hrp != a.prefix {
		return fmt.Errorf("%w: %s: expected prefix %s", schema.ErrInvalidAddress, addr, a.prefix)
	}
	return nil
}

// AddrConvert re-encodes addr under prefix.
func (a Api) AddrConvert(addr, prefix string) (string, error) {
	return ConvertAddress(addr, prefix)
}
