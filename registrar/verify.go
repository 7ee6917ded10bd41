package registrar

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everFinance/arname/schema"
)

// VerifyHash is the digest the backend signs: sha256 of the JSON payload.
// Missing prefixes encode as an empty list.
func VerifyHash(msg schema.VerifyMsg) ([]byte, error) {
	if msg.Register != nil && msg.Register.Bech32Prefixes == nil {
		reg := *msg.Register
		reg.Bech32Prefixes = []string{}
		msg.Register = &reg
	}
	bz, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrMalformedPayload, err)
	}
	h := sha256.Sum256(bz)
	return h[:], nil
}

// SignVerifyMsg produces a 64 byte [R || S] backend signature over msg.
func SignVerifyMsg(key *ecdsa.PrivateKey, msg schema.VerifyMsg) ([]byte, error) {
	hash, err := VerifyHash(msg)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return nil, err
	}
	return sig[:64], nil
}

func parsePubkey(pubkey []byte) (*ecdsa.PublicKey, error) {
	switch len(pubkey) {
	case 33:
		return crypto.DecompressPubkey(pubkey)
	case 65:
		return crypto.UnmarshalPubkey(pubkey)
	}
	return nil, fmt.Errorf("invalid pubkey length %d", len(pubkey))
}

func validatePubkey(pubkey []byte) error {
	if _, err := parsePubkey(pubkey); err != nil {
		return fmt.Errorf("%w: backend pubkey: %v", schema.ErrMalformedPayload, err)
	}
	return nil
}

// verify checks sig against the stored backend key. A recoverable 65 byte
// signature is accepted with its recovery id dropped.
func verify(v schema.Verifier, msg schema.VerifyMsg, sig []byte) error {
	pub, err := parsePubkey(v.BackendPubkey)
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrVerificationFailed, err)
	}
	hash, err := VerifyHash(msg)
	if err != nil {
		return err
	}
	if len(sig) == 65 {
		sig = sig[:64]
	}
	if len(sig) != 64 {
		return fmt.Errorf("%w: length %d", schema.ErrInvalidSignature, len(sig))
	}
	if !crypto.VerifySignature(crypto.FromECDSAPub(pub), hash, sig) {
		return schema.ErrInvalidSignature
	}
	return nil
}
