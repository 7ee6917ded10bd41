package schema

import "encoding/json"

// Empty is the payload of message variants without fields.
type Empty struct{}

type ContractInfo struct {
	Address string `json:"address"`
	CodeId  uint64 `json:"code_id"`
	Creator string `json:"creator"`
	Admin   string `json:"admin,omitempty"`
	Label   string `json:"label"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string      `json:"type"`
	Contract   string      `json:"contract,omitempty"`
	Attributes []Attribute `json:"attributes"`
}

// Attr returns the first attribute value under key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

type TxBody struct {
	ChainId  string          `json:"chain_id"`
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	Funds    Coins           `json:"funds"`
	Sequence uint64          `json:"sequence"`
	Memo     string          `json:"memo,omitempty"`
}

// SignBytes is the digest input of a client transaction signature.
func (b TxBody) SignBytes() ([]byte, error) {
	return json.Marshal(b)
}

type SignedTx struct {
	Body      TxBody `json:"body"`
	PubKey    string `json:"pub_key"`   // hex, compressed secp256k1
	Signature string `json:"signature"` // hex, r||s
}

type TxResult struct {
	Hash   string  `json:"hash"`
	Height uint64  `json:"height"`
	Time   int64   `json:"time"`
	Events []Event `json:"events"`
	Data   []byte  `json:"data,omitempty"`
}

type Account struct {
	Address  string `json:"address"`
	Sequence uint64 `json:"sequence"`
}
