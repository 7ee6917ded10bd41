package schema

import "encoding/json"

const (
	AllowMaxReqBodySize  = 1024 * 1024      // 1 MB
	AllowMaxRespDataSize = 10 * 1024 * 1024 // 10 MB
)

type RespErr struct {
	Err string `json:"error"`
}

func (r RespErr) Error() string {
	return r.Err
}

type RespInfo struct {
	ChainId      string `json:"chainId"`
	Bech32Prefix string `json:"bech32Prefix"`
	Height       uint64 `json:"height"`
	BlockTime    int64  `json:"blockTime"`
	Registrar    string `json:"registrar"`
	NameContract string `json:"nameContract"`
	Resolver     string `json:"resolver"`
}

type RespAccount struct {
	Address  string `json:"address"`
	Sequence uint64 `json:"sequence"`
}

type RespBalance struct {
	Address  string `json:"address"`
	Balances Coins  `json:"balances"`
}

type RespExpired struct {
	Now   int64                  `json:"now"`
	Names []RegistrationResponse `json:"names"`
}

type RespTxs struct {
	Txs []TxRecord `json:"txs"`
}

// ReqQuery is the body of POST /query/:contract.
type ReqQuery struct {
	Msg json.RawMessage `json:"msg"`
}
