package vm

import (
	"encoding/json"

	"github.com/everFinance/arname/schema"
)

type Env struct {
	ChainId  string
	Height   uint64
	Time     uint64 // unix seconds
	Contract string
}

type MessageInfo struct {
	Sender string
	Funds  schema.Coins
}

type ReplyOn int

const (
	ReplyNever ReplyOn = iota
	ReplySuccess
)

// Msg is one of Execute, Instantiate or BankSend.
type Msg struct {
	Execute     *ExecuteMsg
	Instantiate *InstantiateMsg
	BankSend    *BankSendMsg
}

type ExecuteMsg struct {
	Contract string
	Msg      []byte
	Funds    schema.Coins
}

type InstantiateMsg struct {
	CodeId uint64
	Admin  string
	Msg    []byte
	Funds  schema.Coins
	Label  string
}

type BankSendMsg struct {
	To     string
	Amount schema.Coins
}

type SubMsg struct {
	ID      uint64
	Msg     Msg
	ReplyOn ReplyOn
}

type Response struct {
	Messages   []SubMsg
	Attributes []schema.Attribute
	Data       []byte
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, schema.Attribute{Key: key, Value: value})
	return r
}

// AddMessage appends a fire-and-forget sub message.
func (r *Response) AddMessage(msg Msg) *Response {
	r.Messages = append(r.Messages, SubMsg{Msg: msg, ReplyOn: ReplyNever})
	return r
}

// AddSubMessage appends a sub message whose success is reported back to
// the emitting contract's Reply under id.
func (r *Response) AddSubMessage(id uint64, msg Msg) *Response {
	r.Messages = append(r.Messages, SubMsg{ID: id, Msg: msg, ReplyOn: ReplySuccess})
	return r
}

func (r *Response) SetData(data []byte) *Response {
	r.Data = data
	return r
}

type Reply struct {
	ID     uint64
	Result SubMsgResult
}

type SubMsgResult struct {
	ContractAddress string // set for Instantiate
	Data            []byte
	Events          []schema.Event
}

func NewExecuteMsg(contract string, msg interface{}, funds schema.Coins) (Msg, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return Msg{}, err
	}
	return Msg{Execute: &ExecuteMsg{Contract: contract, Msg: bz, Funds: funds}}, nil
}

func NewInstantiateMsg(codeId uint64, admin, label string, msg interface{}, funds schema.Coins) (Msg, error) {
	bz, err := json.Marshal(msg)
	if err != nil {
		return Msg{}, err
	}
	return Msg{Instantiate: &InstantiateMsg{CodeId: codeId, Admin: admin, Msg: bz, Funds: funds, Label: label}}, nil
}

func NewBankSend(to string, amount ...schema.Coin) Msg {
	return Msg{BankSend: &BankSendMsg{To: to, Amount: amount}}
}
