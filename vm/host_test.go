package vm

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChainId = "arname-test-1"
	testPrefix  = "aura"
	counterCode = 7
)

var errBoom = errors.New("boom")

// counter is a small contract driving the host in tests.
type counter struct{}

type counterMsg struct {
	Incr  *schema.Empty `json:"incr,omitempty"`
	Fail  *schema.Empty `json:"fail,omitempty"`
	Call  *callMsg      `json:"call,omitempty"`
	Spawn *schema.Empty `json:"spawn,omitempty"`
	Send  *sendMsg      `json:"send,omitempty"`
	Loop  *schema.Empty `json:"loop,omitempty"`
}

type callMsg struct {
	Target string          `json:"target"`
	Msg    json.RawMessage `json:"msg"`
	Incr   bool            `json:"incr"` // increment before calling
}

type sendMsg struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type counterQuery struct {
	Count *schema.Empty `json:"count,omitempty"`
	Child *schema.Empty `json:"child,omitempty"`
	Peer  *callMsg      `json:"peer,omitempty"`
}

var (
	countItem = NewItem[uint64]("count")
	childItem = NewItem[string]("child")
	pending   = NewPending()
)

func (counter) Instantiate(deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error) {
	if err := countItem.Save(deps.Storage, 0); err != nil {
		return nil, err
	}
	return NewResponse().AddAttribute("action", "instantiate"), nil
}

func (counter) Execute(deps Deps, env Env, info MessageInfo, raw []byte) (*Response, error) {
	var msg counterMsg
	if err := DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	incr := func() error {
		n, err := countItem.Load(deps.Storage)
		if err != nil {
			return err
		}
		return countItem.Save(deps.Storage, n+1)
	}
	switch {
	case msg.Incr != nil:
		return NewResponse().AddAttribute("action", "incr"), incr()
	case msg.Fail != nil:
		return nil, errBoom
	case msg.Call != nil:
		if msg.Call.Incr {
			if err := incr(); err != nil {
				return nil, err
			}
		}
		return NewResponse().AddMessage(Msg{Execute: &ExecuteMsg{Contract: msg.Call.Target, Msg: msg.Call.Msg}}), nil
	case msg.Spawn != nil:
		sub, err := NewInstantiateMsg(counterCode, "", "child", map[string]string{}, nil)
		if err != nil {
			return nil, err
		}
		if err := pending.Submit(deps.Storage, 1, "child"); err != nil {
			return nil, err
		}
		return NewResponse().AddSubMessage(1, sub), nil
	case msg.Send != nil:
		return NewResponse().AddMessage(NewBankSend(msg.Send.To, schema.NewCoin("uaura", msg.Send.Amount))), nil
	case msg.Loop != nil:
		sub, err := NewExecuteMsg(env.Contract, counterMsg{Loop: &schema.Empty{}}, nil)
		if err != nil {
			return nil, err
		}
		return NewResponse().AddMessage(sub), nil
	}
	return nil, UnknownMsg(raw)
}

func (counter) Query(deps Deps, env Env, raw []byte) ([]byte, error) {
	var msg counterQuery
	if err := DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Count != nil:
		n, err := countItem.Load(deps.Storage)
		if err != nil {
			return nil, err
		}
		return Marshal(n)
	case msg.Child != nil:
		child, err := childItem.Load(deps.Storage)
		if err != nil {
			return nil, err
		}
		return Marshal(child)
	case msg.Peer != nil:
		return deps.Querier.Query(msg.Peer.Target, msg.Peer.Msg)
	}
	return nil, UnknownMsg(raw)
}

func (counter) Reply(deps Deps, env Env, reply Reply) (*Response, error) {
	if _, err := pending.Take(deps.Storage, reply.ID); err != nil {
		return nil, err
	}
	if err := childItem.Save(deps.Storage, reply.Result.ContractAddress); err != nil {
		return nil, err
	}
	return NewResponse().AddAttribute("child", reply.Result.ContractAddress), nil
}

func newTestHost(t *testing.T) *Host {
	h := NewHost(rawdb.NewMemDB(), testChainId, testPrefix)
	h.Register(counterCode, counter{})
	now := time.Unix(1700000000, 0)
	h.SetClock(func() time.Time { return now })
	return h
}

func testAddr(t *testing.T, seed string) string {
	addr, err := EncodeAddress(testPrefix, []byte(seed+"00000000000000000000")[:20])
	require.NoError(t, err)
	return addr
}

func mustJSON(t *testing.T, v interface{}) []byte {
	bz, err := json.Marshal(v)
	require.NoError(t, err)
	return bz
}

func count(t *testing.T, h *Host, addr string) uint64 {
	res, err := h.Query(addr, []byte(`{"count":{}}`))
	require.NoError(t, err)
	n, err := strconv.ParseUint(string(res), 10, 64)
	require.NoError(t, err)
	return n
}

func TestInstantiateAndExecute(t *testing.T) {
	h := newTestHost(t)
	alice := testAddr(t, "alice")

	addr, res, err := h.Instantiate(alice, counterCode, []byte(`{}`), nil, "counter", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Height)
	assert.Equal(t, "instantiate", res.Events[0].Type)
	assert.NoError(t, h.api.AddrValidate(addr))

	info, err := h.ContractInfo(addr)
	assert.NoError(t, err)
	assert.Equal(t, uint64(counterCode), info.CodeId)
	assert.Equal(t, alice, info.Creator)

	res, err = h.Execute(alice, addr, []byte(`{"incr":{}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Height)
	assert.Len(t, res.Hash, 64)
	assert.Equal(t, uint64(1), count(t, h, addr))

	_, err = h.Execute(alice, testAddr(t, "nobody"), []byte(`{"incr":{}}`), nil)
	assert.ErrorIs(t, err, schema.ErrContractNotFound)

	_, err = h.Execute(alice, addr, []byte(`{"nope":{}}`), nil)
	assert.ErrorIs(t, err, schema.ErrUnknownMsg)

	_, err = h.Execute(alice, addr, []byte(`{"incr":{},"fail":{}}`), nil)
	assert.ErrorIs(t, err, schema.ErrMalformedMsg)

	_, _, err = h.Instantiate(alice, 99, []byte(`{}`), nil, "x", "")
	assert.ErrorIs(t, err, schema.ErrCodeNotFound)
}

func TestContractAddressDeterministic(t *testing.T) {
	a1, err := ContractAddress(testPrefix, 1, 1)
	require.NoError(t, err)
	a2, err := ContractAddress(testPrefix, 1, 1)
	require.NoError(t, err)
	a3, err := ContractAddress(testPrefix, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, a3)
}

func TestNestedFailureRollsBackEverything(t *testing.T) {
	h := newTestHost(t)
	alice := testAddr(t, "alice")
	a, _, err := h.Instantiate(alice, counterCode, []byte(`{}`), nil, "a", "")
	require.NoError(t, err)
	b, _, err := h.Instantiate(alice, counterCode, []byte(`{}`), nil, "b", "")
	require.NoError(t, err)

	// a increments itself then calls b which fails
	msg := mustJSON(t, counterMsg{Call: &callMsg{Target: b, Msg: []byte(`{"fail":{}}`), Incr: true}})
	_, err = h.Execute(alice, a, msg, nil)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, uint64(0), count(t, h, a))

	height, _, err := h.Block()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), height)

	// depth first: a, then b
	msg = mustJSON(t, counterMsg{Call: &callMsg{Target: b, Msg: []byte(`{"incr":{}}`), Incr: true}})
	res, err := h.Execute(alice, a, msg, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count(t, h, a))
	assert.Equal(t, uint64(1), count(t, h, b))
	contracts := make([]string, 0)
	for _, ev := range res.Events {
		if ev.Type == "execute" {
			contracts = append(contracts, ev.Contract)
		}
	}
	assert.Equal(t, []string{a, b}, contracts)
}

func TestCallDepth(t *testing.T) {
	h := newTestHost(t)
	alice := testAddr(t, "alice")
	a, _, err := h.Instantiate(alice, counterCode, []byte(`{}`), nil, "a", "")
	require.NoError(t, err)

	_, err = h.Execute(alice, a, []byte(`{"loop":{}}`), nil)
	assert.ErrorIs(t, err, schema.ErrCallDepth)
}

func TestReplyContinuation(t *testing.T) {
	h := newTestHost(t)
	alice := testAddr(t, "alice")
	parent, _, err := h.Instantiate(alice, counterCode, []byte(`{}`), nil, "parent", "")
	require.NoError(t, err)

	res, err := h.Execute(alice, parent, []byte(`{"spawn":{}}`), nil)
	require.NoError(t, err)

	raw, err := h.Query(parent, []byte(`{"child":{}}`))
	require.NoError(t, err)
	var child string
	require.NoError(t, json.Unmarshal(raw, &child))
	info, err := h.ContractInfo(child)
	require.NoError(t, err)
	assert.Equal(t, parent, info.Creator)
	assert.Equal(t, "child", info.Label)

	var replied bool
	for _, ev := range res.Events {
		if ev.Type == "reply" {
			replied = true
		}
	}
	assert.True(t, replied)

	// a reply nobody waits for
	err = h.db.Update(func(tx rawdb.Tx) error {
		_, err := counter{}.Reply(Deps{Storage: newContractStore(tx, parent, false)}, Env{}, Reply{ID: 9})
		return err
	})
	assert.ErrorIs(t, err, schema.ErrUnknownReply)
}

func TestQueryReadOnly(t *testing.T) {
	h := newTestHost(t)
	alice := testAddr(t, "alice")
	a, _, err := h.Instantiate(alice, counterCode, []byte(`{}`), nil, "a", "")
	require.NoError(t, err)
	b, _, err := h.Instantiate(alice, counterCode, []byte(`{}`), nil, "b", "")
	require.NoError(t, err)
	_, err = h.Execute(alice, b, []byte(`{"incr":{}}`), nil)
	require.NoError(t, err)

	// a answers by querying b
	q := mustJSON(t, counterQuery{Peer: &callMsg{Target: b, Msg: []byte(`{"count":{}}`)}})
	res, err := h.Query(a, q)
	require.NoError(t, err)
	assert.Equal(t, "1", string(res))

	err = h.db.Update(func(tx rawdb.Tx) error {
		return newContractStore(tx, a, true).Set("k", []byte("v"))
	})
	assert.ErrorIs(t, err, schema.ErrTxNotWritable)
}

func TestBankFundsAndSend(t *testing.T) {
	h := newTestHost(t)
	alice := testAddr(t, "alice")
	bob := testAddr(t, "bob")
	_, err := h.Genesis([]schema.GenesisBalance{{Address: alice, Denom: "uaura", Amount: "1000"}})
	require.NoError(t, err)
	_, err = h.Genesis(nil)
	assert.ErrorIs(t, err, schema.ErrGenesisDone)
	assert.True(t, h.Initialized())

	a, _, err := h.Instantiate(alice, counterCode, []byte(`{}`), nil, "a", "")
	require.NoError(t, err)

	_, err = h.Execute(alice, a, []byte(`{"incr":{}}`), schema.Coins{schema.NewCoin("uaura", 300)})
	require.NoError(t, err)
	bal, err := h.Balances(a)
	require.NoError(t, err)
	assert.Equal(t, "300", bal.AmountOf("uaura").String())

	_, err = h.Execute(alice, a, []byte(`{"incr":{}}`), schema.Coins{schema.NewCoin("uaura", 701)})
	assert.ErrorIs(t, err, schema.ErrInsufficientBalance)

	// contract pays out of its own balance
	_, err = h.Execute(alice, a, mustJSON(t, counterMsg{Send: &sendMsg{To: bob, Amount: 100}}), nil)
	require.NoError(t, err)
	bal, err = h.Balances(bob)
	require.NoError(t, err)
	assert.Equal(t, "100", bal.AmountOf("uaura").String())

	// overdraft rolls back the funds attached to the same request
	_, err = h.Execute(alice, a, mustJSON(t, counterMsg{Send: &sendMsg{To: bob, Amount: 1000}}), schema.Coins{schema.NewCoin("uaura", 100)})
	assert.ErrorIs(t, err, schema.ErrInsufficientBalance)
	bal, err = h.Balances(alice)
	require.NoError(t, err)
	assert.Equal(t, "700", bal.AmountOf("uaura").String())
}

func TestGenesisContracts(t *testing.T) {
	h := newTestHost(t)
	alice := testAddr(t, "alice")
	res, err := h.Genesis(nil, GenesisContract{Sender: alice, CodeId: counterCode, Label: "main", Msg: []byte(`{}`)})
	require.NoError(t, err)
	addr, err := h.GenesisContractAddress("main")
	require.NoError(t, err)
	assert.Equal(t, addr, res.Events[0].Contract)
	assert.Equal(t, uint64(0), count(t, h, addr))
}
