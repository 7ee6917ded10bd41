package vm

import (
	"fmt"
	"strconv"

	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/schema"
)

// execCtx carries one write transaction through a message tree.
type execCtx struct {
	h   *Host
	tx  rawdb.Tx
	blk block
}

func (c *execCtx) env(contract string) Env {
	return Env{ChainId: c.h.chainId, Height: c.blk.height, Time: c.blk.time, Contract: contract}
}

func (c *execCtx) deps(contract string) Deps {
	return Deps{
		Storage: newContractStore(c.tx, contract, false),
		Querier: &querier{h: c.h, tx: c.tx, blk: c.blk},
		Api:     c.h.api,
	}
}

func contractEvent(typ, addr string, attrs ...schema.Attribute) schema.Event {
	return schema.Event{
		Type:       typ,
		Contract:   addr,
		Attributes: append([]schema.Attribute{{Key: "_contract_address", Value: addr}}, attrs...),
	}
}

func (c *execCtx) execute(depth int, sender, addr string, msg []byte, funds schema.Coins) ([]byte, []schema.Event, error) {
	if depth > MaxCallDepth {
		return nil, nil, schema.ErrCallDepth
	}
	_, code, err := c.h.contractAt(c.tx, addr)
	if err != nil {
		return nil, nil, err
	}
	events := []schema.Event{contractEvent("execute", addr)}
	if len(funds) > 0 {
		if err := transfer(c.tx, sender, addr, funds); err != nil {
			return nil, nil, err
		}
		events = append(events, transferEvent(sender, addr, funds))
	}

	resp, err := code.Execute(c.deps(addr), c.env(addr), MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		return nil, nil, err
	}
	return c.handleResponse(depth, addr, code, resp, events)
}

func (c *execCtx) instantiate(depth int, sender string, codeId uint64, msg []byte, funds schema.Coins, label, admin string) (string, []byte, []schema.Event, error) {
	if depth > MaxCallDepth {
		return "", nil, nil, schema.ErrCallDepth
	}
	code, ok := c.h.codes[codeId]
	if !ok {
		return "", nil, nil, fmt.Errorf("%w: %d", schema.ErrCodeNotFound, codeId)
	}
	seq, err := getUint(c.tx, schema.KeyContractSeq)
	if err != nil {
		return "", nil, nil, err
	}
	seq++
	if err := putUint(c.tx, schema.KeyContractSeq, seq); err != nil {
		return "", nil, nil, err
	}
	addr, err := ContractAddress(c.h.Prefix(), codeId, seq)
	if err != nil {
		return "", nil, nil, err
	}
	info := schema.ContractInfo{Address: addr, CodeId: codeId, Creator: sender, Admin: admin, Label: label}
	data, err := Encode(info)
	if err != nil {
		return "", nil, nil, err
	}
	if err := c.tx.Put(schema.ContractsBucket, addr, data); err != nil {
		return "", nil, nil, err
	}

	events := []schema.Event{contractEvent("instantiate", addr, schema.Attribute{Key: "code_id", Value: strconv.FormatUint(codeId, 10)})}
	if len(funds) > 0 {
		if err := transfer(c.tx, sender, addr, funds); err != nil {
			return "", nil, nil, err
		}
		events = append(events, transferEvent(sender, addr, funds))
	}

	resp, err := code.Instantiate(c.deps(addr), c.env(addr), MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		return "", nil, nil, err
	}
	data, events, err = c.handleResponse(depth, addr, code, resp, events)
	return addr, data, events, err
}

// handleResponse records the attributes of resp and runs its messages
// depth first, in order, calling Reply after each successful sub message
// that asked for one.
func (c *execCtx) handleResponse(depth int, addr string, code Contract, resp *Response, events []schema.Event) ([]byte, []schema.Event, error) {
	if resp == nil {
		return nil, events, nil
	}
	if len(resp.Attributes) > 0 {
		events = append(events, contractEvent("wasm", addr, resp.Attributes...))
	}
	data := resp.Data
	for _, sub := range resp.Messages {
		result, subEvents, err := c.dispatch(depth+1, addr, sub.Msg)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, subEvents...)
		if sub.ReplyOn != ReplySuccess {
			continue
		}

		rresp, err := code.Reply(c.deps(addr), c.env(addr), Reply{ID: sub.ID, Result: result})
		if err != nil {
			return nil, nil, err
		}
		events = append(events, contractEvent("reply", addr, schema.Attribute{Key: "id", Value: strconv.FormatUint(sub.ID, 10)}))
		rdata, rEvents, err := c.handleResponse(depth+1, addr, code, rresp, nil)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, rEvents...)
		if rdata != nil {
			data = rdata
		}
	}
	return data, events, nil
}

func (c *execCtx) dispatch(depth int, sender string, msg Msg) (SubMsgResult, []schema.Event, error) {
	switch {
	case msg.Execute != nil:
		m := msg.Execute
		data, events, err := c.execute(depth, sender, m.Contract, m.Msg, m.Funds)
		return SubMsgResult{Data: data, Events: events}, events, err
	case msg.Instantiate != nil:
		m := msg.Instantiate
		addr, data, events, err := c.instantiate(depth, sender, m.CodeId, m.Msg, m.Funds, m.Label, m.Admin)
		return SubMsgResult{ContractAddress: addr, Data: data, Events: events}, events, err
	case msg.BankSend != nil:
		m := msg.BankSend
		if err := transfer(c.tx, sender, m.To, m.Amount); err != nil {
			return SubMsgResult{}, nil, err
		}
		events := []schema.Event{transferEvent(sender, m.To, m.Amount)}
		return SubMsgResult{Events: events}, events, nil
	}
	return SubMsgResult{}, nil, fmt.Errorf("%w: empty sub message", schema.ErrMalformedMsg)
}

type querier struct {
	h     *Host
	tx    rawdb.Tx
	blk   block
	depth int
}

func (q *querier) Query(contract string, msg []byte) ([]byte, error) {
	if q.depth >= MaxCallDepth {
		return nil, schema.ErrCallDepth
	}
	_, code, err := q.h.contractAt(q.tx, contract)
	if err != nil {
		return nil, err
	}
	deps := Deps{
		Storage: newContractStore(q.tx, contract, true),
		Querier: &querier{h: q.h, tx: q.tx, blk: q.blk, depth: q.depth + 1},
		Api:     q.h.api,
	}
	env := Env{ChainId: q.h.chainId, Height: q.blk.height, Time: q.blk.time, Contract: contract}
	return code.Query(deps, env, msg)
}
