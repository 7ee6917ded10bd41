package vm

import (
	"encoding/json"
	"fmt"

	"github.com/everFinance/arname/schema"
)

// Contract is the code behind a component. Implementations keep no state
// of their own; everything persistent goes through deps.Storage.
type Contract interface {
	Instantiate(deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error)
	Execute(deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error)
	Query(deps Deps, env Env, msg []byte) ([]byte, error)
	Reply(deps Deps, env Env, reply Reply) (*Response, error)
}

type Deps struct {
	Storage Storage
	Querier Querier
	Api     Api
}

// Querier runs read-only smart queries against other contracts inside the
// current transaction.
type Querier interface {
	Query(contract string, msg []byte) ([]byte, error)
}

// QueryJSON marshals msg, queries contract and decodes the answer into out.
func QueryJSON(q Querier, contract string, msg, out interface{}) error {
	bz, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	res, err := q.Query(contract, bz)
	if err != nil {
		return err
	}
	return json.Unmarshal(res, out)
}

// DecodeMsg decodes a single-variant JSON message into the tagged union out.
func DecodeMsg(raw []byte, out interface{}) error {
	variants := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &variants); err != nil {
		return fmt.Errorf("%w: %v", schema.ErrMalformedMsg, err)
	}
	if len(variants) != 1 {
		return fmt.Errorf("%w: expected exactly one variant, got %d", schema.ErrMalformedMsg, len(variants))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", schema.ErrMalformedMsg, err)
	}
	return nil
}

// UnknownMsg is returned by contracts for variants they do not handle.
func UnknownMsg(raw []byte) error {
	variants := make(map[string]json.RawMessage)
	_ = json.Unmarshal(raw, &variants)
	names := make([]string, 0, len(variants))
	for k := range variants {
		names = append(names, k)
	}
	return fmt.Errorf("%w: %v", schema.ErrUnknownMsg, names)
}

// Marshal is json.Marshal for query responses.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeJSON decodes a plain JSON payload such as an instantiate message.
func DecodeJSON(raw []byte, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", schema.ErrMalformedMsg, err)
	}
	return nil
}
