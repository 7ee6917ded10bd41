package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/everFinance/arname/schema"
	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Encode is the deterministic encoding of persisted state values.
func Encode(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

func Decode(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}

// Item is a singleton record stored under a fixed key.
type Item[T any] struct {
	key string
}

func NewItem[T any](key string) Item[T] {
	return Item[T]{key: key}
}

func (i Item[T]) Load(s Storage) (v T, err error) {
	data, err := s.Get(i.key)
	if err != nil {
		return v, fmt.Errorf("%s: %w", i.key, err)
	}
	err = Decode(data, &v)
	return
}

// MayLoad reports false instead of failing when the item was never saved.
func (i Item[T]) MayLoad(s Storage) (v T, ok bool, err error) {
	v, err = i.Load(s)
	if errors.Is(err, schema.ErrNotExist) {
		return v, false, nil
	}
	return v, err == nil, err
}

func (i Item[T]) Save(s Storage, v T) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	return s.Set(i.key, data)
}

func (i Item[T]) Remove(s Storage) error {
	return s.Remove(i.key)
}

// Map is a keyed collection under a namespace.
type Map[V any] struct {
	ns string
}

func NewMap[V any](namespace string) Map[V] {
	return Map[V]{ns: namespace + "/"}
}

func (m Map[V]) key(k string) string {
	return m.ns + k
}

// Load wraps schema.ErrNotExist when k is absent.
func (m Map[V]) Load(s Storage, k string) (v V, err error) {
	data, err := s.Get(m.key(k))
	if err != nil {
		return v, err
	}
	err = Decode(data, &v)
	return
}

func (m Map[V]) MayLoad(s Storage, k string) (v V, ok bool, err error) {
	v, err = m.Load(s, k)
	if errors.Is(err, schema.ErrNotExist) {
		return v, false, nil
	}
	return v, err == nil, err
}

func (m Map[V]) Has(s Storage, k string) (bool, error) {
	_, err := s.Get(m.key(k))
	if errors.Is(err, schema.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (m Map[V]) Save(s Storage, k string, v V) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	return s.Set(m.key(k), data)
}

func (m Map[V]) Remove(s Storage, k string) error {
	return s.Remove(m.key(k))
}

// Range visits entries whose key starts with prefix, strictly after
// startAfter, stopping after limit entries when limit > 0.
func (m Map[V]) Range(s Storage, prefix, startAfter string, limit int, fn func(k string, v V) error) error {
	after := ""
	if startAfter != "" {
		after = m.key(startAfter)
	}
	n := 0
	return s.Range(m.key(prefix), after, func(key string, data []byte) (bool, error) {
		var v V
		if err := Decode(data, &v); err != nil {
			return false, err
		}
		if err := fn(strings.TrimPrefix(key, m.ns), v); err != nil {
			return false, err
		}
		n++
		return limit <= 0 || n < limit, nil
	})
}

// Keys returns the keys under prefix, strictly after startAfter.
func (m Map[V]) Keys(s Storage, prefix, startAfter string, limit int) ([]string, error) {
	keys := make([]string, 0)
	err := m.Range(s, prefix, startAfter, limit, func(k string, _ V) error {
		keys = append(keys, k)
		return nil
	})
	return keys, err
}

// RemovePrefix deletes every entry whose key starts with prefix.
func (m Map[V]) RemovePrefix(s Storage, prefix string) (int, error) {
	keys, err := m.Keys(s, prefix, "", 0)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := m.Remove(s, k); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}
