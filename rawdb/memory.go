package rawdb

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/everFinance/arname/schema"
)

const MemoryType = "memory"

// MemDB is a volatile KeyValueDB with the same transaction semantics as
// BoltDB: one writer at a time and writes buffered until commit.
type MemDB struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{buckets: make(map[string]map[string][]byte)}
}

func (m *MemDB) Type() string {
	return MemoryType
}

func (m *MemDB) Put(bucket, key string, value interface{}) error {
	val, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unknown data type: %s, db: memory db", reflect.TypeOf(value))
	}
	return m.Update(func(tx Tx) error {
		return tx.Put(bucket, key, val)
	})
}

func (m *MemDB) Get(bucket, key string) (data []byte, err error) {
	err = m.View(func(tx Tx) error {
		data, err = tx.Get(bucket, key)
		return err
	})
	return
}

func (m *MemDB) GetAllKey(bucket string) (keys []string, err error) {
	keys = make([]string, 0)
	err = m.View(func(tx Tx) error {
		return tx.Iterate(bucket, "", "", func(k string, _ []byte) (bool, error) {
			keys = append(keys, k)
			return true, nil
		})
	})
	return
}

func (m *MemDB) Delete(bucket, key string) error {
	return m.Update(func(tx Tx) error {
		return tx.Delete(bucket, key)
	})
}

func (m *MemDB) Exist(bucket, key string) bool {
	_, err := m.Get(bucket, key)
	return err == nil
}

func (m *MemDB) Update(fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{db: m, writable: true, dirty: make(map[string]map[string]*memEntry)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (m *MemDB) View(fn func(tx Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTx{db: m})
}

func (m *MemDB) Close() error {
	return nil
}

type memEntry struct {
	value   []byte
	deleted bool
}

type memTx struct {
	db       *MemDB
	writable bool
	dirty    map[string]map[string]*memEntry
}

func (t *memTx) Writable() bool {
	return t.writable
}

func (t *memTx) lookup(bucket, key string) ([]byte, bool) {
	if e, ok := t.dirty[bucket][key]; ok {
		return e.value, !e.deleted
	}
	v, ok := t.db.buckets[bucket][key]
	return v, ok
}

func (t *memTx) Get(bucket, key string) ([]byte, error) {
	v, ok := t.lookup(bucket, key)
	if !ok {
		return nil, schema.ErrNotExist
	}
	return append([]byte{}, v...), nil
}

func (t *memTx) write(bucket, key string, e *memEntry) error {
	if !t.writable {
		return schema.ErrTxNotWritable
	}
	if t.dirty[bucket] == nil {
		t.dirty[bucket] = make(map[string]*memEntry)
	}
	t.dirty[bucket][key] = e
	return nil
}

func (t *memTx) Put(bucket, key string, value []byte) error {
	return t.write(bucket, key, &memEntry{value: append([]byte{}, value...)})
}

func (t *memTx) Delete(bucket, key string) error {
	return t.write(bucket, key, &memEntry{deleted: true})
}

func (t *memTx) Iterate(bucket, prefix, startAfter string, fn func(key string, value []byte) (bool, error)) error {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	collect := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		if !strings.HasPrefix(k, prefix) || (startAfter != "" && k <= startAfter) {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range t.db.buckets[bucket] {
		collect(k)
	}
	for k := range t.dirty[bucket] {
		collect(k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, ok := t.lookup(bucket, k)
		if !ok {
			continue
		}
		next, err := fn(k, append([]byte{}, v...))
		if err != nil {
			return err
		}
		if !next {
			return nil
		}
	}
	return nil
}

func (t *memTx) commit() {
	for bucket, entries := range t.dirty {
		bkt := t.db.buckets[bucket]
		if bkt == nil {
			bkt = make(map[string][]byte)
			t.db.buckets[bucket] = bkt
		}
		for k, e := range entries {
			if e.deleted {
				delete(bkt, k)
			} else {
				bkt[k] = e.value
			}
		}
	}
}
