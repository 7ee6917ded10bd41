package vm

import (
	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/schema"
)

// Storage is a contract's private key space.
type Storage interface {
	// Get returns schema.ErrNotExist when key is absent.
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
	// Range walks keys with prefix in ascending order, strictly after
	// startAfter when it is set.
	Range(prefix, startAfter string, fn func(key string, value []byte) (bool, error)) error
}

func contractBucket(addr string) string {
	return schema.ContractStorePrefix + addr
}

type contractStore struct {
	tx       rawdb.Tx
	bucket   string
	readOnly bool
}

func newContractStore(tx rawdb.Tx, addr string, readOnly bool) *contractStore {
	return &contractStore{tx: tx, bucket: contractBucket(addr), readOnly: readOnly || !tx.Writable()}
}

func (s *contractStore) Get(key string) ([]byte, error) {
	return s.tx.Get(s.bucket, key)
}

func (s *contractStore) Set(key string, value []byte) error {
	if s.readOnly {
		return schema.ErrTxNotWritable
	}
	return s.tx.Put(s.bucket, key, value)
}

func (s *contractStore) Remove(key string) error {
	if s.readOnly {
		return schema.ErrTxNotWritable
	}
	return s.tx.Delete(s.bucket, key)
}

func (s *contractStore) Range(prefix, startAfter string, fn func(key string, value []byte) (bool, error)) error {
	return s.tx.Iterate(s.bucket, prefix, startAfter, fn)
}
