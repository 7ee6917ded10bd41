package rawdb

import (
	"io"

	"github.com/everFinance/arname/common"
)

var log = common.NewLog("rawdb")

type KeyValueDB interface {
	Put(bucket, key string, value interface{}) (err error)

	Get(bucket, key string) (data []byte, err error)

	GetAllKey(bucket string) (keys []string, err error)

	Delete(bucket, key string) (err error)

	Exist(bucket, key string) bool

	// Update runs fn in a single read-write transaction. All writes are
	// discarded when fn returns an error.
	Update(fn func(tx Tx) error) error

	// View runs fn in a read-only transaction.
	View(fn func(tx Tx) error) error

	Close() (err error)

	Type() string
}

// Tx is a transaction scoped view of the store. Values returned by Get
// are owned by the caller.
type Tx interface {
	// Get returns schema.ErrNotExist when the key is absent.
	Get(bucket, key string) ([]byte, error)

	Put(bucket, key string, value []byte) error

	Delete(bucket, key string) error

	// Iterate walks keys with the given prefix in ascending byte order,
	// starting strictly after startAfter when it is not empty. fn returns
	// false to stop. fn must not write to the bucket being iterated.
	Iterate(bucket, prefix, startAfter string, fn func(key string, value []byte) (bool, error)) error

	Writable() bool
}

// Snapshotter is implemented by backends able to stream a consistent copy
// of the whole store.
type Snapshotter interface {
	Snapshot(w io.Writer) (int64, error)
}
