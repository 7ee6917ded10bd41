package rawdb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"reflect"
	"time"

	"github.com/everFinance/arname/schema"
	bolt "go.etcd.io/bbolt"
)

const (
	boltAllocSize = 8 * 1024 * 1024
	boltName      = "arname.db"
	BoltType      = "boltdb"
)

type BoltDB struct {
	Db *bolt.DB
}

func NewBoltDB(boltDirPath string) (*BoltDB, error) {
	if len(boltDirPath) == 0 {
		return nil, errors.New("boltDb dir path can not null")
	}
	if err := os.MkdirAll(boltDirPath, os.ModePerm); err != nil {
		return nil, err
	}

	Db, err := bolt.Open(path.Join(boltDirPath, boltName), 0660, &bolt.Options{Timeout: 2 * time.Second, InitialMmapSize: 10e6})
	if err != nil {
		if err == bolt.ErrTimeout {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	Db.AllocSize = boltAllocSize
	boltDB := &BoltDB{
		Db: Db,
	}
	// contract storage buckets are created lazily on first write
	if err := boltDB.Db.Update(func(tx *bolt.Tx) error {
		bucketNames := []string{
			schema.ContractsBucket,
			schema.BankBucket,
			schema.AccountBucket,
			schema.ConstantsBucket,
		}
		return createBuckets(tx, bucketNames)
	}); err != nil {
		return nil, err
	}
	log.Info("bolt db opened", "path", path.Join(boltDirPath, boltName))
	return boltDB, nil
}

func (s *BoltDB) Type() string {
	return BoltType
}

func (s *BoltDB) Put(bucket, key string, value interface{}) (err error) {
	val, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unknown data type: %s, db: bolt db", reflect.TypeOf(value))
	}
	return s.Update(func(tx Tx) error {
		return tx.Put(bucket, key, val)
	})
}

func (s *BoltDB) Get(bucket, key string) (data []byte, err error) {
	err = s.View(func(tx Tx) error {
		data, err = tx.Get(bucket, key)
		return err
	})
	return
}

func (s *BoltDB) GetAllKey(bucket string) (keys []string, err error) {
	keys = make([]string, 0)
	err = s.View(func(tx Tx) error {
		return tx.Iterate(bucket, "", "", func(k string, _ []byte) (bool, error) {
			keys = append(keys, k)
			return true, nil
		})
	})
	return
}

func (s *BoltDB) Delete(bucket, key string) (err error) {
	return s.Update(func(tx Tx) error {
		return tx.Delete(bucket, key)
	})
}

func (s *BoltDB) Exist(bucket, key string) bool {
	_, err := s.Get(bucket, key)
	return err == nil
}

func (s *BoltDB) Update(fn func(tx Tx) error) error {
	return s.Db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (s *BoltDB) View(fn func(tx Tx) error) error {
	return s.Db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// Snapshot writes a consistent copy of the database file to w.
func (s *BoltDB) Snapshot(w io.Writer) (n int64, err error) {
	err = s.Db.View(func(tx *bolt.Tx) error {
		n, err = tx.WriteTo(w)
		return err
	})
	return
}

func (s *BoltDB) Close() (err error) {
	return s.Db.Close()
}

type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) Writable() bool {
	return t.tx.Writable()
}

func (t *boltTx) Get(bucket, key string) ([]byte, error) {
	bkt := t.tx.Bucket([]byte(bucket))
	if bkt == nil {
		return nil, schema.ErrNotExist
	}
	data := bkt.Get([]byte(key))
	if data == nil {
		return nil, schema.ErrNotExist
	}
	// bolt memory is only valid for the life of the transaction
	return append([]byte{}, data...), nil
}

func (t *boltTx) Put(bucket, key string, value []byte) error {
	bkt, err := t.tx.CreateBucketIfNotExists([]byte(bucket))
	if err != nil {
		return err
	}
	return bkt.Put([]byte(key), value)
}

func (t *boltTx) Delete(bucket, key string) error {
	bkt := t.tx.Bucket([]byte(bucket))
	if bkt == nil {
		return nil
	}
	return bkt.Delete([]byte(key))
}

func (t *boltTx) Iterate(bucket, prefix, startAfter string, fn func(key string, value []byte) (bool, error)) error {
	bkt := t.tx.Bucket([]byte(bucket))
	if bkt == nil {
		return nil
	}
	pre := []byte(prefix)
	c := bkt.Cursor()
	var k, v []byte
	if startAfter != "" && startAfter >= prefix {
		k, v = c.Seek([]byte(startAfter))
		if k != nil && string(k) == startAfter {
			k, v = c.Next()
		}
	} else {
		k, v = c.Seek(pre)
	}
	for ; k != nil && bytes.HasPrefix(k, pre); k, v = c.Next() {
		if v == nil { // nested bucket
			continue
		}
		ok, err := fn(string(k), append([]byte{}, v...))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

func createBuckets(tx *bolt.Tx, buckets []string) error {
	for _, bucket := range buckets {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
			return err
		}
	}
	return nil
}
