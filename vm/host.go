package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/everFinance/arname/common"
	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/schema"
)

var log = common.NewLog("vm")

// MaxCallDepth bounds the nesting of sub messages and queries.
const MaxCallDepth = 16

// Host runs contracts on top of a KeyValueDB. Every top level request is
// executed inside one write transaction together with all the messages it
// emits, so a failure anywhere discards every write of the request.
type Host struct {
	db      rawdb.KeyValueDB
	codes   map[uint64]Contract
	chainId string
	api     Api
	now     func() time.Time
}

func NewHost(db rawdb.KeyValueDB, chainId, prefix string) *Host {
	return &Host{
		db:      db,
		codes:   make(map[uint64]Contract),
		chainId: chainId,
		api:     NewApi(prefix),
		now:     time.Now,
	}
}

// Register binds code to codeId. It must be called before the host serves
// requests.
func (h *Host) Register(codeId uint64, code Contract) {
	h.codes[codeId] = code
}

func (h *Host) SetClock(now func() time.Time) {
	h.now = now
}

// Now is the host clock, the source of block times.
func (h *Host) Now() time.Time {
	return h.now()
}

func (h *Host) ChainId() string {
	return h.chainId
}

func (h *Host) Prefix() string {
	return h.api.Prefix()
}

type block struct {
	height uint64
	time   uint64
}

func getUint(tx rawdb.Tx, key string) (uint64, error) {
	data, err := tx.Get(schema.ConstantsBucket, key)
	if errors.Is(err, schema.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(data), 10, 64)
}

func putUint(tx rawdb.Tx, key string, v uint64) error {
	return tx.Put(schema.ConstantsBucket, key, []byte(strconv.FormatUint(v, 10)))
}

func (h *Host) currentBlock(tx rawdb.Tx) (block, error) {
	height, err := getUint(tx, schema.KeyHeight)
	if err != nil {
		return block{}, err
	}
	last, err := getUint(tx, schema.KeyBlockTime)
	if err != nil {
		return block{}, err
	}
	t := uint64(h.now().Unix())
	if t < last {
		t = last
	}
	return block{height: height, time: t}, nil
}

// nextBlock advances height and block time; block time never goes back.
func (h *Host) nextBlock(tx rawdb.Tx) (block, error) {
	blk, err := h.currentBlock(tx)
	if err != nil {
		return blk, err
	}
	blk.height++
	if err := putUint(tx, schema.KeyHeight, blk.height); err != nil {
		return blk, err
	}
	return blk, putUint(tx, schema.KeyBlockTime, blk.time)
}

func txHash(seed []byte, height uint64) string {
	buf := binary.BigEndian.AppendUint64(append([]byte{}, seed...), height)
	h := sha256.Sum256(buf)
	return hex.EncodeToString(h[:])
}

// run executes fn inside one write transaction.
func (h *Host) run(seed []byte, fn func(c *execCtx) ([]byte, []schema.Event, error)) (*schema.TxResult, error) {
	var res *schema.TxResult
	err := h.db.Update(func(tx rawdb.Tx) error {
		blk, err := h.nextBlock(tx)
		if err != nil {
			return err
		}
		c := &execCtx{h: h, tx: tx, blk: blk}
		data, events, err := fn(c)
		if err != nil {
			return err
		}
		res = &schema.TxResult{
			Hash:   txHash(seed, blk.height),
			Height: blk.height,
			Time:   int64(blk.time),
			Events: events,
			Data:   data,
		}
		return nil
	})
	if err != nil {
		log.Debug("tx rolled back", "err", err)
		return nil, err
	}
	return res, nil
}

// Execute delivers msg from sender to contract, moving funds first.
func (h *Host) Execute(sender, contract string, msg []byte, funds schema.Coins) (*schema.TxResult, error) {
	seed := hashSeed("execute", sender, contract, string(msg), funds.String())
	return h.run(seed, func(c *execCtx) ([]byte, []schema.Event, error) {
		return c.execute(0, sender, contract, msg, funds)
	})
}

// Instantiate creates a new contract running codeId and returns its address.
func (h *Host) Instantiate(sender string, codeId uint64, msg []byte, funds schema.Coins, label, admin string) (string, *schema.TxResult, error) {
	var addr string
	seed := hashSeed("instantiate", sender, strconv.FormatUint(codeId, 10), string(msg), funds.String(), label)
	res, err := h.run(seed, func(c *execCtx) (data []byte, events []schema.Event, err error) {
		addr, data, events, err = c.instantiate(0, sender, codeId, msg, funds, label, admin)
		return
	})
	if err != nil {
		return "", nil, err
	}
	return addr, res, nil
}

// Query runs a read-only smart query.
func (h *Host) Query(contract string, msg []byte) (res []byte, err error) {
	err = h.db.View(func(tx rawdb.Tx) error {
		blk, err := h.currentBlock(tx)
		if err != nil {
			return err
		}
		q := &querier{h: h, tx: tx, blk: blk}
		res, err = q.Query(contract, msg)
		return err
	})
	return
}

func (h *Host) ContractInfo(addr string) (info schema.ContractInfo, err error) {
	err = h.db.View(func(tx rawdb.Tx) error {
		info, _, err = h.contractAt(tx, addr)
		return err
	})
	return
}

func (h *Host) Balances(addr string) (coins schema.Coins, err error) {
	err = h.db.View(func(tx rawdb.Tx) error {
		coins, err = balances(tx, addr)
		return err
	})
	return
}

// Block returns the last committed height and block time.
func (h *Host) Block() (height uint64, blockTime int64, err error) {
	err = h.db.View(func(tx rawdb.Tx) error {
		var t uint64
		if height, err = getUint(tx, schema.KeyHeight); err != nil {
			return err
		}
		t, err = getUint(tx, schema.KeyBlockTime)
		blockTime = int64(t)
		return err
	})
	return
}

func (h *Host) contractAt(tx rawdb.Tx, addr string) (schema.ContractInfo, Contract, error) {
	var info schema.ContractInfo
	data, err := tx.Get(schema.ContractsBucket, addr)
	if errors.Is(err, schema.ErrNotExist) {
		return info, nil, fmt.Errorf("%w: %s", schema.ErrContractNotFound, addr)
	}
	if err != nil {
		return info, nil, err
	}
	if err := Decode(data, &info); err != nil {
		return info, nil, err
	}
	code, ok := h.codes[info.CodeId]
	if !ok {
		return info, nil, fmt.Errorf("%w: %d", schema.ErrCodeNotFound, info.CodeId)
	}
	return info, code, nil
}

func hashSeed(parts ...string) []byte {
	buf := make([]byte, 0)
	for _, p := range parts {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(p)))
		buf = append(buf, p...)
	}
	return buf
}
