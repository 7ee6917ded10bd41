package arname

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/everFinance/arname/schema"
	"github.com/tidwall/gjson"
)

// txAction is the top level variant of an execute message.
func txAction(msg []byte) string {
	action := "unknown"
	gjson.ParseBytes(msg).ForEach(func(key, _ gjson.Result) bool {
		action = key.String()
		return false
	})
	return action
}

// failedTxHash identifies a rejected transaction, which has no height.
func failedTxHash(stx schema.SignedTx) string {
	bz, _ := stx.Body.SignBytes()
	h := sha256.Sum256(append(bz, stx.Signature...))
	return hex.EncodeToString(h[:])
}

// DeliverTx runs a signed transaction and schedules its side effects:
// history, kafka and metrics. The query cache is reset before the lock
// is released.
func (a *Arname) DeliverTx(stx schema.SignedTx) (*schema.TxResult, error) {
	start := time.Now()
	action := txAction(stx.Body.Msg)

	a.txLock.Lock()
	res, err := a.host.DeliverTx(stx)
	if err == nil {
		if err := a.cache.Reset(); err != nil {
			log.Error("a.cache.Reset()", "err", err)
		}
	}
	a.txLock.Unlock()

	status := schema.TxSuccess
	if err != nil {
		status = schema.TxFailed
		log.Debug("tx failed", "sender", stx.Body.Sender, "action", action, "err", err)
	}
	metricTx(action, status, start)

	// unauthenticated senders leave no history
	if errors.Is(err, schema.ErrTxSignature) || errors.Is(err, schema.ErrChainIdMismatch) {
		return nil, err
	}
	a.afterDeliver(stx, action, res, err)
	return res, err
}

func (a *Arname) afterDeliver(stx schema.SignedTx, action string, res *schema.TxResult, txErr error) {
	rec := schema.TxRecord{
		Hash:     failedTxHash(stx),
		Sender:   stx.Body.Sender,
		Contract: stx.Body.Contract,
		Action:   action,
		Status:   schema.TxFailed,
	}
	if txErr != nil {
		rec.ErrMsg = txErr.Error()
	} else {
		rec.Hash = res.Hash
		rec.Height = res.Height
		rec.Status = schema.TxSuccess
		events, err := json.Marshal(res.Events)
		if err != nil {
			log.Error("json.Marshal(res.Events)", "err", err)
		}
		rec.Events = events
	}

	err := a.pool.Submit(func() {
		if a.wdb != nil {
			if err := a.wdb.InsertTx(rec); err != nil {
				log.Error("a.wdb.InsertTx(rec)", "err", err, "hash", rec.Hash)
			}
		}
		if a.kWriter != nil && txErr == nil {
			ev := schema.KafkaTxEvent{
				Hash:     res.Hash,
				Height:   res.Height,
				Time:     res.Time,
				Sender:   rec.Sender,
				Contract: rec.Contract,
				Action:   action,
				Events:   res.Events,
			}
			if err := a.kWriter.WriteTx(ev); err != nil {
				log.Error("a.kWriter.WriteTx(ev)", "err", err, "hash", ev.Hash)
			}
		}
	})
	if err != nil {
		log.Error("a.pool.Submit", "err", err)
	}
}

// Query answers a smart query through the query cache.
func (a *Arname) Query(contract string, msg []byte) ([]byte, error) {
	a.txLock.RLock()
	defer a.txLock.RUnlock()
	if res, ok := a.cache.GetQuery(contract, msg); ok {
		return res, nil
	}
	res, err := a.host.Query(contract, msg)
	if err != nil {
		return nil, err
	}
	a.cache.SetQuery(contract, msg, res)
	return res, nil
}

func (a *Arname) queryJSON(contract string, msg, out interface{}) error {
	bz, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	res, err := a.Query(contract, bz)
	if err != nil {
		return err
	}
	return json.Unmarshal(res, out)
}
