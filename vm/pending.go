package vm

import (
	"fmt"
	"strconv"

	"github.com/everFinance/arname/schema"
)

// Pending is the table of sub messages awaiting a Reply, keyed by reply
// id. It lives in the emitting contract's own storage.
type Pending struct {
	m Map[string]
}

func NewPending() Pending {
	return Pending{m: NewMap[string]("pending_reply")}
}

// Submit records that reply id is expected, tagged with label.
func (p Pending) Submit(s Storage, id uint64, label string) error {
	return p.m.Save(s, strconv.FormatUint(id, 10), label)
}

// Take removes and returns the entry for id.
func (p Pending) Take(s Storage, id uint64) (string, error) {
	key := strconv.FormatUint(id, 10)
	label, ok, err := p.m.MayLoad(s, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %d", schema.ErrUnknownReply, id)
	}
	return label, p.m.Remove(s, key)
}
