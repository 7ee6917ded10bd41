package schema

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TxSuccess = "success"
	TxFailed  = "failed"
)

type TxRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Hash     string         `gorm:"unique" json:"hash"`
	Height   uint64         `json:"height"`
	Sender   string         `gorm:"index:idx1" json:"sender"`
	Contract string         `json:"contract"`
	Action   string         `json:"action"` // top level msg variant
	Status   string         `json:"status"` // "success", "failed"
	ErrMsg   string         `json:"errMsg"`
	Events   datatypes.JSON `json:"events"` // json.marshal([]Event)
}
