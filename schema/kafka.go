package schema

type KafkaTxEvent struct {
	Hash     string  `json:"hash"`
	Height   uint64  `json:"height"`
	Time     int64   `json:"time"`
	Sender   string  `json:"sender"`
	Contract string  `json:"contract"`
	Action   string  `json:"action"`
	Events   []Event `json:"events"`
}
