package arname

import (
	"context"
	"encoding/json"

	"github.com/everFinance/arname/schema"
	"github.com/segmentio/kafka-go"
)

const (
	TxTopic = "arname_transaction"
)

type KWriter struct {
	w *kafka.Writer
}

func NewKWriter(topic string, uri string) (*KWriter, error) {
	w := &kafka.Writer{
		Addr:     kafka.TCP(uri),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KWriter{
		w: w,
	}, nil
}

func (kw *KWriter) Write(body []byte) error {
	err := kw.w.WriteMessages(
		context.Background(),
		kafka.Message{
			Value: body,
		},
	)
	return err
}

// WriteTx publishes a committed transaction keyed by its sender.
func (kw *KWriter) WriteTx(ev schema.KafkaTxEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return kw.w.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(ev.Sender),
		Value: body,
	})
}

func (kw *KWriter) Close() {
	kw.w.Close()
}
