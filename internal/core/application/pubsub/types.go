package pubsub

import (
	"encoding/json"
	"time"

	"github.com/tdex-network/escrowd/internal/core/domain"
)

type WebhookInfo struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

type eventMessage struct {
	Seq       uint64            `json:"seq"`
	Topic     string            `json:"topic"`
	TradeID   uint64            `json:"trade_id,omitempty"`
	Payload   map[string]string `json:"payload"`
	Timestamp int64             `json:"timestamp"`
	Date      string            `json:"date"`
}

func newEventMessage(event domain.Event) (string, error) {
	buf, err := json.Marshal(eventMessage{
		Seq:       event.Seq,
		Topic:     event.Topic,
		TradeID:   event.TradeID,
		Payload:   event.Payload,
		Timestamp: event.Timestamp,
		Date:      time.Unix(event.Timestamp, 0).UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
