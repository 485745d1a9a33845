package domain

import (
	"fmt"
	"time"
)

const (
	TopicInitialized          = "initialized"
	TopicTradeCreated         = "created"
	TopicTradeFunded          = "funded"
	TopicTradeCompleted       = "completed"
	TopicTradeConfirmed       = "confirmed"
	TopicDisputeRaised        = "dispute_raised"
	TopicDisputeResolved      = "dispute_resolved"
	TopicTradeCancelled       = "cancelled"
	TopicArbitratorRegistered = "arbitrator_registered"
	TopicArbitratorRemoved    = "arbitrator_removed"
	TopicFeeUpdated           = "fee_updated"
	TopicFeesWithdrawn        = "fees_withdrawn"
)

// EventTopics lists every topic the engine publishes to.
var EventTopics = []string{
	TopicInitialized,
	TopicTradeCreated,
	TopicTradeFunded,
	TopicTradeCompleted,
	TopicTradeConfirmed,
	TopicDisputeRaised,
	TopicDisputeResolved,
	TopicTradeCancelled,
	TopicArbitratorRegistered,
	TopicArbitratorRemoved,
	TopicFeeUpdated,
	TopicFeesWithdrawn,
}

// IsValidTopic returns whether the given topic is one of those published by
// the engine.
func IsValidTopic(topic string) bool {
	for _, t := range EventTopics {
		if t == topic {
			return true
		}
	}
	return false
}

// Event is an entry of the append-only event log. Seq is assigned by the
// repository when the event is appended.
type Event struct {
	Seq       uint64
	Topic     string
	TradeID   uint64
	Payload   map[string]string
	Timestamp int64
}

func newEvent(topic string, tradeID uint64, payload map[string]string) Event {
	if tradeID > 0 {
		payload["trade_id"] = u64(tradeID)
	}
	return Event{
		Topic:     topic,
		TradeID:   tradeID,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}
}

func NewInitializedEvent(cfg Config) Event {
	return newEvent(TopicInitialized, 0, map[string]string{
		"admin":       cfg.Admin,
		"value_asset": cfg.ValueAsset,
		"fee_bps":     fmt.Sprint(cfg.FeeBps),
	})
}

func NewTradeCreatedEvent(trade Trade) Event {
	return newEvent(TopicTradeCreated, trade.ID, map[string]string{
		"seller": trade.Seller,
		"buyer":  trade.Buyer,
		"amount": u64(trade.Amount),
	})
}

func NewTradeFundedEvent(tradeID uint64) Event {
	return newEvent(TopicTradeFunded, tradeID, map[string]string{})
}

func NewTradeCompletedEvent(tradeID uint64) Event {
	return newEvent(TopicTradeCompleted, tradeID, map[string]string{})
}

func NewTradeConfirmedEvent(tradeID, payout, fee uint64) Event {
	return newEvent(TopicTradeConfirmed, tradeID, map[string]string{
		"payout": u64(payout),
		"fee":    u64(fee),
	})
}

func NewDisputeRaisedEvent(tradeID uint64, raisedBy string) Event {
	return newEvent(TopicDisputeRaised, tradeID, map[string]string{
		"raised_by": raisedBy,
	})
}

func NewDisputeResolvedEvent(
	tradeID uint64, resolution DisputeResolution, recipient string,
) Event {
	return newEvent(TopicDisputeResolved, tradeID, map[string]string{
		"resolution": resolution.String(),
		"recipient":  recipient,
	})
}

func NewTradeCancelledEvent(tradeID uint64) Event {
	return newEvent(TopicTradeCancelled, tradeID, map[string]string{})
}

func NewArbitratorRegisteredEvent(address string) Event {
	return newEvent(TopicArbitratorRegistered, 0, map[string]string{
		"address": address,
	})
}

func NewArbitratorRemovedEvent(address string) Event {
	return newEvent(TopicArbitratorRemoved, 0, map[string]string{
		"address": address,
	})
}

func NewFeeUpdatedEvent(feeBps uint32) Event {
	return newEvent(TopicFeeUpdated, 0, map[string]string{
		"fee_bps": fmt.Sprint(feeBps),
	})
}

func NewFeesWithdrawnEvent(amount uint64, to string) Event {
	return newEvent(TopicFeesWithdrawn, 0, map[string]string{
		"amount": u64(amount),
		"to":     to,
	})
}

func u64(n uint64) string {
	return fmt.Sprintf("%d", n)
}
