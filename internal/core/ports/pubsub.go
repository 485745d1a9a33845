package ports

import "errors"

const AnyTopic = "*"
const UnspecifiedTopic = ""

// ErrSubscriptionNotFound is returned when referring to an unknown
// subscription id.
var ErrSubscriptionNotFound = errors.New("subscription not found")

type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// PubSubStore defines the methods to manage the internal store of a
// SecurePubSub service.
type PubSubStore interface {
	// Cursor returns the sequence number of the last event log entry
	// processed for the given subscription.
	Cursor(subID string) (uint64, error)
	// UpdateCursor moves the cursor of the subscription forward to the given
	// sequence number. It's a no-op for unknown subscriptions.
	UpdateCursor(subID string, seq uint64) error
	// Close should be used to gracefully close the connection with the store.
	Close() error
}

// SecurePubSub defines the methods of a pubsub service and its internal store.
// Messages for secured subscriptions are sent with a token signed with the
// subscription's secret.
type SecurePubSub interface {
	// Store returns the internal store.
	Store() PubSubStore
	// Subscribe adds a new subscription for the requested topic, interested
	// in the events appended to the log after the given sequence number.
	Subscribe(topic, endpoint, secret string, afterSeq uint64) (string, error)
	// Unsubscribe removes some client defined by its id for a topic.
	Unsubscribe(topic, id string) error
	// ListSubscriptionsForTopic returns the info of all clients subscribed for
	// a certain topic, or of all clients if the topic is unspecified.
	ListSubscriptionsForTopic(topic string) ([]Subscription, error)
	// PublishTo sends a message to the client with the given id. Every client
	// is guarded by its own circuit breaker.
	PublishTo(id, message string) error
}
