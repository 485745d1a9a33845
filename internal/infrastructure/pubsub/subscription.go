package pubsub

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tdex-network/escrowd/internal/core/ports"
)

// Subscription is a webhook endpoint notified of the events of a topic.
// Requests are signed with Secret when not empty.
type Subscription struct {
	ID        string
	Topic     string
	Endpoint  string
	Secret    string
	CreatedAt int64
}

type subscriptions []Subscription

func (s subscriptions) toPortable() []ports.Subscription {
	subs := make([]ports.Subscription, 0, len(s))
	for i := range s {
		sub := s[i]
		subs = append(subs, portableSubscription{&sub})
	}
	return subs
}

func NewSubscription(topic, endpoint, secret string) (*Subscription, error) {
	return newSubscription(uuid.New().String(), topic, endpoint, secret)
}

func newSubscription(id, topic, endpoint, secret string) (*Subscription, error) {
	if len(id) <= 0 {
		return nil, fmt.Errorf("missing subscription id")
	}
	if len(topic) <= 0 {
		return nil, fmt.Errorf("missing topic")
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid webhook endpoint, must be an http(s) URL")
	}
	return &Subscription{
		ID:        id,
		Topic:     topic,
		Endpoint:  endpoint,
		Secret:    secret,
		CreatedAt: time.Now().Unix(),
	}, nil
}

// portableSubscription adapts a stored subscription to ports.Subscription,
// whose Topic method would otherwise clash with the field of the same name.
type portableSubscription struct {
	*Subscription
}

func (p portableSubscription) Topic() string {
	return p.Subscription.Topic
}

func (p portableSubscription) Id() string {
	return p.ID
}

func (p portableSubscription) NotifyAt() string {
	return p.Endpoint
}

func (p portableSubscription) IsSecured() bool {
	return len(p.Secret) > 0
}
