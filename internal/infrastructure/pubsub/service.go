// Package pubsub implements a SecurePubSub that delivers messages to webhook
// subscribers with HTTP POST requests. Subscriptions with a secret receive
// the message along with a HS256 JWT signed with it.
package pubsub

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/golang-jwt/jwt"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/escrowd/internal/core/ports"
	"github.com/tdex-network/escrowd/pkg/circuitbreaker"
)

const defaultRequestTimeout = 15 * time.Second

type service struct {
	store      *store
	httpClient *client

	// breakers holds a circuit breaker per subscription, so that a failing
	// endpoint doesn't affect the others.
	lock     sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewService opens (or creates if not exists) the subscription store under
// the given base dir, in memory if empty.
func NewService(
	baseDbDir string, logger badger.Logger,
) (ports.SecurePubSub, error) {
	store, err := newStore(baseDbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening pubsub db: %w", err)
	}

	return &service{
		store:      store,
		httpClient: newHTTPClient(defaultRequestTimeout),
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}, nil
}

func (ws *service) Store() ports.PubSubStore {
	return ws.store
}

func (ws *service) Subscribe(
	topic, endpoint, secret string, afterSeq uint64,
) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}
	if err := ws.store.addSubscription(*sub, afterSeq); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) Unsubscribe(_, id string) error {
	sub, err := ws.store.getSubscription(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ports.ErrSubscriptionNotFound
	}
	if err := ws.store.removeSubscription(id); err != nil {
		return err
	}

	ws.lock.Lock()
	delete(ws.breakers, id)
	ws.lock.Unlock()
	return nil
}

func (ws *service) ListSubscriptionsForTopic(
	topic string,
) ([]ports.Subscription, error) {
	subs, err := ws.listSubscriptionsForTopic(topic)
	if err != nil {
		return nil, err
	}
	return subs.toPortable(), nil
}

func (ws *service) PublishTo(id, message string) error {
	sub, err := ws.store.getSubscription(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ports.ErrSubscriptionNotFound
	}
	return ws.doRequest(*sub, message)
}

func (ws *service) listSubscriptionsForTopic(
	topic string,
) (subscriptions, error) {
	subs, err := ws.getSubscriptionsForTopic(topic)
	if err != nil {
		return nil, err
	}
	if topic != ports.AnyTopic && topic != ports.UnspecifiedTopic {
		subsForAnyTopic, err := ws.getSubscriptionsForTopic(ports.AnyTopic)
		if err != nil {
			return nil, err
		}
		subs = append(subs, subsForAnyTopic...)
	}
	return subs, nil
}

func (ws *service) getSubscriptionsForTopic(
	topic string,
) (subscriptions, error) {
	subs, err := ws.store.findSubscriptions(topic)
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions: %w", err)
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (ws *service) breaker(id string) *gobreaker.CircuitBreaker {
	ws.lock.Lock()
	defer ws.lock.Unlock()

	cb, ok := ws.breakers[id]
	if !ok {
		cb = circuitbreaker.NewCircuitBreaker(id)
		ws.breakers[id] = cb
	}
	return cb
}

func (ws *service) doRequest(sub Subscription, payload string) error {
	_, err := ws.breaker(sub.ID).Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if len(sub.Secret) > 0 {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				Subject:  sub.Topic,
				IssuedAt: time.Now().Unix(),
			})
			tokenString, err := token.SignedString([]byte(sub.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := ws.httpClient.post(sub.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("webhook %s replied %d: %s", sub.ID, status, resp)
		}
		return nil, nil
	})

	return err
}
