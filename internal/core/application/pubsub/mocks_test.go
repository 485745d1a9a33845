package pubsub_test

import (
	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/escrowd/internal/core/ports"
)

// **** SecurePubSub ****

type mockSecurePubSub struct {
	mock.Mock
}

func (m *mockSecurePubSub) Store() ports.PubSubStore {
	args := m.Called()

	var res ports.PubSubStore
	if a := args.Get(0); a != nil {
		res = a.(ports.PubSubStore)
	}
	return res
}

func (m *mockSecurePubSub) Subscribe(
	topic, endpoint, secret string, afterSeq uint64,
) (string, error) {
	args := m.Called(topic, endpoint, secret, afterSeq)
	return args.String(0), args.Error(1)
}

func (m *mockSecurePubSub) Unsubscribe(topic, id string) error {
	args := m.Called(topic, id)
	return args.Error(0)
}

func (m *mockSecurePubSub) ListSubscriptionsForTopic(
	topic string,
) ([]ports.Subscription, error) {
	args := m.Called(topic)

	var res []ports.Subscription
	if a := args.Get(0); a != nil {
		res = a.([]ports.Subscription)
	}
	return res, args.Error(1)
}

func (m *mockSecurePubSub) PublishTo(id, message string) error {
	args := m.Called(id, message)
	return args.Error(0)
}

// **** PubSubStore ****

type mockPubSubStore struct {
	mock.Mock
}

func (m *mockPubSubStore) Cursor(subID string) (uint64, error) {
	args := m.Called(subID)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockPubSubStore) UpdateCursor(subID string, seq uint64) error {
	args := m.Called(subID, seq)
	return args.Error(0)
}

func (m *mockPubSubStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
