// Package pubsub forwards the escrow event log to webhook subscribers and
// manages webhooks.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/tdex-network/escrowd/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPollInterval = 5 * time.Second
	batchSize           = 100
)

var (
	ErrInvalidTopic    = errors.New("invalid webhook topic")
	ErrInvalidEndpoint = errors.New("invalid webhook endpoint, must be an http(s) URL")
)

// Service periodically delivers the events appended to the log to the
// webhooks subscribed to their topic. Every webhook has its own cursor that
// moves forward only once an event has been delivered to it, therefore
// undelivered events are retried at the next tick, and a failing webhook
// never holds back the others.
type Service struct {
	pubsub       ports.SecurePubSub
	repoManager  ports.RepoManager
	pollInterval time.Duration

	lock sync.Mutex
	quit chan struct{}
	done chan struct{}
}

func NewService(
	pubsub ports.SecurePubSub, repoManager ports.RepoManager,
	pollInterval time.Duration,
) (*Service, error) {
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Service{
		pubsub:       pubsub,
		repoManager:  repoManager,
		pollInterval: pollInterval,
	}, nil
}

func (s *Service) SecurePubSub() ports.SecurePubSub {
	return s.pubsub
}

// AddWebhook subscribes the endpoint to the given topic, or to every topic
// with ports.AnyTopic. The webhook is notified of the events appended to the
// log from now on.
func (s *Service) AddWebhook(
	ctx context.Context, topic, endpoint, secret string,
) (string, error) {
	if topic != ports.AnyTopic && !domain.IsValidTopic(topic) {
		return "", ErrInvalidTopic
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidEndpoint
	}

	latestSeq, err := s.repoManager.EventRepository().GetLatestSeq(ctx)
	if err != nil {
		return "", err
	}
	return s.pubsub.Subscribe(topic, endpoint, secret, latestSeq)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

// ListWebhooks returns the webhooks notified for the given topic, or all of
// them if the topic is unspecified.
func (s *Service) ListWebhooks(
	_ context.Context, topic string,
) ([]WebhookInfo, error) {
	if topic != ports.UnspecifiedTopic && topic != ports.AnyTopic &&
		!domain.IsValidTopic(topic) {
		return nil, ErrInvalidTopic
	}

	subs, err := s.pubsub.ListSubscriptionsForTopic(topic)
	if err != nil {
		return nil, err
	}
	webhooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		webhooks = append(webhooks, WebhookInfo{
			ID:        sub.Id(),
			Topic:     sub.Topic(),
			Endpoint:  sub.NotifyAt(),
			IsSecured: sub.IsSecured(),
		})
	}
	return webhooks, nil
}

// Start starts dispatching events in background until Stop is called.
func (s *Service) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.quit != nil {
		return
	}
	s.quit = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.quit, s.done)
}

// Stop stops the background dispatching and waits for an ongoing dispatch to
// complete.
func (s *Service) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.quit == nil {
		return
	}
	close(s.quit)
	<-s.done
	s.quit, s.done = nil, nil
}

// Close stops dispatching and closes the pubsub store.
func (s *Service) Close() {
	s.Stop()
	if err := s.pubsub.Store().Close(); err != nil {
		log.WithError(err).Warn("error while closing pubsub db")
	}
}

// Dispatch delivers the events not yet delivered to every webhook and
// returns how many messages have been sent. Webhooks are served
// concurrently, each one stops at its first delivery failure. The first
// failure is returned once all webhooks have been served.
func (s *Service) Dispatch(ctx context.Context) (int, error) {
	subs, err := s.pubsub.ListSubscriptionsForTopic(ports.UnspecifiedTopic)
	if err != nil {
		return 0, err
	}

	counts := make([]int, len(subs))
	eg := &errgroup.Group{}
	for i := range subs {
		i, sub := i, subs[i]
		eg.Go(func() error {
			count, err := s.deliver(ctx, sub)
			counts[i] = count
			if err != nil {
				log.WithError(err).WithField("webhook", sub.Id()).Debug(
					"webhook delivery interrupted",
				)
			}
			return err
		})
	}
	err = eg.Wait()

	total := 0
	for _, count := range counts {
		total += count
	}
	return total, err
}

// deliver sends the events after the cursor of the subscription to its
// endpoint, if the topic matches, and moves the cursor forward.
func (s *Service) deliver(
	ctx context.Context, sub ports.Subscription,
) (int, error) {
	store := s.pubsub.Store()
	count := 0

	cursor, err := store.Cursor(sub.Id())
	if err != nil {
		return count, err
	}

	for {
		events, err := s.repoManager.EventRepository().GetEventsAfter(
			ctx, cursor, batchSize,
		)
		if err != nil {
			return count, err
		}
		if len(events) <= 0 {
			return count, nil
		}

		for _, event := range events {
			if sub.Topic() != ports.AnyTopic && sub.Topic() != event.Topic {
				continue
			}

			message, err := newEventMessage(event)
			if err != nil {
				return count, err
			}
			if err := s.pubsub.PublishTo(sub.Id(), message); err != nil {
				if errors.Is(err, ports.ErrSubscriptionNotFound) {
					return count, nil
				}
				return count, fmt.Errorf(
					"failed to deliver event %d to webhook %s: %w",
					event.Seq, sub.Id(), err,
				)
			}
			count++

			if err := store.UpdateCursor(sub.Id(), event.Seq); err != nil {
				return count, err
			}
		}

		// Skip the events of other topics at the end of the batch.
		cursor = events[len(events)-1].Seq
		if err := store.UpdateCursor(sub.Id(), cursor); err != nil {
			return count, err
		}
	}
}

func (s *Service) loop(quit, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	log.Debug("event dispatcher started")
	for {
		select {
		case <-quit:
			log.Debug("event dispatcher stopped")
			return
		case <-ticker.C:
			count, err := s.Dispatch(context.Background())
			if err != nil {
				log.WithError(err).Warn("event dispatch interrupted")
			}
			if count > 0 {
				log.Debugf("dispatched %d events", count)
			}
		}
	}
}
