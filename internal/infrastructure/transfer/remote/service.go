// Package remotetransfer implements a value transfer service client for an
// external asset service exposing a JSON transfer endpoint.
package remotetransfer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/escrowd/internal/core/ports"
	"github.com/tdex-network/escrowd/pkg/circuitbreaker"
	"github.com/thanhpk/randstr"
	"go.uber.org/ratelimit"
)

const (
	transferPath = "/v1/transfers"

	defaultRequestTimeout = 15 * time.Second
	defaultRateLimit      = 10
)

type transferRequest struct {
	Reference string `json:"reference"`
	Asset     string `json:"asset"`
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
}

type service struct {
	endpoint   string
	httpClient *client
	cb         *gobreaker.CircuitBreaker
	limiter    ratelimit.Limiter
}

// NewService returns a client for the asset service reachable at endpoint.
// At most rateLimit requests per second are sent.
func NewService(endpoint string, rateLimit int) (ports.ValueTransfer, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid transfer endpoint, must be a valid URI")
	}
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	return &service{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: newHTTPClient(defaultRequestTimeout),
		cb:         circuitbreaker.NewCircuitBreaker("transfer"),
		limiter:    ratelimit.New(rateLimit),
	}, nil
}

// Transfer asks the asset service to move the amount. The asset service is
// expected to apply a reference at most once, and replies with 402 Payment
// Required if the source account can't cover the amount. Transfers without
// a reference get a random one.
//
// Only failures of the asset service count for the circuit breaker, a
// rejection for insufficient balance is a reply like any other.
func (s *service) Transfer(
	ctx context.Context, reference, asset, from, to string, amount uint64,
) error {
	if len(reference) <= 0 {
		reference = randstr.Hex(16)
	}
	body, err := json.Marshal(transferRequest{
		Reference: reference,
		Asset:     asset,
		From:      from,
		To:        to,
		Amount:    amount,
	})
	if err != nil {
		return err
	}

	s.limiter.Take()

	res, err := s.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		status, resp, err := s.httpClient.post(
			ctx, s.endpoint+transferPath, body, headers,
		)
		if err != nil {
			return nil, err
		}
		if status == http.StatusPaymentRequired {
			return status, nil
		}
		if status < 200 || status >= 300 {
			return nil, fmt.Errorf("asset service replied %d: %s", status, resp)
		}
		return status, nil
	})
	if err == nil && res.(int) == http.StatusPaymentRequired {
		err = ports.ErrInsufficientBalance
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"reference": reference,
			"from":      from,
			"to":        to,
			"amount":    amount,
		}).Debug("remote transfer failed")
		return err
	}
	return nil
}
