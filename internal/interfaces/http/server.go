// Package httpinterface exposes the escrow engine with a JSON HTTP API.
// Mutating requests carry in the body the proof of the account entitled to
// the operation, the caller being the account of the proof.
package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/escrowd/internal/core/application/escrow"
	"github.com/tdex-network/escrowd/internal/core/application/pubsub"
)

const (
	readHeaderTimeout = 10 * time.Second
)

// Ledger is the dev faucet of the local value transfer service.
type Ledger interface {
	Deposit(ctx context.Context, asset, account string, amount uint64) error
	Balance(ctx context.Context, asset, account string) (uint64, error)
}

type Server struct {
	escrowSvc *escrow.Service
	pubsubSvc *pubsub.Service
	ledger    Ledger

	router *gin.Engine
	server *http.Server
}

// NewServer returns the HTTP server listening on the given port. Ledger
// routes are registered only if ledger is not nil.
func NewServer(
	port int,
	escrowSvc *escrow.Service, pubsubSvc *pubsub.Service, ledger Ledger,
) (*Server, error) {
	if escrowSvc == nil {
		return nil, fmt.Errorf("missing escrow service")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), metrics())

	s := &Server{
		escrowSvc: escrowSvc,
		pubsubSvc: pubsubSvc,
		ledger:    ledger,
		router:    router,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the router serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server stopped unexpectedly")
		}
	}()
	log.Infof("http server listening on %s", s.server.Addr)
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("http server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	{
		v1.GET("/info", s.getInfo)
		v1.POST("/initialize", s.initialize)

		v1.GET("/arbitrators", s.listArbitrators)
		v1.POST("/arbitrators", s.registerArbitrator)
		v1.GET("/arbitrators/:address", s.isArbitratorRegistered)
		v1.DELETE("/arbitrators/:address", s.removeArbitrator)

		v1.GET("/fee", s.getFee)
		v1.PUT("/fee", s.updateFee)
		v1.GET("/fees", s.getAccumulatedFees)
		v1.POST("/fees/withdraw", s.withdrawFees)

		v1.GET("/trades", s.listTrades)
		v1.POST("/trades", s.createTrade)
		v1.GET("/trades/:id", s.getTrade)
		v1.POST("/trades/:id/fund", s.fundTrade)
		v1.POST("/trades/:id/complete", s.completeTrade)
		v1.POST("/trades/:id/confirm", s.confirmReceipt)
		v1.POST("/trades/:id/dispute", s.raiseDispute)
		v1.POST("/trades/:id/resolve", s.resolveDispute)
		v1.POST("/trades/:id/cancel", s.cancelTrade)

		v1.GET("/events", s.listEvents)

		v1.GET("/webhooks", s.listWebhooks)
		v1.POST("/webhooks", s.addWebhook)
		v1.DELETE("/webhooks/:id", s.removeWebhook)

		if s.ledger != nil {
			v1.POST("/ledger/deposit", s.deposit)
			v1.GET("/ledger/balance", s.balance)
		}
	}
}
