package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/tdex-network/escrowd/internal/infrastructure/auth"
	"github.com/tdex-network/escrowd/pkg/mathutil"
)

const (
	defaultEventsLimit = 100
	// openTradesFilter selects the trades not yet cancelled or settled.
	openTradesFilter = "open"
)

// signedContext returns the request context carrying the given proof, whose
// account is the caller of the operation.
func signedContext(c *gin.Context, proof auth.Proof) context.Context {
	return auth.WithInvocation(c.Request.Context(), proof.Account, proof)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, fmt.Errorf("%w: %s", errInvalidRequest, err))
		return false
	}
	return true
}

func parseUint(c *gin.Context, value, name string) (uint64, bool) {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid %s", errInvalidRequest, name))
		return 0, false
	}
	return n, true
}

func tradeID(c *gin.Context) (uint64, bool) {
	return parseUint(c, c.Param("id"), "trade id")
}

func (s *Server) getInfo(c *gin.Context) {
	info := infoResponse{
		CustodyAccount: s.escrowSvc.CustodyAccount(),
		FeePercentage:  mathutil.BasisPointsToPercentage(0).String(),
	}

	cfg, err := s.escrowSvc.GetConfig(c.Request.Context())
	if err != nil {
		if !errors.Is(err, domain.ErrNotInitialized) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
		return
	}

	info.Initialized = true
	info.Admin = cfg.Admin
	info.ValueAsset = cfg.ValueAsset
	info.FeeBps = cfg.FeeBps
	info.FeePercentage = mathutil.BasisPointsToPercentage(uint64(cfg.FeeBps)).String()
	info.TradeCounter = cfg.TradeCounter
	info.AccumulatedFees = cfg.AccumulatedFees
	c.JSON(http.StatusOK, info)
}

func (s *Server) initialize(c *gin.Context) {
	var req initializeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.escrowSvc.Initialize(
		signedContext(c, req.Proof), req.Admin, req.ValueAsset, req.FeeBps,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listArbitrators(c *gin.Context) {
	arbitrators, err := s.escrowSvc.ListArbitrators(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"arbitrators": arbitrators})
}

func (s *Server) registerArbitrator(c *gin.Context) {
	var req arbitratorRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.escrowSvc.RegisterArbitrator(
		signedContext(c, req.Proof), req.Address,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) isArbitratorRegistered(c *gin.Context) {
	address := c.Param("address")
	registered, err := s.escrowSvc.IsArbitratorRegistered(
		c.Request.Context(), address,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "registered": registered})
}

func (s *Server) removeArbitrator(c *gin.Context) {
	var req signedRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.escrowSvc.RemoveArbitrator(
		signedContext(c, req.Proof), c.Param("address"),
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getFee(c *gin.Context) {
	feeBps, err := s.escrowSvc.GetPlatformFeeBps(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"fee_bps":        feeBps,
		"fee_percentage": mathutil.BasisPointsToPercentage(uint64(feeBps)).String(),
	})
}

func (s *Server) updateFee(c *gin.Context) {
	var req updateFeeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.escrowSvc.UpdateFee(
		signedContext(c, req.Proof), req.FeeBps,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getAccumulatedFees(c *gin.Context) {
	fees, err := s.escrowSvc.GetAccumulatedFees(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accumulated_fees": fees})
}

func (s *Server) withdrawFees(c *gin.Context) {
	var req withdrawFeesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.escrowSvc.WithdrawFees(
		signedContext(c, req.Proof), req.To,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listTrades(c *gin.Context) {
	var trades []domain.Trade
	var err error

	switch name := c.Query("status"); name {
	case "":
		trades, err = s.escrowSvc.ListTrades(
			c.Request.Context(), domain.TradeStatusUndefined,
		)
	case openTradesFilter:
		trades, err = s.escrowSvc.ListOpenTrades(c.Request.Context())
	default:
		status, perr := domain.ParseTradeStatus(name)
		if perr != nil {
			writeError(c, fmt.Errorf("%w: %s", errInvalidRequest, perr))
			return
		}
		trades, err = s.escrowSvc.ListTrades(c.Request.Context(), status)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	infos := make([]tradeInfo, 0, len(trades))
	for _, trade := range trades {
		infos = append(infos, newTradeInfo(trade))
	}
	c.JSON(http.StatusOK, gin.H{"trades": infos})
}

func (s *Server) createTrade(c *gin.Context) {
	var req createTradeRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := s.escrowSvc.CreateTrade(
		signedContext(c, req.Proof),
		req.Seller, req.Buyer, req.Amount, req.Arbitrator,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trade_id": id})
}

func (s *Server) getTrade(c *gin.Context) {
	id, ok := tradeID(c)
	if !ok {
		return
	}
	trade, err := s.escrowSvc.GetTrade(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTradeInfo(*trade))
}

// tradeAction returns the handler of a transition that requires only the
// trade id and the proof of the entitled party.
func (s *Server) tradeAction(
	action func(ctx context.Context, tradeID uint64) error,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := tradeID(c)
		if !ok {
			return
		}
		var req signedRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := action(signedContext(c, req.Proof), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) fundTrade(c *gin.Context) {
	s.tradeAction(s.escrowSvc.FundTrade)(c)
}

func (s *Server) completeTrade(c *gin.Context) {
	s.tradeAction(s.escrowSvc.CompleteTrade)(c)
}

func (s *Server) confirmReceipt(c *gin.Context) {
	s.tradeAction(s.escrowSvc.ConfirmReceipt)(c)
}

func (s *Server) raiseDispute(c *gin.Context) {
	s.tradeAction(s.escrowSvc.RaiseDispute)(c)
}

func (s *Server) cancelTrade(c *gin.Context) {
	s.tradeAction(s.escrowSvc.CancelTrade)(c)
}

func (s *Server) resolveDispute(c *gin.Context) {
	id, ok := tradeID(c)
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if !bindJSON(c, &req) {
		return
	}
	resolution, err := domain.ParseDisputeResolution(req.Resolution)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.escrowSvc.ResolveDispute(
		signedContext(c, req.Proof), id, resolution,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listEvents(c *gin.Context) {
	var after uint64
	if v := c.Query("after"); len(v) > 0 {
		n, ok := parseUint(c, v, "after")
		if !ok {
			return
		}
		after = n
	}
	limit := defaultEventsLimit
	if v := c.Query("limit"); len(v) > 0 {
		n, ok := parseUint(c, v, "limit")
		if !ok {
			return
		}
		if n > 0 && n < defaultEventsLimit {
			limit = int(n)
		}
	}

	events, err := s.escrowSvc.ListEvents(c.Request.Context(), after, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	infos := make([]eventInfo, 0, len(events))
	for _, event := range events {
		infos = append(infos, newEventInfo(event))
	}
	c.JSON(http.StatusOK, gin.H{"events": infos})
}
