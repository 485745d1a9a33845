package httpinterface

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) deposit(c *gin.Context) {
	var req depositRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Asset) <= 0 || len(req.Account) <= 0 || req.Amount == 0 {
		writeError(c, fmt.Errorf(
			"%w: asset, account and amount are mandatory", errInvalidRequest,
		))
		return
	}
	if err := s.ledger.Deposit(
		c.Request.Context(), req.Asset, req.Account, req.Amount,
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) balance(c *gin.Context) {
	asset, account := c.Query("asset"), c.Query("account")
	if len(asset) <= 0 || len(account) <= 0 {
		writeError(c, fmt.Errorf("%w: missing asset or account", errInvalidRequest))
		return
	}
	balance, err := s.ledger.Balance(c.Request.Context(), asset, account)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset":   asset,
		"account": account,
		"balance": balance,
	})
}
