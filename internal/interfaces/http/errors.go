package httpinterface

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/escrowd/internal/core/application/pubsub"
	"github.com/tdex-network/escrowd/internal/core/domain"
	"github.com/tdex-network/escrowd/internal/core/ports"
)

var errInvalidRequest = errors.New("invalid request")

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{ports.ErrAuthFailed, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusForbidden},
	{domain.ErrTradeNotFound, http.StatusNotFound},
	{ports.ErrSubscriptionNotFound, http.StatusNotFound},
	{domain.ErrAlreadyInitialized, http.StatusConflict},
	{domain.ErrNotInitialized, http.StatusConflict},
	{domain.ErrInvalidStatus, http.StatusConflict},
	{domain.ErrNoFeesToWithdraw, http.StatusConflict},
	{domain.ErrOverflow, http.StatusConflict},
	{ports.ErrInsufficientBalance, http.StatusConflict},
	{domain.ErrArbitratorNotRegistered, http.StatusBadRequest},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrInvalidFeeBps, http.StatusBadRequest},
	{domain.ErrInvalidParties, http.StatusBadRequest},
	{domain.ErrInvalidResolution, http.StatusBadRequest},
	{domain.ErrInvalidAddress, http.StatusBadRequest},
	{pubsub.ErrInvalidTopic, http.StatusBadRequest},
	{pubsub.ErrInvalidEndpoint, http.StatusBadRequest},
	{errInvalidRequest, http.StatusBadRequest},
}

func httpStatus(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	//nolint
	c.Error(err)
	c.AbortWithStatusJSON(httpStatus(err), errorResponse{
		Error: err.Error(),
		Code:  domain.ErrorCode(err),
	})
}
