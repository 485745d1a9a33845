package httpinterface

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) addWebhook(c *gin.Context) {
	var req addWebhookRequest
	if !bindJSON(c, &req) {
		return
	}
	id, err := s.pubsubSvc.AddWebhook(
		c.Request.Context(), req.Topic, req.Endpoint, req.Secret,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) removeWebhook(c *gin.Context) {
	if err := s.pubsubSvc.RemoveWebhook(
		c.Request.Context(), c.Param("id"),
	); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listWebhooks(c *gin.Context) {
	webhooks, err := s.pubsubSvc.ListWebhooks(
		c.Request.Context(), c.Query("topic"),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": webhooks})
}
