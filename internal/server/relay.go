package server

import (
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaintab/chaintab/internal/relay"
)

// RelayHandlers serves the attested-message relay endpoint.
type RelayHandlers struct {
	relay *relay.Pipeline
}

// NewRelayHandlers creates the relay handlers.
func NewRelayHandlers(p *relay.Pipeline) RelayHandlers {
	return RelayHandlers{relay: p}
}

// Relay handles POST /v1/relay. The message and attestation are hex encoded;
// both are single use and discarded after this call regardless of outcome.
func (h RelayHandlers) Relay(c *gin.Context) {
	var req struct {
		Message     string   `json:"message" binding:"required"`
		Attestation string   `json:"attestation" binding:"required"`
		GroupID     uint64   `json:"group_id"`
		ItemIDs     []uint32 `json:"item_ids"`
		Amount      uint64   `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := hex.DecodeString(req.Message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is not valid hex"})
		return
	}
	attestation, err := hex.DecodeString(req.Attestation)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "attestation is not valid hex"})
		return
	}

	ok, err := h.relay.Relay(c.Request.Context(), message, attestation, req.GroupID, req.ItemIDs, req.Amount)
	if err != nil {
		relaysTotal.WithLabelValues("failed").Inc()
		fail(c, err)
		return
	}

	relaysTotal.WithLabelValues("settled").Inc()
	settlementsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"success": ok, "group_id": req.GroupID, "item_ids": req.ItemIDs, "amount": req.Amount})
}
