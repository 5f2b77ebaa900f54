package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chaintab/chaintab/internal/ledger"
	"github.com/chaintab/chaintab/internal/models"
)

// GroupHandlers serves the group and payment endpoints.
type GroupHandlers struct {
	ledger *ledger.Ledger
}

// NewGroupHandlers creates the group handlers.
func NewGroupHandlers(l *ledger.Ledger) GroupHandlers {
	return GroupHandlers{ledger: l}
}

func groupIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad group id"})
		return 0, false
	}
	return id, true
}

type groupPayload struct {
	Name   string   `json:"name" binding:"required"`
	Items  []string `json:"items"`
	Prices []uint64 `json:"prices"`
}

func groupJSON(g *models.Group) gin.H {
	return gin.H{
		"group_id":   g.ID,
		"owner":      g.Owner,
		"name":       g.Name,
		"item_count": g.ItemCount,
		"created_at": g.CreatedAt,
	}
}

// Create handles POST /v1/groups.
func (h GroupHandlers) Create(c *gin.Context) {
	var req groupPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.ledger.CreateGroup(c.Request.Context(), UserID(c), req.Name, req.Items, req.Prices)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, groupJSON(group))
}

// Edit handles PUT /v1/groups/:id.
func (h GroupHandlers) Edit(c *gin.Context) {
	id, ok := groupIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Items  []string `json:"items"`
		Prices []uint64 `json:"prices"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ledger.EditGroup(c.Request.Context(), UserID(c), id, req.Items, req.Prices); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group_id": id})
}

// Get handles GET /v1/groups/:id.
func (h GroupHandlers) Get(c *gin.Context) {
	id, ok := groupIDParam(c)
	if !ok {
		return
	}
	group, err := h.ledger.GetGroup(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, groupJSON(group))
}

// Items handles GET /v1/groups/:id/items, returning parallel arrays of
// name, price, paid flag and payer. An unknown group id yields empty
// arrays, identical to a group with no items.
func (h GroupHandlers) Items(c *gin.Context) {
	id, ok := groupIDParam(c)
	if !ok {
		return
	}
	items, err := h.ledger.GetGroupItems(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	names := make([]string, len(items))
	prices := make([]uint64, len(items))
	paid := make([]bool, len(items))
	paidBy := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
		prices[i] = item.Price
		paid[i] = item.Paid
		paidBy[i] = item.PaidBy
	}
	c.JSON(http.StatusOK, gin.H{
		"names":   names,
		"prices":  prices,
		"paid":    paid,
		"paid_by": paidBy,
	})
}

// Pay handles POST /v1/groups/:id/pay: the direct payment path, funded by
// the authenticated caller's own token balance.
func (h GroupHandlers) Pay(c *gin.Context) {
	id, ok := groupIDParam(c)
	if !ok {
		return
	}
	var req struct {
		ItemIDs []uint32 `json:"item_ids"`
		Amount  uint64   `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ledger.PayForItems(c.Request.Context(), UserID(c), id, req.ItemIDs, req.Amount); err != nil {
		fail(c, err)
		return
	}
	settlementsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"group_id": id, "item_ids": req.ItemIDs, "amount": req.Amount})
}
