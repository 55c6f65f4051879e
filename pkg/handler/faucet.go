package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"xmr_faucet_back/models"
	"xmr_faucet_back/pkg/utils"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

func (h *Handler) GetBalance(c *gin.Context) {
	balance, err := h.service.Faucet.GetBalance(c.Request.Context())
	if err != nil {
		sendErrorResponse(c, err, "Failed to get faucet balance. Check server logs for details.")
		return
	}

	c.JSON(http.StatusOK, models.BalanceResponse{
		Balance:         utils.AtomicToXMR(balance.Total),
		UnlockedBalance: utils.AtomicToXMR(balance.Unlocked),
	})
}

// Send expects {address, amount?}; amount is XMR as a string and defaults to the drip.
func (h *Handler) Send(c *gin.Context) {
	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		newErrorResponse(c, http.StatusBadRequest, "Address is required")
		return
	}

	res, err := h.service.Faucet.Disburse(c.Request.Context(), req)
	if err != nil {
		sendErrorResponse(c, err, "Failed to send funds from faucet. Check server logs for details.")
		return
	}

	c.JSON(http.StatusOK, models.SendResponse{
		Success: true,
		Message: fmt.Sprintf("Sent %s XMR to %s", utils.FormatXMR(res.Amount), res.Address),
		TxHash:  res.TxHash,
	})
}

func (h *Handler) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			newErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	items, err := h.service.Faucet.RecentDisbursements(c.Request.Context(), limit)
	if err != nil {
		sendErrorResponse(c, err, "Failed to load faucet history.")
		return
	}

	resp := models.HistoryResponse{Disbursements: make([]models.DisbursementView, 0, len(items))}
	for _, d := range items {
		resp.Disbursements = append(resp.Disbursements, models.DisbursementView{
			ID:        d.ID,
			Address:   d.Address,
			Amount:    utils.AtomicToXMR(d.Amount),
			Fee:       utils.AtomicToXMR(d.Fee),
			TxHash:    d.TxHash,
			Retried:   d.Retried,
			CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Health(c *gin.Context) {
	if !h.service.Faucet.Ready() {
		c.String(http.StatusServiceUnavailable, "wallet session not ready")
		return
	}
	c.String(http.StatusOK, "ok")
}
