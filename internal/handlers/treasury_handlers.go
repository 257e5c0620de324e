package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TreasuryHandler serves the operator-side transfer endpoints
type TreasuryHandler struct {
	common *CommonServices
}

// NewTreasuryHandler creates a new TreasuryHandler instance
func NewTreasuryHandler(common *CommonServices) *TreasuryHandler {
	return &TreasuryHandler{common: common}
}

// ExecuteTransferRequest asks the treasury to execute a previously
// authorized transfer. Amount is in display units and must match the signed
// amount exactly.
type ExecuteTransferRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// ExecuteTransfer godoc
// @Summary Execute a delegated transfer
// @Description Re-validates the stored authorization against live chain state and executes the pull
// @Tags treasury
// @Accept json
// @Produce json
// @Param request body ExecuteTransferRequest true "Transfer request"
// @Success 200 {object} services.TransferResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security Bearer
// @Router /treasury/transfer [post]
func (h *TreasuryHandler) ExecuteTransfer(c *gin.Context) {
	var req ExecuteTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !IsAddressValid(req.Address) {
		sendError(c, http.StatusBadRequest, "Invalid address format", nil)
		return
	}

	result, err := h.common.Transfers.Transfer(c.Request.Context(), req.Address, req.Amount)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, result)
}
