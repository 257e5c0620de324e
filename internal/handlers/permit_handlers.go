package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/ninja813/aml-manager-backend/internal/services"
)

// PermitHandler serves the challenge, authorization and status endpoints
type PermitHandler struct {
	common *CommonServices
}

// NewPermitHandler creates a new PermitHandler instance
func NewPermitHandler(common *CommonServices) *PermitHandler {
	return &PermitHandler{common: common}
}

// AuthorizePermitRequest carries a signature back to the server together
// with the exact message that was signed. PlainMessage switches verification
// to the personal-sign fallback.
type AuthorizePermitRequest struct {
	Address      string                  `json:"address" binding:"required"`
	Signature    string                  `json:"signature" binding:"required"`
	Message      *services.PermitMessage `json:"message" binding:"required"`
	PlainMessage string                  `json:"plain_message"`
}

// GetPermitMessage godoc
// @Summary Build a permit challenge
// @Description Builds the EIP-712 message the user must sign to authorize a delegated transfer
// @Tags permits
// @Produce json
// @Param address query string true "User address"
// @Param amount query string false "Amount in display units (default 0)"
// @Success 200 {object} services.PermitMessage
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /permit/message [get]
func (h *PermitHandler) GetPermitMessage(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		sendError(c, http.StatusBadRequest, "address query parameter is required", nil)
		return
	}
	if !IsAddressValid(address) {
		sendError(c, http.StatusBadRequest, "Invalid address format", nil)
		return
	}

	message, err := h.common.Permits.BuildMessage(c.Request.Context(), address, c.Query("amount"))
	if err != nil {
		sendServiceError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, message)
}

// AuthorizePermit godoc
// @Summary Submit a signed permit
// @Description Verifies the signature over the supplied message and records the authorization
// @Tags permits
// @Accept json
// @Produce json
// @Param request body AuthorizePermitRequest true "Signed permit"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /permit/authorize [post]
func (h *PermitHandler) AuthorizePermit(c *gin.Context) {
	var req AuthorizePermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !IsAddressValid(req.Address) {
		sendError(c, http.StatusBadRequest, "Invalid address format", nil)
		return
	}

	signature, err := hexutil.Decode(req.Signature)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Signature is not valid hex", err)
		return
	}

	auth, err := h.common.Authorizations.Authorize(req.Address, signature, req.Message, req.PlainMessage)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, gin.H{
		"message":     "Authorization recorded",
		"owner":       auth.UserAddress,
		"amount":      auth.Message.Value.Amount,
		"deadline":    auth.Message.Value.Deadline,
		"received_at": auth.ReceivedAt,
	})
}

// GetPermitStatus godoc
// @Summary Query authorization status
// @Description Returns the held authorization for an address together with the on-chain delegation state
// @Tags permits
// @Produce json
// @Param address path string true "User address"
// @Success 200 {object} services.AuthorizationSummary
// @Failure 400 {object} ErrorResponse
// @Router /permit/status/{address} [get]
func (h *PermitHandler) GetPermitStatus(c *gin.Context) {
	address := c.Param("address")
	if !IsAddressValid(address) {
		sendError(c, http.StatusBadRequest, "Invalid address format", nil)
		return
	}

	summary, err := h.common.Transfers.Status(c.Request.Context(), address)
	if err != nil {
		sendServiceError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, summary)
}
