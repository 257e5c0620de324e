package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ninja813/aml-manager-backend/internal/logger"
	"github.com/ninja813/aml-manager-backend/internal/middleware"
	"github.com/ninja813/aml-manager-backend/internal/services"
)

// CommonServices bundles the core services the handlers depend on
type CommonServices struct {
	Permits        *services.PermitService
	Authorizations *services.AuthorizationService
	Transfers      *services.TransferService
}

// NewCommonServices creates a new CommonServices instance
func NewCommonServices(permits *services.PermitService, authorizations *services.AuthorizationService, transfers *services.TransferService) *CommonServices {
	return &CommonServices{
		Permits:        permits,
		Authorizations: authorizations,
		Transfers:      transfers,
	}
}

// SuccessResponse represents a simple success message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response with structured context
type ErrorResponse struct {
	Error         string                 `json:"error"`
	Code          string                 `json:"code,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
}

// IsAddressValid checks if the provided string is a valid Ethereum address
func IsAddressValid(address string) bool {
	return common.IsHexAddress(address)
}

// sendError is a helper function that combines logging and error response
// It logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	correlationID := middleware.GetCorrelationID(c)

	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("correlation_id", correlationID),
	)

	c.JSON(statusCode, ErrorResponse{
		Error:         message,
		CorrelationID: correlationID,
	})
}

// sendServiceError classifies a core service error into an HTTP status and
// returns it with its structured details intact.
func sendServiceError(c *gin.Context, err error) {
	svcErr, ok := services.AsServiceError(err)
	if !ok {
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)

	logger.Error(svcErr.Message,
		zap.String("code", string(svcErr.Code)),
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("correlation_id", correlationID),
	)

	c.JSON(statusForCode(svcErr.Code), ErrorResponse{
		Error:         svcErr.Message,
		Code:          string(svcErr.Code),
		Details:       svcErr.Details,
		CorrelationID: correlationID,
	})
}

func statusForCode(code services.ErrorCode) int {
	switch code {
	case services.CodeInvalidInput,
		services.CodeVerificationFailed,
		services.CodeAddressMismatch:
		return http.StatusBadRequest
	case services.CodeNoAuthorization:
		return http.StatusNotFound
	case services.CodePermitExpired,
		services.CodeAmountMismatch,
		services.CodeInsufficientBalance,
		services.CodeInsufficientAllowance:
		return http.StatusUnprocessableEntity
	case services.CodeApprovalFailed,
		services.CodeTransferReverted:
		return http.StatusBadGateway
	case services.CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
