package services

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/ninja813/aml-manager-backend/internal/logger"
)

// AuthorizationService verifies a returned signature and records the
// resulting authorization. Most-recent-wins: a new authorization for the
// same user replaces any earlier one.
type AuthorizationService struct {
	verifier *SignatureService
	store    AuthorizationStore
	logger   *zap.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(verifier *SignatureService, store AuthorizationStore) *AuthorizationService {
	return &AuthorizationService{
		verifier: verifier,
		store:    store,
		logger:   logger.Log,
	}
}

// Authorize verifies signature against message and, on success, records the
// authorization for message's owner. When plainMessage is non-empty the
// signature is checked with the personal-sign fallback instead of the typed
// scheme; exactly one of the two paths runs per call. The structured message
// is required either way, because the transfer pipeline acts on its fields.
func (s *AuthorizationService) Authorize(userAddress string, signature []byte, message *PermitMessage, plainMessage string) (*Authorization, error) {
	if message == nil {
		return nil, newServiceError(CodeInvalidInput, "signed message is required")
	}
	if !common.IsHexAddress(userAddress) {
		return nil, newServiceError(CodeInvalidInput, "user address is not a valid address").
			withDetail("address", userAddress)
	}
	if len(signature) != signatureLength {
		return nil, newServiceError(CodeInvalidInput, "signature has wrong length").
			withDetail("length", len(signature)).
			withDetail("expected", signatureLength)
	}

	var err error
	if plainMessage != "" {
		err = s.verifier.VerifyPersonal(userAddress, signature, plainMessage)
	} else {
		err = s.verifier.VerifyTyped(userAddress, signature, message)
	}
	if err != nil {
		return nil, err
	}

	auth := Authorization{
		UserAddress: common.HexToAddress(userAddress).Hex(),
		Signature:   signature,
		Message:     *message,
		ReceivedAt:  time.Now(),
	}
	s.store.Put(auth)

	s.logger.Info("Recorded authorization",
		zap.String("owner", auth.UserAddress),
		zap.String("amount", message.Value.Amount),
		zap.Uint64("deadline", message.Value.Deadline),
		zap.Bool("personal_sign", plainMessage != ""),
	)

	return &auth, nil
}
