package services

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"

	"github.com/ninja813/aml-manager-backend/internal/logger"
)

// signatureLength is the fixed length of a recoverable secp256k1 signature:
// r (32) || s (32) || v (1).
const signatureLength = 65

// SignatureService recovers signer addresses from permit signatures and
// checks them against the claimed user address. It has no side effects.
type SignatureService struct {
	logger *zap.Logger
}

// NewSignatureService creates a new signature service
func NewSignatureService() *SignatureService {
	return &SignatureService{logger: logger.Log}
}

// VerifyTyped checks that signature was produced by claimedAddress over the
// canonical EIP-712 encoding of message. The encoding is rebuilt here from
// the message fields, so the check covers exactly what the server will act on.
func (s *SignatureService) VerifyTyped(claimedAddress string, signature []byte, message *PermitMessage) error {
	if !common.IsHexAddress(claimedAddress) {
		return newServiceError(CodeInvalidInput, "claimed address is not a valid address").
			withDetail("address", claimedAddress)
	}

	typedData, err := message.TypedData()
	if err != nil {
		return err
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return wrapServiceError(CodeVerificationFailed, "failed to encode typed data", err)
	}

	return s.checkRecovered(claimedAddress, hash, signature)
}

// VerifyPersonal is the fallback path for plain-string messages signed with
// the personal-sign scheme. Exactly one of VerifyTyped or VerifyPersonal is
// used per authorization, never both.
func (s *SignatureService) VerifyPersonal(claimedAddress string, signature []byte, plainMessage string) error {
	if !common.IsHexAddress(claimedAddress) {
		return newServiceError(CodeInvalidInput, "claimed address is not a valid address").
			withDetail("address", claimedAddress)
	}
	if plainMessage == "" {
		return newServiceError(CodeInvalidInput, "plain message must not be empty")
	}

	hash := accounts.TextHash([]byte(plainMessage))
	return s.checkRecovered(claimedAddress, hash, signature)
}

func (s *SignatureService) checkRecovered(claimedAddress string, hash, signature []byte) error {
	recovered, err := recoverAddress(hash, signature)
	if err != nil {
		s.logger.Debug("Signature recovery failed", zap.Error(err))
		return err
	}

	if !strings.EqualFold(recovered.Hex(), claimedAddress) {
		return newServiceError(CodeAddressMismatch, "recovered signer does not match claimed address").
			withDetail("claimed", common.HexToAddress(claimedAddress).Hex()).
			withDetail("recovered", recovered.Hex())
	}

	return nil
}

// recoverAddress recovers the signing address from a 65-byte r||s||v
// signature over hash. Wallets emit v as 27/28; go-ethereum expects 0/1.
func recoverAddress(hash, signature []byte) (common.Address, error) {
	if len(signature) != signatureLength {
		return common.Address{}, newServiceError(CodeVerificationFailed, "signature has wrong length").
			withDetail("length", len(signature)).
			withDetail("expected", signatureLength)
	}

	sig := make([]byte, signatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return common.Address{}, newServiceError(CodeVerificationFailed, "signature recovery id is invalid").
			withDetail("v", signature[64])
	}

	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, wrapServiceError(CodeVerificationFailed, "public key recovery failed", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}
