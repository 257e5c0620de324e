package services

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ninja813/aml-manager-backend/internal/chain"
	"github.com/ninja813/aml-manager-backend/internal/logger"
)

// PermitService builds the typed-data challenges users sign. It is a pure
// query-and-compute component: it reads token decimals and the chain id
// through the gateway and never touches the authorization store.
type PermitService struct {
	gateway       chain.Gateway
	logger        *zap.Logger
	token         common.Address
	spender       common.Address
	domainName    string
	domainVersion string
	validity      time.Duration
	now           func() time.Time
	newNonce      func() *big.Int
}

// NewPermitService creates a new permit service. spender is the address the
// signed value authorizes: the treasury contract in permit mode, the treasury
// wallet in allowance mode.
func NewPermitService(gateway chain.Gateway, token, spender common.Address, domainName, domainVersion string, validity time.Duration) *PermitService {
	return &PermitService{
		gateway:       gateway,
		logger:        logger.Log,
		token:         token,
		spender:       spender,
		domainName:    domainName,
		domainVersion: domainVersion,
		validity:      validity,
		now:           time.Now,
		newNonce:      randomNonce,
	}
}

// BuildMessage constructs the challenge for userAddress over humanAmount
// display units. The amount is scaled to the token's smallest unit using the
// live on-chain decimals; the domain carries the live chain id.
func (s *PermitService) BuildMessage(ctx context.Context, userAddress, humanAmount string) (*PermitMessage, error) {
	if !common.IsHexAddress(userAddress) {
		return nil, newServiceError(CodeInvalidInput, "user address is not a valid address").
			withDetail("address", userAddress)
	}
	if humanAmount == "" {
		humanAmount = "0"
	}

	decimals, err := s.gateway.Decimals(ctx, s.token)
	if err != nil {
		s.logger.Error("Failed to resolve token decimals",
			zap.String("token", s.token.Hex()),
			zap.Error(err))
		return nil, wrapServiceError(CodeUpstreamUnavailable, "failed to resolve token decimals", err)
	}

	amount, err := ScaleToBaseUnits(humanAmount, decimals)
	if err != nil {
		return nil, err
	}

	chainID, err := s.gateway.ChainID(ctx)
	if err != nil {
		s.logger.Error("Failed to resolve chain id", zap.Error(err))
		return nil, wrapServiceError(CodeUpstreamUnavailable, "failed to resolve chain id", err)
	}

	owner := common.HexToAddress(userAddress)
	deadline := s.now().Add(s.validity).Unix()
	nonce := s.newNonce()

	message := &PermitMessage{
		Domain: PermitDomain{
			Name:              s.domainName,
			Version:           s.domainVersion,
			ChainID:           chainID.Uint64(),
			VerifyingContract: s.gateway.TreasuryContract().Hex(),
		},
		Value: PermitValue{
			Owner:    owner.Hex(),
			Token:    s.token.Hex(),
			Spender:  s.spender.Hex(),
			Amount:   amount.String(),
			Nonce:    nonce.String(),
			Deadline: uint64(deadline),
			Statement: fmt.Sprintf("I authorize %s to transfer %s %s tokens from my balance.",
				s.spender.Hex(), FormatBaseUnits(amount, decimals), s.token.Hex()),
		},
	}

	s.logger.Debug("Built permit challenge",
		zap.String("owner", owner.Hex()),
		zap.String("amount", amount.String()),
		zap.String("nonce", nonce.String()),
		zap.Int64("deadline", deadline),
	)

	return message, nil
}

// randomNonce draws 128 bits of entropy. Collision resistance is what
// matters for bitmap replay protection; adversarial unpredictability is not
// required.
func randomNonce() *big.Int {
	id := uuid.New()
	return new(big.Int).SetBytes(id[:])
}
