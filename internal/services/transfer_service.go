package services

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ninja813/aml-manager-backend/internal/chain"
	"github.com/ninja813/aml-manager-backend/internal/logger"
)

// maxReadRetries bounds the backoff retries of transient RPC reads inside
// the transfer pipeline. Writes are never retried: re-submitting a delegated
// pull against a consumed nonce is guaranteed to fail again.
const maxReadRetries = 3

// TransferResult is produced only after an on-chain receipt confirms
// inclusion. Balances are re-queried after inclusion so callers see deltas.
type TransferResult struct {
	TxHash      string           `json:"tx_hash"`
	BlockNumber uint64           `json:"block_number"`
	GasUsed     uint64           `json:"gas_used"`
	Amount      string           `json:"amount"` // smallest unit
	Strategy    string           `json:"strategy"`
	Approval    ApprovalInfo     `json:"approval"`
	Balances    TransferBalances `json:"balances"`
}

// ApprovalInfo reports whether a router approval had to be submitted ahead
// of the pull.
type ApprovalInfo struct {
	Required bool   `json:"required"`
	TxHash   string `json:"tx_hash,omitempty"`
}

// TransferBalances carries before/after balances for both parties, in the
// token's smallest unit. After values are empty if the post-inclusion
// re-query failed; the transfer itself still succeeded.
type TransferBalances struct {
	User     BalanceDelta `json:"user"`
	Treasury BalanceDelta `json:"treasury"`
}

// BalanceDelta is a before/after pair in smallest units.
type BalanceDelta struct {
	Before string `json:"before"`
	After  string `json:"after,omitempty"`
}

// AuthorizationSummary combines the server-held authorization view with the
// treasury contract's on-chain delegation state.
type AuthorizationSummary struct {
	HeldAuthorization bool                       `json:"held_authorization"`
	Amount            string                     `json:"amount,omitempty"`
	Deadline          uint64                     `json:"deadline,omitempty"`
	ReceivedAt        *time.Time                 `json:"received_at,omitempty"`
	Expired           bool                       `json:"expired"`
	OnChain           *chain.AuthorizationStatus `json:"on_chain,omitempty"`
}

// TransferService drives the delegated-transfer pipeline: it re-validates
// every precondition against the stored authorization and the live chain
// state, then executes the pull through the configured strategy.
//
// Transfers for the same user are serialized with a per-address lock, and a
// consumed authorization is removed from the store, so a concurrent
// duplicate fails at the lookup step instead of at the chain's nonce check.
type TransferService struct {
	gateway   chain.Gateway
	store     AuthorizationStore
	strategy  DelegationStrategy
	logger    *zap.Logger
	token     common.Address
	router    common.Address
	hasRouter bool
	ownerLock sync.Map // lowercase owner address -> *sync.Mutex
}

// NewTransferService creates a new transfer service. router is the optional
// allowance-router contract; pass hasRouter=false when the deployment does
// not use one.
func NewTransferService(gateway chain.Gateway, store AuthorizationStore, strategy DelegationStrategy, token, router common.Address, hasRouter bool) *TransferService {
	return &TransferService{
		gateway:   gateway,
		store:     store,
		strategy:  strategy,
		logger:    logger.Log,
		token:     token,
		router:    router,
		hasRouter: hasRouter,
	}
}

// Transfer executes a delegated transfer of requestedAmount display units
// from userAddress to the treasury. requestedAmount must scale to exactly
// the amount embedded in the stored authorization; no partial transfers are
// permitted against one signature.
func (s *TransferService) Transfer(ctx context.Context, userAddress, requestedAmount string) (*TransferResult, error) {
	if !common.IsHexAddress(userAddress) {
		return nil, newServiceError(CodeInvalidInput, "user address is not a valid address").
			withDetail("address", userAddress)
	}
	owner := common.HexToAddress(userAddress)

	unlock := s.lockOwner(owner)
	defer unlock()

	// Step 1: lookup
	auth, ok := s.store.Get(owner.Hex())
	if !ok {
		return nil, newServiceError(CodeNoAuthorization,
			"no authorization on file for this address; request and sign a permit message first").
			withDetail("address", owner.Hex())
	}

	// Step 2: freshness
	now := time.Now()
	deadline := auth.Deadline()
	if now.After(deadline) {
		return nil, newServiceError(CodePermitExpired, "the signed authorization has expired; request a new permit message").
			withDetail("deadline", auth.Message.Value.Deadline).
			withDetail("expired_by_seconds", int64(now.Sub(deadline).Seconds()))
	}

	// Signature shape and nonce validation are pure checks; they run before
	// any chain call so a malformed record never costs an RPC round trip.
	if len(auth.Signature) != signatureLength {
		return nil, newServiceError(CodeInvalidInput, "stored signature has wrong length").
			withDetail("length", len(auth.Signature)).
			withDetail("expected", signatureLength)
	}
	nonce, ok := new(big.Int).SetString(auth.Message.Value.Nonce, 10)
	if !ok || nonce.Sign() < 0 {
		return nil, newServiceError(CodeInvalidInput, "stored nonce is not numeric").
			withDetail("nonce", auth.Message.Value.Nonce)
	}
	signedAmount, ok := new(big.Int).SetString(auth.Message.Value.Amount, 10)
	if !ok || signedAmount.Sign() < 0 {
		return nil, newServiceError(CodeInvalidInput, "stored amount is not numeric").
			withDetail("amount", auth.Message.Value.Amount)
	}

	// Step 3: amount binding
	decimals, err := s.readDecimals(ctx)
	if err != nil {
		return nil, err
	}
	requested, err := ScaleToBaseUnits(requestedAmount, decimals)
	if err != nil {
		return nil, err
	}
	if requested.Cmp(signedAmount) != 0 {
		return nil, newServiceError(CodeAmountMismatch,
			"requested amount differs from the signed amount; sign a new permit for the requested amount").
			withDetail("requested", requested.String()).
			withDetail("signed", signedAmount.String()).
			withDetail("requested_display", FormatBaseUnits(requested, decimals)).
			withDetail("signed_display", FormatBaseUnits(signedAmount, decimals))
	}

	// Steps 4-5: balance and allowance reads have no mutual ordering
	// dependency, so they are issued concurrently and joined.
	spender := s.strategy.Spender(s.gateway)
	reads, err := s.readPreconditions(ctx, owner, spender)
	if err != nil {
		return nil, err
	}

	if reads.balance.Cmp(signedAmount) < 0 {
		return nil, newServiceError(CodeInsufficientBalance, "user balance does not cover the transfer").
			withDetail("balance", reads.balance.String()).
			withDetail("required", signedAmount.String()).
			withDetail("shortfall", new(big.Int).Sub(signedAmount, reads.balance).String())
	}

	if s.strategy.RequiresOwnerAllowance() && reads.ownerAllowance.Cmp(signedAmount) < 0 {
		return nil, newServiceError(CodeInsufficientAllowance, "user allowance to the treasury does not cover the transfer").
			withDetail("allowance", reads.ownerAllowance.String()).
			withDetail("required", signedAmount.String()).
			withDetail("spender", spender.Hex())
	}

	// Router approval sub-step: never silently treated as success.
	approval := ApprovalInfo{}
	if s.hasRouter && reads.routerAllowance.Cmp(signedAmount) < 0 {
		s.logger.Info("Router allowance insufficient, submitting approval",
			zap.String("router", s.router.Hex()),
			zap.String("current", reads.routerAllowance.String()),
			zap.String("required", signedAmount.String()),
		)

		receipt, err := s.gateway.Approve(ctx, s.token, s.router, signedAmount)
		if err != nil {
			s.logger.Error("Router approval failed", zap.Error(err))
			svcErr := wrapServiceError(CodeApprovalFailed, "router approval transaction failed; transfer aborted", err)
			if receipt != nil {
				svcErr.withDetail("approval_tx_hash", receipt.TxHash.Hex())
			}
			return nil, svcErr
		}
		approval.Required = true
		approval.TxHash = receipt.TxHash.Hex()
	}

	// Step 7: execution
	receipt, err := s.strategy.Pull(ctx, s.gateway, chain.PullParams{
		Owner:     owner,
		Token:     s.token,
		Amount:    signedAmount,
		Nonce:     nonce,
		Deadline:  new(big.Int).SetUint64(auth.Message.Value.Deadline),
		Signature: auth.Signature,
	})
	if err != nil {
		if errors.Is(err, chain.ErrReverted) {
			svcErr := wrapServiceError(CodeTransferReverted, "delegated pull reverted on-chain", err).
				withDetail("possible_causes", []string{
					"malformed signature",
					"reused nonce",
					"expired deadline",
					"amount mismatch",
					"missing approval",
				})
			if receipt != nil {
				svcErr.withDetail("tx_hash", receipt.TxHash.Hex())
			}
			return nil, svcErr
		}
		s.logger.Error("Delegated pull submission failed",
			zap.String("owner", owner.Hex()),
			zap.Error(err))
		return nil, wrapServiceError(CodeUpstreamUnavailable, "failed to submit delegated pull", err)
	}

	// The authorization is single-use: burn it so a concurrent duplicate
	// fails at lookup rather than at the chain's replay check.
	s.store.Remove(owner.Hex())

	result := &TransferResult{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
		Amount:      signedAmount.String(),
		Strategy:    s.strategy.Name(),
		Approval:    approval,
		Balances: TransferBalances{
			User:     BalanceDelta{Before: reads.balance.String()},
			Treasury: BalanceDelta{Before: reads.treasuryBalance.String()},
		},
	}

	// Step 8: post-inclusion balance deltas. The transfer is already final;
	// a failed re-read degrades to a warning.
	if after, err := s.readBalance(ctx, owner); err == nil {
		result.Balances.User.After = after.String()
	} else {
		s.logger.Warn("Failed to re-query user balance after transfer", zap.Error(err))
	}
	if after, err := s.readBalance(ctx, s.gateway.TreasuryWallet()); err == nil {
		result.Balances.Treasury.After = after.String()
	} else {
		s.logger.Warn("Failed to re-query treasury balance after transfer", zap.Error(err))
	}

	s.logger.Info("Delegated transfer complete",
		zap.String("owner", owner.Hex()),
		zap.String("amount", signedAmount.String()),
		zap.String("tx_hash", result.TxHash),
		zap.Uint64("block", result.BlockNumber),
		zap.String("strategy", result.Strategy),
	)

	return result, nil
}

// Status reports the held authorization for userAddress together with the
// treasury contract's on-chain view. The on-chain read is best-effort.
func (s *TransferService) Status(ctx context.Context, userAddress string) (*AuthorizationSummary, error) {
	if !common.IsHexAddress(userAddress) {
		return nil, newServiceError(CodeInvalidInput, "user address is not a valid address").
			withDetail("address", userAddress)
	}
	owner := common.HexToAddress(userAddress)

	summary := &AuthorizationSummary{}
	if auth, ok := s.store.Get(owner.Hex()); ok {
		received := auth.ReceivedAt
		summary.HeldAuthorization = true
		summary.Amount = auth.Message.Value.Amount
		summary.Deadline = auth.Message.Value.Deadline
		summary.ReceivedAt = &received
		summary.Expired = time.Now().After(auth.Deadline())
	}

	status, err := s.gateway.AuthorizationStatus(ctx, owner)
	if err != nil {
		s.logger.Warn("On-chain authorization status query failed",
			zap.String("owner", owner.Hex()),
			zap.Error(err))
	} else {
		summary.OnChain = status
	}

	return summary, nil
}

// lockOwner serializes transfer execution per user address.
func (s *TransferService) lockOwner(owner common.Address) func() {
	key := storeKey(owner.Hex())
	muIface, _ := s.ownerLock.LoadOrStore(key, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// preconditionReads is the joined output of the concurrent chain reads.
type preconditionReads struct {
	balance         *big.Int
	treasuryBalance *big.Int
	ownerAllowance  *big.Int
	routerAllowance *big.Int
}

func (s *TransferService) readPreconditions(ctx context.Context, owner, spender common.Address) (*preconditionReads, error) {
	reads := &preconditionReads{
		ownerAllowance:  new(big.Int),
		routerAllowance: new(big.Int),
	}
	var balanceErr, treasuryErr, ownerErr, routerErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		reads.balance, balanceErr = s.readBalance(ctx, owner)
	}()
	go func() {
		defer wg.Done()
		reads.treasuryBalance, treasuryErr = s.readBalance(ctx, s.gateway.TreasuryWallet())
	}()

	if s.strategy.RequiresOwnerAllowance() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reads.ownerAllowance, ownerErr = s.readAllowance(ctx, owner, spender)
		}()
	}
	if s.hasRouter {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reads.routerAllowance, routerErr = s.readAllowance(ctx, s.gateway.TreasuryWallet(), s.router)
		}()
	}
	wg.Wait()

	for _, err := range []error{balanceErr, treasuryErr, ownerErr, routerErr} {
		if err != nil {
			s.logger.Error("Precondition read failed", zap.Error(err))
			return nil, wrapServiceError(CodeUpstreamUnavailable, "chain reads failed after retries", err)
		}
	}

	return reads, nil
}

func (s *TransferService) readDecimals(ctx context.Context) (uint8, error) {
	var decimals uint8
	err := s.retryRead(ctx, func() error {
		var err error
		decimals, err = s.gateway.Decimals(ctx, s.token)
		return err
	})
	if err != nil {
		return 0, wrapServiceError(CodeUpstreamUnavailable, "failed to resolve token decimals", err)
	}
	return decimals, nil
}

func (s *TransferService) readBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := s.retryRead(ctx, func() error {
		var err error
		balance, err = s.gateway.BalanceOf(ctx, s.token, account)
		return err
	})
	return balance, err
}

func (s *TransferService) readAllowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var allowance *big.Int
	err := s.retryRead(ctx, func() error {
		var err error
		allowance, err = s.gateway.Allowance(ctx, s.token, owner, spender)
		return err
	})
	return allowance, err
}

// retryRead retries a transient RPC read with bounded exponential backoff.
func (s *TransferService) retryRead(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxReadRetries), ctx)
	return backoff.Retry(op, policy)
}
