package services_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ninja813/aml-manager-backend/internal/chain"
	"github.com/ninja813/aml-manager-backend/internal/mocks"
	"github.com/ninja813/aml-manager-backend/internal/services"
)

var testOwner = common.HexToAddress("0x2222222222222222222222222222222222222222")

// seedAuthorization puts a verified-looking record for testOwner in the
// store: 5 tokens at 6 decimals, expiring at deadline.
func seedAuthorization(store services.AuthorizationStore, deadline time.Time) services.Authorization {
	sig := make([]byte, 65)
	for i := range sig {
		sig[i] = byte(i)
	}
	sig[64] = 27

	auth := services.Authorization{
		UserAddress: testOwner.Hex(),
		Signature:   sig,
		Message:     *testPermitMessage(testOwner, "5000000", deadline),
		ReceivedAt:  time.Now(),
	}
	auth.Message.Value.Nonce = "42"
	store.Put(auth)
	return auth
}

func newPermitTransferService(gateway chain.Gateway, store services.AuthorizationStore) *services.TransferService {
	return services.NewTransferService(gateway, store, services.PermitStrategy{}, testToken, common.Address{}, false)
}

func TestTransferService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("executes a delegated pull and reports deltas", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		auth := seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)

		// Precondition reads, then post-inclusion re-reads.
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(95_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(5_000_000), nil)

		txHash := common.HexToHash("0xabc123")
		mockGateway.EXPECT().PermitPull(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, pull chain.PullParams) (*chain.Receipt, error) {
				assert.Equal(t, testOwner, pull.Owner)
				assert.Equal(t, testToken, pull.Token)
				assert.Equal(t, "5000000", pull.Amount.String())
				assert.Equal(t, "42", pull.Nonce.String())
				assert.Equal(t, auth.Message.Value.Deadline, pull.Deadline.Uint64())
				assert.Equal(t, auth.Signature, pull.Signature)
				return &chain.Receipt{TxHash: txHash, BlockNumber: 1234, GasUsed: 80_000, Status: 1}, nil
			})

		service := newPermitTransferService(mockGateway, store)
		result, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.NoError(t, err)

		assert.Equal(t, txHash.Hex(), result.TxHash)
		assert.Equal(t, uint64(1234), result.BlockNumber)
		assert.Equal(t, uint64(80_000), result.GasUsed)
		assert.Equal(t, "5000000", result.Amount)
		assert.Equal(t, "permit", result.Strategy)
		assert.False(t, result.Approval.Required)

		assert.Equal(t, "100000000", result.Balances.User.Before)
		assert.Equal(t, "95000000", result.Balances.User.After)
		assert.Equal(t, "0", result.Balances.Treasury.Before)
		assert.Equal(t, "5000000", result.Balances.Treasury.After)

		// Single-use: the consumed authorization is gone.
		_, held := store.Get(testOwner.Hex())
		assert.False(t, held)
	})

	t.Run("second transfer against a consumed authorization fails at lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		service := newPermitTransferService(mocks.NewMockGateway(ctrl), store)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeNoAuthorization, svcErr.Code)
	})

	t.Run("expired authorization reports the overrun", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		auth := seedAuthorization(store, time.Now().Add(-10*time.Minute))

		service := newPermitTransferService(mocks.NewMockGateway(ctrl), store)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodePermitExpired, svcErr.Code)
		assert.Equal(t, auth.Message.Value.Deadline, svcErr.Details["deadline"])

		expiredBy, ok := svcErr.Details["expired_by_seconds"].(int64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, expiredBy, int64(9*60))
	})

	t.Run("malformed stored signature fails before any chain call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		auth := seedAuthorization(store, time.Now().Add(time.Hour))
		auth.Signature = make([]byte, 120)
		store.Put(auth)

		// No gateway expectations: a shape failure must not reach the chain.
		service := newPermitTransferService(mocks.NewMockGateway(ctrl), store)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeInvalidInput, svcErr.Code)
		assert.Equal(t, 120, svcErr.Details["length"])
	})

	t.Run("requested amount must equal the signed amount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)

		service := newPermitTransferService(mockGateway, store)

		_, err := service.Transfer(ctx, testOwner.Hex(), "6")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeAmountMismatch, svcErr.Code)
		assert.Equal(t, "6000000", svcErr.Details["requested"])
		assert.Equal(t, "5000000", svcErr.Details["signed"])
		assert.Equal(t, "6", svcErr.Details["requested_display"])
		assert.Equal(t, "5", svcErr.Details["signed_display"])
	})

	t.Run("insufficient balance reports the shortfall", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(1_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil)

		service := newPermitTransferService(mockGateway, store)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeInsufficientBalance, svcErr.Code)
		assert.Equal(t, "1000000", svcErr.Details["balance"])
		assert.Equal(t, "5000000", svcErr.Details["required"])
		assert.Equal(t, "4000000", svcErr.Details["shortfall"])
	})

	t.Run("allowance mode requires a standing owner allowance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil)
		mockGateway.EXPECT().Allowance(gomock.Any(), testToken, testOwner, testTreasuryWallet).Return(big.NewInt(100), nil)

		service := services.NewTransferService(mockGateway, store, services.AllowanceStrategy{}, testToken, common.Address{}, false)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeInsufficientAllowance, svcErr.Code)
		assert.Equal(t, "100", svcErr.Details["allowance"])
		assert.Equal(t, "5000000", svcErr.Details["required"])
	})

	t.Run("allowance mode pulls with transferFrom", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil).Times(2)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil).Times(2)
		mockGateway.EXPECT().Allowance(gomock.Any(), testToken, testOwner, testTreasuryWallet).Return(big.NewInt(10_000_000), nil)
		mockGateway.EXPECT().TransferFrom(gomock.Any(), testToken, testOwner, testTreasuryWallet, big.NewInt(5_000_000)).
			Return(&chain.Receipt{TxHash: common.HexToHash("0x1"), BlockNumber: 7, GasUsed: 60_000, Status: 1}, nil)

		service := services.NewTransferService(mockGateway, store, services.AllowanceStrategy{}, testToken, common.Address{}, false)

		result, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.NoError(t, err)
		assert.Equal(t, "allowance", result.Strategy)
	})

	t.Run("submits a router approval when the standing allowance is short", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil)
		mockGateway.EXPECT().Allowance(gomock.Any(), testToken, testTreasuryWallet, testRouter).Return(big.NewInt(0), nil)

		approveHash := common.HexToHash("0xaaa1")
		mockGateway.EXPECT().Approve(gomock.Any(), testToken, testRouter, big.NewInt(5_000_000)).
			Return(&chain.Receipt{TxHash: approveHash, BlockNumber: 10, GasUsed: 46_000, Status: 1}, nil)
		mockGateway.EXPECT().PermitPull(gomock.Any(), gomock.Any()).
			Return(&chain.Receipt{TxHash: common.HexToHash("0xaaa2"), BlockNumber: 11, GasUsed: 80_000, Status: 1}, nil)

		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(95_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(5_000_000), nil)

		service := services.NewTransferService(mockGateway, store, services.PermitStrategy{}, testToken, testRouter, true)

		result, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.NoError(t, err)
		assert.True(t, result.Approval.Required)
		assert.Equal(t, approveHash.Hex(), result.Approval.TxHash)
		assert.Equal(t, "95000000", result.Balances.User.After)
		assert.Equal(t, "5000000", result.Balances.Treasury.After)
	})

	t.Run("skips the approval when the router allowance covers the amount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil).Times(2)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil).Times(2)
		mockGateway.EXPECT().Allowance(gomock.Any(), testToken, testTreasuryWallet, testRouter).Return(big.NewInt(5_000_000), nil)
		mockGateway.EXPECT().PermitPull(gomock.Any(), gomock.Any()).
			Return(&chain.Receipt{TxHash: common.HexToHash("0x2"), BlockNumber: 12, GasUsed: 80_000, Status: 1}, nil)

		service := services.NewTransferService(mockGateway, store, services.PermitStrategy{}, testToken, testRouter, true)

		result, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.NoError(t, err)
		assert.False(t, result.Approval.Required)
		assert.Empty(t, result.Approval.TxHash)
	})

	t.Run("a failed approval aborts the transfer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil)
		mockGateway.EXPECT().Allowance(gomock.Any(), testToken, testTreasuryWallet, testRouter).Return(big.NewInt(0), nil)
		mockGateway.EXPECT().Approve(gomock.Any(), testToken, testRouter, big.NewInt(5_000_000)).
			Return(nil, errors.Wrap(chain.ErrReverted, "approve"))

		service := services.NewTransferService(mockGateway, store, services.PermitStrategy{}, testToken, testRouter, true)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeApprovalFailed, svcErr.Code)

		// The authorization survives a pre-execution failure.
		_, held := store.Get(testOwner.Hex())
		assert.True(t, held)
	})

	t.Run("an on-chain revert keeps the authorization and lists causes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil)

		revertHash := common.HexToHash("0xdead")
		mockGateway.EXPECT().PermitPull(gomock.Any(), gomock.Any()).
			Return(&chain.Receipt{TxHash: revertHash, BlockNumber: 99, GasUsed: 30_000, Status: 0},
				errors.Wrapf(chain.ErrReverted, "tx %s", revertHash.Hex()))

		service := newPermitTransferService(mockGateway, store)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeTransferReverted, svcErr.Code)
		assert.Equal(t, revertHash.Hex(), svcErr.Details["tx_hash"])

		causes, ok := svcErr.Details["possible_causes"].([]string)
		require.True(t, ok)
		assert.Contains(t, causes, "reused nonce")

		_, held := store.Get(testOwner.Hex())
		assert.True(t, held)
	})

	t.Run("a submission failure surfaces as upstream unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil)
		mockGateway.EXPECT().PermitPull(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("rpc: connection refused"))

		service := newPermitTransferService(mockGateway, store)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeUpstreamUnavailable, svcErr.Code)
	})

	t.Run("transient read failures are retried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(0), errors.New("rpc: timeout"))
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil).Times(2)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil).Times(2)
		mockGateway.EXPECT().PermitPull(gomock.Any(), gomock.Any()).
			Return(&chain.Receipt{TxHash: common.HexToHash("0x3"), BlockNumber: 15, GasUsed: 80_000, Status: 1}, nil)

		service := newPermitTransferService(mockGateway, store)

		_, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.NoError(t, err)
	})

	t.Run("a failed post-inclusion re-read does not fail the transfer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().TreasuryWallet().Return(testTreasuryWallet).AnyTimes()
		mockGateway.EXPECT().TreasuryContract().Return(testTreasuryContract).AnyTimes()
		mockGateway.EXPECT().Decimals(gomock.Any(), testToken).Return(uint8(6), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).Return(big.NewInt(100_000_000), nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).Return(big.NewInt(0), nil)
		mockGateway.EXPECT().PermitPull(gomock.Any(), gomock.Any()).
			Return(&chain.Receipt{TxHash: common.HexToHash("0x4"), BlockNumber: 16, GasUsed: 80_000, Status: 1}, nil)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testOwner).
			Return(nil, errors.New("rpc: connection refused")).Times(4)
		mockGateway.EXPECT().BalanceOf(gomock.Any(), testToken, testTreasuryWallet).
			Return(nil, errors.New("rpc: connection refused")).Times(4)

		service := newPermitTransferService(mockGateway, store)

		result, err := service.Transfer(ctx, testOwner.Hex(), "5")
		require.NoError(t, err)
		assert.Equal(t, "100000000", result.Balances.User.Before)
		assert.Empty(t, result.Balances.User.After)
		assert.Empty(t, result.Balances.Treasury.After)
	})

	t.Run("invalid address rejected up front", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := newPermitTransferService(mocks.NewMockGateway(ctrl), services.NewMemoryAuthorizationStore())

		_, err := service.Transfer(ctx, "nobody", "5")
		require.Error(t, err)
		svcErr, ok := services.AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, services.CodeInvalidInput, svcErr.Code)
	})
}

func TestTransferService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("combines the held record with the on-chain view", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		auth := seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().AuthorizationStatus(gomock.Any(), testOwner).
			Return(&chain.AuthorizationStatus{IsAuthorized: true, IsValid: true}, nil)

		service := newPermitTransferService(mockGateway, store)

		summary, err := service.Status(ctx, testOwner.Hex())
		require.NoError(t, err)
		assert.True(t, summary.HeldAuthorization)
		assert.Equal(t, "5000000", summary.Amount)
		assert.Equal(t, auth.Message.Value.Deadline, summary.Deadline)
		assert.False(t, summary.Expired)
		require.NotNil(t, summary.OnChain)
		assert.True(t, summary.OnChain.IsAuthorized)
	})

	t.Run("reports expiry on a held record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(-time.Minute))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().AuthorizationStatus(gomock.Any(), testOwner).
			Return(&chain.AuthorizationStatus{}, nil)

		service := newPermitTransferService(mockGateway, store)

		summary, err := service.Status(ctx, testOwner.Hex())
		require.NoError(t, err)
		assert.True(t, summary.HeldAuthorization)
		assert.True(t, summary.Expired)
	})

	t.Run("on-chain read failure degrades to a partial summary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := services.NewMemoryAuthorizationStore()
		seedAuthorization(store, time.Now().Add(time.Hour))

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().AuthorizationStatus(gomock.Any(), testOwner).
			Return(nil, errors.New("rpc: connection refused"))

		service := newPermitTransferService(mockGateway, store)

		summary, err := service.Status(ctx, testOwner.Hex())
		require.NoError(t, err)
		assert.True(t, summary.HeldAuthorization)
		assert.Nil(t, summary.OnChain)
	})

	t.Run("no held record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockGateway := mocks.NewMockGateway(ctrl)
		mockGateway.EXPECT().AuthorizationStatus(gomock.Any(), testOwner).
			Return(&chain.AuthorizationStatus{}, nil)

		service := newPermitTransferService(mockGateway, services.NewMemoryAuthorizationStore())

		summary, err := service.Status(ctx, testOwner.Hex())
		require.NoError(t, err)
		assert.False(t, summary.HeldAuthorization)
		assert.Nil(t, summary.ReceivedAt)
	})
}
