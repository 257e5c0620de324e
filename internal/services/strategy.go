package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ninja813/aml-manager-backend/internal/chain"
	"github.com/ninja813/aml-manager-backend/internal/config"
)

// DelegationStrategy abstracts how the treasury actually pulls tokens from a
// user. Chosen once at configuration time.
type DelegationStrategy interface {
	// Name identifies the strategy in logs and results.
	Name() string

	// Spender is the address the user's signed value must authorize.
	Spender(gateway chain.Gateway) common.Address

	// RequiresOwnerAllowance reports whether the pull depends on a standing
	// ERC-20 allowance from the user. The permit scheme carries its own
	// authority in the signature; the plain scheme does not.
	RequiresOwnerAllowance() bool

	// Pull executes the delegated transfer and waits for inclusion.
	Pull(ctx context.Context, gateway chain.Gateway, pull chain.PullParams) (*chain.Receipt, error)
}

// PermitStrategy drives the treasury contract's bitmap-nonce pull entry
// point. The signature itself is consumed on-chain; nonce replay is enforced
// by the contract's bitmap, not by this server.
type PermitStrategy struct{}

func (PermitStrategy) Name() string { return config.ModePermit }

func (PermitStrategy) Spender(gateway chain.Gateway) common.Address {
	return gateway.TreasuryContract()
}

func (PermitStrategy) RequiresOwnerAllowance() bool { return false }

func (PermitStrategy) Pull(ctx context.Context, gateway chain.Gateway, pull chain.PullParams) (*chain.Receipt, error) {
	return gateway.PermitPull(ctx, pull)
}

// AllowanceStrategy executes a plain transferFrom signed by the treasury
// wallet; the user must have granted the wallet a standing allowance.
type AllowanceStrategy struct{}

func (AllowanceStrategy) Name() string { return config.ModeAllowance }

func (AllowanceStrategy) Spender(gateway chain.Gateway) common.Address {
	return gateway.TreasuryWallet()
}

func (AllowanceStrategy) RequiresOwnerAllowance() bool { return true }

func (AllowanceStrategy) Pull(ctx context.Context, gateway chain.Gateway, pull chain.PullParams) (*chain.Receipt, error) {
	return gateway.TransferFrom(ctx, pull.Token, pull.Owner, gateway.TreasuryWallet(), pull.Amount)
}

// StrategyForMode maps a configured delegation mode to its strategy.
func StrategyForMode(mode string) DelegationStrategy {
	if mode == config.ModeAllowance {
		return AllowanceStrategy{}
	}
	return PermitStrategy{}
}
