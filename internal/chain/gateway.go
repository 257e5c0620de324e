package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Receipt summarizes an included transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Status      uint64 // 1 = success, 0 = reverted
}

// PullParams carries everything the treasury contract needs to execute
// a signature-authorized pull of tokens from a user's balance.
type PullParams struct {
	Owner     common.Address
	Token     common.Address
	Amount    *big.Int
	Nonce     *big.Int
	Deadline  *big.Int
	Signature []byte // 65 bytes, r || s || v
}

// AuthorizationStatus is the treasury contract's view of a user's
// delegation state.
type AuthorizationStatus struct {
	IsAuthorized bool `json:"is_authorized"`
	IsValid      bool `json:"is_valid"`
}

// Gateway is the single capability through which the core reaches the chain.
// All balance, allowance and metadata reads go through here; no handler or
// service talks to an RPC endpoint directly.
type Gateway interface {
	// ChainID returns the network identity reported by the node.
	ChainID(ctx context.Context) (*big.Int, error)

	// BalanceOf returns the ERC-20 balance of account, in the token's
	// smallest unit.
	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)

	// Allowance returns how much spender may move on owner's behalf.
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)

	// Decimals returns the token's display-unit scaling factor.
	Decimals(ctx context.Context, token common.Address) (uint8, error)

	// Symbol returns the token's symbol. Best-effort diagnostic read.
	Symbol(ctx context.Context, token common.Address) (string, error)

	// Approve submits an ERC-20 approve from the treasury wallet and
	// waits for inclusion.
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*Receipt, error)

	// PermitPull invokes the treasury contract's signature-authorized pull
	// and waits for inclusion.
	PermitPull(ctx context.Context, pull PullParams) (*Receipt, error)

	// TransferFrom submits a plain allowance-based transferFrom signed by
	// the treasury wallet and waits for inclusion.
	TransferFrom(ctx context.Context, token, from, to common.Address, amount *big.Int) (*Receipt, error)

	// AuthorizationStatus queries the treasury contract's delegation state
	// for a user.
	AuthorizationStatus(ctx context.Context, user common.Address) (*AuthorizationStatus, error)

	// TreasuryWallet is the address of the server-side signing wallet.
	TreasuryWallet() common.Address

	// TreasuryContract is the address of the delegated-pull contract.
	TreasuryContract() common.Address
}
