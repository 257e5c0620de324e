package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ninja813/aml-manager-backend/internal/logger"
)

// ErrReverted indicates the node included the transaction but the contract
// reverted it.
var ErrReverted = errors.New("transaction reverted on-chain")

// Client is the ethclient-backed Gateway implementation. One client serves
// one chain; multi-chain support is out of scope.
type Client struct {
	eth      *ethclient.Client
	logger   *zap.Logger
	key      *ecdsa.PrivateKey
	wallet   common.Address
	treasury common.Address
	chainID  *big.Int
}

var _ Gateway = (*Client)(nil)

// NewClient dials the RPC endpoint, loads the treasury signing key and
// verifies the node's chain id against the deployment's expectation.
// A chain id mismatch is a configuration error, not a per-request error.
func NewClient(ctx context.Context, rpcURL, treasuryKeyHex string, treasuryContract common.Address, expectedChainID int64) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial chain RPC")
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, errors.Wrap(err, "failed to query chain id")
	}
	if expectedChainID != 0 && chainID.Int64() != expectedChainID {
		eth.Close()
		return nil, errors.Errorf("chain id mismatch: node reports %s, configuration expects %d", chainID, expectedChainID)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(treasuryKeyHex, "0x"))
	if err != nil {
		eth.Close()
		return nil, errors.Wrap(err, "invalid treasury private key")
	}

	client := &Client{
		eth:      eth,
		logger:   logger.Log,
		key:      key,
		wallet:   crypto.PubkeyToAddress(key.PublicKey),
		treasury: treasuryContract,
		chainID:  chainID,
	}

	client.logger.Info("Connected to chain RPC",
		zap.String("chain_id", chainID.String()),
		zap.String("treasury_wallet", client.wallet.Hex()),
		zap.String("treasury_contract", treasuryContract.Hex()),
	)

	return client, nil
}

// ChainID returns the chain id resolved at connection time.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

// BalanceOf returns the ERC-20 balance of account in the token's smallest unit.
func (c *Client) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode balanceOf call")
	}

	out, err := c.call(ctx, token, data)
	if err != nil {
		return nil, errors.Wrap(err, "balanceOf call failed")
	}

	results, err := erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode balanceOf result")
	}
	return abiBigInt(results[0])
}

// Allowance returns the amount spender may move on owner's behalf.
func (c *Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode allowance call")
	}

	out, err := c.call(ctx, token, data)
	if err != nil {
		return nil, errors.Wrap(err, "allowance call failed")
	}

	results, err := erc20ABI.Unpack("allowance", out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode allowance result")
	}
	return abiBigInt(results[0])
}

// Decimals returns the token's display-unit scaling factor.
func (c *Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode decimals call")
	}

	out, err := c.call(ctx, token, data)
	if err != nil {
		return 0, errors.Wrap(err, "decimals call failed")
	}

	results, err := erc20ABI.Unpack("decimals", out)
	if err != nil {
		return 0, errors.Wrap(err, "failed to decode decimals result")
	}
	decimals, ok := results[0].(uint8)
	if !ok {
		return 0, errors.Errorf("unexpected decimals type %T", results[0])
	}
	return decimals, nil
}

// Symbol returns the token's symbol.
func (c *Client) Symbol(ctx context.Context, token common.Address) (string, error) {
	data, err := erc20ABI.Pack("symbol")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode symbol call")
	}

	out, err := c.call(ctx, token, data)
	if err != nil {
		return "", errors.Wrap(err, "symbol call failed")
	}

	results, err := erc20ABI.Unpack("symbol", out)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode symbol result")
	}
	symbol, ok := results[0].(string)
	if !ok {
		return "", errors.Errorf("unexpected symbol type %T", results[0])
	}
	return symbol, nil
}

// Approve submits an ERC-20 approve from the treasury wallet and waits for
// inclusion.
func (c *Client) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*Receipt, error) {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode approve call")
	}
	return c.submit(ctx, token, data)
}

// PermitPull invokes the treasury contract's signature-authorized pull.
func (c *Client) PermitPull(ctx context.Context, pull PullParams) (*Receipt, error) {
	data, err := treasuryABI.Pack("pullWithAuthorization",
		pull.Owner, pull.Token, pull.Amount, pull.Nonce, pull.Deadline, pull.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode pullWithAuthorization call")
	}
	return c.submit(ctx, c.treasury, data)
}

// TransferFrom submits a plain allowance-based transferFrom signed by the
// treasury wallet.
func (c *Client) TransferFrom(ctx context.Context, token, from, to common.Address, amount *big.Int) (*Receipt, error) {
	data, err := erc20ABI.Pack("transferFrom", from, to, amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode transferFrom call")
	}
	return c.submit(ctx, token, data)
}

// AuthorizationStatus queries the treasury contract's delegation state for a user.
func (c *Client) AuthorizationStatus(ctx context.Context, user common.Address) (*AuthorizationStatus, error) {
	data, err := treasuryABI.Pack("authorizationState", user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode authorizationState call")
	}

	out, err := c.call(ctx, c.treasury, data)
	if err != nil {
		return nil, errors.Wrap(err, "authorizationState call failed")
	}

	results, err := treasuryABI.Unpack("authorizationState", out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode authorizationState result")
	}
	if len(results) != 2 {
		return nil, errors.Errorf("unexpected authorizationState result arity %d", len(results))
	}
	isAuthorized, _ := results[0].(bool)
	isValid, _ := results[1].(bool)
	return &AuthorizationStatus{IsAuthorized: isAuthorized, IsValid: isValid}, nil
}

// TreasuryWallet is the server-side signing wallet's address.
func (c *Client) TreasuryWallet() common.Address {
	return c.wallet
}

// TreasuryContract is the delegated-pull contract's address.
func (c *Client) TreasuryContract() common.Address {
	return c.treasury
}

// ProbeToken reads and logs the configured token's metadata. Failures degrade
// to a warning; this is a diagnostic, not a precondition.
func (c *Client) ProbeToken(ctx context.Context, token common.Address) {
	symbol, err := c.Symbol(ctx, token)
	if err != nil {
		c.logger.Warn("Token metadata probe failed",
			zap.String("token", token.Hex()),
			zap.Error(err),
		)
		return
	}

	decimals, err := c.Decimals(ctx, token)
	if err != nil {
		c.logger.Warn("Token metadata probe failed",
			zap.String("token", token.Hex()),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("Token metadata",
		zap.String("token", token.Hex()),
		zap.String("symbol", symbol),
		zap.Uint8("decimals", decimals),
	)
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
	c.logger.Info("Closed chain RPC connection",
		zap.String("chain_id", c.chainID.String()),
	)
}

// call executes a read-only contract call at the latest block.
func (c *Client) call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	return c.eth.CallContract(ctx, ethereum.CallMsg{
		From: c.wallet,
		To:   &to,
		Data: data,
	}, nil)
}

// submit signs a transaction with the treasury key, sends it and blocks until
// the node reports inclusion or the context is cancelled. A receipt with
// status 0 is returned together with ErrReverted so callers can surface the
// on-chain diagnostic.
func (c *Client) submit(ctx context.Context, to common.Address, data []byte) (*Receipt, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.wallet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch pending nonce")
	}

	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch chain head")
	}

	var tx *types.Transaction
	if head.BaseFee != nil {
		// EIP-1559 fee fields from the node's suggestions
		tipCap, err := c.eth.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch gas tip suggestion")
		}
		feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

		gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
			From:      c.wallet,
			To:        &to,
			Data:      data,
			GasTipCap: tipCap,
			GasFeeCap: feeCap,
		})
		if err != nil {
			return nil, errors.Wrap(err, "gas estimation failed")
		}

		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   c.chainID,
			Nonce:     nonce,
			GasTipCap: tipCap,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &to,
			Data:      data,
		})
	} else {
		// Legacy chain without base fees
		gasPrice, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch gas price suggestion")
		}

		gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
			From:     c.wallet,
			To:       &to,
			Data:     data,
			GasPrice: gasPrice,
		})
		if err != nil {
			return nil, errors.Wrap(err, "gas estimation failed")
		}

		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &to,
			Data:     data,
		})
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, errors.Wrap(err, "failed to send transaction")
	}

	c.logger.Info("Submitted transaction, awaiting inclusion",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
	)

	mined, err := bind.WaitMined(ctx, c.eth, signed)
	if err != nil {
		return nil, errors.Wrap(err, "failed waiting for transaction inclusion")
	}

	receipt := &Receipt{
		TxHash:      mined.TxHash,
		BlockNumber: mined.BlockNumber.Uint64(),
		GasUsed:     mined.GasUsed,
		Status:      mined.Status,
	}

	if mined.Status != types.ReceiptStatusSuccessful {
		return receipt, errors.Wrapf(ErrReverted, "tx %s", mined.TxHash.Hex())
	}

	return receipt, nil
}

func abiBigInt(v interface{}) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return nil, errors.Errorf("unexpected uint256 type %T", v)
	}
	return n, nil
}
