package services

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// permitPrimaryType is the EIP-712 struct name users sign. Changing it, or
// any field below, invalidates every previously issued signature.
const permitPrimaryType = "DelegatedTransfer"

var permitFields = []apitypes.Type{
	{Name: "owner", Type: "address"},
	{Name: "token", Type: "address"},
	{Name: "spender", Type: "address"},
	{Name: "amount", Type: "uint256"},
	{Name: "nonce", Type: "uint256"},
	{Name: "deadline", Type: "uint256"},
	{Name: "statement", Type: "string"},
}

// PermitDomain identifies one application instance on one chain. Signatures
// are bound to it and must never be replayable across deployments.
type PermitDomain struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           uint64 `json:"chain_id"`
	VerifyingContract string `json:"verifying_contract"`
}

// PermitValue is the concrete set of fields the user signs. Amount and nonce
// are decimal strings of integers in the token's smallest unit; deadline is
// unix seconds.
type PermitValue struct {
	Owner     string `json:"owner"`
	Token     string `json:"token"`
	Spender   string `json:"spender"`
	Amount    string `json:"amount"`
	Nonce     string `json:"nonce"`
	Deadline  uint64 `json:"deadline"`
	Statement string `json:"statement"`
}

// PermitMessage is the full signable challenge: domain plus value. The
// typed-data encoding is always rebuilt server-side from these fields, so a
// client cannot smuggle in a different schema.
type PermitMessage struct {
	Domain PermitDomain `json:"domain"`
	Value  PermitValue  `json:"value"`
}

// TypedData returns the canonical EIP-712 encoding of the message.
func (m *PermitMessage) TypedData() (apitypes.TypedData, error) {
	chainID := new(big.Int).SetUint64(m.Domain.ChainID)

	if !common.IsHexAddress(m.Value.Owner) || !common.IsHexAddress(m.Value.Token) || !common.IsHexAddress(m.Value.Spender) {
		return apitypes.TypedData{}, newServiceError(CodeInvalidInput, "message contains a malformed address")
	}

	amount, ok := new(big.Int).SetString(m.Value.Amount, 10)
	if !ok || amount.Sign() < 0 {
		return apitypes.TypedData{}, newServiceError(CodeInvalidInput, "message amount is not a non-negative integer").
			withDetail("amount", m.Value.Amount)
	}
	nonce, ok := new(big.Int).SetString(m.Value.Nonce, 10)
	if !ok || nonce.Sign() < 0 {
		return apitypes.TypedData{}, newServiceError(CodeInvalidInput, "message nonce is not a non-negative integer").
			withDetail("nonce", m.Value.Nonce)
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			permitPrimaryType: permitFields,
		},
		PrimaryType: permitPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              m.Domain.Name,
			Version:           m.Domain.Version,
			ChainId:           (*math.HexOrDecimal256)(chainID),
			VerifyingContract: m.Domain.VerifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"owner":     common.HexToAddress(m.Value.Owner).Hex(),
			"token":     common.HexToAddress(m.Value.Token).Hex(),
			"spender":   common.HexToAddress(m.Value.Spender).Hex(),
			"amount":    amount.String(),
			"nonce":     nonce.String(),
			"deadline":  new(big.Int).SetUint64(m.Value.Deadline).String(),
			"statement": m.Value.Statement,
		},
	}, nil
}

// ScaleToBaseUnits converts a decimal-string quantity in display units into
// an exact integer amount in the token's smallest unit. Precision beyond the
// token's decimals is rejected rather than rounded.
func ScaleToBaseUnits(humanAmount string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(humanAmount)
	if s == "" {
		return nil, newServiceError(CodeInvalidInput, "amount must not be empty")
	}
	if strings.HasPrefix(s, "-") {
		return nil, newServiceError(CodeInvalidInput, "amount must not be negative").
			withDetail("amount", humanAmount)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		if strings.IndexByte(frac, '.') >= 0 {
			return nil, newServiceError(CodeInvalidInput, "amount is not a decimal number").
				withDetail("amount", humanAmount)
		}
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, newServiceError(CodeInvalidInput, "amount is not a decimal number").
			withDetail("amount", humanAmount)
	}
	if len(frac) > int(decimals) {
		return nil, newServiceError(CodeInvalidInput,
			fmt.Sprintf("amount has more than %d decimal places", decimals)).
			withDetail("amount", humanAmount).
			withDetail("decimals", decimals)
	}

	// whole * 10^decimals + frac right-padded to decimals digits
	scaled, _ := new(big.Int).SetString(whole, 10)
	scaled.Mul(scaled, pow10(int(decimals)))
	if frac != "" {
		fracInt, _ := new(big.Int).SetString(frac, 10)
		fracInt.Mul(fracInt, pow10(int(decimals)-len(frac)))
		scaled.Add(scaled, fracInt)
	}
	return scaled, nil
}

// FormatBaseUnits renders a smallest-unit integer amount as a display-unit
// decimal string, trimming trailing zeros.
func FormatBaseUnits(amount *big.Int, decimals uint8) string {
	if decimals == 0 {
		return amount.String()
	}

	quo, rem := new(big.Int).QuoRem(amount, pow10(int(decimals)), new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := fmt.Sprintf("%0*s", decimals, rem.String())
	frac = strings.TrimRight(frac, "0")
	return quo.String() + "." + frac
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
