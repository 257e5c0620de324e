package services_test

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/ninja813/aml-manager-backend/internal/services"
)

var (
	testToken            = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testTreasuryContract = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTreasuryWallet   = common.HexToAddress("0x4444444444444444444444444444444444444444")
	testRouter           = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

func typedDataHash(typedData apitypes.TypedData) ([]byte, string, error) {
	return apitypes.TypedDataAndHash(typedData)
}

// testPermitMessage builds a signable message the way the permit service
// would, with the given owner and smallest-unit amount.
func testPermitMessage(owner common.Address, amount string, deadline time.Time) *services.PermitMessage {
	return &services.PermitMessage{
		Domain: services.PermitDomain{
			Name:              "AML Manager",
			Version:           "1",
			ChainID:           84532,
			VerifyingContract: testTreasuryContract.Hex(),
		},
		Value: services.PermitValue{
			Owner:     owner.Hex(),
			Token:     testToken.Hex(),
			Spender:   testTreasuryContract.Hex(),
			Amount:    amount,
			Nonce:     "314159265358979323846264338327950288419",
			Deadline:  uint64(deadline.Unix()),
			Statement: "I authorize the treasury to transfer tokens from my balance.",
		},
	}
}
