package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ERC-20 surface used by the gateway.
const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// Treasury delegate contract: a bitmap-nonce pull entry point plus an
// authorization-state view.
const treasuryABIJSON = `[
	{"inputs":[{"name":"owner","type":"address"},{"name":"token","type":"address"},{"name":"amount","type":"uint256"},{"name":"nonce","type":"uint256"},{"name":"deadline","type":"uint256"},{"name":"signature","type":"bytes"}],"name":"pullWithAuthorization","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"owner","type":"address"}],"name":"authorizationState","outputs":[{"name":"isAuthorized","type":"bool"},{"name":"isValid","type":"bool"}],"stateMutability":"view","type":"function"}
]`

var (
	erc20ABI    abi.ABI
	treasuryABI abi.ABI
)

func init() {
	var err error
	erc20ABI, err = abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic("invalid ERC-20 ABI: " + err.Error())
	}
	treasuryABI, err = abi.JSON(strings.NewReader(treasuryABIJSON))
	if err != nil {
		panic("invalid treasury ABI: " + err.Error())
	}
}
