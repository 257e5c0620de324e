package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Delegation modes supported by the transfer pipeline.
const (
	ModePermit    = "permit"
	ModeAllowance = "allowance"
)

// Config holds all process configuration, loaded once at startup.
type Config struct {
	Stage string
	Port  string

	// Chain access
	RPCURL          string
	ExpectedChainID int64 // 0 means "trust the node"

	// Contract addresses
	TokenAddress    common.Address
	TreasuryAddress common.Address
	RouterAddress   common.Address // optional allowance router
	HasRouter       bool

	// Treasury-side signing key (hex, 0x-prefixed)
	TreasuryPrivateKey string

	// Delegation strategy: permit or allowance
	DelegationMode string

	// Permit challenge parameters
	PermitDomainName    string
	PermitDomainVersion string
	PermitValidity      time.Duration

	// Operator auth
	JWTSecret string

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitRPS       int
	RateLimitBurst     int
}

// Load reads configuration from a .env file (if present) and the environment.
// Missing required values are returned as errors; callers treat them as fatal.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Stage:               getEnv("STAGE", "dev"),
		Port:                getEnv("API_PORT", "8000"),
		RPCURL:              os.Getenv("CHAIN_RPC_URL"),
		TreasuryPrivateKey:  os.Getenv("TREASURY_PRIVATE_KEY"),
		DelegationMode:      getEnv("DELEGATION_MODE", ModePermit),
		PermitDomainName:    getEnv("PERMIT_DOMAIN_NAME", "TreasuryDelegation"),
		PermitDomainVersion: getEnv("PERMIT_DOMAIN_VERSION", "1"),
		JWTSecret:           os.Getenv("API_JWT_SECRET"),
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("CHAIN_RPC_URL environment variable is required")
	}

	if cfg.TreasuryPrivateKey == "" {
		return nil, fmt.Errorf("TREASURY_PRIVATE_KEY environment variable is required")
	}
	if !isPrivateKeyValid(cfg.TreasuryPrivateKey) {
		return nil, fmt.Errorf("TREASURY_PRIVATE_KEY is not a valid private key")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("API_JWT_SECRET environment variable is required")
	}

	var err error
	cfg.TokenAddress, err = requireAddress("TOKEN_CONTRACT_ADDRESS")
	if err != nil {
		return nil, err
	}
	cfg.TreasuryAddress, err = requireAddress("TREASURY_CONTRACT_ADDRESS")
	if err != nil {
		return nil, err
	}

	if router := os.Getenv("TREASURY_ROUTER_ADDRESS"); router != "" {
		if !common.IsHexAddress(router) {
			return nil, fmt.Errorf("TREASURY_ROUTER_ADDRESS is not a valid address")
		}
		cfg.RouterAddress = common.HexToAddress(router)
		cfg.HasRouter = true
	}

	if cfg.DelegationMode != ModePermit && cfg.DelegationMode != ModeAllowance {
		return nil, fmt.Errorf("DELEGATION_MODE must be %q or %q, got %q", ModePermit, ModeAllowance, cfg.DelegationMode)
	}

	cfg.PermitValidity, err = parseDurationEnv("PERMIT_VALIDITY_WINDOW", 2*time.Hour)
	if err != nil {
		return nil, err
	}

	if chainID := os.Getenv("EXPECTED_CHAIN_ID"); chainID != "" {
		cfg.ExpectedChainID, err = strconv.ParseInt(chainID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("EXPECTED_CHAIN_ID must be an integer: %w", err)
		}
	}

	cfg.RateLimitRPS, err = parseIntEnv("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitBurst, err = parseIntEnv("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, err
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, strings.TrimSpace(origin))
		}
	} else {
		cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}
	}

	return cfg, nil
}

func requireAddress(envVar string) (common.Address, error) {
	value := os.Getenv(envVar)
	if value == "" {
		return common.Address{}, fmt.Errorf("%s environment variable is required", envVar)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s is not a valid address", envVar)
	}
	return common.HexToAddress(value), nil
}

// isPrivateKeyValid checks if the provided string is a valid Ethereum private key
// It verifies:
// 1. The key is exactly 66 characters long (including 0x prefix)
// 2. The key starts with "0x"
// 3. The remaining 64 characters are valid hexadecimal
func isPrivateKeyValid(key string) bool {
	if len(key) != 66 {
		return false
	}

	if !strings.HasPrefix(key, "0x") {
		return false
	}

	for _, c := range key[2:] {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}

	return true
}

func parseDurationEnv(envVar string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 2h): %w", envVar, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", envVar)
	}
	return d, nil
}

func parseIntEnv(envVar string, defaultValue int) (int, error) {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", envVar, err)
	}
	return n, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
