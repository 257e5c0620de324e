package testutil

import (
	"crypto/ecdsa"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/gin-gonic/gin"
)

// TestServer creates a test HTTP server with Gin
func TestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return server
}

// TestContext creates a test Gin context
func TestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	return ctx, recorder
}

// NewSigner generates a fresh secp256k1 key pair for signature tests.
func NewSigner(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

// SignTypedData signs the EIP-712 digest of typedData the way a wallet
// would, returning a 65-byte r||s||v signature with v in {27, 28}.
func SignTypedData(t *testing.T, key *ecdsa.PrivateKey, typedData apitypes.TypedData) []byte {
	t.Helper()

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		t.Fatalf("failed to hash typed data: %v", err)
	}

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("failed to sign typed data: %v", err)
	}
	sig[64] += 27
	return sig
}

// SignPersonal signs a plain string with the personal-sign scheme.
func SignPersonal(t *testing.T, key *ecdsa.PrivateKey, message string) []byte {
	t.Helper()

	hash := accounts.TextHash([]byte(message))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		t.Fatalf("failed to sign message: %v", err)
	}
	sig[64] += 27
	return sig
}
