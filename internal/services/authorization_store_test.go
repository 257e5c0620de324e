package services_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja813/aml-manager-backend/internal/services"
)

func storeRecord(owner string, deadline time.Time) services.Authorization {
	return services.Authorization{
		UserAddress: owner,
		Signature:   make([]byte, 65),
		Message:     *testPermitMessage(testTreasuryWallet, "5000000", deadline),
		ReceivedAt:  time.Now(),
	}
}

func TestMemoryAuthorizationStore(t *testing.T) {
	owner := "0x2222222222222222222222222222222222222222"
	deadline := time.Now().Add(time.Hour)

	t.Run("put then get", func(t *testing.T) {
		store := services.NewMemoryAuthorizationStore()
		store.Put(storeRecord(owner, deadline))

		got, ok := store.Get(owner)
		require.True(t, ok)
		assert.Equal(t, owner, got.UserAddress)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		store := services.NewMemoryAuthorizationStore()
		store.Put(storeRecord(owner, deadline))

		_, ok := store.Get(strings.ToUpper(owner))
		assert.True(t, ok)
	})

	t.Run("most recent authorization wins", func(t *testing.T) {
		store := services.NewMemoryAuthorizationStore()

		first := storeRecord(owner, deadline)
		first.Message.Value.Amount = "1000000"
		store.Put(first)

		second := storeRecord(owner, deadline)
		second.Message.Value.Amount = "2000000"
		store.Put(second)

		got, ok := store.Get(owner)
		require.True(t, ok)
		assert.Equal(t, "2000000", got.Message.Value.Amount)
	})

	t.Run("remove", func(t *testing.T) {
		store := services.NewMemoryAuthorizationStore()
		store.Put(storeRecord(owner, deadline))
		store.Remove(owner)

		_, ok := store.Get(owner)
		assert.False(t, ok)
	})

	t.Run("missing address", func(t *testing.T) {
		store := services.NewMemoryAuthorizationStore()
		_, ok := store.Get(owner)
		assert.False(t, ok)
	})

	t.Run("expired record stays readable within the grace window", func(t *testing.T) {
		store := services.NewMemoryAuthorizationStore()
		store.Put(storeRecord(owner, time.Now().Add(-time.Hour)))

		got, ok := store.Get(owner)
		require.True(t, ok, "recently expired records are kept so expiry can be reported")
		assert.True(t, time.Now().After(got.Deadline()))
	})

	t.Run("record past the grace window is evicted on read", func(t *testing.T) {
		store := services.NewMemoryAuthorizationStore()
		store.Put(storeRecord(owner, time.Now().Add(-25*time.Hour)))

		_, ok := store.Get(owner)
		assert.False(t, ok)

		_, ok = store.Get(owner)
		assert.False(t, ok)
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		store := services.NewMemoryAuthorizationStore()
		owners := []string{
			"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			"0xcccccccccccccccccccccccccccccccccccccccc",
		}

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			for _, addr := range owners {
				wg.Add(3)
				go func(addr string) {
					defer wg.Done()
					store.Put(storeRecord(addr, deadline))
				}(addr)
				go func(addr string) {
					defer wg.Done()
					store.Get(addr)
				}(addr)
				go func(addr string) {
					defer wg.Done()
					store.Remove(addr)
				}(addr)
			}
		}
		wg.Wait()
	})
}
