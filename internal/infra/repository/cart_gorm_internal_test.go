package repository

import (
	"errors"
	"testing"

	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestRetryOnDuplicate(t *testing.T) {
	t.Run("duplicate then merge", func(t *testing.T) {
		calls := 0
		err := retryOnDuplicate(func() error {
			calls++
			if calls == 1 {
				return repo.ErrDuplicate
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("retries only once", func(t *testing.T) {
		calls := 0
		err := retryOnDuplicate(func() error {
			calls++
			return repo.ErrDuplicate
		})
		assert.ErrorIs(t, err, repo.ErrDuplicate)
		assert.Equal(t, 2, calls)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := retryOnDuplicate(func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
