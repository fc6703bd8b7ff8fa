package store_test

import (
	"errors"
	"math"
	"testing"

	"github.com/phrazzld/magicphoto-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{store.ErrTaskNotFound, store.ErrUserNotFound, store.ErrGalleryItemNotFound} {
		assert.True(t, store.IsNotFoundError(err), err.Error())
		assert.False(t, store.IsDuplicateError(err), err.Error())
	}
	assert.Equal(t, "entity not found: task", store.ErrTaskNotFound.Error())
	assert.False(t, errors.Is(store.ErrTaskNotFound, store.ErrUserNotFound))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	err := store.NewStoreError("task", "update", "merge rejected", store.ErrUpdateFailed)
	assert.Equal(t, "update operation on task failed: merge rejected: update failed", err.Error())
	assert.ErrorIs(t, err, store.ErrUpdateFailed)

	var storeErr *store.StoreError
	assert.True(t, errors.As(error(err), &storeErr))
	assert.Equal(t, "task", storeErr.Entity)

	bare := store.NewStoreError("user", "debit", "no rows", nil)
	assert.Equal(t, "debit operation on user failed: no rows", bare.Error())
}

func TestPageOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		page, pageSize int
		want           int
	}{
		{"first page", 1, 10, 0},
		{"second page", 2, 10, 10},
		{"page below one", 0, 10, 0},
		{"non-positive size", 3, 0, 0},
		{"largest exact offset", math.MaxInt/3 + 1, 3, math.MaxInt / 3 * 3},
		{"overflow saturates", 6148914691236517206, 3, math.MaxInt},
		{"max page", math.MaxInt, 2, math.MaxInt},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, store.PageOffset(tc.page, tc.pageSize))
		})
	}
}
