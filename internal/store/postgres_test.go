package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/flightdeals/internal/store"
)

func TestPriceHistory_WithoutPoolIsUnavailable(t *testing.T) {
	h := store.NewPriceHistory(nil)
	assert.False(t, h.Available())

	_, err := h.RecentPrices(context.Background(), "IND", "MCO", time.Now())
	assert.ErrorIs(t, err, store.ErrUnavailable)

	h.Close()

	var missing *store.PriceHistory
	assert.False(t, missing.Available())
}

func TestNewPostgresPool_BadURL(t *testing.T) {
	_, err := store.NewPostgresPool(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}
