package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)), func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestCreateCoupon(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	expires := now.Add(48 * time.Hour)
	created, err := svc.Create(ctx, CreateCouponInput{Name: "Ten off", Code: " SAVE10 ", DiscountPercent: 10, ExpiresAt: &expires})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", created.Code)
	assert.False(t, created.Expired)

	_, err = svc.Create(ctx, CreateCouponInput{Name: "Again", Code: "SAVE10", DiscountPercent: 20})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict), "duplicate code: %v", err)
}

func TestCreateCouponValidatesPercent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, percent := range []int64{0, 101, -5} {
		_, err := svc.Create(ctx, CreateCouponInput{Name: "bad", Code: "BAD", DiscountPercent: percent})
		assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "percent %d: %v", percent, err)
	}
}

func TestListMarksExpiredCoupons(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	past := now.Add(-time.Hour)
	_, err := svc.Create(ctx, CreateCouponInput{Name: "Old", Code: "EXPIRED10", DiscountPercent: 10, ExpiresAt: &past})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCouponInput{Name: "Forever", Code: "ALWAYS5", DiscountPercent: 5})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	expired := map[string]bool{}
	for _, c := range list {
		expired[c.Code] = c.Expired
	}
	assert.True(t, expired["EXPIRED10"])
	assert.False(t, expired["ALWAYS5"])
}
