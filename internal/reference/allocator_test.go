package reference

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/landriskai/landrisk/internal/clock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestAllocator(t *testing.T) Allocator {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	return NewAllocator(zap.NewNop(), clk, "BR")
}

func TestNewReferenceNoFormat(t *testing.T) {
	alloc := newTestAllocator(t)

	refNo, err := alloc.NewReferenceNo()
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^LR-BR-20260314-[ABCDEFGHJKMNPQRSTUVWXYZ23456789]{6}$`), refNo)
}

func TestNewReferenceNoAvoidsLookalikeCharacters(t *testing.T) {
	alloc := newTestAllocator(t)

	for i := 0; i < 50; i++ {
		refNo, err := alloc.NewReferenceNo()
		require.NoError(t, err)
		suffix := refNo[len(refNo)-6:]
		require.NotRegexp(t, `[ILO01]`, suffix)
	}
}

func TestNewVerificationCodeFormat(t *testing.T) {
	alloc := newTestAllocator(t)

	code, err := alloc.NewVerificationCode()
	require.NoError(t, err)
	require.Regexp(t, `^[0-9a-f]{12}$`, code)
}

func TestAllocateRetriesOnDuplicate(t *testing.T) {
	alloc := newTestAllocator(t)

	attempts := 0
	var seen []Codes
	codes, err := alloc.Allocate(context.Background(), func(ctx context.Context, c Codes) error {
		attempts++
		seen = append(seen, c)
		if attempts < 3 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Equal(t, seen[2], codes)
	require.NotEqual(t, seen[0].ReferenceNo, seen[1].ReferenceNo)
}

func TestAllocateGivesUpAfterRepeatedCollisions(t *testing.T) {
	alloc := newTestAllocator(t)

	attempts := 0
	_, err := alloc.Allocate(context.Background(), func(ctx context.Context, c Codes) error {
		attempts++
		return gorm.ErrDuplicatedKey
	})
	require.ErrorIs(t, err, ErrAllocationExhausted)
	require.Equal(t, 3, attempts)
}

func TestAllocateAbortsOnNonDuplicateError(t *testing.T) {
	alloc := newTestAllocator(t)

	storeDown := errors.New("store down")
	attempts := 0
	_, err := alloc.Allocate(context.Background(), func(ctx context.Context, c Codes) error {
		attempts++
		return storeDown
	})
	require.ErrorIs(t, err, storeDown)
	require.Equal(t, 1, attempts)
}

func TestPlaceholderDetection(t *testing.T) {
	require.True(t, IsPlaceholder(""))
	require.True(t, IsPlaceholder(Placeholder()))
	require.False(t, IsPlaceholder("LR-BR-20260314-ABCDEF"))
}
