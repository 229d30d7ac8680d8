package reference

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/pkg/db"
	"go.uber.org/zap"
)

// Reference codes are human-shareable: LR-<region>-<YYYYMMDD>-<6 chars from a
// base32 alphabet without the lookalikes I, L, O, 0, 1.
const suffixAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	suffixLength           = 6
	verificationCodeBytes  = 6
	maxAllocationAttempts  = 3
	referenceNoPlaceholder = "PENDING"
)

// ErrAllocationExhausted means several consecutive candidates collided in the
// store. That points at a broken random source or an exhausted code space,
// so it is surfaced as fatal rather than retried further.
var ErrAllocationExhausted = errors.New("reference_allocation_exhausted")

// Codes is a freshly minted reference/verification pair.
type Codes struct {
	ReferenceNo      string
	VerificationCode string
}

// Allocator mints globally unique reference and verification codes.
// Uniqueness is enforced by the store's constraints, not an in-process lock:
// Allocate hands each candidate pair to persist and regenerates on a
// duplicate-key failure, so any number of process instances can allocate
// against the same database.
type Allocator interface {
	Allocate(ctx context.Context, persist func(ctx context.Context, codes Codes) error) (Codes, error)
	NewReferenceNo() (string, error)
	NewVerificationCode() (string, error)
}

// IsPlaceholder reports whether a stored reference still needs allocation.
func IsPlaceholder(referenceNo string) bool {
	return referenceNo == "" || referenceNo == referenceNoPlaceholder
}

// Placeholder is persisted before the real code is allocated so the report
// row can exist (and hold its id) ahead of allocation.
func Placeholder() string { return referenceNoPlaceholder }

type allocator struct {
	log    *zap.Logger
	clock  clock.Clock
	region string
}

func NewAllocator(log *zap.Logger, clk clock.Clock, region string) Allocator {
	return &allocator{
		log:    log.Named("reference.allocator"),
		clock:  clk,
		region: region,
	}
}

func (a *allocator) Allocate(ctx context.Context, persist func(ctx context.Context, codes Codes) error) (Codes, error) {
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		referenceNo, err := a.NewReferenceNo()
		if err != nil {
			return Codes{}, err
		}
		verificationCode, err := a.NewVerificationCode()
		if err != nil {
			return Codes{}, err
		}

		codes := Codes{ReferenceNo: referenceNo, VerificationCode: verificationCode}
		err = persist(ctx, codes)
		if err == nil {
			return codes, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return Codes{}, err
		}

		a.log.Warn("reference candidate collided, retrying",
			zap.String("reference_no", referenceNo),
			zap.Int("attempt", attempt+1),
		)
	}
	return Codes{}, ErrAllocationExhausted
}

func (a *allocator) NewReferenceNo() (string, error) {
	suffix, err := randomSuffix(suffixLength)
	if err != nil {
		return "", err
	}
	date := a.clock.Now().Format("20060102")
	return fmt.Sprintf("LR-%s-%s-%s", a.region, date, suffix), nil
}

// NewVerificationCode returns 12 lowercase hex characters from crypto/rand.
func (a *allocator) NewVerificationCode() (string, error) {
	buf := make([]byte, verificationCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func randomSuffix(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(out), nil
}
