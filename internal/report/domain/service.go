package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// GenerateAndDeliver turns a paid order into exactly one delivered
	// report. Idempotent: called again for the same order it returns the
	// existing report without re-scoring or re-notifying, repairing any
	// missing reference or artifact on the way.
	GenerateAndDeliver(ctx context.Context, orderID snowflake.ID) (Report, error)
	// EnsureArtifacts backfills a placeholder reference number and
	// re-renders a missing or zero-length artifact. It never allocates a
	// second reference or creates a second report.
	EnsureArtifacts(ctx context.Context, reportID snowflake.ID) (Report, error)
	GetByID(ctx context.Context, id snowflake.ID) (Report, error)
	GetByReferenceNo(ctx context.Context, referenceNo string) (Report, error)
	// Verify gates the public verification endpoint on the code handed out
	// with the report link.
	Verify(ctx context.Context, reportID snowflake.ID, code string) (Report, error)
	// ArtifactFile ensures the artifact exists and is inside its download
	// window, then returns its path.
	ArtifactFile(ctx context.Context, reportID snowflake.ID) (string, error)
	Rate(ctx context.Context, reportID snowflake.ID, rating int, feedback string) (Report, error)
}

var (
	ErrNotFound             = errors.New("report_not_found")
	ErrVerificationMismatch = errors.New("verification_code_mismatch")
	ErrArtifactExpired      = errors.New("report_link_expired")
	ErrInvalidRating        = errors.New("invalid_rating")
)
