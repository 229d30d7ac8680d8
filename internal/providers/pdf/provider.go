package pdf

import (
	"context"
	"io"

	"github.com/landriskai/landrisk/internal/risk"
)

// ReportData is the snapshot a report artifact is rendered from.
type ReportData struct {
	ReportID         string
	ReferenceNo      string
	VerificationCode string
	GeneratedAt      string

	District  string
	Circle    string
	Village   string
	Khata     string
	Khesra    string
	OwnerName string
	PlotArea  string

	Score    int
	Band     string
	Findings []risk.Finding
}

type Provider interface {
	GenerateReport(ctx context.Context, data ReportData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReport(ctx context.Context, data ReportData) (io.Reader, error) {
	return nil, nil
}
