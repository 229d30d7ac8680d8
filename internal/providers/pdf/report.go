package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateReport(ctx context.Context, data ReportData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, "Land Parcel Risk Report", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Reference: "+data.ReferenceNo, props.Text{Top: 0}),
			text.New("Report ID: "+data.ReportID, props.Text{Top: 4}),
			text.New("Generated: "+data.GeneratedAt, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Risk score: %d / 100", data.Score), props.Text{Top: 0, Style: fontstyle.Bold}),
			text.New("Risk band: "+data.Band, props.Text{Top: 4, Style: fontstyle.Bold}),
		),
	)

	m.AddRow(10,
		text.NewCol(12, "Parcel", props.Text{Size: 12, Style: fontstyle.Bold}),
	)
	m.AddRow(30,
		col.New(6).Add(
			text.New("District: "+data.District, props.Text{Top: 0}),
			text.New("Circle: "+data.Circle, props.Text{Top: 4}),
			text.New("Village: "+data.Village, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Khata: "+orNotProvided(data.Khata), props.Text{Top: 0}),
			text.New("Khesra: "+orNotProvided(data.Khesra), props.Text{Top: 4}),
			text.New("Owner: "+orNotProvided(data.OwnerName), props.Text{Top: 8}),
			text.New("Plot area: "+orNotProvided(data.PlotArea), props.Text{Top: 12}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Finding", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Severity", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Evidence", props.Text{Style: fontstyle.Bold, Size: 9}),
	)
	for _, finding := range data.Findings {
		m.AddRow(12,
			text.NewCol(6, finding.Title, props.Text{Size: 9}),
			text.NewCol(2, string(finding.Severity), props.Text{Size: 9}),
			text.NewCol(4, finding.Evidence, props.Text{Size: 9}),
		)
	}

	m.AddRow(15,
		text.NewCol(12, "Verification code: "+data.VerificationCode, props.Text{
			Size: 9,
			Top:  5,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func orNotProvided(value string) string {
	if value == "" {
		return "Not provided"
	}
	return value
}
