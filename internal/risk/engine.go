package risk

import (
	"fmt"
	"regexp"
	"strings"
)

// Scorer assesses a parcel snapshot into a score, band and findings.
// It is pure: same input, same output, no storage access.
type Scorer interface {
	Assess(parcel Parcel) Result
}

const (
	scoreBase         = 10
	scoreOwnerMissing = 15
	scoreAreaMissing  = 5
	scoreIDFormat     = 10
	scoreHotspot      = 5

	scoreMax       = 100
	thresholdAmber = 30
	thresholdRed   = 60
)

var identifierPattern = regexp.MustCompile(`^[0-9A-Za-z\-/]+$`)

type Engine struct{}

func NewEngine() Scorer {
	return Engine{}
}

// Assess applies the MVP rule set:
// owner name missing +15, plot area missing +5, unusual khata/khesra
// characters +10, higher-activity district +5, on top of a base of 10.
func (Engine) Assess(parcel Parcel) Result {
	score := scoreBase
	findings := make([]Finding, 0, 4)

	if strings.TrimSpace(parcel.OwnerName) == "" {
		score += scoreOwnerMissing
		findings = append(findings, Finding{
			Code:       "OWN_MISSING",
			Title:      "Owner name not provided",
			Message:    "Owner name was not provided, so identity matching confidence is reduced.",
			Severity:   SeverityWarning,
			Evidence:   "Input missing",
			Source:     "User input",
			Confidence: "LOW",
		})
	}

	if strings.TrimSpace(parcel.PlotArea) == "" {
		score += scoreAreaMissing
		findings = append(findings, Finding{
			Code:       "AREA_MISSING",
			Title:      "Plot area not provided",
			Message:    "Area mismatch checks are limited because plot area is not provided.",
			Severity:   SeverityInfo,
			Evidence:   "Input missing",
			Source:     "User input",
			Confidence: "LOW",
		})
	}

	khataProvided := strings.TrimSpace(parcel.Khata) != ""
	khesraProvided := strings.TrimSpace(parcel.Khesra) != ""
	khataInvalid := khataProvided && !identifierPattern.MatchString(parcel.Khata)
	khesraInvalid := khesraProvided && !identifierPattern.MatchString(parcel.Khesra)
	if khataInvalid || khesraInvalid {
		score += scoreIDFormat
		findings = append(findings, Finding{
			Code:       "ID_FORMAT",
			Title:      "Khata/Khesra format looks unusual",
			Message:    "Khata/Khesra includes uncommon characters. Verify the identifiers are correct.",
			Severity:   SeverityWarning,
			Evidence:   fmt.Sprintf("khata=%s, khesra=%s", orNA(khataProvided, parcel.Khata), orNA(khesraProvided, parcel.Khesra)),
			Source:     "Input validation heuristics",
			Confidence: "MEDIUM",
		})
	}

	if strings.Contains(strings.ToLower(parcel.District), "patna") {
		score += scoreHotspot
		findings = append(findings, Finding{
			Code:       "DEMO_CONTEXT",
			Title:      "Higher activity region (demo)",
			Message:    "This is a demo context rule. Replace with real location risk datasets later.",
			Severity:   SeverityInfo,
			Evidence:   "district=" + parcel.District,
			Source:     "Demo rule",
			Confidence: "LOW",
		})
	}

	band := BandGreen
	switch {
	case score >= thresholdRed:
		band = BandRed
	case score >= thresholdAmber:
		band = BandAmber
	}

	if score > scoreMax {
		score = scoreMax
	}

	return Result{Score: score, Band: band, Findings: findings}
}

func orNA(provided bool, value string) string {
	if provided {
		return value
	}
	return "N/A"
}
