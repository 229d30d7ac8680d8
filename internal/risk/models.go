package risk

// Band buckets a score into the customer-facing traffic light.
type Band string

const (
	BandGreen Band = "GREEN"
	BandAmber Band = "AMBER"
	BandRed   Band = "RED"
)

type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
)

type Finding struct {
	Code       string   `json:"code"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	Evidence   string   `json:"evidence"`
	Source     string   `json:"source"`
	Confidence string   `json:"confidence"`
}

type Result struct {
	Score    int       `json:"score"`
	Band     Band      `json:"band"`
	Findings []Finding `json:"findings"`
}

// Parcel is the attribute snapshot the scorer works from.
type Parcel struct {
	District  string
	Circle    string
	Village   string
	Khata     string
	Khesra    string
	OwnerName string
	PlotArea  string
}
