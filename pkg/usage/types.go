package usage

import (
	"encoding/json"
	"math"

	"github.com/cursorwatch/cursorwatch/pkg/transport"
)

// UsageSummary is the quota snapshot reported by the account-status endpoint.
// It is treated as immutable once parsed; the cache replaces entries wholesale
// and never mutates a resident value.
type UsageSummary struct {
	BillingCycleStart string `json:"billingCycleStart"`
	BillingCycleEnd   string `json:"billingCycleEnd"`

	MembershipType string `json:"membershipType"`
	LimitType      string `json:"limitType"`

	// IsUnlimited set means consumers must not compute a percentage.
	IsUnlimited bool `json:"isUnlimited"`

	AutoModelSelectedDisplayMessage  string `json:"autoModelSelectedDisplayMessage,omitempty"`
	NamedModelSelectedDisplayMessage string `json:"namedModelSelectedDisplayMessage,omitempty"`

	IndividualUsage *IndividualUsage `json:"individualUsage"`
	TeamUsage       *TeamUsage       `json:"teamUsage,omitempty"`
}

// IndividualUsage holds the per-user quota bucket.
type IndividualUsage struct {
	Overall *QuotaBucket `json:"overall"`
}

// TeamUsage holds the team-level quota buckets.
type TeamUsage struct {
	OnDemand *QuotaBucket `json:"onDemand"`
	Pooled   *QuotaBucket `json:"pooled"`
}

// QuotaBucket is one quota counter. Remaining is independently reported
// upstream; used + remaining == limit is NOT guaranteed and must not be
// derived.
type QuotaBucket struct {
	Enabled   bool    `json:"enabled"`
	Used      float64 `json:"used"`
	Limit     float64 `json:"limit"`
	Remaining float64 `json:"remaining"`
}

// Percentage returns round(100*used/limit), or 0 when the limit is zero so a
// degenerate bucket never leaks NaN into the display layer.
func (b *QuotaBucket) Percentage() int {
	if b == nil || b.Limit == 0 {
		return 0
	}
	return int(math.Round(100 * b.Used / b.Limit))
}

// IndividualPercentage is the per-user overall quota percentage.
func (s *UsageSummary) IndividualPercentage() int {
	if s == nil || s.IndividualUsage == nil {
		return 0
	}
	return s.IndividualUsage.Overall.Percentage()
}

// TeamOnDemandPercentage is the team on-demand quota percentage.
func (s *UsageSummary) TeamOnDemandPercentage() int {
	if s == nil || s.TeamUsage == nil {
		return 0
	}
	return s.TeamUsage.OnDemand.Percentage()
}

// TeamPooledPercentage is the team pooled quota percentage.
func (s *UsageSummary) TeamPooledPercentage() int {
	if s == nil || s.TeamUsage == nil {
		return 0
	}
	return s.TeamUsage.Pooled.Percentage()
}

// ParseSummary decodes and structurally validates a response body. A body
// that is not JSON yields KindInvalidFormat (an HTML error page that slipped
// past the status checks lands here); JSON missing the individualUsage
// section yields KindInvalidStructure.
func ParseSummary(body string) (*UsageSummary, error) {
	var s UsageSummary
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, &transport.Error{Kind: transport.KindInvalidFormat, Err: err}
	}
	if s.IndividualUsage == nil {
		return nil, &transport.Error{Kind: transport.KindInvalidStructure}
	}
	return &s, nil
}
