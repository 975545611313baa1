package usage

// Placeholder returns the fixed non-live dataset served when no token is
// configured or every fallback is exhausted. It passes the same structural
// validation as a live response so consumers need no special casing.
func Placeholder() *UsageSummary {
	return &UsageSummary{
		BillingCycleStart: "2024-01-01T00:00:00.000Z",
		BillingCycleEnd:   "2024-02-01T00:00:00.000Z",
		MembershipType:    "pro",
		LimitType:         "individual",
		IsUnlimited:       false,
		IndividualUsage: &IndividualUsage{
			Overall: &QuotaBucket{
				Enabled:   true,
				Used:      794,
				Limit:     5000,
				Remaining: 4206,
			},
		},
		TeamUsage: &TeamUsage{
			OnDemand: &QuotaBucket{},
			Pooled:   &QuotaBucket{},
		},
	}
}
