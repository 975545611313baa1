package api

import "github.com/cursorwatch/cursorwatch/pkg/usage"

// SummaryResponse is the JSON shape of /v1/summary and /v1/refresh. The
// derived percentages are included so display consumers need no quota math.
type SummaryResponse struct {
	Summary *usage.UsageSummary `json:"summary"`
	Source  string              `json:"source"`
	Message string              `json:"message,omitempty"`

	IndividualPercentage   int `json:"individualPercentage"`
	TeamOnDemandPercentage int `json:"teamOnDemandPercentage"`
	TeamPooledPercentage   int `json:"teamPooledPercentage"`
}

// ConnectivityResponse is the JSON shape of /v1/connectivity.
type ConnectivityResponse struct {
	OK bool `json:"ok"`
}

// StatusResponse is a generic acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

func summaryResponse(res usage.Result) SummaryResponse {
	return SummaryResponse{
		Summary:                res.Summary,
		Source:                 string(res.Source),
		Message:                res.Message,
		IndividualPercentage:   res.Summary.IndividualPercentage(),
		TeamOnDemandPercentage: res.Summary.TeamOnDemandPercentage(),
		TeamPooledPercentage:   res.Summary.TeamPooledPercentage(),
	}
}
