package response

import "github.com/niklvrr/reviewpulse/internal/domain"

type MetricKindResponse struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Subtypes    []string `json:"subtypes"`
	URL         string   `json:"url"`
}

type StatsResponse struct {
	Kinds     []MetricKindResponse `json:"kinds"`
	Intervals []string             `json:"intervals"`
	Teams     []string             `json:"teams"`
}

func NewStatsResponse(kinds []domain.MetricKind, teams []string) *StatsResponse {
	resp := &StatsResponse{
		Kinds:     make([]MetricKindResponse, 0, len(kinds)),
		Intervals: make([]string, 0, len(domain.Intervals)),
		Teams:     teams,
	}
	if resp.Teams == nil {
		resp.Teams = []string{}
	}

	for _, kind := range kinds {
		subtypes := make([]string, 0, len(kind.Subtypes))
		for _, subtype := range kind.Subtypes {
			subtypes = append(subtypes, string(subtype))
		}
		resp.Kinds = append(resp.Kinds, MetricKindResponse{
			Slug:        kind.Slug,
			Name:        kind.Name,
			Description: kind.Description,
			Subtypes:    subtypes,
			URL:         "/stats/" + kind.Slug,
		})
	}
	for _, interval := range domain.Intervals {
		resp.Intervals = append(resp.Intervals, string(interval))
	}

	return resp
}
