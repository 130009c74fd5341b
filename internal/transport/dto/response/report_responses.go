package response

import (
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
)

type ReportDefinitionResponse struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Title        string `json:"title,omitempty"`
	SinceLastRun bool   `json:"since_last_run"`
	URL          string `json:"url"`
}

type ReportsResponse struct {
	Reports []ReportDefinitionResponse `json:"reports"`
}

type PersonResponse struct {
	PHID       string `json:"phid,omitempty"`
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url,omitempty"`
}

type RevisionItemResponse struct {
	Id         string           `json:"id"`
	Title      string           `json:"title"`
	URL        string           `json:"url"`
	Status     string           `json:"status"`
	ModifiedAt time.Time        `json:"modified_at"`
	Author     PersonResponse   `json:"author"`
	Repo       string           `json:"repo"`
	RepoURL    string           `json:"repo_url,omitempty"`
	Acceptors  []PersonResponse `json:"acceptors"`
	Blockers   []PersonResponse `json:"blockers"`
}

type TaskItemResponse struct {
	Id        string          `json:"id"`
	Name      string          `json:"name"`
	URL       string          `json:"url"`
	Status    string          `json:"status"`
	Priority  string          `json:"priority,omitempty"`
	Points    float64         `json:"points"`
	Owner     *PersonResponse `json:"owner,omitempty"`
	CreatedAt string          `json:"created_at"`
	ClosedAt  string          `json:"closed_at,omitempty"`
}

type SectionResponse struct {
	Key       string                 `json:"key"`
	Label     string                 `json:"label"`
	Count     int                    `json:"count"`
	Order     string                 `json:"order,omitempty"`
	Severity  string                 `json:"severity"`
	Color     string                 `json:"color,omitempty"`
	Revisions []RevisionItemResponse `json:"revisions,omitempty"`
	Tasks     []TaskItemResponse     `json:"tasks,omitempty"`
}

type ReportResponse struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Timeline    string            `json:"timeline"`
	GeneratedAt time.Time         `json:"generated_at"`
	EmptyNote   string            `json:"empty_note,omitempty"`
	Sections    []SectionResponse `json:"sections"`
}

func NewReportsResponse(defs []domain.ReportDefinition) *ReportsResponse {
	resp := &ReportsResponse{Reports: make([]ReportDefinitionResponse, 0, len(defs))}
	for _, def := range defs {
		resp.Reports = append(resp.Reports, ReportDefinitionResponse{
			Name:         def.Name,
			Type:         string(def.Kind),
			Title:        def.Title,
			SinceLastRun: def.SinceLastRun,
			URL:          "/reports/" + def.Name,
		})
	}
	return resp
}

func NewReportResponse(report *domain.Report) *ReportResponse {
	resp := &ReportResponse{
		Name:        report.Name,
		Type:        string(report.Kind),
		Title:       report.Title,
		Timeline:    report.Timeline,
		GeneratedAt: report.GeneratedAt,
		Sections:    make([]SectionResponse, 0, len(report.Sections)),
	}
	if report.IsEmpty() {
		resp.EmptyNote = report.EmptyNote
	}

	for _, section := range report.Sections {
		s := SectionResponse{
			Key:      string(section.Key),
			Label:    section.Label,
			Count:    section.Count(),
			Order:    string(section.Order),
			Severity: string(section.Severity),
			Color:    section.Color,
		}
		for _, entry := range section.Revisions {
			s.Revisions = append(s.Revisions, RevisionItemResponse{
				Id:         entry.Revision.RevisionId(),
				Title:      entry.Revision.Title,
				URL:        entry.URL,
				Status:     string(entry.Revision.Status),
				ModifiedAt: entry.Revision.ModifiedAt,
				Author:     personResponse(entry.Author),
				Repo:       entry.RepoSlug,
				RepoURL:    entry.RepoURL,
				Acceptors:  peopleResponse(entry.Acceptors),
				Blockers:   peopleResponse(entry.Blockers),
			})
		}
		for _, entry := range section.Tasks {
			item := TaskItemResponse{
				Id:        entry.Task.TaskId(),
				Name:      entry.Task.Name,
				URL:       entry.URL,
				Status:    entry.Task.Status,
				Priority:  entry.Task.Priority,
				Points:    entry.Task.Points,
				CreatedAt: entry.CreatedAt,
				ClosedAt:  entry.ClosedAt,
			}
			if entry.Owner.Name != "" {
				owner := personResponse(entry.Owner)
				item.Owner = &owner
			}
			s.Tasks = append(s.Tasks, item)
		}
		resp.Sections = append(resp.Sections, s)
	}

	return resp
}

func personResponse(p domain.PersonRef) PersonResponse {
	return PersonResponse{PHID: p.PHID, Name: p.Name, ProfileURL: p.ProfileURL}
}

func peopleResponse(people []domain.PersonRef) []PersonResponse {
	out := make([]PersonResponse, 0, len(people))
	for _, p := range people {
		out = append(out, personResponse(p))
	}
	return out
}
