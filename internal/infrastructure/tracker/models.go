package tracker

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
)

// Сырые ответы Conduit. Превращаются в доменные типы один раз при чтении.

type rawStatus struct {
	Value string `json:"value"`
}

type rawRevision struct {
	Id     int    `json:"id"`
	PHID   string `json:"phid"`
	Fields struct {
		Title          string    `json:"title"`
		AuthorPHID     string    `json:"authorPHID"`
		RepositoryPHID string    `json:"repositoryPHID"`
		Status         rawStatus `json:"status"`
		DateCreated    int64     `json:"dateCreated"`
		DateModified   int64     `json:"dateModified"`
	} `json:"fields"`
	Attachments struct {
		Reviewers struct {
			Reviewers []struct {
				ReviewerPHID string `json:"reviewerPHID"`
				Status       string `json:"status"`
				IsBlocking   bool   `json:"isBlocking"`
			} `json:"reviewers"`
		} `json:"reviewers"`
	} `json:"attachments"`
}

func (r rawRevision) toDomain() domain.Revision {
	rev := domain.Revision{
		Id:         r.Id,
		PHID:       r.PHID,
		Title:      r.Fields.Title,
		AuthorPHID: r.Fields.AuthorPHID,
		RepoPHID:   r.Fields.RepositoryPHID,
		Status:     domain.RevisionStatus(r.Fields.Status.Value),
		CreatedAt:  unix(r.Fields.DateCreated),
		ModifiedAt: unix(r.Fields.DateModified),
		Reviewers:  make([]domain.Reviewer, 0, len(r.Attachments.Reviewers.Reviewers)),
	}
	for _, reviewer := range r.Attachments.Reviewers.Reviewers {
		rev.Reviewers = append(rev.Reviewers, domain.Reviewer{
			PHID:       reviewer.ReviewerPHID,
			Status:     domain.ReviewerStatus(reviewer.Status),
			IsBlocking: reviewer.IsBlocking,
		})
	}
	return rev
}

type rawTask struct {
	Id     int    `json:"id"`
	PHID   string `json:"phid"`
	Fields struct {
		Name       string    `json:"name"`
		OwnerPHID  *string   `json:"ownerPHID"`
		AuthorPHID string    `json:"authorPHID"`
		CloserPHID *string   `json:"closerPHID"`
		Subtype    string    `json:"subtype"`
		Status     rawStatus `json:"status"`
		Priority   struct {
			Name string `json:"name"`
		} `json:"priority"`
		DateCreated int64           `json:"dateCreated"`
		DateClosed  *int64          `json:"dateClosed"`
		Points      json.RawMessage `json:"points"`
	} `json:"fields"`
	Attachments struct {
		Projects struct {
			ProjectPHIDs []string `json:"projectPHIDs"`
		} `json:"projects"`
	} `json:"attachments"`
}

func (r rawTask) toDomain() domain.Task {
	task := domain.Task{
		Id:           r.Id,
		PHID:         r.PHID,
		Name:         r.Fields.Name,
		OwnerPHID:    deref(r.Fields.OwnerPHID),
		AuthorPHID:   r.Fields.AuthorPHID,
		CloserPHID:   deref(r.Fields.CloserPHID),
		Subtype:      domain.TaskSubtype(r.Fields.Subtype),
		Status:       r.Fields.Status.Value,
		Priority:     r.Fields.Priority.Name,
		CreatedAt:    unix(r.Fields.DateCreated),
		Points:       parsePoints(r.Fields.Points),
		ProjectPHIDs: r.Attachments.Projects.ProjectPHIDs,
	}
	if r.Fields.DateClosed != nil && *r.Fields.DateClosed > 0 {
		closed := unix(*r.Fields.DateClosed)
		task.ClosedAt = &closed
	}
	return task
}

type rawProject struct {
	Id     int    `json:"id"`
	PHID   string `json:"phid"`
	Fields struct {
		Name   string `json:"name"`
		Slug   string `json:"slug"`
		Parent *struct {
			Id   int    `json:"id"`
			PHID string `json:"phid"`
			Name string `json:"name"`
		} `json:"parent"`
	} `json:"fields"`
	Attachments struct {
		Members struct {
			Members []struct {
				PHID string `json:"phid"`
			} `json:"members"`
		} `json:"members"`
	} `json:"attachments"`
}

func (r rawProject) toDomain() domain.Project {
	project := domain.Project{
		Id:   r.Id,
		PHID: r.PHID,
		Name: r.Fields.Name,
		Slug: r.Fields.Slug,
	}
	if r.Fields.Parent != nil {
		project.Parent = &domain.ProjectParent{
			Id:   r.Fields.Parent.Id,
			PHID: r.Fields.Parent.PHID,
			Name: r.Fields.Parent.Name,
		}
	}
	for _, member := range r.Attachments.Members.Members {
		project.MemberPHIDs = append(project.MemberPHIDs, member.PHID)
	}
	return project
}

type rawColumn struct {
	Id     int    `json:"id"`
	PHID   string `json:"phid"`
	Fields struct {
		Name    string `json:"name"`
		Project struct {
			PHID string `json:"phid"`
		} `json:"project"`
	} `json:"fields"`
}

func (r rawColumn) toDomain() domain.ProjectColumn {
	return domain.ProjectColumn{
		Id:          r.Id,
		PHID:        r.PHID,
		Name:        r.Fields.Name,
		ProjectPHID: r.Fields.Project.PHID,
	}
}

type rawUser struct {
	Id     int    `json:"id"`
	PHID   string `json:"phid"`
	Fields struct {
		Username string `json:"username"`
		RealName string `json:"realName"`
	} `json:"fields"`
}

func (r rawUser) toDomain() domain.User {
	return domain.User{
		PHID:     r.PHID,
		Username: r.Fields.Username,
		RealName: r.Fields.RealName,
	}
}

// rawHandle элемент ответа phid.query
type rawHandle struct {
	PHID     string `json:"phid"`
	URI      string `json:"uri"`
	TypeName string `json:"typeName"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Status   string `json:"status"`
}

type rawWhoAmI struct {
	PHID         string `json:"phid"`
	UserName     string `json:"userName"`
	RealName     string `json:"realName"`
	PrimaryEmail string `json:"primaryEmail"`
	URI          string `json:"uri"`
}

func unix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parsePoints points приходит числом, строкой или null
func parsePoints(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return 0
}
