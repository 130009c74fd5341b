package dto

import (
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
)

// RevisionQuery фильтр для differential.revision.search
type RevisionQuery struct {
	QueryKey       string
	ReviewerPHIDs  []string
	Statuses       []domain.RevisionStatus
	ModifiedAfter  time.Time
	ModifiedBefore time.Time
}

// TaskConstraints фильтр для maniphest.search; нулевые значения не отправляются
type TaskConstraints struct {
	Subtypes     []domain.TaskSubtype
	Statuses     []string
	CreatedStart time.Time
	CreatedEnd   time.Time
	ClosedStart  time.Time
	ClosedEnd    time.Time
	AuthorPHIDs  []string
	CloserPHIDs  []string
	OwnerPHIDs   []string
	// ProjectPHIDs трекер объединяет через AND
	ProjectPHIDs []string
	ColumnPHIDs  []string
	Order        []string
}
