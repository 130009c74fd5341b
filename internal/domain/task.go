package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type TaskSubtype string

const (
	TaskSubtypeBug     TaskSubtype = "bug"
	TaskSubtypeDefault TaskSubtype = "default"
	TaskSubtypeFeature TaskSubtype = "feature"
	TaskSubtypeStory   TaskSubtype = "story"
)

var AllTaskSubtypes = []TaskSubtype{
	TaskSubtypeBug,
	TaskSubtypeDefault,
	TaskSubtypeFeature,
	TaskSubtypeStory,
}

var TaskStatusesOpen = []string{
	"awaitingbusiness",
	"inprogress",
	"open",
	"stalled",
}

var TaskStatusesClosed = []string{
	"foolish",
	"invalid",
	"magicallyfixed",
	"resolved",
	"wontfix",
}

const (
	DefaultServicePrefix = "service:"
	DefaultSegmentName   = "General"
)

type Task struct {
	Id           int
	PHID         string
	Name         string
	OwnerPHID    string // пусто - задача никому не назначена
	AuthorPHID   string
	CloserPHID   string
	Subtype      TaskSubtype
	Status       string
	Priority     string
	CreatedAt    time.Time
	ClosedAt     *time.Time
	Points       float64 // 0, если оценка не проставлена
	ProjectPHIDs []string
}

// TaskId форматированный идентификатор, например T42
func (t Task) TaskId() string {
	return fmt.Sprintf("T%d", t.Id)
}

func (t Task) URL(baseURL string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), t.TaskId())
}

func (t Task) IsAssigned() bool {
	return t.OwnerPHID != ""
}

func (t Task) IsOpen() bool {
	return slices.Contains(TaskStatusesOpen, t.Status)
}

func (t Task) IsClosed() bool {
	return slices.Contains(TaskStatusesClosed, t.Status)
}

// DaysToResolution время от создания до закрытия в днях, 0 для незакрытых
func (t Task) DaysToResolution() float64 {
	if t.ClosedAt == nil {
		return 0
	}
	return t.ClosedAt.Sub(t.CreatedAt).Hours() / 24
}

// ProjectLookup источник проектов по PHID для производных атрибутов задачи
type ProjectLookup interface {
	ProjectByPHID(phid string) (Project, bool)
	IsCustomer(project Project) bool
	ServicePrefix() string
}

// ServiceName имя сервиса из проекта с префиксом "service:", пусто если такого нет
func (t Task) ServiceName(lookup ProjectLookup) string {
	prefix := lookup.ServicePrefix()
	for _, phid := range t.ProjectPHIDs {
		project, ok := lookup.ProjectByPHID(phid)
		if !ok {
			continue
		}
		if strings.HasPrefix(project.Name, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(project.Name, prefix))
		}
	}
	return ""
}

// CustomerName имя первого проекта-клиента, к которому привязана задача
func (t Task) CustomerName(lookup ProjectLookup) string {
	for _, phid := range t.ProjectPHIDs {
		project, ok := lookup.ProjectByPHID(phid)
		if !ok {
			continue
		}
		if lookup.IsCustomer(project) {
			return project.Name
		}
	}
	return ""
}
