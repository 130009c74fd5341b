package domain

import "time"

type ReportKind string

const (
	ReportKindRevisionStatus               ReportKind = "RevisionStatus"
	ReportKindGroupReviewStatus            ReportKind = "GroupReviewStatus"
	ReportKindNewProjectTasks              ReportKind = "NewProjectTasks"
	ReportKindUpcomingProjectTasksDue      ReportKind = "UpcomingProjectTasksDue"
	ReportKindUrgentAndOverdueProjectTasks ReportKind = "UrgentAndOverdueProjectTasks"
	ReportKindRecentTasks                  ReportKind = "RecentTasks"
)

var ReportKinds = []ReportKind{
	ReportKindRevisionStatus,
	ReportKindGroupReviewStatus,
	ReportKindNewProjectTasks,
	ReportKindUpcomingProjectTasksDue,
	ReportKindUrgentAndOverdueProjectTasks,
	ReportKindRecentTasks,
}

func (k ReportKind) IsValid() bool {
	for _, kind := range ReportKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// IsRevisionKind отчеты по ревизиям, остальные по задачам
func (k ReportKind) IsRevisionKind() bool {
	return k == ReportKindRevisionStatus || k == ReportKindGroupReviewStatus
}

type BucketKey string

const (
	BucketMissingGroupReviewer BucketKey = "missing_group_reviewer"
	BucketNeedsReview          BucketKey = "needs_review"
	BucketBlockedByTeam        BucketKey = "blocked_by_team"
	BucketBlockedExternal      BucketKey = "blocked_external"
	BucketNeedsMoreApprovals   BucketKey = "needs_more_approvals"
	BucketWorkInProgress       BucketKey = "work_in_progress"
	BucketAccepted             BucketKey = "accepted"
)

type SectionOrder string

const (
	OrderNewestFirst SectionOrder = "newest first"
	OrderOldestFirst SectionOrder = "oldest first"
	OrderAsIs        SectionOrder = ""
)

type Severity string

const (
	SeverityGood    Severity = "good"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityNotice  Severity = "notice"
	SeverityDanger  Severity = "danger"
	SeverityMuted   Severity = "muted"
)

// PersonRef разрешенная ссылка на пользователя или группу для отображения
type PersonRef struct {
	PHID       string
	Name       string
	ProfileURL string
}

type RevisionEntry struct {
	Revision  Revision
	URL       string
	Author    PersonRef
	RepoSlug  string
	RepoURL   string
	Acceptors []PersonRef
	Blockers  []PersonRef
}

const titleMaxLength = 50

// ShortTitle заголовок ревизии, обрезанный до 50 символов с многоточием
func (e RevisionEntry) ShortTitle() string {
	runes := []rune(e.Revision.Title)
	if len(runes) < titleMaxLength {
		return e.Revision.Title
	}
	return string(runes[:titleMaxLength-3]) + "..."
}

type TaskEntry struct {
	Task      Task
	URL       string
	Owner     PersonRef
	CreatedAt string
	ClosedAt  string
}

// Section упорядоченная секция отчета; заполнено ровно одно из Revisions/Tasks
type Section struct {
	Key       BucketKey
	Label     string
	Icon      string
	Order     SectionOrder
	Severity  Severity
	Color     string
	Revisions []RevisionEntry
	Tasks     []TaskEntry
}

func (s Section) Count() int {
	return len(s.Revisions) + len(s.Tasks)
}

type Report struct {
	Name        string
	Kind        ReportKind
	Title       string
	Timeline    string
	GeneratedAt time.Time
	WebURL      string
	EmptyNote   string
	Sections    []Section
}

func (r Report) IsEmpty() bool {
	return len(r.Sections) == 0
}

// Ключи секций отчетов по задачам
const (
	BucketNewTasks    BucketKey = "new_tasks"
	BucketRecentTasks BucketKey = "recent_tasks"
)

// ColumnBucketKey ключ секции для колонки доски
func ColumnBucketKey(columnPHID string) BucketKey {
	return BucketKey("column:" + columnPHID)
}
