package domain

import (
	"fmt"
	"strings"
	"time"
)

type RevisionStatus string

const (
	RevisionStatusAccepted       RevisionStatus = "accepted"
	RevisionStatusNeedsReview    RevisionStatus = "needs-review"
	RevisionStatusNeedsRevision  RevisionStatus = "needs-revision"
	RevisionStatusChangesPlanned RevisionStatus = "changes-planned"
	RevisionStatusDraft          RevisionStatus = "draft"
	RevisionStatusPublished      RevisionStatus = "published"
	RevisionStatusAbandoned      RevisionStatus = "abandoned"
)

// Статусы, которые попадают в отчеты о ревью
var RevisionStatusesInReview = []RevisionStatus{
	RevisionStatusAccepted,
	RevisionStatusNeedsReview,
	RevisionStatusNeedsRevision,
}

type ReviewerStatus string

const (
	ReviewerStatusAccepted ReviewerStatus = "accepted"
	ReviewerStatusRejected ReviewerStatus = "rejected"
	ReviewerStatusBlocking ReviewerStatus = "blocking"
	ReviewerStatusAdded    ReviewerStatus = "added"
)

type Reviewer struct {
	PHID       string
	Status     ReviewerStatus
	IsBlocking bool
}

func (r Reviewer) IsIndividual() bool {
	return IsIndividualPHID(r.PHID)
}

type Revision struct {
	Id         int
	PHID       string
	Title      string
	AuthorPHID string
	RepoPHID   string
	Status     RevisionStatus
	CreatedAt  time.Time
	ModifiedAt time.Time
	Reviewers  []Reviewer
}

// RevisionId форматированный идентификатор, например D123
func (r Revision) RevisionId() string {
	return fmt.Sprintf("D%d", r.Id)
}

func (r Revision) URL(baseURL string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), r.RevisionId())
}

func (r Revision) ReviewerPHIDs() []string {
	phids := make([]string, 0, len(r.Reviewers))
	for _, reviewer := range r.Reviewers {
		phids = append(phids, reviewer.PHID)
	}
	return phids
}

func (r Revision) IsAccepted() bool {
	return r.Status == RevisionStatusAccepted
}

// IsWIP по соглашению о заголовке: "WIP ...", "[WIP] ..." или "... WIP"
func (r Revision) IsWIP() bool {
	title := strings.TrimSpace(r.Title)
	return strings.HasPrefix(title, "WIP") ||
		strings.HasPrefix(title, "[WIP]") ||
		strings.HasSuffix(title, "WIP")
}

// AcceptorPHIDs ревьюеры в статусе accepted; без includeGroups только люди
func (r Revision) AcceptorPHIDs(includeGroups bool) []string {
	var phids []string
	for _, reviewer := range r.Reviewers {
		if reviewer.Status != ReviewerStatusAccepted {
			continue
		}
		if !includeGroups && !reviewer.IsIndividual() {
			continue
		}
		phids = append(phids, reviewer.PHID)
	}
	return phids
}

// BlockerPHIDs ревьюеры с флагом блокировки либо отклонившие ревизию
func (r Revision) BlockerPHIDs(includeGroups bool) []string {
	var phids []string
	for _, reviewer := range r.Reviewers {
		if isBlocker(reviewer, includeGroups) {
			phids = append(phids, reviewer.PHID)
		}
	}
	return phids
}

func isBlocker(reviewer Reviewer, includeGroups bool) bool {
	if reviewer.IsBlocking {
		return true
	}
	if reviewer.Status != ReviewerStatusRejected && reviewer.Status != ReviewerStatusBlocking {
		return false
	}
	return includeGroups || reviewer.IsIndividual()
}

func (r Revision) NumAcceptors() int {
	return len(r.AcceptorPHIDs(false))
}

func (r Revision) NumBlockers() int {
	return len(r.BlockerPHIDs(false))
}

func (r Revision) MeetsAcceptanceCriteria(threshold int) bool {
	return r.IsAccepted() && r.NumAcceptors() >= threshold
}

// HasSufficientNonGroupReviewerAcceptances считает принятия от людей вне группы ревьюеров
func (r Revision) HasSufficientNonGroupReviewerAcceptances(groupReviewers PHIDSet, threshold int) bool {
	count := 0
	for _, reviewer := range r.Reviewers {
		if !reviewer.IsIndividual() || groupReviewers.Contains(reviewer.PHID) {
			continue
		}
		if reviewer.Status == ReviewerStatusAccepted {
			count++
		}
	}
	return count >= threshold
}

func (r Revision) HasReviewerAmongGroup(groupReviewers PHIDSet) bool {
	for _, reviewer := range r.Reviewers {
		if groupReviewers.Contains(reviewer.PHID) {
			return true
		}
	}
	return false
}

// GroupAcceptorPHIDs принявшие ревизию участники группы
func (r Revision) GroupAcceptorPHIDs(groupReviewers PHIDSet) []string {
	return filterPHIDs(r.AcceptorPHIDs(false), groupReviewers)
}

// GroupBlockerPHIDs блокирующие ревизию участники группы
func (r Revision) GroupBlockerPHIDs(groupReviewers PHIDSet) []string {
	return filterPHIDs(r.BlockerPHIDs(false), groupReviewers)
}

func filterPHIDs(phids []string, set PHIDSet) []string {
	var result []string
	for _, phid := range phids {
		if set.Contains(phid) {
			result = append(result, phid)
		}
	}
	return result
}
