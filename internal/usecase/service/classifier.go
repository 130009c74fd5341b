package service

import (
	"sort"

	"github.com/niklvrr/reviewpulse/internal/domain"
)

// Порядок секций в отчетах по ревизиям
var RevisionBucketOrder = []domain.BucketKey{
	domain.BucketMissingGroupReviewer,
	domain.BucketNeedsReview,
	domain.BucketBlockedByTeam,
	domain.BucketBlockedExternal,
	domain.BucketNeedsMoreApprovals,
	domain.BucketWorkInProgress,
	domain.BucketAccepted,
}

// GroupContext контекст групповых ревью
type GroupContext struct {
	// ReviewerPHIDs участники групп-ревьюеров
	ReviewerPHIDs     domain.PHIDSet
	NonGroupThreshold int
}

type ClassifyInput struct {
	Revisions     []domain.Revision
	TeamUsernames []string
	// Usernames PHID -> username для разбора блокеров
	Usernames map[string]string
	Threshold int
	Group     *GroupContext
}

// RevisionBuckets результат классификации: каждая ревизия ровно в одной корзине
type RevisionBuckets map[domain.BucketKey][]domain.Revision

func (b RevisionBuckets) Get(key domain.BucketKey) []domain.Revision {
	return b[key]
}

func (b RevisionBuckets) Total() int {
	total := 0
	for _, revisions := range b {
		total += len(revisions)
	}
	return total
}

// ClassifyRevisions раскладывает ревизии по корзинам за один проход.
// В групповом варианте ревизии без достаточного числа принятий вне группы отбрасываются.
func ClassifyRevisions(in ClassifyInput) RevisionBuckets {
	team := make(map[string]struct{}, len(in.TeamUsernames))
	for _, username := range in.TeamUsernames {
		team[username] = struct{}{}
	}

	buckets := make(RevisionBuckets, len(RevisionBucketOrder))
	for _, key := range RevisionBucketOrder {
		buckets[key] = []domain.Revision{}
	}

	for _, rev := range in.Revisions {
		key, ok := classifyRevision(rev, in, team)
		if !ok {
			continue
		}
		buckets[key] = append(buckets[key], rev)
	}

	for key, revisions := range buckets {
		sortRevisions(revisions, key == domain.BucketAccepted)
	}

	return buckets
}

func classifyRevision(rev domain.Revision, in ClassifyInput, team map[string]struct{}) (domain.BucketKey, bool) {
	if in.Group != nil {
		if !rev.HasSufficientNonGroupReviewerAcceptances(in.Group.ReviewerPHIDs, in.Group.NonGroupThreshold) {
			return "", false
		}
		if !rev.HasReviewerAmongGroup(in.Group.ReviewerPHIDs) {
			return domain.BucketMissingGroupReviewer, true
		}
	}

	switch {
	case rev.MeetsAcceptanceCriteria(in.Threshold):
		return domain.BucketAccepted, true
	case rev.IsWIP():
		return domain.BucketWorkInProgress, true
	case rev.NumBlockers() > 0:
		if hasTeamBlocker(rev, in.Usernames, team) {
			return domain.BucketBlockedByTeam, true
		}
		return domain.BucketBlockedExternal, true
	case rev.NumAcceptors() >= 1 && rev.NumAcceptors() < in.Threshold:
		return domain.BucketNeedsMoreApprovals, true
	default:
		return domain.BucketNeedsReview, true
	}
}

func hasTeamBlocker(rev domain.Revision, usernames map[string]string, team map[string]struct{}) bool {
	for _, phid := range rev.BlockerPHIDs(false) {
		username, ok := usernames[phid]
		if !ok {
			continue
		}
		if _, ok := team[username]; ok {
			return true
		}
	}
	return false
}

// accepted от старых к новым, остальные от новых к старым
func sortRevisions(revisions []domain.Revision, oldestFirst bool) {
	sort.SliceStable(revisions, func(i, j int) bool {
		if oldestFirst {
			return revisions[i].ModifiedAt.Before(revisions[j].ModifiedAt)
		}
		return revisions[i].ModifiedAt.After(revisions[j].ModifiedAt)
	})
}
