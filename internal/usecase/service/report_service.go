package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/models/dto"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/repository"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/tracker"
	"go.uber.org/zap"
)

var (
	generateReportError = errors.New("generate report error")
	lastRunError        = errors.New("last run timestamp error")
)

const emptyNote = "All caught up -- there are no tasks for this section."

// Интерфейс трекера для отчетов
type ReportTracker interface {
	FetchRevisions(ctx context.Context, q *dto.RevisionQuery) ([]domain.Revision, error)
	FetchTasks(ctx context.Context, c *dto.TaskConstraints) ([]domain.Task, error)
	ProjectByName(ctx context.Context, name string, includeMembers bool) (*domain.Project, error)
	ProjectColumns(ctx context.Context, projectPHID string) ([]domain.ProjectColumn, error)
	UsersByUsername(ctx context.Context, usernames []string) ([]domain.User, error)
	UsersByPHID(ctx context.Context, phids []string) (map[string]domain.User, error)
	ReposByPHID(ctx context.Context, phids []string) (map[string]domain.Repo, error)
}

// Интерфейс хранилища времени последнего запуска
type LastRunRepository interface {
	GetLastRun(ctx context.Context, reportName string) (time.Time, error)
	SaveLastRun(ctx context.Context, reportName string, ts time.Time) error
}

type ReportService struct {
	tracker  ReportTracker
	lastRun  LastRunRepository
	settings domain.Settings
	reports  []domain.ReportDefinition
	log      *zap.Logger
	now      func() time.Time
}

// NewReportService lastRun может быть nil, тогда окно всегда считается от threshold_days
func NewReportService(
	tracker ReportTracker,
	lastRun LastRunRepository,
	settings domain.Settings,
	reports []domain.ReportDefinition,
	log *zap.Logger,
) *ReportService {
	return &ReportService{
		tracker:  tracker,
		lastRun:  lastRun,
		settings: settings,
		reports:  reports,
		log:      log,
		now:      time.Now,
	}
}

func (s *ReportService) Definitions() []domain.ReportDefinition {
	return s.reports
}

func (s *ReportService) Definition(name string) (domain.ReportDefinition, error) {
	for _, def := range s.reports {
		if def.Name == name {
			return def, nil
		}
	}
	return domain.ReportDefinition{}, WrapError(ErrReportNotFound, fmt.Errorf("no report named %q", name))
}

// Generate собирает отчет по имени из конфигурации
func (s *ReportService) Generate(ctx context.Context, name string) (*domain.Report, error) {
	log := s.log.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("report", name),
	)
	log.Info("generate report request accepted")

	def, err := s.Definition(name)
	if err != nil {
		log.Error("unknown report", zap.Error(err))
		return nil, err
	}

	now := s.now()

	var report *domain.Report
	switch def.Kind {
	case domain.ReportKindRevisionStatus, domain.ReportKindGroupReviewStatus:
		report, err = s.revisionReport(ctx, def, now, log)
	case domain.ReportKindNewProjectTasks:
		report, err = s.newProjectTasksReport(ctx, def)
	case domain.ReportKindUpcomingProjectTasksDue, domain.ReportKindUrgentAndOverdueProjectTasks:
		report, err = s.projectColumnsReport(ctx, def)
	case domain.ReportKindRecentTasks:
		report, err = s.recentTasksReport(ctx, def)
	default:
		err = WrapError(ErrInvalidInput, fmt.Errorf("unsupported report type %q", def.Kind))
	}
	if err != nil {
		log.Error("failed to generate report",
			zap.String("kind", string(def.Kind)),
			zap.Error(err),
		)
		return nil, err
	}

	report.Name = def.Name
	report.Kind = def.Kind
	report.GeneratedAt = now
	report.WebURL = s.webURL(def.Name)
	if def.Title != "" {
		report.Title = def.Title
	}

	log.Info("report generated",
		zap.String("kind", string(def.Kind)),
		zap.Int("sections", len(report.Sections)),
	)

	return report, nil
}

func (s *ReportService) revisionReport(ctx context.Context, def domain.ReportDefinition, now time.Time, log *zap.Logger) (*domain.Report, error) {
	lastRun, err := s.readLastRun(ctx, def)
	if err != nil {
		return nil, err
	}

	thresholdDays := def.ThresholdDays
	if thresholdDays <= 0 {
		thresholdDays = s.settings.RevisionAgeThresholdDays
	}
	since := RevisionWindowStart(now, thresholdDays, lastRun)

	query := &dto.RevisionQuery{
		Statuses:      domain.RevisionStatusesInReview,
		ModifiedAfter: since,
	}

	var group *GroupContext
	if def.Kind == domain.ReportKindGroupReviewStatus {
		group, query.ReviewerPHIDs, err = s.groupContext(ctx, def)
		if err != nil {
			return nil, err
		}
	} else {
		query.QueryKey = def.QueryKey
	}

	// Ревизии запрашиваются целиком до классификации
	revisions, err := s.tracker.FetchRevisions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generateReportError, err)
	}

	// Batch-запросы пользователей и репозиториев по всем ревизиям
	var userPHIDs, repoPHIDs []string
	for _, rev := range revisions {
		userPHIDs = append(userPHIDs, rev.ReviewerPHIDs()...)
		userPHIDs = append(userPHIDs, rev.AuthorPHID)
		repoPHIDs = append(repoPHIDs, rev.RepoPHID)
	}

	users, err := s.usersByPHID(ctx, userPHIDs)
	if err != nil {
		return nil, err
	}
	repos, err := s.reposByPHID(ctx, repoPHIDs)
	if err != nil {
		return nil, err
	}

	usernames := make(map[string]string, len(users))
	for phid, user := range users {
		usernames[phid] = user.Username
	}

	threshold := s.settings.RevisionAcceptanceThreshold
	if threshold <= 0 {
		threshold = domain.DefaultRevisionAcceptanceThreshold
	}

	buckets := ClassifyRevisions(ClassifyInput{
		Revisions:     revisions,
		TeamUsernames: def.Usernames,
		Usernames:     usernames,
		Threshold:     threshold,
		Group:         group,
	})

	log.Info("revisions classified",
		zap.Int("fetched", len(revisions)),
		zap.Int("classified", buckets.Total()),
	)

	report := &domain.Report{
		Title:    defaultRevisionTitle(def.Kind),
		Timeline: fmt.Sprintf("modified since %s", since.Format(PeriodNameLayout)),
	}

	for _, key := range RevisionBucketOrder {
		revs := buckets.Get(key)
		if len(revs) == 0 {
			continue
		}
		section := revisionSection(key, len(revs))
		for _, rev := range revs {
			section.Revisions = append(section.Revisions, s.revisionEntry(rev, users, repos, group))
		}
		report.Sections = append(report.Sections, section)
	}

	return report, nil
}

// groupContext участники групп-ревьюеров и PHID ревьюеров для запроса ревизий
func (s *ReportService) groupContext(ctx context.Context, def domain.ReportDefinition) (*GroupContext, []string, error) {
	var reviewerPHIDs, memberPHIDs []string

	if len(def.Reviewers) > 0 {
		reviewers, err := s.tracker.UsersByUsername(ctx, def.Reviewers)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", generateReportError, err)
		}
		for _, user := range reviewers {
			reviewerPHIDs = append(reviewerPHIDs, user.PHID)
		}
	}

	for _, name := range def.GroupReviewers {
		project, err := s.tracker.ProjectByName(ctx, name, true)
		if err != nil {
			if errors.Is(err, tracker.ErrNotFound) {
				return nil, nil, WrapError(ErrProjectNotFound, err)
			}
			return nil, nil, fmt.Errorf("%w: %w", generateReportError, err)
		}
		reviewerPHIDs = append(reviewerPHIDs, project.PHID)
		memberPHIDs = append(memberPHIDs, project.MemberPHIDs...)
	}

	return &GroupContext{
		ReviewerPHIDs:     domain.NewPHIDSet(memberPHIDs...),
		NonGroupThreshold: def.NonGroupReviewerAcceptanceThreshold,
	}, domain.UniquePHIDs(reviewerPHIDs), nil
}

func (s *ReportService) revisionEntry(rev domain.Revision, users map[string]domain.User, repos map[string]domain.Repo, group *GroupContext) domain.RevisionEntry {
	acceptors := rev.AcceptorPHIDs(false)
	blockers := rev.BlockerPHIDs(false)
	if group != nil {
		acceptors = rev.GroupAcceptorPHIDs(group.ReviewerPHIDs)
		blockers = rev.GroupBlockerPHIDs(group.ReviewerPHIDs)
	}

	entry := domain.RevisionEntry{
		Revision:  rev,
		URL:       rev.URL(s.settings.TrackerURL),
		Author:    s.personRef(rev.AuthorPHID, users),
		RepoSlug:  domain.NotAvailable,
		Acceptors: s.personRefs(acceptors, users),
		Blockers:  s.personRefs(blockers, users),
	}

	if repo, ok := repos[rev.RepoPHID]; ok {
		entry.RepoSlug = repo.Slug()
		entry.RepoURL = repoURL(repo, s.settings.TrackerURL)
	}

	return entry
}

// personRef ссылка на пользователя; неразрешенный PHID отображается как N/A
func (s *ReportService) personRef(phid string, users map[string]domain.User) domain.PersonRef {
	user, ok := users[phid]
	if !ok {
		return domain.PersonRef{PHID: phid, Name: domain.NotAvailable}
	}
	user = s.settings.Groups.Resolve(user)
	return domain.PersonRef{
		PHID:       phid,
		Name:       user.Username,
		ProfileURL: user.ProfileURL(s.settings.TrackerURL),
	}
}

func (s *ReportService) personRefs(phids []string, users map[string]domain.User) []domain.PersonRef {
	refs := make([]domain.PersonRef, 0, len(phids))
	for _, phid := range phids {
		refs = append(refs, s.personRef(phid, users))
	}
	return refs
}

func (s *ReportService) usersByPHID(ctx context.Context, phids []string) (map[string]domain.User, error) {
	phids = domain.UniquePHIDs(phids)
	if len(phids) == 0 {
		return map[string]domain.User{}, nil
	}
	users, err := s.tracker.UsersByPHID(ctx, phids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generateReportError, err)
	}
	return users, nil
}

func (s *ReportService) reposByPHID(ctx context.Context, phids []string) (map[string]domain.Repo, error) {
	phids = domain.UniquePHIDs(phids)
	if len(phids) == 0 {
		return map[string]domain.Repo{}, nil
	}
	repos, err := s.tracker.ReposByPHID(ctx, phids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generateReportError, err)
	}
	return repos, nil
}

// readLastRun nil, если отчет не использует since_last_run или запусков еще не было
func (s *ReportService) readLastRun(ctx context.Context, def domain.ReportDefinition) (*time.Time, error) {
	if !def.SinceLastRun || s.lastRun == nil {
		return nil, nil
	}

	ts, err := s.lastRun.GetLastRun(ctx, def.Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", lastRunError, err)
	}
	return &ts, nil
}

// Commit сохраняет время запуска отчета после успешной доставки.
// Generate окно не сдвигает, поэтому просмотр отчета в дашборде store не трогает.
func (s *ReportService) Commit(ctx context.Context, report *domain.Report) error {
	def, err := s.Definition(report.Name)
	if err != nil {
		return err
	}
	if !def.SinceLastRun || s.lastRun == nil {
		return nil
	}

	if err := s.lastRun.SaveLastRun(ctx, def.Name, report.GeneratedAt); err != nil {
		s.log.Error("failed to save last run",
			zap.String("report", def.Name),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", lastRunError, err)
	}

	s.log.Info("last run saved",
		zap.String("report", def.Name),
		zap.Time("at", report.GeneratedAt),
	)
	return nil
}

func (s *ReportService) webURL(name string) string {
	if s.settings.WebBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/reports/%s", strings.TrimRight(s.settings.WebBaseURL, "/"), name)
}

func defaultRevisionTitle(kind domain.ReportKind) string {
	if kind == domain.ReportKindGroupReviewStatus {
		return "Group Review Status"
	}
	return "Revision Status"
}

type sectionMeta struct {
	verb     string
	rest     string
	icon     string
	order    domain.SectionOrder
	severity domain.Severity
	color    string
}

var revisionSections = map[domain.BucketKey]sectionMeta{
	domain.BucketMissingGroupReviewer: {"need", "reviewers assigned", ":hourglass:", domain.OrderNewestFirst, domain.SeverityWarning, "#f2c744"},
	domain.BucketNeedsReview:          {"need", "to be reviewed", ":warning:", domain.OrderNewestFirst, domain.SeverityWarning, "#f2c744"},
	domain.BucketBlockedByTeam:        {"require", "changes", ":arrows_counterclockwise:", domain.OrderNewestFirst, domain.SeverityNotice, "#e8912d"},
	domain.BucketBlockedExternal:      {"is", "blocked", ":no_entry_sign:", domain.OrderNewestFirst, domain.SeverityDanger, "danger"},
	domain.BucketNeedsMoreApprovals:   {"need", "additional approvals", ":pray:", domain.OrderNewestFirst, domain.SeverityInfo, "#439fe0"},
	domain.BucketWorkInProgress:       {"is", "a work in progress", ":construction:", domain.OrderNewestFirst, domain.SeverityMuted, "#9e9e9e"},
	domain.BucketAccepted:             {"is", "accepted and ready to land", ":white_check_mark:", domain.OrderOldestFirst, domain.SeverityGood, "good"},
}

// revisionSection заголовок уже согласован с количеством: "1 Diff needs to be reviewed"
func revisionSection(key domain.BucketKey, count int) domain.Section {
	meta := revisionSections[key]
	rest := meta.rest
	if key == domain.BucketWorkInProgress && count != 1 {
		rest = "work in progress"
	}
	return domain.Section{
		Key:      key,
		Label:    fmt.Sprintf("%d %s %s %s", count, PluralizeNoun("Diff", count), PluralizeVerb(meta.verb, count), rest),
		Icon:     meta.icon,
		Order:    meta.order,
		Severity: meta.severity,
		Color:    meta.color,
	}
}

func repoURL(repo domain.Repo, trackerURL string) string {
	if repo.URI != "" {
		return repo.URI
	}
	return fmt.Sprintf("%s/source/%s/", strings.TrimRight(trackerURL, "/"), repo.Slug())
}
