package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/models/dto"
	"go.uber.org/zap"
)

// FetchRevisions ревизии с вложением reviewers по сохраненному запросу или списку ревьюеров
func (c *Client) FetchRevisions(ctx context.Context, q *dto.RevisionQuery) ([]domain.Revision, error) {
	constraints := map[string]any{}
	if len(q.Statuses) > 0 {
		constraints["statuses"] = q.Statuses
	}
	if len(q.ReviewerPHIDs) > 0 {
		constraints["reviewerPHIDs"] = q.ReviewerPHIDs
	}
	if !q.ModifiedAfter.IsZero() {
		constraints["modifiedStart"] = q.ModifiedAfter.Unix()
	}
	if !q.ModifiedBefore.IsZero() {
		constraints["modifiedEnd"] = q.ModifiedBefore.Unix()
	}

	params := map[string]any{
		"constraints": constraints,
		"attachments": map[string]bool{"reviewers": true},
	}
	if q.QueryKey != "" {
		params["queryKey"] = q.QueryKey
	}

	raw, err := search[rawRevision](ctx, c, "differential.revision.search", params)
	if err != nil {
		return nil, err
	}

	revisions := make([]domain.Revision, 0, len(raw))
	for _, r := range raw {
		revisions = append(revisions, r.toDomain())
	}

	c.log.Debug("revisions fetched", zap.Int("count", len(revisions)))
	return revisions, nil
}

// FetchTasks задачи maniphest со всеми страницами
func (c *Client) FetchTasks(ctx context.Context, q *dto.TaskConstraints) ([]domain.Task, error) {
	constraints := map[string]any{}
	if len(q.Subtypes) > 0 {
		constraints["subtypes"] = q.Subtypes
	}
	if len(q.Statuses) > 0 {
		constraints["statuses"] = q.Statuses
	}
	if !q.CreatedStart.IsZero() {
		constraints["createdStart"] = q.CreatedStart.Unix()
	}
	if !q.CreatedEnd.IsZero() {
		constraints["createdEnd"] = q.CreatedEnd.Unix()
	}
	if !q.ClosedStart.IsZero() {
		constraints["closedStart"] = q.ClosedStart.Unix()
	}
	if !q.ClosedEnd.IsZero() {
		constraints["closedEnd"] = q.ClosedEnd.Unix()
	}
	if len(q.AuthorPHIDs) > 0 {
		constraints["authorPHIDs"] = q.AuthorPHIDs
	}
	if len(q.CloserPHIDs) > 0 {
		constraints["closerPHIDs"] = q.CloserPHIDs
	}
	if len(q.OwnerPHIDs) > 0 {
		constraints["assigned"] = q.OwnerPHIDs
	}
	if len(q.ProjectPHIDs) > 0 {
		constraints["projects"] = q.ProjectPHIDs
	}
	if len(q.ColumnPHIDs) > 0 {
		constraints["columnPHIDs"] = q.ColumnPHIDs
	}

	order := q.Order
	if len(order) == 0 {
		order = []string{"-id"}
	}

	raw, err := search[rawTask](ctx, c, "maniphest.search", map[string]any{
		"constraints": constraints,
		"order":       order,
		"attachments": map[string]bool{"projects": true},
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(raw))
	for _, r := range raw {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

// ProjectByName ищет проект по точному совпадению имени, иначе ErrNotFound
func (c *Client) ProjectByName(ctx context.Context, name string, includeMembers bool) (*domain.Project, error) {
	name = strings.TrimSpace(name)

	params := map[string]any{
		"constraints": map[string]any{"query": name},
	}
	if includeMembers {
		params["attachments"] = map[string]bool{"members": true}
	}

	var result searchPage[rawProject]
	if err := c.call(ctx, "project.search", params, &result); err != nil {
		return nil, err
	}

	for _, r := range result.Data {
		if r.Fields.Name == name {
			project := r.toDomain()
			return &project, nil
		}
	}
	return nil, fmt.Errorf("%w: no project named %q", ErrNotFound, name)
}

func (c *Client) AllProjects(ctx context.Context) ([]domain.Project, error) {
	raw, err := search[rawProject](ctx, c, "project.search", map[string]any{})
	if err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(raw))
	for _, r := range raw {
		projects = append(projects, r.toDomain())
	}
	return projects, nil
}

func (c *Client) ProjectColumns(ctx context.Context, projectPHID string) ([]domain.ProjectColumn, error) {
	raw, err := search[rawColumn](ctx, c, "project.column.search", map[string]any{
		"constraints": map[string]any{"projects": []string{projectPHID}},
	})
	if err != nil {
		return nil, err
	}

	columns := make([]domain.ProjectColumn, 0, len(raw))
	for _, r := range raw {
		columns = append(columns, r.toDomain())
	}
	return columns, nil
}

func (c *Client) UsersByUsername(ctx context.Context, usernames []string) ([]domain.User, error) {
	if len(usernames) == 0 {
		return []domain.User{}, nil
	}

	raw, err := search[rawUser](ctx, c, "user.search", map[string]any{
		"constraints": map[string]any{"usernames": usernames},
	})
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(raw))
	for _, r := range raw {
		users = append(users, r.toDomain())
	}
	return users, nil
}

// UsersByPHID разрешает PHID пользователей и групп через phid.query.
// Неизвестные PHID в ответ не попадают.
func (c *Client) UsersByPHID(ctx context.Context, phids []string) (map[string]domain.User, error) {
	handles, err := c.handles(ctx, phids)
	if err != nil {
		return nil, err
	}

	users := make(map[string]domain.User, len(handles))
	for phid, h := range handles {
		users[phid] = domain.User{
			PHID:     h.PHID,
			Username: h.Name,
			RealName: h.FullName,
		}
	}
	return users, nil
}

func (c *Client) ReposByPHID(ctx context.Context, phids []string) (map[string]domain.Repo, error) {
	handles, err := c.handles(ctx, phids)
	if err != nil {
		return nil, err
	}

	repos := make(map[string]domain.Repo, len(handles))
	for phid, h := range handles {
		repos[phid] = domain.Repo{
			PHID:     h.PHID,
			Name:     h.Name,
			FullName: h.FullName,
			URI:      h.URI,
		}
	}
	return repos, nil
}

func (c *Client) handles(ctx context.Context, phids []string) (map[string]rawHandle, error) {
	phids = domain.UniquePHIDs(phids)
	if len(phids) == 0 {
		return map[string]rawHandle{}, nil
	}

	var raw json.RawMessage
	if err := c.call(ctx, "phid.query", map[string]any{"phids": phids}, &raw); err != nil {
		return nil, err
	}

	// Пустой результат приходит массивом, а не объектом
	result := map[string]rawHandle{}
	if trimmed := strings.TrimSpace(string(raw)); trimmed == "" || trimmed == "[]" || trimmed == "null" {
		return result, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decode phid.query result: %w", ErrUnexpected, err)
	}
	return result, nil
}

func (c *Client) WhoAmI(ctx context.Context) (*domain.Identity, error) {
	var raw rawWhoAmI
	if err := c.call(ctx, "user.whoami", map[string]any{}, &raw); err != nil {
		return nil, err
	}
	return &domain.Identity{
		PHID:     raw.PHID,
		Username: raw.UserName,
		RealName: raw.RealName,
		Email:    raw.PrimaryEmail,
		URI:      raw.URI,
	}, nil
}
