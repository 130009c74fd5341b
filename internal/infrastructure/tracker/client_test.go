package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/models/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type conduitCall struct {
	Method string
	Params map[string]any
}

// newConduitServer поднимает фейковый трекер; handler получает метод и params, возвращает result
func newConduitServer(t *testing.T, handler func(method string, params map[string]any) (any, string)) (*Client, *[]conduitCall) {
	t.Helper()
	calls := &[]conduitCall{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		method := strings.TrimPrefix(r.URL.Path, "/api/")

		var params map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("params")), &params))
		*calls = append(*calls, conduitCall{Method: method, Params: params})

		result, errorCode := handler(method, params)
		resp := map[string]any{"result": result, "error_code": nil, "error_info": nil}
		if errorCode != "" {
			resp["result"] = nil
			resp["error_code"] = errorCode
			resp["error_info"] = "something went wrong"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Token: "api-token"}, zap.NewNop())
	require.NoError(t, err)
	return client, calls
}

func page(data []map[string]any, after any) map[string]any {
	return map[string]any{
		"data":   data,
		"cursor": map[string]any{"after": after, "limit": pageLimit},
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://tracker.example.com"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewClient(Config{BaseURL: "not a url", Token: "x"}, zap.NewNop())
	assert.Error(t, err)

	c, err := NewClient(Config{BaseURL: "https://tracker.example.com/", Token: "x"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "https://tracker.example.com", c.BaseURL())
}

func TestClient_SendsTokenInParams(t *testing.T) {
	client, calls := newConduitServer(t, func(method string, params map[string]any) (any, string) {
		return map[string]any{"phid": "PHID-USER-me", "userName": "alice", "realName": "Alice A", "primaryEmail": "a@example.com", "uri": "https://tracker/p/alice/"}, ""
	})

	identity, err := client.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{
		PHID:     "PHID-USER-me",
		Username: "alice",
		RealName: "Alice A",
		Email:    "a@example.com",
		URI:      "https://tracker/p/alice/",
	}, identity)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "user.whoami", call.Method)
	assert.Equal(t, map[string]any{"token": "api-token"}, call.Params["__conduit__"])
}

func TestClient_ConduitError(t *testing.T) {
	client, _ := newConduitServer(t, func(string, map[string]any) (any, string) {
		return nil, "ERR-INVALID-AUTH"
	})

	_, err := client.WhoAmI(context.Background())
	assert.ErrorIs(t, err, ErrConduit)
	assert.Contains(t, err.Error(), "ERR-INVALID-AUTH")
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Token: "x"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.AllProjects(context.Background())
	assert.ErrorIs(t, err, ErrUnexpected)
}

func TestFetchRevisions_FollowsCursor(t *testing.T) {
	client, calls := newConduitServer(t, func(method string, params map[string]any) (any, string) {
		if params["after"] == nil {
			return page([]map[string]any{{
				"id":   1,
				"phid": "PHID-DREV-1",
				"fields": map[string]any{
					"title":          "Add login",
					"authorPHID":     "PHID-USER-a",
					"repositoryPHID": "PHID-REPO-1",
					"status":         map[string]any{"value": "needs-review"},
					"dateCreated":    1714000000,
					"dateModified":   1714100000,
				},
				"attachments": map[string]any{
					"reviewers": map[string]any{"reviewers": []map[string]any{
						{"reviewerPHID": "PHID-USER-b", "status": "accepted", "isBlocking": false},
					}},
				},
			}}, "1"), ""
		}
		return page([]map[string]any{{
			"id":     2,
			"phid":   "PHID-DREV-2",
			"fields": map[string]any{"title": "Fix logout", "status": map[string]any{"value": "changes-planned"}},
		}}, nil), ""
	})

	revisions, err := client.FetchRevisions(context.Background(), &dto.RevisionQuery{
		QueryKey:      "active",
		Statuses:      []domain.RevisionStatus{"needs-review"},
		ModifiedAfter: time.Unix(1713000000, 0),
	})
	require.NoError(t, err)
	require.Len(t, revisions, 2)

	assert.Equal(t, 1, revisions[0].Id)
	assert.Equal(t, "Add login", revisions[0].Title)
	assert.Equal(t, time.Unix(1714100000, 0), revisions[0].ModifiedAt)
	require.Len(t, revisions[0].Reviewers, 1)
	assert.Equal(t, "PHID-USER-b", revisions[0].Reviewers[0].PHID)
	assert.Equal(t, domain.RevisionStatus("changes-planned"), revisions[1].Status)
	assert.Empty(t, revisions[1].Reviewers)

	require.Len(t, *calls, 2)
	first := (*calls)[0].Params
	assert.Equal(t, "active", first["queryKey"])
	assert.Equal(t, float64(pageLimit), first["limit"])
	constraints := first["constraints"].(map[string]any)
	assert.Equal(t, float64(1713000000), constraints["modifiedStart"])
	assert.NotContains(t, constraints, "modifiedEnd")
	assert.Equal(t, "1", (*calls)[1].Params["after"])
}

func TestFetchTasks_ConstraintsAndPoints(t *testing.T) {
	client, calls := newConduitServer(t, func(string, map[string]any) (any, string) {
		return page([]map[string]any{
			{"id": 10, "phid": "PHID-TASK-10", "fields": map[string]any{
				"name": "numeric", "status": map[string]any{"value": "resolved"},
				"points": 3, "dateCreated": 1714000000, "dateClosed": 1714500000,
				"ownerPHID": "PHID-USER-o", "closerPHID": "PHID-USER-c",
			}, "attachments": map[string]any{"projects": map[string]any{"projectPHIDs": []string{"PHID-PROJ-1"}}}},
			{"id": 11, "phid": "PHID-TASK-11", "fields": map[string]any{
				"name": "string", "status": map[string]any{"value": "open"}, "points": "2.5",
			}},
			{"id": 12, "phid": "PHID-TASK-12", "fields": map[string]any{
				"name": "null", "status": map[string]any{"value": "open"}, "points": nil, "ownerPHID": nil,
			}},
		}, nil), ""
	})

	tasks, err := client.FetchTasks(context.Background(), &dto.TaskConstraints{
		Statuses:    []string{"open"},
		ClosedStart: time.Unix(1714000000, 0),
		OwnerPHIDs:  []string{"PHID-USER-o"},
	})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, 3.0, tasks[0].Points)
	require.NotNil(t, tasks[0].ClosedAt)
	assert.Equal(t, time.Unix(1714500000, 0), *tasks[0].ClosedAt)
	assert.Equal(t, "PHID-USER-o", tasks[0].OwnerPHID)
	assert.Equal(t, []string{"PHID-PROJ-1"}, tasks[0].ProjectPHIDs)
	assert.Equal(t, 2.5, tasks[1].Points)
	assert.Zero(t, tasks[2].Points)
	assert.Nil(t, tasks[2].ClosedAt)
	assert.Empty(t, tasks[2].OwnerPHID)

	params := (*calls)[0].Params
	constraints := params["constraints"].(map[string]any)
	assert.Equal(t, []any{"PHID-USER-o"}, constraints["assigned"])
	assert.Equal(t, float64(1714000000), constraints["closedStart"])
	assert.NotContains(t, constraints, "createdStart")
	assert.NotContains(t, constraints, "projects")
	assert.Equal(t, []any{"-id"}, params["order"])
}

func TestProjectByName(t *testing.T) {
	client, calls := newConduitServer(t, func(string, map[string]any) (any, string) {
		return page([]map[string]any{
			{"id": 1, "phid": "PHID-PROJ-1", "fields": map[string]any{"name": "Platform Tools"}},
			{"id": 2, "phid": "PHID-PROJ-2", "fields": map[string]any{"name": "Platform"},
				"attachments": map[string]any{"members": map[string]any{"members": []map[string]any{
					{"phid": "PHID-USER-a"}, {"phid": "PHID-USER-b"},
				}}}},
		}, nil), ""
	})

	t.Run("exact match", func(t *testing.T) {
		project, err := client.ProjectByName(context.Background(), "Platform", true)
		require.NoError(t, err)
		assert.Equal(t, "PHID-PROJ-2", project.PHID)
		assert.Equal(t, []string{"PHID-USER-a", "PHID-USER-b"}, project.MemberPHIDs)

		params := (*calls)[len(*calls)-1].Params
		assert.Equal(t, map[string]any{"members": true}, params["attachments"])
	})

	t.Run("partial match is not found", func(t *testing.T) {
		_, err := client.ProjectByName(context.Background(), "Plat", false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAllProjects_SinglePage(t *testing.T) {
	client, _ := newConduitServer(t, func(string, map[string]any) (any, string) {
		return page([]map[string]any{
			{"id": 5, "phid": "PHID-PROJ-5", "fields": map[string]any{
				"name": "Acme", "slug": "acme",
				"parent": map[string]any{"id": 3, "phid": "PHID-PROJ-3", "name": "Customers"},
			}},
			{"id": 3, "phid": "PHID-PROJ-3", "fields": map[string]any{"name": "Customers", "parent": nil}},
		}, nil), ""
	})

	projects, err := client.AllProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.NotNil(t, projects[0].Parent)
	assert.Equal(t, 3, projects[0].Parent.Id)
	assert.Nil(t, projects[1].Parent)
}

func TestUsersByPHID(t *testing.T) {
	client, calls := newConduitServer(t, func(method string, params map[string]any) (any, string) {
		return map[string]any{
			"PHID-USER-a": map[string]any{"phid": "PHID-USER-a", "name": "alice", "fullName": "alice (Alice A)"},
		}, ""
	})

	users, err := client.UsersByPHID(context.Background(), []string{"PHID-USER-a", "PHID-USER-a", ""})
	require.NoError(t, err)
	assert.Equal(t, "alice", users["PHID-USER-a"].Username)

	require.Len(t, *calls, 1)
	assert.Equal(t, "phid.query", (*calls)[0].Method)
	assert.Equal(t, []any{"PHID-USER-a"}, (*calls)[0].Params["phids"])
}

func TestReposByPHID_EmptyResult(t *testing.T) {
	client, _ := newConduitServer(t, func(string, map[string]any) (any, string) {
		return []any{}, ""
	})

	repos, err := client.ReposByPHID(context.Background(), []string{"PHID-REPO-x"})
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestReposByPHID_NoLookupForEmptyInput(t *testing.T) {
	client, calls := newConduitServer(t, func(string, map[string]any) (any, string) {
		return nil, ""
	})

	repos, err := client.ReposByPHID(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, repos)
	assert.Empty(t, *calls)
}

func TestUsersByUsername(t *testing.T) {
	client, calls := newConduitServer(t, func(string, map[string]any) (any, string) {
		return page([]map[string]any{
			{"id": 1, "phid": "PHID-USER-a", "fields": map[string]any{"username": "alice", "realName": "Alice"}},
		}, nil), ""
	})

	users, err := client.UsersByUsername(context.Background(), []string{"alice"})
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{PHID: "PHID-USER-a", Username: "alice", RealName: "Alice"}}, users)

	constraints := (*calls)[0].Params["constraints"].(map[string]any)
	assert.Equal(t, []any{"alice"}, constraints["usernames"])
}

func TestCursorNext(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: ``, ok: false},
		{raw: `null`, ok: false},
		{raw: `""`, ok: false},
		{raw: `"42"`, want: "42", ok: true},
		{raw: `42`, want: "42", ok: true},
	}
	for _, tc := range cases {
		got, ok := cursor{After: json.RawMessage(tc.raw)}.next()
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}
