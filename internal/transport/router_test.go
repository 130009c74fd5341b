package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/db"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/repository"
	"github.com/niklvrr/reviewpulse/internal/infrastructure/tracker"
	"github.com/niklvrr/reviewpulse/internal/transport"
	"github.com/niklvrr/reviewpulse/internal/transport/handler"
	"github.com/niklvrr/reviewpulse/internal/usecase/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	server *httptest.Server
	store  *repository.SQLiteLastRunRepository
}

// fakeConduit трекер с одной принятой ревизией и пустыми задачами
func fakeConduit(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		var params map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("params")), &params))

		var result any
		switch strings.TrimPrefix(r.URL.Path, "/api/") {
		case "differential.revision.search":
			result = searchPage([]map[string]any{{
				"id":   9,
				"phid": "PHID-DREV-9",
				"fields": map[string]any{
					"title":          "Ship the thing",
					"authorPHID":     "PHID-USER-alice",
					"repositoryPHID": "PHID-REPO-api",
					"status":         map[string]any{"value": "accepted"},
					"dateCreated":    1714000000,
					"dateModified":   1714100000,
				},
				"attachments": map[string]any{
					"reviewers": map[string]any{"reviewers": []map[string]any{
						{"reviewerPHID": "PHID-USER-bob", "status": "accepted", "isBlocking": false},
						{"reviewerPHID": "PHID-USER-carol", "status": "accepted", "isBlocking": false},
					}},
				},
			}})
		case "phid.query":
			handles := map[string]any{}
			for _, raw := range params["phids"].([]any) {
				phid := raw.(string)
				name := phid[strings.LastIndex(phid, "-")+1:]
				handles[phid] = map[string]any{"phid": phid, "name": name, "fullName": "r" + name + " " + name}
			}
			result = handles
		case "project.search", "maniphest.search":
			result = searchPage(nil)
		default:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"result": nil, "error_code": "ERR-CONDUIT-CALL", "error_info": "unknown method"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "error_code": nil, "error_info": nil})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func searchPage(data []map[string]any) map[string]any {
	if data == nil {
		data = []map[string]any{}
	}
	return map[string]any{"data": data, "cursor": map[string]any{"after": nil}}
}

// setupTestServer собирает все слои поверх фейкового трекера и SQLite
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	ctx := context.Background()

	conduit := fakeConduit(t)
	client, err := tracker.NewClient(tracker.Config{BaseURL: conduit.URL, Token: "api-token"}, logger)
	require.NoError(t, err)

	sqlDB, err := db.NewSQLite(ctx, t.TempDir()+"/last_run.db", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	store := repository.NewSQLiteLastRunRepository(sqlDB, logger)

	settings := domain.DefaultSettings()
	settings.TrackerURL = conduit.URL
	settings.TeamProjectNames = []string{"Platform"}
	reports := []domain.ReportDefinition{{
		Name:         "team-review",
		Kind:         domain.ReportKindRevisionStatus,
		Usernames:    []string{"alice"},
		SinceLastRun: true,
	}}

	reportService := service.NewReportService(client, store, settings, reports, logger)
	metricsService := service.NewMetricsService(client, settings, logger)

	router := transport.NewRouter(
		handler.NewReportHandler(reportService, logger),
		handler.NewStatsHandler(metricsService, settings.TeamProjectNames, logger),
		handler.NewHealthHandler(store, logger),
		10*time.Second,
		logger,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, store: store}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestRouter_Health(t *testing.T) {
	env := setupTestServer(t)

	var body map[string]string
	status := getJSON(t, env.server.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["store"])
}

func TestRouter_ReportLifecycle(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	var list map[string][]map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, env.server.URL+"/reports", &list))
	require.Len(t, list["reports"], 1)
	assert.Equal(t, "team-review", list["reports"][0]["name"])

	_, err := env.store.GetLastRun(ctx, "team-review")
	require.ErrorIs(t, err, repository.ErrNotFound)

	var report struct {
		Title    string `json:"title"`
		Sections []struct {
			Key       string `json:"key"`
			Count     int    `json:"count"`
			Revisions []struct {
				Id     string `json:"id"`
				Repo   string `json:"repo"`
				Author struct {
					Name string `json:"name"`
				} `json:"author"`
				Acceptors []struct {
					Name string `json:"name"`
				} `json:"acceptors"`
			} `json:"revisions"`
		} `json:"sections"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, env.server.URL+"/reports/team-review?format=json", &report))

	require.Len(t, report.Sections, 1)
	section := report.Sections[0]
	assert.Equal(t, "accepted", section.Key)
	assert.Equal(t, 1, section.Count)
	require.Len(t, section.Revisions, 1)
	assert.Equal(t, "D9", section.Revisions[0].Id)
	assert.Equal(t, "alice", section.Revisions[0].Author.Name)
	assert.Equal(t, "api", section.Revisions[0].Repo)
	assert.Len(t, section.Revisions[0].Acceptors, 2)

	// просмотр в дашборде не сдвигает окно since_last_run
	_, err = env.store.GetLastRun(ctx, "team-review")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRouter_ReportFormats(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.server.URL + "/reports/team-review")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Ship the thing")

	resp, err = http.Get(env.server.URL + "/reports/team-review?format=text")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "D9")
}

func TestRouter_UnknownReport(t *testing.T) {
	env := setupTestServer(t)

	var body handler.ErrorResponse
	status := getJSON(t, env.server.URL+"/reports/ghost", &body)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, service.CodeNotFound, body.Error.Code)
}

func TestRouter_Stats(t *testing.T) {
	env := setupTestServer(t)

	var kinds map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, env.server.URL+"/stats", &kinds))
	assert.Equal(t, []any{"Platform"}, kinds["teams"])

	var metrics struct {
		Kind    string           `json:"kind"`
		Metrics []map[string]any `json:"metrics"`
	}
	status := getJSON(t, env.server.URL+"/stats/bugs?period_start=2024-05-06&period_end=2024-05-20", &metrics)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bugs", metrics.Kind)
	require.Len(t, metrics.Metrics, 2)
	for _, m := range metrics.Metrics {
		assert.EqualValues(t, 0, m["num_created"])
		assert.EqualValues(t, 0, m["num_closed"])
	}
}

func TestRouter_StatsInvalidRange(t *testing.T) {
	env := setupTestServer(t)

	var body handler.ErrorResponse
	status := getJSON(t, env.server.URL+"/stats/bugs?period_start=2024-05-20&period_end=2024-05-06", &body)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.CodeInvalidRange, body.Error.Code)
}

func TestRouter_PrometheusMetrics(t *testing.T) {
	env := setupTestServer(t)
	require.Equal(t, http.StatusOK, getJSON(t, env.server.URL+"/health", nil))

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "reviewpulse_http_requests_total")
}
