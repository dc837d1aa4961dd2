package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v60/github"
	"github.com/ksysoev/checkbox-labels-action/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const labelsPath = "/repos/ksysoev/checkbox-labels-action/issues/7/labels"

var testRef = core.TargetRef{Owner: "ksysoev", Repo: "checkbox-labels-action", Number: 7}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	gh := github.NewClient(nil)
	gh.BaseURL = baseURL

	return &Client{client: gh}
}

func labelsHandler(names ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		labels := make([]map[string]string, 0, len(names))
		for _, name := range names {
			labels = append(labels, map[string]string{"name": name})
		}
		_ = json.NewEncoder(w).Encode(labels)
	}
}

// decodeLabels accepts both a bare array and a {"labels": [...]} object
func decodeLabels(t *testing.T, r *http.Request) []string {
	t.Helper()

	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	var labels []string
	if err := json.Unmarshal(data, &labels); err == nil {
		return labels
	}

	var wrapped struct {
		Labels []string `json:"labels"`
	}
	require.NoError(t, json.Unmarshal(data, &wrapped))

	return wrapped.Labels
}

func TestSplitRepo(t *testing.T) {
	owner, repo, err := SplitRepo("ksysoev/checkbox-labels-action")
	require.NoError(t, err)
	assert.Equal(t, "ksysoev", owner)
	assert.Equal(t, "checkbox-labels-action", repo)

	for _, invalid := range []string{"", "ksysoev", "ksysoev/", "/repo", "a/b/c"} {
		_, _, err := SplitRepo(invalid)
		assert.Error(t, err, "expected error for %q", invalid)
	}
}

func TestClient_ListLabels_Paginated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(labelsPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)

		if r.URL.Query().Get("page") == "2" {
			labelsHandler("Existing")(w, r)
			return
		}

		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next"`, r.Host, labelsPath))
		labelsHandler("bug", "WIP")(w, r)
	})

	client := newTestClient(t, mux)

	labels, err := client.ListLabels(context.Background(), testRef)
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "WIP", "Existing"}, labels)
}

func TestClient_WriteLabels(t *testing.T) {
	var gotMethod string
	var gotLabels []string

	mux := http.NewServeMux()
	mux.HandleFunc(labelsPath, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotLabels = decodeLabels(t, r)
		labelsHandler(gotLabels...)(w, r)
	})

	client := newTestClient(t, mux)

	require.NoError(t, client.ReplaceLabels(context.Background(), testRef, []string{"Checked", "WIP"}))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, []string{"Checked", "WIP"}, gotLabels)

	require.NoError(t, client.AddLabels(context.Background(), testRef, []string{"Checked"}))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, []string{"Checked"}, gotLabels)
}

func TestClient_ReplaceLabels_Error(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(labelsPath, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	})

	client := newTestClient(t, mux)

	err := client.ReplaceLabels(context.Background(), testRef, []string{"Checked"})

	var ghErr *github.ErrorResponse
	require.ErrorAs(t, err, &ghErr)
	assert.Equal(t, http.StatusUnauthorized, ghErr.Response.StatusCode)
}

func TestClient_FetchSubject(t *testing.T) {
	tests := []struct {
		name     string
		issue    string
		wantKind core.Kind
	}{
		{
			name:     "Issue",
			issue:    `{"number":7,"body":"- [x] Checked"}`,
			wantKind: core.KindIssue,
		},
		{
			name:     "Pull request",
			issue:    `{"number":7,"body":"- [x] Checked","pull_request":{"url":"https://api.github.com/pulls/7"}}`,
			wantKind: core.KindPullRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/repos/ksysoev/checkbox-labels-action/issues/7", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.issue)
			})
			mux.HandleFunc(labelsPath, labelsHandler("Existing"))

			client := newTestClient(t, mux)

			subject, err := client.FetchSubject(context.Background(), testRef)
			require.NoError(t, err)

			assert.Equal(t, core.Subject{
				Kind:   tt.wantKind,
				Ref:    testRef,
				Body:   "- [x] Checked",
				Labels: []string{"Existing"},
			}, subject)
		})
	}
}

func TestClient_LoadSubject(t *testing.T) {
	repository := `"repository":{"name":"checkbox-labels-action","owner":{"login":"ksysoev"}}`

	tests := []struct {
		name      string
		eventName string
		payload   string
		wantKind  core.Kind
	}{
		{
			name:      "Pull request",
			eventName: "pull_request",
			payload:   `{"action":"edited","number":7,"pull_request":{"number":7,"body":"- [x] WIP"},` + repository + `}`,
			wantKind:  core.KindPullRequest,
		},
		{
			name:      "Pull request target",
			eventName: "pull_request_target",
			payload:   `{"action":"opened","number":7,"pull_request":{"number":7,"body":"- [x] WIP"},` + repository + `}`,
			wantKind:  core.KindPullRequest,
		},
		{
			name:      "Issue",
			eventName: "issues",
			payload:   `{"action":"opened","issue":{"number":7,"body":"- [x] WIP"},` + repository + `}`,
			wantKind:  core.KindIssue,
		},
		{
			name:      "Comment on pull request",
			eventName: "issue_comment",
			payload:   `{"action":"created","issue":{"number":7,"body":"- [x] WIP","pull_request":{"url":"u"}},"comment":{"body":"hi"},` + repository + `}`,
			wantKind:  core.KindPullRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc(labelsPath, labelsHandler("Existing"))

			client := newTestClient(t, mux)

			subject, err := client.LoadSubject(context.Background(), tt.eventName, []byte(tt.payload))
			require.NoError(t, err)

			assert.Equal(t, core.Subject{
				Kind:   tt.wantKind,
				Ref:    testRef,
				Body:   "- [x] WIP",
				Labels: []string{"Existing"},
			}, subject)
		})
	}
}

func TestClient_LoadSubject_Unsupported(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	_, err := client.LoadSubject(context.Background(), "push", []byte(`{"ref":"refs/heads/main"}`))
	assert.ErrorIs(t, err, ErrUnsupportedEvent)

	_, err = client.LoadSubject(context.Background(), "schedule", []byte(`{"schedule":"0 * * * *"}`))
	assert.ErrorIs(t, err, ErrUnsupportedEvent)

	_, err = client.LoadSubject(context.Background(), "issues", []byte(`{"action":"opened",`))
	assert.Error(t, err)
}

func TestClient_Reconcile(t *testing.T) {
	var calls int
	var gotLabels []string

	mux := http.NewServeMux()
	mux.HandleFunc(labelsPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			labelsHandler("Unchecked", "Existing")(w, r)
			return
		}
		calls++
		gotLabels = decodeLabels(t, r)
		labelsHandler(gotLabels...)(w, r)
	})

	client := newTestClient(t, mux)

	payload := `{"action":"edited","issue":{"number":7,"body":"- [ ] Unchecked\n- [x] Checked"},` +
		`"repository":{"name":"checkbox-labels-action","owner":{"login":"ksysoev"}}}`

	subject, err := client.LoadSubject(context.Background(), "issues", []byte(payload))
	require.NoError(t, err)

	reconciler, err := core.NewReconciler(&core.Options{
		Rules: []core.RuleSpec{{Name: "Checked"}, {Name: "Unchecked"}},
	}, core.ModeReplaceAll, client, nil)
	require.NoError(t, err)

	result, err := reconciler.Run(context.Background(), subject)
	require.NoError(t, err)

	assert.Equal(t, core.OutcomeWritten, result.Outcome)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"Checked", "Existing"}, gotLabels)
}
