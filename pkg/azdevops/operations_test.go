package azdevops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revi-run/revi/pkg/remote"
)

var testCoords = remote.Coordinates{
	Organization: "fabrikam",
	Project:      "Tailspin",
	Repository:   "tailspin-web",
}

const testRepoID = "6c0f1c1c-2f6e-4a8a-9c3b-111111111111"

type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// requestLog records every request the stub server sees.
type requestLog struct {
	mu      sync.Mutex
	entries []capturedRequest
}

func (l *requestLog) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, capturedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
}

func (l *requestLog) count(method, path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Method == method && e.Path == path {
			n++
		}
	}
	return n
}

func (l *requestLog) last() capturedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return capturedRequest{}
	}
	return l.entries[len(l.entries)-1]
}

func (l *requestLog) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// newStubClient starts a stub API server and returns a client pointed at it.
// The repository lookup endpoint is always served so operations can resolve
// the repository id.
func newStubClient(t *testing.T, mux *http.ServeMux) (*Client, *requestLog) {
	t.Helper()

	log := &requestLog{}
	mux.HandleFunc("/repositories/"+testCoords.Repository, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Repository{ID: testRepoID, Name: testCoords.Repository})
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.record(r)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := NewClient(testCoords, "test-token",
		WithBaseURL(server.URL),
		WithLogger(logger),
	)
	require.NoError(t, err)
	return client, log
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(testCoords, "")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestRepositoryIDResolvedOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, pullRequestList{Count: 0, Value: []PullRequest{}})
	})
	client, log := newStubClient(t, mux)
	ctx := context.Background()

	_, err := client.ListPullRequests(ctx, "")
	require.NoError(t, err)
	_, err = client.ListPullRequests(ctx, StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, 1, log.count(http.MethodGet, "/repositories/"+testCoords.Repository),
		"repository id should be resolved exactly once")
}

func TestListPullRequestsStatusFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, pullRequestList{Count: 1, Value: []PullRequest{{PullRequestID: 12, Title: "Add caching", Status: "active"}}})
	})
	client, log := newStubClient(t, mux)

	prs, err := client.ListPullRequests(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 12, prs[0].PullRequestID)

	last := log.last()
	assert.Equal(t, StatusActive, last.Query.Get("searchCriteria.status"), "empty filter defaults to active")
	assert.Equal(t, DefaultAPIVersion, last.Query.Get("api-version"))
}

func TestListPullRequestsRejectsUnknownFilter(t *testing.T) {
	client, log := newStubClient(t, http.NewServeMux())

	_, err := client.ListPullRequests(context.Background(), "merged")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merged")
	assert.Equal(t, 0, log.total(), "invalid filter must be rejected before any HTTP call")
}

func TestGetPullRequestNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"TF401180: The requested pull request was not found."}`)
	})
	client, _ := newStubClient(t, mux)

	_, err := client.GetPullRequest(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "TF401180", "response body is surfaced verbatim")
	assert.True(t, IsNotFoundError(err))
}

func TestGetPullRequestDiffNoIterations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7/iterations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, iterationList{Count: 0, Value: []Iteration{}})
	})
	client, log := newStubClient(t, mux)

	changes, err := client.GetPullRequestDiff(context.Background(), 7)
	require.NoError(t, err, "zero iterations is not an error")
	assert.NotNil(t, changes)
	assert.Empty(t, changes)
	assert.Equal(t, 0, log.count(http.MethodGet, "/repositories/"+testRepoID+"/pullrequests/7/iterations/0/changes"))
}

func TestGetPullRequestDiffPicksHighestIteration(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7/iterations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, iterationList{Count: 3, Value: []Iteration{{ID: 3}, {ID: 1}, {ID: 5}}})
	})
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7/iterations/5/changes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, iterationChanges{ChangeEntries: []IterationChange{
			{ChangeType: "edit", Item: ChangeItem{Path: "/pkg/server/server.go"}},
			{ChangeType: "add", Item: ChangeItem{Path: "/pkg/server/middleware.go"}},
		}})
	})
	client, log := newStubClient(t, mux)

	changes, err := client.GetPullRequestDiff(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "/pkg/server/server.go", changes[0].Item.Path)
	assert.Equal(t, 1, log.count(http.MethodGet, "/repositories/"+testRepoID+"/pullrequests/7/iterations/5/changes"),
		"iteration 5 (highest id) must be fetched, not the latest-inserted")
}

func TestPostCommentPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7/threads", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Thread{ID: 42, Status: "active"})
	})
	client, log := newStubClient(t, mux)

	anchor := &ThreadContext{
		FilePath:       "/pkg/server/server.go",
		RightFileStart: &CommentPosition{Line: 10, Offset: 1},
		RightFileEnd:   &CommentPosition{Line: 10, Offset: 20},
	}
	thread, err := client.PostComment(context.Background(), 7, "Consider a context here.", anchor)
	require.NoError(t, err)
	assert.Equal(t, 42, thread.ID)

	var payload newThreadPayload
	require.NoError(t, json.Unmarshal(log.last().Body, &payload))
	assert.Equal(t, "active", payload.Status)
	require.Len(t, payload.Comments, 1)
	assert.Equal(t, 0, payload.Comments[0].ParentCommentID)
	assert.Equal(t, "text", payload.Comments[0].CommentType)
	require.NotNil(t, payload.ThreadContext)
	assert.Equal(t, "/pkg/server/server.go", payload.ThreadContext.FilePath)
}

func TestPostCommentWithoutAnchorOmitsThreadContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7/threads", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Thread{ID: 43, Status: "active"})
	})
	client, log := newStubClient(t, mux)

	_, err := client.PostComment(context.Background(), 7, "Overall looks good.", nil)
	require.NoError(t, err)
	assert.NotContains(t, string(log.last().Body), "threadContext")
}

func TestReplyToThreadDefaultsToText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7/threads/42/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Comment{ID: 2, Content: "Done."})
	})
	client, log := newStubClient(t, mux)

	comment, err := client.ReplyToThread(context.Background(), 7, 42, "Done.", "")
	require.NoError(t, err)
	assert.Equal(t, 2, comment.ID)

	var payload newCommentPayload
	require.NoError(t, json.Unmarshal(log.last().Body, &payload))
	assert.Equal(t, 1, payload.ParentCommentID, "replies attach to the root comment")
	assert.Equal(t, "text", payload.CommentType)
}

func TestUpdateThreadStatusPassthrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7/threads/42", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Thread{ID: 42, Status: "wontFix"})
	})
	client, log := newStubClient(t, mux)

	thread, err := client.UpdateThreadStatus(context.Background(), 7, 42, "wontFix")
	require.NoError(t, err)
	assert.Equal(t, "wontFix", thread.Status)

	last := log.last()
	assert.Equal(t, http.MethodPatch, last.Method)
	var payload threadStatusPayload
	require.NoError(t, json.Unmarshal(last.Body, &payload))
	assert.Equal(t, "wontFix", payload.Status, "status is passed through unvalidated")
}

func TestUpdateThreadStatusNoContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7/threads/42", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := newStubClient(t, mux)

	thread, err := client.UpdateThreadStatus(context.Background(), 7, 42, "closed")
	require.NoError(t, err, "204 must not be treated as a parse error")
	assert.Nil(t, thread, "204 yields an absent result")
}

func TestBasicAuthAndHeaders(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/"+testRepoID+"/pullrequests/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, PullRequest{PullRequestID: 7, Title: "Fix flaky test", Status: "active"})
	})
	client, log := newStubClient(t, mux)

	_, err := client.GetPullRequest(context.Background(), 7)
	require.NoError(t, err)

	header := log.last().Header
	auth := header.Get("Authorization")
	require.True(t, strings.HasPrefix(auth, "Basic "), "PATs use Basic auth")

	user, pass, ok := parseBasicAuth(auth)
	require.True(t, ok)
	assert.Equal(t, "", user, "Basic username is empty")
	assert.Equal(t, "test-token", pass, "token is the Basic password")
	assert.Equal(t, "application/json;api-version="+DefaultAPIVersion, header.Get("Accept"))
}

func parseBasicAuth(header string) (user, pass string, ok bool) {
	req := &http.Request{Header: http.Header{"Authorization": {header}}}
	return req.BasicAuth()
}

func TestTransportErrorPropagates(t *testing.T) {
	client, err := NewClient(testCoords, "test-token", WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = client.GetPullRequest(context.Background(), 7)
	require.Error(t, err)
	assert.False(t, IsNotFoundError(err), "transport failures are not API errors")
}
