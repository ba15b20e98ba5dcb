package azdevops

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Pull request status filters accepted by ListPullRequests.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// DefaultThreadStatus is the status sent by thread resolution when the caller
// supplies none.
const DefaultThreadStatus = "closed"

// ResolveRepositoryID returns the server-assigned identifier for the
// repository, fetching it on first use and caching it for the lifetime of the
// client. Concurrent callers collapse to one in-flight lookup.
func (c *Client) ResolveRepositoryID(ctx context.Context) (string, error) {
	c.repoMu.Lock()
	defer c.repoMu.Unlock()

	if c.repoID != "" {
		return c.repoID, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "repositories/"+url.PathEscape(c.coords.Repository), nil, nil)
	if err != nil {
		return "", err
	}

	var repo Repository
	if _, err := c.do(req, &repo); err != nil {
		return "", fmt.Errorf("failed to resolve repository %q: %w", c.coords.Repository, err)
	}
	if repo.ID == "" {
		return "", fmt.Errorf("repository %q resolved without an id", c.coords.Repository)
	}

	c.repoID = repo.ID
	return c.repoID, nil
}

// prPath builds a repository-scoped path, resolving the repository id first.
func (c *Client) prPath(ctx context.Context, suffix string) (string, error) {
	repoID, err := c.ResolveRepositoryID(ctx)
	if err != nil {
		return "", err
	}
	return "repositories/" + repoID + suffix, nil
}

// ListPullRequests returns pull requests matching the status filter, in
// server order. An empty filter defaults to active. The filter is a closed
// set; unknown values are rejected before any network call.
func (c *Client) ListPullRequests(ctx context.Context, status string) ([]PullRequest, error) {
	if status == "" {
		status = StatusActive
	}
	switch status {
	case StatusActive, StatusCompleted, StatusAbandoned:
	default:
		return nil, fmt.Errorf("invalid pull request status filter %q (want active, completed or abandoned)", status)
	}

	path, err := c.prPath(ctx, "/pullrequests")
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("searchCriteria.status", status)

	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var list pullRequestList
	if _, err := c.do(req, &list); err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	return list.Value, nil
}

// GetPullRequest fetches the full detail of one pull request.
func (c *Client) GetPullRequest(ctx context.Context, id int) (*PullRequest, error) {
	path, err := c.prPath(ctx, fmt.Sprintf("/pullrequests/%d", id))
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var pr PullRequest
	if _, err := c.do(req, &pr); err != nil {
		return nil, fmt.Errorf("failed to fetch pull request %d: %w", id, err)
	}
	return &pr, nil
}

// GetPullRequestThreads returns all comment threads of a pull request,
// unfiltered, in server order.
func (c *Client) GetPullRequestThreads(ctx context.Context, id int) ([]Thread, error) {
	path, err := c.prPath(ctx, fmt.Sprintf("/pullrequests/%d/threads", id))
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var list threadList
	if _, err := c.do(req, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch threads of pull request %d: %w", id, err)
	}
	return list.Value, nil
}

// GetPullRequestDiff returns the file changes of the pull request's most
// recent iteration (the numerically-highest iteration id). A pull request
// with no iterations yields an empty list, not an error.
func (c *Client) GetPullRequestDiff(ctx context.Context, id int) ([]IterationChange, error) {
	basePath, err := c.prPath(ctx, fmt.Sprintf("/pullrequests/%d/iterations", id))
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, basePath, nil, nil)
	if err != nil {
		return nil, err
	}

	var iterations iterationList
	if _, err := c.do(req, &iterations); err != nil {
		return nil, fmt.Errorf("failed to fetch iterations of pull request %d: %w", id, err)
	}
	if len(iterations.Value) == 0 {
		return []IterationChange{}, nil
	}

	latest := iterations.Value[0].ID
	for _, it := range iterations.Value[1:] {
		if it.ID > latest {
			latest = it.ID
		}
	}

	req, err = c.newRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%d/changes", basePath, latest), nil, nil)
	if err != nil {
		return nil, err
	}

	var changes iterationChanges
	if _, err := c.do(req, &changes); err != nil {
		return nil, fmt.Errorf("failed to fetch changes of iteration %d: %w", latest, err)
	}
	return changes.ChangeEntries, nil
}

// PostComment creates a new active thread with a single root comment. When
// threadContext is non-nil the thread is anchored to the file region it
// describes; otherwise the comment applies to the pull request overall.
func (c *Client) PostComment(ctx context.Context, id int, content string, threadContext *ThreadContext) (*Thread, error) {
	path, err := c.prPath(ctx, fmt.Sprintf("/pullrequests/%d/threads", id))
	if err != nil {
		return nil, err
	}

	payload := newThreadPayload{
		Comments: []newCommentPayload{{
			ParentCommentID: 0,
			Content:         content,
			CommentType:     "text",
		}},
		Status:        StatusActive,
		ThreadContext: threadContext,
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}

	var thread Thread
	if _, err := c.do(req, &thread); err != nil {
		return nil, fmt.Errorf("failed to post comment on pull request %d: %w", id, err)
	}
	return &thread, nil
}

// ReplyToThread appends one comment to an existing thread as a reply to its
// root comment. commentType defaults to "text".
func (c *Client) ReplyToThread(ctx context.Context, id, threadID int, content, commentType string) (*Comment, error) {
	if commentType == "" {
		commentType = "text"
	}

	path, err := c.prPath(ctx, fmt.Sprintf("/pullrequests/%d/threads/%d/comments", id, threadID))
	if err != nil {
		return nil, err
	}

	payload := newCommentPayload{
		ParentCommentID: 1,
		Content:         content,
		CommentType:     commentType,
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return nil, err
	}

	var comment Comment
	if _, err := c.do(req, &comment); err != nil {
		return nil, fmt.Errorf("failed to reply to thread %d on pull request %d: %w", threadID, id, err)
	}
	return &comment, nil
}

// UpdateThreadStatus sets a thread's status. The status value is passed
// through as supplied; the server owns the allowed vocabulary. A 204 response
// yields a nil thread and nil error.
func (c *Client) UpdateThreadStatus(ctx context.Context, id, threadID int, status string) (*Thread, error) {
	path, err := c.prPath(ctx, fmt.Sprintf("/pullrequests/%d/threads/%d", id, threadID))
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPatch, path, nil, threadStatusPayload{Status: status})
	if err != nil {
		return nil, err
	}

	var thread Thread
	code, err := c.do(req, &thread)
	if err != nil {
		return nil, fmt.Errorf("failed to update status of thread %d on pull request %d: %w", threadID, id, err)
	}
	if code == http.StatusNoContent {
		return nil, nil
	}
	return &thread, nil
}
