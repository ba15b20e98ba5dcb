package review

import (
	"context"
	"fmt"

	"github.com/revi-run/revi/pkg/azdevops"
)

// Service is the pull-request review surface Dispatch drives. It is
// implemented by *azdevops.Client; tests substitute stubs.
type Service interface {
	ListPullRequests(ctx context.Context, status string) ([]azdevops.PullRequest, error)
	GetPullRequest(ctx context.Context, id int) (*azdevops.PullRequest, error)
	GetPullRequestThreads(ctx context.Context, id int) ([]azdevops.Thread, error)
	GetPullRequestDiff(ctx context.Context, id int) ([]azdevops.IterationChange, error)
	PostComment(ctx context.Context, id int, content string, threadContext *azdevops.ThreadContext) (*azdevops.Thread, error)
	ReplyToThread(ctx context.Context, id, threadID int, content, commentType string) (*azdevops.Comment, error)
	UpdateThreadStatus(ctx context.Context, id, threadID int, status string) (*azdevops.Thread, error)
}

var _ Service = (*azdevops.Client)(nil)

// Dispatch validates the request's required parameters and invokes the
// matching Service call. Validation failures are *ValidationError values and
// never reach the network; everything else is the raw result or error of the
// underlying call.
func Dispatch(ctx context.Context, svc Service, req Request) (interface{}, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	if req.Action != ActionListPRs && req.PullRequestID <= 0 {
		return nil, &ValidationError{Action: req.Action, Field: "pullRequestId"}
	}

	switch req.Action {
	case ActionListPRs:
		return svc.ListPullRequests(ctx, req.StatusFilter)

	case ActionGetPR:
		return svc.GetPullRequest(ctx, req.PullRequestID)

	case ActionGetPRDiff:
		return svc.GetPullRequestDiff(ctx, req.PullRequestID)

	case ActionGetThreads:
		return svc.GetPullRequestThreads(ctx, req.PullRequestID)

	case ActionPostComment:
		if req.Content == "" {
			return nil, &ValidationError{Action: req.Action, Field: "content"}
		}
		return svc.PostComment(ctx, req.PullRequestID, req.Content, req.ThreadContext)

	case ActionReplyToThread:
		if req.ThreadID <= 0 {
			return nil, &ValidationError{Action: req.Action, Field: "threadId"}
		}
		if req.Content == "" {
			return nil, &ValidationError{Action: req.Action, Field: "content"}
		}
		return svc.ReplyToThread(ctx, req.PullRequestID, req.ThreadID, req.Content, req.CommentType)

	case ActionResolveThread:
		if req.ThreadID <= 0 {
			return nil, &ValidationError{Action: req.Action, Field: "threadId"}
		}
		status := req.Status
		if status == "" {
			status = azdevops.DefaultThreadStatus
		}
		return svc.UpdateThreadStatus(ctx, req.PullRequestID, req.ThreadID, status)
	}

	// Unreachable: Valid() covers the full vocabulary.
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
}
