// Package review exposes the pull-request review operations as a single
// tool-call surface: a structured request carrying an action name and its
// parameters, dispatched onto the Azure DevOps client after local validation.
package review

import (
	"errors"
	"fmt"

	"github.com/revi-run/revi/pkg/azdevops"
)

// Action names the operation a Request performs.
type Action string

// The fixed action vocabulary.
const (
	ActionListPRs       Action = "list_prs"
	ActionGetPR         Action = "get_pr"
	ActionGetPRDiff     Action = "get_pr_diff"
	ActionGetThreads    Action = "get_threads"
	ActionPostComment   Action = "post_comment"
	ActionReplyToThread Action = "reply_to_thread"
	ActionResolveThread Action = "resolve_thread"
)

// Actions returns the supported action names in a stable order.
func Actions() []Action {
	return []Action{
		ActionListPRs, ActionGetPR, ActionGetPRDiff, ActionGetThreads,
		ActionPostComment, ActionReplyToThread, ActionResolveThread,
	}
}

// Valid reports whether a is one of the supported actions.
func (a Action) Valid() bool {
	switch a {
	case ActionListPRs, ActionGetPR, ActionGetPRDiff, ActionGetThreads,
		ActionPostComment, ActionReplyToThread, ActionResolveThread:
		return true
	}
	return false
}

// ErrUnknownAction is wrapped into the error returned for an unrecognized
// action value.
var ErrUnknownAction = errors.New("unknown action")

// Request is one tool call. Field names on the wire match the tool surface.
type Request struct {
	Action        Action                  `json:"action"`
	PullRequestID int                     `json:"pullRequestId,omitempty"`
	ThreadID      int                     `json:"threadId,omitempty"`
	Content       string                  `json:"content,omitempty"`
	Status        string                  `json:"status,omitempty"`
	StatusFilter  string                  `json:"statusFilter,omitempty"`
	CommentType   string                  `json:"commentType,omitempty"`
	ThreadContext *azdevops.ThreadContext `json:"threadContext,omitempty"`
}

// ValidationError reports a missing or invalid required parameter. It is
// raised locally, before any network call.
type ValidationError struct {
	Action Action
	Field  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("action %q requires parameter %q", e.Action, e.Field)
}

// IsValidationError returns true if err is a locally-raised parameter error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
