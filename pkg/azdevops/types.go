package azdevops

import (
	"encoding/json"
	"time"
)

// IdentityRef identifies an Azure DevOps user or service identity.
type IdentityRef struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	UniqueName  string `json:"uniqueName,omitempty"`
	URL         string `json:"url,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Reviewer is an identity with its review vote on a pull request.
type Reviewer struct {
	IdentityRef
	Vote       int  `json:"vote"`
	IsRequired bool `json:"isRequired,omitempty"`
}

// Repository is the server-side record for a git repository. Only the id is
// needed by the client; the rest is kept for callers inspecting the result.
type Repository struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	RemoteURL string `json:"remoteUrl,omitempty"`
	WebURL    string `json:"webUrl,omitempty"`
}

// PullRequest is a snapshot of a remote pull request. Fields the server sends
// beyond the enumerated ones are preserved in Extra.
type PullRequest struct {
	PullRequestID int         `json:"pullRequestId"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Status        string      `json:"status"`
	CreatedBy     IdentityRef `json:"createdBy"`
	CreationDate  time.Time   `json:"creationDate"`
	SourceRefName string      `json:"sourceRefName,omitempty"`
	TargetRefName string      `json:"targetRefName,omitempty"`
	Reviewers     []Reviewer  `json:"reviewers,omitempty"`
	URL           string      `json:"url,omitempty"`
	IsDraft       bool        `json:"isDraft,omitempty"`

	// Extra holds server fields not covered above so forward-compatible
	// responses are not dropped.
	Extra map[string]json.RawMessage `json:"-"`
}

// CommentPosition is a line/offset pair within a file.
type CommentPosition struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// ThreadContext anchors a thread to a file region for inline comments.
type ThreadContext struct {
	FilePath       string           `json:"filePath"`
	RightFileStart *CommentPosition `json:"rightFileStart,omitempty"`
	RightFileEnd   *CommentPosition `json:"rightFileEnd,omitempty"`
	LeftFileStart  *CommentPosition `json:"leftFileStart,omitempty"`
	LeftFileEnd    *CommentPosition `json:"leftFileEnd,omitempty"`
}

// Comment is a single message within a thread.
type Comment struct {
	ID              int         `json:"id"`
	ParentCommentID int         `json:"parentCommentId,omitempty"`
	Content         string      `json:"content"`
	CommentType     string      `json:"commentType,omitempty"`
	Author          IdentityRef `json:"author"`
	PublishedDate   time.Time   `json:"publishedDate,omitempty"`
	LastUpdatedDate time.Time   `json:"lastUpdatedDate,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Thread is a comment thread on a pull request, optionally anchored to a
// file region via ThreadContext.
type Thread struct {
	ID              int            `json:"id"`
	Status          string         `json:"status,omitempty"`
	ThreadContext   *ThreadContext `json:"threadContext,omitempty"`
	Comments        []Comment      `json:"comments,omitempty"`
	PublishedDate   time.Time      `json:"publishedDate,omitempty"`
	LastUpdatedDate time.Time      `json:"lastUpdatedDate,omitempty"`
	IsDeleted       bool           `json:"isDeleted,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Iteration is a numbered snapshot of a pull request's changes. Higher id
// means more recent.
type Iteration struct {
	ID          int       `json:"id"`
	Description string    `json:"description,omitempty"`
	CreatedDate time.Time `json:"createdDate,omitempty"`
	UpdatedDate time.Time `json:"updatedDate,omitempty"`
}

// ChangeItem is the file a change applies to.
type ChangeItem struct {
	Path     string `json:"path"`
	ObjectID string `json:"objectId,omitempty"`
	IsFolder bool   `json:"isFolder,omitempty"`
}

// IterationChange is one file change within an iteration.
type IterationChange struct {
	ChangeTrackingID int        `json:"changeTrackingId,omitempty"`
	ChangeID         int        `json:"changeId,omitempty"`
	ChangeType       string     `json:"changeType"`
	Item             ChangeItem `json:"item"`
}

// List envelopes: the Azure DevOps REST API wraps collections in
// {"count": n, "value": [...]}.

type pullRequestList struct {
	Count int           `json:"count"`
	Value []PullRequest `json:"value"`
}

type threadList struct {
	Count int      `json:"count"`
	Value []Thread `json:"value"`
}

type iterationList struct {
	Count int         `json:"count"`
	Value []Iteration `json:"value"`
}

type iterationChanges struct {
	ChangeEntries []IterationChange `json:"changeEntries"`
}

// Mutating request payloads.

type newCommentPayload struct {
	ParentCommentID int    `json:"parentCommentId"`
	Content         string `json:"content"`
	CommentType     string `json:"commentType"`
}

type newThreadPayload struct {
	Comments      []newCommentPayload `json:"comments"`
	Status        string              `json:"status"`
	ThreadContext *ThreadContext      `json:"threadContext,omitempty"`
}

type threadStatusPayload struct {
	Status string `json:"status"`
}
