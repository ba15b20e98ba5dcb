package azdevops

import "encoding/json"

// The API evolves ahead of this client; entities therefore keep any top-level
// fields we do not model in an Extra bag instead of dropping them.

func knownFields(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

var (
	pullRequestFields = knownFields(
		"pullRequestId", "title", "description", "status", "createdBy",
		"creationDate", "sourceRefName", "targetRefName", "reviewers",
		"url", "isDraft",
	)
	threadFields = knownFields(
		"id", "status", "threadContext", "comments",
		"publishedDate", "lastUpdatedDate", "isDeleted",
	)
	commentFields = knownFields(
		"id", "parentCommentId", "content", "commentType", "author",
		"publishedDate", "lastUpdatedDate",
	)
)

// splitExtra returns the top-level members of data that are not in known.
func splitExtra(data []byte, known map[string]struct{}) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for name := range all {
		if _, ok := known[name]; ok {
			delete(all, name)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// marshalWithExtra marshals v and merges extra back in at the top level.
// Known fields always win over stale Extra entries.
func marshalWithExtra(v interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, ok := merged[name]; !ok {
			merged[name] = raw
		}
	}
	return json.Marshal(merged)
}

type pullRequestAlias PullRequest

func (p *PullRequest) UnmarshalJSON(data []byte) error {
	var alias pullRequestAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, pullRequestFields)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*p = PullRequest(alias)
	return nil
}

func (p PullRequest) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(pullRequestAlias(p), p.Extra)
}

type threadAlias Thread

func (t *Thread) UnmarshalJSON(data []byte) error {
	var alias threadAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, threadFields)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*t = Thread(alias)
	return nil
}

func (t Thread) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(threadAlias(t), t.Extra)
}

type commentAlias Comment

func (c *Comment) UnmarshalJSON(data []byte) error {
	var alias commentAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := splitExtra(data, commentFields)
	if err != nil {
		return err
	}
	alias.Extra = extra
	*c = Comment(alias)
	return nil
}

func (c Comment) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(commentAlias(c), c.Extra)
}
