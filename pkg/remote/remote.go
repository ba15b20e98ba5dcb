// Package remote resolves a git remote URL to the Azure DevOps
// organization/project/repository triple backing it. Parsing is pure string
// matching; no network or filesystem access happens here.
package remote

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Supported remote URL shapes:
// - "https://dev.azure.com/org/project/_git/repo"
// - "https://user@dev.azure.com/org/project/_git/repo"
// - "git@ssh.dev.azure.com:v3/org/project/repo"
// - "https://org.visualstudio.com/project/_git/repo" (legacy, optional DefaultCollection)

// ErrNoMatch is returned when a remote URL does not look like any known
// Azure DevOps remote form.
var ErrNoMatch = errors.New("remote URL does not match any Azure DevOps form")

// Coordinates identifies a repository within Azure DevOps.
type Coordinates struct {
	Organization string
	Project      string
	Repository   string
}

// String returns the canonical org/project/repo representation.
func (c Coordinates) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Organization, c.Project, c.Repository)
}

var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https://dev\.azure\.com/([^/]+)/([^/]+)/_git/([^/]+?)/?$`),
	regexp.MustCompile(`^https://[^@/]+@dev\.azure\.com/([^/]+)/([^/]+)/_git/([^/]+?)/?$`),
	regexp.MustCompile(`^[\w.-]+@ssh\.dev\.azure\.com:v3/([^/]+)/([^/]+)/([^/]+?)/?$`),
	regexp.MustCompile(`^https://(?:[^@/]+@)?([\w-]+)\.visualstudio\.com/(?:DefaultCollection/)?([^/]+)/_git/([^/]+?)/?$`),
}

// Parse extracts Coordinates from a git remote URL. Patterns are tried in
// order and the first match wins; a trailing ".git" suffix on the repository
// name is stripped. Parse is deterministic and has no side effects.
func Parse(remoteURL string) (Coordinates, error) {
	url := strings.TrimSpace(remoteURL)
	for _, pattern := range remotePatterns {
		matches := pattern.FindStringSubmatch(url)
		if matches == nil {
			continue
		}
		return Coordinates{
			Organization: matches[1],
			Project:      matches[2],
			Repository:   strings.TrimSuffix(matches[3], ".git"),
		}, nil
	}
	return Coordinates{}, fmt.Errorf("%w: %q", ErrNoMatch, remoteURL)
}
