// Package git wraps the system git binary for the small set of read-only
// operations the adapter needs: discovering the configured remote URL of the
// working copy. It deliberately shells out rather than linking a git
// implementation; the working copy is the caller's and we never mutate it.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Client runs git commands against a single working directory.
type Client struct {
	// Dir is the working directory of the git repository.
	Dir string
}

// NewClient creates a git client for the given directory.
func NewClient(dir string) *Client {
	return &Client{Dir: dir}
}

// execCommand executes a git command with proper error handling.
func (c *Client) execCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmdArgs := []string{"-C", c.Dir}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// IsRepository reports whether Dir is inside a git working tree.
func (c *Client) IsRepository(ctx context.Context) bool {
	_, err := c.execCommand(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// RemoteURL returns the fetch URL configured for the named remote, trimmed of
// surrounding whitespace. It prefers `git remote get-url` and falls back to
// reading the config key directly for older git versions.
func (c *Client) RemoteURL(ctx context.Context, name string) (string, error) {
	output, err := c.execCommand(ctx, "remote", "get-url", name)
	if err != nil {
		var cfgErr error
		output, cfgErr = c.execCommand(ctx, "config", "--get", fmt.Sprintf("remote.%s.url", name))
		if cfgErr != nil {
			return "", fmt.Errorf("failed to read URL of remote %q: %w", name, err)
		}
	}
	url := strings.TrimSpace(string(output))
	if url == "" {
		return "", fmt.Errorf("remote %q has no URL configured", name)
	}
	return url, nil
}

// ConfigGet gets a git configuration value from the repository.
func (c *Client) ConfigGet(ctx context.Context, key string) (string, error) {
	output, err := c.execCommand(ctx, "config", "--get", key)
	if err != nil {
		return "", fmt.Errorf("git config --get %s failed: %w", key, err)
	}
	return strings.TrimSpace(string(output)), nil
}
