package review

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/revi-run/revi/pkg/azdevops"
	"github.com/revi-run/revi/pkg/git"
	"github.com/revi-run/revi/pkg/remote"
)

// DefaultRemote is the git remote consulted for repository discovery.
const DefaultRemote = "origin"

// Session is the process-wide handle to the review client, produced by one
// discovery pass: token from the environment, remote URL from the working
// copy, coordinates parsed from the URL.
type Session struct {
	Client      *azdevops.Client
	Coordinates remote.Coordinates
}

// Options controls discovery. The zero value uses the current directory, the
// "origin" remote and the token from the environment.
type Options struct {
	// Dir is the working copy to discover against. Empty means ".".
	Dir string

	// Remote is the git remote name. Empty means DefaultRemote.
	Remote string

	// Token overrides the environment token. Used by tests.
	Token string

	// BaseURL overrides the API prefix (Azure DevOps Server installs).
	BaseURL string

	// APIVersion overrides the REST api-version.
	APIVersion string

	// Timeout bounds each HTTP call when non-zero.
	Timeout time.Duration

	// Bearer sends the token as a Bearer header instead of Basic auth.
	Bearer bool

	// Logger receives request-level debug output.
	Logger logrus.FieldLogger

	// LookupRemoteURL overrides how the remote URL is read. Tests use this
	// to avoid depending on a real working copy.
	LookupRemoteURL func(ctx context.Context) (string, error)
}

var (
	openOnce   sync.Once
	sharedSess *Session
	sharedErr  error
)

// Open performs discovery once per process and returns the shared Session.
// Concurrent and repeated callers all observe the same result, success or
// failure; discovery never runs twice.
func Open(ctx context.Context, opts Options) (*Session, error) {
	openOnce.Do(func() {
		sharedSess, sharedErr = discover(ctx, opts)
	})
	return sharedSess, sharedErr
}

// reset clears the memoized session. Test hook only.
func reset() {
	openOnce = sync.Once{}
	sharedSess = nil
	sharedErr = nil
}

func discover(ctx context.Context, opts Options) (*Session, error) {
	// Token first: an absent token must fail before any git or network
	// activity.
	token := opts.Token
	if token == "" {
		token = os.Getenv(azdevops.TokenEnv)
	}
	if token == "" {
		return nil, azdevops.ErrMissingToken
	}

	lookup := opts.LookupRemoteURL
	if lookup == nil {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		remoteName := opts.Remote
		if remoteName == "" {
			remoteName = DefaultRemote
		}
		gitClient := git.NewClient(dir)
		lookup = func(ctx context.Context) (string, error) {
			return gitClient.RemoteURL(ctx, remoteName)
		}
	}

	remoteURL, err := lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover git remote: %w", err)
	}

	coords, err := remote.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository from remote: %w", err)
	}

	var clientOpts []azdevops.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, azdevops.WithBaseURL(opts.BaseURL))
	}
	if opts.APIVersion != "" {
		clientOpts = append(clientOpts, azdevops.WithAPIVersion(opts.APIVersion))
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, azdevops.WithTimeout(opts.Timeout))
	}
	if opts.Bearer {
		clientOpts = append(clientOpts, azdevops.WithBearerAuth())
	}
	if opts.Logger != nil {
		clientOpts = append(clientOpts, azdevops.WithLogger(opts.Logger))
	}

	client, err := azdevops.NewClient(coords, token, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Session{Client: client, Coordinates: coords}, nil
}
