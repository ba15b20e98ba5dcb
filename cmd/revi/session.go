package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/revi-run/revi/pkg/azdevops"
	"github.com/revi-run/revi/pkg/config"
	"github.com/revi-run/revi/pkg/review"
)

const tokenEnvName = azdevops.TokenEnv

// openSession loads project config and performs (or reuses) the process-wide
// repository discovery.
func openSession(ctx context.Context) (*review.Session, *config.ProjectConfig, error) {
	cfg, err := config.Load(flagDir)
	if err != nil {
		return nil, nil, err
	}

	opts := review.Options{
		Dir:        flagDir,
		Remote:     cfg.ResolveRemote(flagRemote),
		BaseURL:    cfg.BaseURL,
		APIVersion: cfg.APIVersion,
		Bearer:     cfg.Bearer,
		Logger:     logrus.StandardLogger(),
	}
	if cfg.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	sess, err := review.Open(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return sess, cfg, nil
}

// runRequest opens the session, dispatches one request and prints the raw
// result as JSON on stdout.
func runRequest(ctx context.Context, req review.Request) error {
	sess, _, err := openSession(ctx)
	if err != nil {
		return err
	}

	result, err := review.Dispatch(ctx, sess.Client, req)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
