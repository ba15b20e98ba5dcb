package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/revi-run/revi/pkg/review"
)

var (
	callRequest string
	callFile    string
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Dispatch one structured review request",
	Long: `Dispatch a single JSON review request and print the raw result.

The request carries an "action" plus its parameters:

  {"action": "get_pr", "pullRequestId": 7}
  {"action": "post_comment", "pullRequestId": 7, "content": "Nice."}
  {"action": "resolve_thread", "pullRequestId": 7, "threadId": 42}

Supported actions: ` + actionList() + `.

The request is read from --request, --file, or stdin, in that order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readRequest()
		if err != nil {
			return err
		}

		var req review.Request
		dec := json.NewDecoder(strings.NewReader(string(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}

		// Reject unknown actions before discovery runs; a bad action never
		// needs a session.
		if !req.Action.Valid() {
			return fmt.Errorf("%w: %q (supported: %s)", review.ErrUnknownAction, req.Action, actionList())
		}

		return runRequest(cmd.Context(), req)
	},
}

func readRequest() ([]byte, error) {
	if callRequest != "" {
		return []byte(callRequest), nil
	}
	if callFile != "" {
		data, err := os.ReadFile(callFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read request file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read request from stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no request given (use --request, --file or stdin)")
	}
	return data, nil
}

func actionList() string {
	actions := review.Actions()
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func init() {
	callCmd.Flags().StringVarP(&callRequest, "request", "r", "", "Request JSON as a string")
	callCmd.Flags().StringVarP(&callFile, "file", "f", "", "Path to a file holding the request JSON")
	rootCmd.AddCommand(callCmd)
}
