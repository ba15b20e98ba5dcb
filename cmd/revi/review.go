package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/revi-run/revi/pkg/azdevops"
	"github.com/revi-run/revi/pkg/review"
)

// Convenience commands over the same dispatcher the "call" surface uses.

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List pull requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cfg, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		result, err := review.Dispatch(cmd.Context(), sess.Client, review.Request{
			Action:       review.ActionListPRs,
			StatusFilter: cfg.ResolveStatusFilter(listStatus),
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <pr>",
	Short: "Show one pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePRID(args[0])
		if err != nil {
			return err
		}
		return runRequest(cmd.Context(), review.Request{Action: review.ActionGetPR, PullRequestID: id})
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <pr>",
	Short: "List the file changes of a pull request's latest iteration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePRID(args[0])
		if err != nil {
			return err
		}
		return runRequest(cmd.Context(), review.Request{Action: review.ActionGetPRDiff, PullRequestID: id})
	},
}

var threadsCmd = &cobra.Command{
	Use:   "threads <pr>",
	Short: "List the comment threads of a pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePRID(args[0])
		if err != nil {
			return err
		}
		return runRequest(cmd.Context(), review.Request{Action: review.ActionGetThreads, PullRequestID: id})
	},
}

var (
	commentMessage string
	commentPath    string
	commentLine    int
	commentEndLine int
)

var commentCmd = &cobra.Command{
	Use:   "comment <pr>",
	Short: "Post a comment, optionally anchored to a file line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePRID(args[0])
		if err != nil {
			return err
		}

		var anchor *azdevops.ThreadContext
		if commentPath != "" {
			end := commentEndLine
			if end == 0 {
				end = commentLine
			}
			anchor = &azdevops.ThreadContext{
				FilePath:       commentPath,
				RightFileStart: &azdevops.CommentPosition{Line: commentLine, Offset: 1},
				RightFileEnd:   &azdevops.CommentPosition{Line: end, Offset: 1},
			}
		}

		return runRequest(cmd.Context(), review.Request{
			Action:        review.ActionPostComment,
			PullRequestID: id,
			Content:       commentMessage,
			ThreadContext: anchor,
		})
	},
}

var (
	replyMessage string
	replyType    string
)

var replyCmd = &cobra.Command{
	Use:   "reply <pr> <thread>",
	Short: "Reply to a comment thread",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePRID(args[0])
		if err != nil {
			return err
		}
		threadID, err := parseThreadID(args[1])
		if err != nil {
			return err
		}
		return runRequest(cmd.Context(), review.Request{
			Action:        review.ActionReplyToThread,
			PullRequestID: id,
			ThreadID:      threadID,
			Content:       replyMessage,
			CommentType:   replyType,
		})
	},
}

var resolveStatus string

var resolveCmd = &cobra.Command{
	Use:   "resolve <pr> <thread>",
	Short: "Set a thread's status (default closed)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePRID(args[0])
		if err != nil {
			return err
		}
		threadID, err := parseThreadID(args[1])
		if err != nil {
			return err
		}
		return runRequest(cmd.Context(), review.Request{
			Action:        review.ActionResolveThread,
			PullRequestID: id,
			ThreadID:      threadID,
			Status:        resolveStatus,
		})
	},
}

func parsePRID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid pull request id %q", arg)
	}
	return id, nil
}

func parseThreadID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid thread id %q", arg)
	}
	return id, nil
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status: active, completed or abandoned (default active)")

	commentCmd.Flags().StringVarP(&commentMessage, "message", "m", "", "Comment text (required)")
	commentCmd.Flags().StringVar(&commentPath, "path", "", "File path to anchor the comment to")
	commentCmd.Flags().IntVar(&commentLine, "line", 1, "Start line of the anchored region")
	commentCmd.Flags().IntVar(&commentEndLine, "end-line", 0, "End line of the anchored region (default start line)")

	replyCmd.Flags().StringVarP(&replyMessage, "message", "m", "", "Reply text (required)")
	replyCmd.Flags().StringVar(&replyType, "type", "", "Comment type (default text)")

	resolveCmd.Flags().StringVar(&resolveStatus, "status", "", "Thread status to set (default closed)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(resolveCmd)
}
