package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDir     string
	flagRemote  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "revi",
	Short: "revi reviews Azure DevOps pull requests from the command line.",
	Long: `revi discovers the Azure DevOps repository backing the current working
copy, authenticates with the token in ` + tokenEnvName + `, and exposes the
pull-request review operations (list, fetch, diff, comment, reply, resolve)
as commands and as a single JSON tool-call surface (see "revi call").`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real environment wins over file values.
		_ = godotenv.Load()

		if flagVerbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
		logrus.SetOutput(os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "C", ".", "Working copy directory")
	rootCmd.PersistentFlags().StringVar(&flagRemote, "remote", "", "Git remote to discover the repository from (default origin)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every API call at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
