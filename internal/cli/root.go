package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depsize/pkg/errors"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the depsize CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands (analyze,
// cache), configures logging based on the --verbose flag, and executes
// the command tree. The logger carries a short run id and is attached to
// the context, accessible to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "depsize reports the on-disk size of a Maven dependency tree",
		Long:          `depsize resolves the fully transitive dependency graph of a Maven coordinate and reports the total on-disk size of every artifact in it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level).With("run", runID())
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newCacheCmd())

	err := root.ExecuteContext(ctx)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		printError("%s", errors.UserMessage(err))
	}
	return err
}

// runID returns a short unique id for one CLI invocation.
func runID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
