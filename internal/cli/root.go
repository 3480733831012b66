package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agentx-labs/codex-installer/internal/branding"
	"github.com/agentx-labs/codex-installer/internal/installerr"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` downloads the ` + branding.ProductName() + ` package for this platform,
unpacks it into an install directory, writes a relocatable launcher script
and a PATH snippet, and then starts the login flow.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd.ErrOrStderr(), flagVerbose)
	},
	RunE: runInstall,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every installation stage")
}

// configureLogging routes diagnostics to w at warn level, or debug when
// verbose is set.
func configureLogging(w io.Writer, verbose bool) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

// exitCode is set by commands that finish with a specific process status.
var exitCode int

// Execute runs the root command with build info injected via ldflags and
// returns the process exit code.
func Execute(version, commit, date string) int {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exitCode = 0
	err := rootCmd.ExecuteContext(ctx)
	return finish(rootCmd.ErrOrStderr(), err)
}

// finish prints err with its hint and picks the exit code. A failed login
// process passes its own status through; every other failure exits 1.
func finish(stderr io.Writer, err error) int {
	if err == nil {
		return exitCode
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	if hint := installerr.HintOf(err); hint != "" {
		fmt.Fprintln(stderr, hint)
	}

	var ie *installerr.Error
	if errors.As(err, &ie) && ie.Kind == installerr.LoginProcessFailed && ie.ExitCode != 0 {
		return ie.ExitCode
	}
	return 1
}
