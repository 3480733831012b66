package cli

import (
	"github.com/spf13/cobra"

	"github.com/agentx-labs/codex-installer/internal/branding"
	"github.com/agentx-labs/codex-installer/internal/config"
	"github.com/agentx-labs/codex-installer/internal/fetch"
	"github.com/agentx-labs/codex-installer/internal/installer"
	"github.com/agentx-labs/codex-installer/internal/process"
)

// installFlags maps each install flag to the config key it overrides.
var installFlags = []struct {
	flag string
	key  string
}{
	{"install-dir", config.KeyInstallDir},
	{"download-url", config.KeyDownloadURL},
	{"force", config.KeyForce},
	{"skip-launch", config.KeySkipLaunch},
	{"binary-name", config.KeyBinaryName},
	{"channel", config.KeyChannel},
}

func init() {
	f := rootCmd.Flags()
	f.String("install-dir", config.DefaultInstallDir(), "Directory to install "+branding.ProductName()+" into")
	f.String("download-url", "", "Override the package URL for this platform")
	f.Bool("force", false, "Delete the contents of a non-empty install directory first")
	f.Bool("skip-launch", false, "Do not start the login flow after installing")
	f.String("binary-name", branding.BinaryName(), "Name of the executable inside the package")
	f.String("channel", config.DefaultChannel, "Release channel label shown in the summary")
}

// loadSettings reads config for this invocation, with explicitly set
// flags taking precedence over environment, file and defaults.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Settings{}, err
	}
	for _, b := range installFlags {
		if err := cfg.BindFlag(b.key, cmd.Flags().Lookup(b.flag)); err != nil {
			return config.Settings{}, err
		}
	}
	return cfg.Settings()
}

func runInstall(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	inst := installer.New(
		installer.WithOutput(cmd.OutOrStdout()),
		installer.WithFetcher(fetch.New(
			fetch.WithProgress(cmd.ErrOrStderr()),
			fetch.WithUserAgent(branding.CLIName()+"/"+buildVersion),
		)),
		installer.WithRunner(&process.Invoker{
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}),
	)

	code, err := inst.Run(cmd.Context(), installer.Options{
		InstallDir:  s.InstallDir,
		DownloadURL: s.DownloadURL,
		Force:       s.Force,
		SkipLaunch:  s.SkipLaunch,
		BinaryName:  s.BinaryName,
		Channel:     config.DisplayChannel(s.Channel),
	})
	exitCode = code
	return err
}
