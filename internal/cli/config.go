package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/codex-installer/internal/branding"
	"github.com/agentx-labs/codex-installer/internal/config"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage installer settings",
	Long: `Read and write ` + branding.DisplayName() + ` settings stored at ~/` + branding.HomeDir() + `/config.yaml.

Keys: install_dir, download_url, force, skip_launch, binary_name, channel.
Each key can also be set with an environment variable, e.g. ` + branding.EnvVar(config.KeyInstallDir) + `.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		key, value := args[0], args[1]
		if err := cfg.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Get(args[0]))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := flagConfig
		if path == "" {
			path = config.FilePath()
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file against the schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = config.FilePath()
		}
		out := cmd.OutOrStdout()

		result, err := config.ValidateFile(path)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "No config file at %s; defaults are in effect.\n", path)
			return nil
		}
		if err != nil {
			return err
		}
		if result.Valid {
			fmt.Fprintf(out, "%s is valid.\n", path)
			return nil
		}

		for _, issue := range result.Issues {
			fmt.Fprintf(out, "  %s\n", issue)
		}
		return fmt.Errorf("%s: %s found", path, result.Count())
	},
}
