package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentx-labs/codex-installer/internal/installerr"
	"github.com/agentx-labs/codex-installer/internal/platform"
)

var platformJSON bool

func init() {
	platformCmd.Flags().BoolVar(&platformJSON, "json", false, "Print platform info as JSON")
	rootCmd.AddCommand(platformCmd)
}

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Show the detected platform and its default download URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printPlatform(cmd, platform.NewResolver(nil), platform.DefaultURLs())
	},
}

func printPlatform(cmd *cobra.Command, r *platform.Resolver, urls platform.URLTable) error {
	key := r.Resolve()
	url, ok := urls.DefaultURL(key)

	out := cmd.OutOrStdout()
	if platformJSON {
		info := map[string]any{
			"os":        key.OS,
			"arch":      key.Arch,
			"supported": ok,
			"url":       url,
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling platform info: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintf(out, "Platform: %s\n", key)
		if ok {
			fmt.Fprintf(out, "Download URL: %s\n", url)
		} else {
			fmt.Fprintln(out, "Download URL: unsupported")
		}
	}

	if !ok {
		return installerr.New(installerr.UnsupportedPlatform, "no package is published for %s", key).
			WithHint("Use --download-url when installing to supply one.")
	}
	return nil
}
