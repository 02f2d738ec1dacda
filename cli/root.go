// Package cli implements the security-assistant command line.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"security-assistant/config"
)

func NewRoot(version string) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "security-assistant",
		Short:         "security-assistant: domain vetting and spam classification",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.SetVersionTemplate("security-assistant {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newClassifyCmd())

	return cmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	return config.Load(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
