package cmd

import (
	"fmt"

	"userapi/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCmd creates the command printing the effective configuration.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and USERAPI_*
environment variables were applied. The database password is redacted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := renderConfig(GetConfig())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func renderConfig(c *config.Config) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	out, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("failed to render configuration: %w", err)
	}
	return out, nil
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newConfigCmd())
}
