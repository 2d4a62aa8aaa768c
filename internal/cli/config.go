package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/spikewise/spikewise/internal/daemon"
)

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the daemon configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to ~/.spikewise/config.toml",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := daemon.SaveConfig(daemon.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Config written to %s/config.toml\n", daemon.SpikewiseHome())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		// Never print the API key
		cfg.AI.APIKey = ""
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
	},
}
