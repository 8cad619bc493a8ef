package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/PI-33/text2sql/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg.Provider.APIKey = "" // never print credentials

		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Printf("Failed to render config: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(out))
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Refusing to overwrite existing file: %s\n", path)
			os.Exit(1)
		}

		out, err := yaml.Marshal(config.Default())
		if err != nil {
			fmt.Printf("Failed to render config: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, out, 0600); err != nil {
			fmt.Printf("Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", path)
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
