// file: cmd/config_cmd.go
// version: 1.0.0
// guid: 2c6a9e13-7b40-4d85-9f21-c3e8a5d7b016

package cmd

import (
	"fmt"

	"github.com/jdfalk/art-roulette/internal/config"
	"github.com/jdfalk/art-roulette/internal/render"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or persist the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.MarshalYAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write the effective configuration to the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			path = config.ConfigFilePath()
		}
		if path == "" {
			return fmt.Errorf("cannot determine config file path; use --path")
		}
		if err := config.SaveConfigTo(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Success("Configuration saved to "+path))
		return nil
	},
}

func init() {
	configSaveCmd.Flags().String("path", "", "file to write (default: the config file in use, else $HOME/"+config.ConfigFileName+")")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
}
