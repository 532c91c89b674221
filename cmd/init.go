package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hmans/tweetgraph/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Creates a tweetgraph.yml config file with default settings in the current
directory, or at the path given with --config. An existing file is left
untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists", configPath)
		} else if !os.IsNotExist(err) {
			return err
		}

		if err := config.Default().Save(configPath); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
