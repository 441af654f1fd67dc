// cmd/config.go
package cmd

import (
	"fmt"

	"github.com/ColonelBlimp/textdump/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print an example configuration file",
	Long: `Prints a commented example configuration. Save it as config.yaml in the
current directory or in ~/.config/textdump/ to change the defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.ExampleConfig)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
