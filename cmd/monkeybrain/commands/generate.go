/*
File: generate.go
Description: The generate-config subcommand. Writes the built-in default
configuration to disk as a starting point.
*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iuu77/MonkeyBrain/pkg/config"
)

// RunGenerateConfig writes the default config file.
func RunGenerateConfig(cmd *cobra.Command, args []string) error {
	path := DefaultConfigPath
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !viper.GetBool("flag_force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Printf("Default configuration written to %s\n", path)
	return nil
}
