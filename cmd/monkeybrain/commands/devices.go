/*
File: devices.go
Description: The devices subcommand. Lists Android devices visible to adb.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iuu77/MonkeyBrain/pkg/adb"
)

// RunDevices prints every device adb currently sees.
func RunDevices(cmd *cobra.Command, args []string) error {
	bridge := adb.New("")
	devices, err := bridge.Devices(context.Background())
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("No devices connected.")
		return nil
	}
	for _, d := range devices {
		fmt.Printf("%-24s %s\n", d.Serial, d.State)
	}
	return nil
}
