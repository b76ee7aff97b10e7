// asimov-camera-cataloger lists the capture devices attached to this host.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asimov-modules/asimov-camera-module/devices"
	"github.com/asimov-modules/asimov-camera-module/internal/cli"
)

func main() {
	var (
		asJSON    bool
		verbosity int
	)

	cmd := &cobra.Command{
		Use:           "asimov-camera-cataloger",
		Short:         "List attached capture devices",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.SetupLogging(verbosity)

			list, err := devices.List()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				for _, d := range list {
					if err := enc.Encode(d); err != nil {
						return err
					}
				}
				return nil
			}

			if len(list) == 0 {
				fmt.Println("no capture devices found")
				return nil
			}
			for _, d := range list {
				bus := ""
				if d.IsUSB {
					bus = " [usb]"
				}
				fmt.Printf("%-16s %s%s\n", d.ID, d.Name, bus)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit one JSON object per device")
	cmd.Flags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")

	if err := cmd.Execute(); err != nil {
		cli.PrintError("asimov-camera-cataloger", err)
		os.Exit(cli.ExitCode(err))
	}
}
