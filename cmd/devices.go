package cmd

import (
	"context"
	"os"

	"github.com/kelgrave/credman/pkg/validation"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// devicesCmd surfaces the device-metadata pass-through operations: show the
// remembered-device record for a user, or clear it.
func devicesCmd() *cobra.Command {
	var username string
	var clear bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Show or clear remembered-device metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username != "" {
				if err := validation.ValidateUsername(username); err != nil {
					return err
				}
			}

			svc, _, err := buildService()
			if err != nil {
				log.Error().Err(err).Msg("Failed to build the auth service")
				return err
			}
			ctx := context.Background()

			if clear {
				if err := svc.ClearDeviceMetadata(ctx, username); err != nil {
					log.Error().Err(err).Msg("Failed to clear device metadata")
					return err
				}
				cmd.Println("Device metadata cleared.")
				return nil
			}

			meta, err := svc.GetDeviceMetadata(ctx, username)
			if err != nil {
				log.Error().Err(err).Msg("Failed to load device metadata")
				return err
			}
			if meta == nil {
				cmd.Println("No device metadata found.")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Device Key", "Group Key"})
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.Append([]string{meta.DeviceKey, meta.DeviceGroupKey})
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Username (defaults to the signed-in user)")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the device metadata instead of showing it")

	return cmd
}
