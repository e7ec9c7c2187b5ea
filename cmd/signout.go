package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// signoutCmd drops the local session: tokens, username, and the signed-in
// user's device metadata. It performs no network revocation.
func signoutCmd() *cobra.Command {
	var keepDevice bool

	cmd := &cobra.Command{
		Use:   "signout",
		Short: "Drop the stored session",
		Run: func(cmd *cobra.Command, args []string) {
			svc, _, err := buildService()
			if err != nil {
				log.Error().Err(err).Msg("Failed to build the auth service")
				cmd.PrintErrln("Error: failed to set up token management.")
				return
			}
			ctx := context.Background()

			// Device metadata is keyed by username, which clearing the
			// tokens destroys; drop it first.
			if !keepDevice {
				if err := svc.ClearDeviceMetadata(ctx, ""); err != nil {
					log.Error().Err(err).Msg("Failed to clear device metadata")
					cmd.PrintErrln("Error: failed to clear device metadata.")
					return
				}
			}

			if err := svc.ClearTokens(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to clear tokens")
				cmd.PrintErrln("Error: failed to clear the session.")
				return
			}

			cmd.Println("Signed out.")
		},
	}

	cmd.Flags().BoolVar(&keepDevice, "keep-device", false, "Keep the remembered-device metadata")

	return cmd
}
