package cmd

import (
	"context"

	"github.com/kelgrave/credman/auth"
	"github.com/kelgrave/credman/events"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// refreshCmd runs a GetTokens cycle, optionally forcing a refresh even when
// the stored tokens are still fresh. It subscribes to the auth channel so
// the refresh outcome event is visible on the terminal.
func refreshCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch current tokens, refreshing them if they are stale",
		Run: func(cmd *cobra.Command, args []string) {
			svc, hub, err := buildService()
			if err != nil {
				log.Error().Err(err).Msg("Failed to build the auth service")
				cmd.PrintErrln("Error: failed to set up token management.")
				return
			}

			subID, eventCh, err := hub.Subscribe(events.ChannelAuth, 0)
			if err != nil {
				cmd.PrintErrln("Error: failed to subscribe to auth events.")
				return
			}
			defer hub.Unsubscribe(events.ChannelAuth, subID)

			session, err := svc.GetTokens(context.Background(), auth.GetTokensOptions{ForceRefresh: force})

			// Drain whatever the cycle published before reporting.
		drain:
			for {
				select {
				case ev := <-eventCh:
					cmd.Println("Event:", ev.Name)
				default:
					break drain
				}
			}

			if err != nil {
				log.Error().Err(err).Msg("Token refresh cycle failed")
				cmd.PrintErrln("Error:", err.Error())
				return
			}
			if session == nil {
				cmd.Println("No session. Sign in and run 'credman import'.")
				return
			}
			cmd.Println("Session is ready.")
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Refresh even if the tokens are not expired")

	return cmd
}
