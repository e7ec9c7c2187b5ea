package cmd

import (
	"context"
	"os"

	"github.com/kelgrave/credman/db"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// statusCmd shows the stored session without touching the network: it reads
// the store directly instead of going through GetTokens so that a peek at
// the state can never trigger a refresh.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and token freshness",
		Run: func(cmd *cobra.Command, args []string) {
			store := db.NewStore(db.GetDB())
			ctx := context.Background()

			tokens, err := store.LoadTokens(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Failed to load tokens")
				cmd.PrintErrln("Error: failed to read the token store.")
				return
			}
			if tokens == nil {
				cmd.Println("No session. Run 'credman import' after signing in.")
				return
			}

			username, err := store.LastAuthUser(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Failed to load last authenticated user")
				cmd.PrintErrln("Error: failed to read the token store.")
				return
			}

			cmd.Println("Signed in as:", username)

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Token", "Expires At", "State"})
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)

			accessExp := tokens.AccessToken.ExpiresAtMillis()
			table.Append([]string{"access", formatExpiry(accessExp), formatValidity(accessExp, tokens.ClockDrift)})

			if tokens.IDToken != nil {
				idExp := tokens.IDToken.ExpiresAtMillis()
				table.Append([]string{"id", formatExpiry(idExp), formatValidity(idExp, tokens.ClockDrift)})
			} else {
				table.Append([]string{"id", "-", "absent"})
			}

			table.Render()
		},
	}
}
