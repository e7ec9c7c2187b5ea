package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/kelgrave/credman/auth"
	"github.com/kelgrave/credman/db"
	"github.com/kelgrave/credman/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// importedTokens is the JSON shape an external sign-in flow hands over.
type importedTokens struct {
	AccessToken   string              `json:"access_token"`
	IDToken       string              `json:"id_token,omitempty"`
	RefreshToken  string              `json:"refresh_token,omitempty"`
	ClockDrift    int64               `json:"clock_drift,omitempty"`
	SignInDetails *auth.SignInDetails `json:"sign_in_details,omitempty"`
}

// importCmd persists a token set produced by an external interactive
// sign-in, establishing the session the orchestrator manages from then on.
func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a token set from a JSON file (or stdin with '-')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reader io.Reader
			if args[0] == "-" {
				reader = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				reader = f
			}

			var imported importedTokens
			if err := json.NewDecoder(reader).Decode(&imported); err != nil {
				return err
			}
			if err := validation.ValidateJWTShape("access token", imported.AccessToken); err != nil {
				return err
			}
			if imported.IDToken != "" {
				if err := validation.ValidateJWTShape("id token", imported.IDToken); err != nil {
					return err
				}
			}

			tokens := &auth.TokenSet{
				AccessToken:   auth.Token{Raw: imported.AccessToken},
				RefreshToken:  imported.RefreshToken,
				ClockDrift:    imported.ClockDrift,
				SignInDetails: imported.SignInDetails,
			}
			if imported.IDToken != "" {
				tokens.IDToken = &auth.Token{Raw: imported.IDToken}
			}

			store := db.NewStore(db.GetDB())
			if err := store.StoreTokens(context.Background(), tokens); err != nil {
				log.Error().Err(err).Msg("Failed to store imported tokens")
				return err
			}

			cmd.Println("Tokens imported. Signed in as:", tokens.AccessToken.Username())
			return nil
		},
	}

	return cmd
}
