package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"zapper/internal"
	"zapper/internal/samsung"
)

var authTimeoutSec int

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Pair with the TV and save the token",
	Long: `Open a websocket session and wait for the TV to grant access. The TV
shows an on-screen prompt on first contact; once allowed, the pairing
token is saved and later commands connect without prompting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.HasValidTV() {
			return fmt.Errorf("no TV address configured, run 'zapper config generate' and fill in tv.host, or pass --host")
		}

		// Pairing needs time for someone to pick up the TV remote and
		// hit Allow, so the handshake timeout is stretched here.
		clientConfig := cfg.TV.ClientConfig()
		clientConfig.HandshakeTimeout = time.Duration(authTimeoutSec) * time.Second

		client := samsung.NewRemoteClient(clientConfig, internal.NewModeOptions(internal.WithDebug(debugFlag)))
		defer client.Disconnect()

		cmd.Printf("Connecting to %s...\n", cfg.TV.Host)
		cmd.Println("Look at the TV: allow the connection when the prompt appears.")

		if err := client.Connect(); err != nil {
			return fmt.Errorf("pairing failed: %w", err)
		}

		if client.Token() == "" {
			cmd.Println("Connected, but the TV did not issue a token.")
			cmd.Println("Commands will trigger the on-screen prompt on every connect.")
			return nil
		}

		cmd.Printf("Paired. Token saved to %s\n", cfg.TV.TokenFile)
		return nil
	},
}

func init() {
	authCmd.Flags().IntVar(&authTimeoutSec, "timeout", 30, "seconds to wait for the on-screen prompt")

	rootCmd.AddCommand(authCmd)
}
