package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"zapper/internal/wol"
)

var wakeMAC string

var wakeCmd = &cobra.Command{
	Use:   "wake",
	Short: "Power on the TV with a wake-on-lan packet",
	Long: `Send a wake-on-lan magic packet to the TV's MAC address. The address
comes from tv.mac in the config file unless --mac is given. The TV must
be on mains power and on the same broadcast domain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mac := wakeMAC
		if mac == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.HasValidMAC() {
				return fmt.Errorf("no MAC address configured, run 'zapper config generate' and fill in tv.mac, or pass --mac")
			}
			mac = cfg.TV.MAC
		}

		if err := wol.Wake(mac); err != nil {
			return fmt.Errorf("failed to send wake packet: %w", err)
		}

		log.Info().
			Str("mac", mac).
			Msg("Wake packet sent")
		cmd.Printf("Wake packet sent to %s\n", mac)
		return nil
	},
}

func init() {
	wakeCmd.Flags().StringVarP(&wakeMAC, "mac", "m", "", "TV MAC address (overrides config)")

	rootCmd.AddCommand(wakeCmd)
}
