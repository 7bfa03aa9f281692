package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"zapper/internal/samsung"
)

var (
	keyDelayMS  int
	volumeSteps int
)

var keyCmd = &cobra.Command{
	Use:   "key [name]...",
	Short: "Press one or more remote keys",
	Long: `Press remote control keys on the TV. Keys can be given as friendly
names (home, up, enter, volup) or raw Samsung codes (KEY_HOME).
Multiple keys are sent in order with a settle delay between them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newTVClient(cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect()

		delay := cfg.TV.ClientConfig().KeyDelay
		if keyDelayMS > 0 {
			delay = time.Duration(keyDelayMS) * time.Millisecond
		}

		for _, key := range args {
			log.Debug().
				Str("key", string(samsung.NormalizeKey(key))).
				Msg("Sending key")
			if err := client.SendKeyDelay(key, delay); err != nil {
				return fmt.Errorf("failed to send key %s: %w", key, err)
			}
		}
		return nil
	},
}

var textCmd = &cobra.Command{
	Use:   "text [string]",
	Short: "Type text into the focused input field",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newTVClient(cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect()

		return client.SendText(strings.Join(args, " "))
	},
}

var appCmd = &cobra.Command{
	Use:   "app [name-or-id]",
	Short: "Launch an app on the TV",
	Long: `Launch an app by friendly name (iplayer, netflix, youtube) or by its
numeric Samsung app ID. Unknown names are passed through unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newTVClient(cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect()

		if err := client.LaunchApp(args[0]); err != nil {
			return fmt.Errorf("failed to launch app %s: %w", args[0], err)
		}
		log.Info().
			Str("app", args[0]).
			Str("app_id", string(samsung.ResolveApp(args[0]))).
			Msg("App launch sent")
		return nil
	},
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List apps known by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println("Known apps:")
		for _, name := range samsung.KnownApps() {
			cmd.Printf("  %-12s %s\n", name, samsung.ResolveApp(name))
		}
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List friendly key names",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println("Known keys:")
		for _, name := range samsung.KnownKeys() {
			cmd.Printf("  %-10s %s\n", name, samsung.NormalizeKey(name))
		}
		return nil
	},
}

var volumeCmd = &cobra.Command{
	Use:   "volume [up|down|mute]",
	Short: "Adjust TV volume",
	Long: `Adjust the TV volume with remote keys. Up and down are repeated
--steps times, mute toggles once.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down", "mute"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var key samsung.KeyCode
		switch args[0] {
		case "up":
			key = samsung.KeyVolumeUp
		case "down":
			key = samsung.KeyVolumeDown
		case "mute":
			key = samsung.KeyMute
		default:
			return fmt.Errorf("unknown volume action: %s (use up, down or mute)", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newTVClient(cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect()

		steps := volumeSteps
		if key == samsung.KeyMute {
			steps = 1
		}
		for i := 0; i < steps; i++ {
			if err := client.SendKey(string(key)); err != nil {
				return fmt.Errorf("failed to send %s: %w", key, err)
			}
		}
		return nil
	},
}

func init() {
	keyCmd.Flags().IntVar(&keyDelayMS, "delay", 0, "settle delay between keys in milliseconds (0 uses the config value)")
	volumeCmd.Flags().IntVar(&volumeSteps, "steps", 1, "number of volume steps to send")

	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(appCmd)
	rootCmd.AddCommand(appsCmd)
	rootCmd.AddCommand(volumeCmd)
}
