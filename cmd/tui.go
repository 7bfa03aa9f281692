package cmd

import (
	"github.com/spf13/cobra"
	"zapper/cmd/cli"
	"zapper/internal/logger"
)

var tuiTestFlag bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive remote control",
	Long: `Launch the terminal remote control. The setup screen connects to the
TV (and saves the address to the config file), then the remote screen
maps the keyboard onto the TV remote.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal, so logging stays silent unless debugging
		if debugFlag || tuiTestFlag {
			logger.SetSilentMode(false)
			if debugFlag {
				logger.SetLevel("debug")
			}
		} else {
			logger.SetSilentMode(true)
		}

		log := logger.New()
		log.Info().
			Bool("debug", debugFlag).
			Bool("test", tuiTestFlag).
			Msg("Starting TUI")

		if err := cli.StartTUI(configPath, debugFlag, tuiTestFlag); err != nil {
			log.Error().Err(err).Msg("Failed to start TUI")
			return err
		}
		return nil
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiTestFlag, "test", false, "test mode (simulate the TV, no network)")

	rootCmd.AddCommand(tuiCmd)
}
