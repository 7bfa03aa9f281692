package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"zapper/internal/samsung"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scripted flows for common programmes",
	Long: `Multi-step navigation macros built from timed key presses. The flows
assume the TV is on the home screen and that app tiles sit at their
usual positions (override with the positions map in the config file).`,
}

// newNavigator builds the macro runner over a connected remote client.
func newNavigator() (*samsung.Navigator, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := newTVClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	positions := samsung.DefaultPositions
	if len(cfg.Positions) > 0 {
		merged := make(map[string]int, len(positions)+len(cfg.Positions))
		for app, position := range positions {
			merged[app] = position
		}
		for app, position := range cfg.Positions {
			merged[app] = position
		}
		positions = merged
	}

	return samsung.NewNavigator(client, positions), client.Disconnect, nil
}

var watchMotdCmd = &cobra.Command{
	Use:   "motd",
	Short: "Play the latest Match of the Day on iPlayer",
	RunE: func(cmd *cobra.Command, args []string) error {
		navigator, done, err := newNavigator()
		if err != nil {
			return err
		}
		defer done()

		cmd.Println("Walking to Match of the Day, keep hands off the remote...")
		return navigator.PlayMatchOfTheDay()
	},
}

var watchIPlayerCmd = &cobra.Command{
	Use:   "iplayer [query]...",
	Short: "Search iPlayer and play the first result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		navigator, done, err := newNavigator()
		if err != nil {
			return err
		}
		defer done()

		query := strings.Join(args, " ")
		cmd.Printf("Searching iPlayer for %q, keep hands off the remote...\n", query)
		return navigator.PlayIPlayer(query)
	},
}

func init() {
	watchCmd.AddCommand(watchMotdCmd)
	watchCmd.AddCommand(watchIPlayerCmd)

	rootCmd.AddCommand(watchCmd)
}
