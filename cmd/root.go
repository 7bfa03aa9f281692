package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"zapper/internal"
	"zapper/internal/config"
	"zapper/internal/logger"
	"zapper/internal/samsung"
)

var (
	configPath string
	hostFlag   string
	debugFlag  bool
	log        = logger.New()
)

var rootCmd = &cobra.Command{
	Use:   "zapper",
	Short: "Zapper - Samsung Smart TV remote control",
	Long: `Zapper drives Samsung Smart TVs over the network: wake-on-lan power on,
remote key presses and text entry over the TV's websocket channel, app
launching, scripted navigation, and DLNA casting to media renderers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			logger.SetSilentMode(false)
			logger.SetLevel("debug")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&hostFlag, "host", "H", "", "TV host address (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "enable debug logging")
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist, and applies the --host override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if hostFlag != "" {
		cfg.TV.Host = hostFlag
	}
	return cfg, nil
}

// newTVClient builds the websocket remote client for the configured TV.
func newTVClient(cfg *config.Config) (*samsung.RemoteClient, error) {
	if !cfg.HasValidTV() {
		return nil, fmt.Errorf("no TV address configured, run 'zapper config generate' and fill in tv.host, or pass --host")
	}
	return samsung.NewRemoteClient(cfg.TV.ClientConfig(), internal.NewModeOptions(internal.WithDebug(debugFlag))), nil
}
