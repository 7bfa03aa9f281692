package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"zapper/internal/cast"
	"zapper/internal/samsung"
)

var statusWithCast bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the TV's state",
	Long: `Query the TV's always-on REST endpoint for its device description and
power state. With --cast, also discover the media renderer and report
its transport state and volume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.HasValidTV() {
			return fmt.Errorf("no TV address configured, run 'zapper config generate' and fill in tv.host, or pass --host")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		info, err := samsung.FetchInfo(ctx, cfg.TV.Host)
		if err != nil {
			cmd.Printf("TV: ✗ UNREACHABLE (%s)\n", cfg.TV.Host)
			cmd.Printf("  %v\n", err)
		} else {
			power := "standby"
			if info.PoweredOn() {
				power = "on"
			}
			cmd.Printf("TV: ✓ %s\n", info.Name)
			cmd.Printf("  Model: %s\n", info.Device.ModelName)
			cmd.Printf("  Address: %s\n", cfg.TV.Host)
			cmd.Printf("  Power: %s\n", power)
			if info.Device.TokenAuthSupport == "true" {
				cmd.Printf("  Pairing: token required\n")
			}
		}

		if statusWithCast {
			printCastStatus(ctx, cmd, cfg.Cast.DiscoverTimeout(), cfg.Cast.Renderer)
		}
		return nil
	},
}

func printCastStatus(ctx context.Context, cmd *cobra.Command, timeout time.Duration, hint string) {
	renderer, err := cast.DiscoverFirst(ctx, timeout, hint)
	if err != nil {
		cmd.Printf("Renderer: ✗ NOT FOUND\n")
		return
	}

	controller := cast.NewController(renderer, nil)
	cmd.Printf("Renderer: ✓ %s\n", renderer.Name)

	if status, err := controller.Status(ctx); err == nil {
		cmd.Printf("  State: %s\n", status.PlayerState)
		if status.TrackURI != "" {
			cmd.Printf("  Playing: %s (%s / %s)\n", status.TrackURI, status.CurrentTime, status.Duration)
		}
		cmd.Printf("  Volume: %d\n", status.Volume)
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusWithCast, "cast", false, "also report the media renderer's status")

	rootCmd.AddCommand(statusCmd)
}
