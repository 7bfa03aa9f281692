package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"zapper/internal"
	"zapper/internal/cast"
)

var castContentType string

var castCmd = &cobra.Command{
	Use:   "cast",
	Short: "Send media to a DLNA renderer",
	Long: `Discover a media renderer on the local network (Samsung TVs expose one)
and control playback over UPnP AVTransport. The renderer is picked by
the cast.renderer config hint, or the first one that answers.`,
}

// newCastController discovers the renderer and wraps it in a controller.
func newCastController(ctx context.Context) (*cast.Controller, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	renderer, err := cast.DiscoverFirst(ctx, cfg.Cast.DiscoverTimeout(), cfg.Cast.Renderer)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("renderer", renderer.Name).
		Str("location", renderer.Location).
		Msg("Renderer selected")

	return cast.NewController(renderer, internal.NewModeOptions(internal.WithDebug(debugFlag))), nil
}

var castURLCmd = &cobra.Command{
	Use:   "url [media-url]",
	Short: "Cast a media URL to the renderer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		controller, err := newCastController(ctx)
		if err != nil {
			return err
		}

		if err := controller.Cast(ctx, args[0], castContentType); err != nil {
			return err
		}
		cmd.Printf("Casting %s to %s\n", args[0], controller.Renderer().Name)
		return nil
	},
}

var castPlayCmd = &cobra.Command{
	Use:   "play",
	Short: "Resume playback",
	RunE:  func(cmd *cobra.Command, args []string) error { return castTransport(cmd, "play") },
}

var castPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	RunE:  func(cmd *cobra.Command, args []string) error { return castTransport(cmd, "pause") },
}

var castStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	RunE:  func(cmd *cobra.Command, args []string) error { return castTransport(cmd, "stop") },
}

func castTransport(cmd *cobra.Command, action string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	controller, err := newCastController(ctx)
	if err != nil {
		return err
	}

	switch action {
	case "play":
		err = controller.Play(ctx)
	case "pause":
		err = controller.Pause(ctx)
	case "stop":
		err = controller.Stop(ctx)
	}
	if err != nil {
		return err
	}

	cmd.Printf("Playback %s sent to %s\n", action, controller.Renderer().Name)
	return nil
}

var castStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the renderer's transport state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		controller, err := newCastController(ctx)
		if err != nil {
			return err
		}

		status, err := controller.Status(ctx)
		if err != nil {
			return err
		}

		cmd.Printf("Renderer: %s\n", controller.Renderer().Name)
		cmd.Printf("State: %s\n", status.PlayerState)
		if status.TrackURI != "" {
			cmd.Printf("Playing: %s\n", status.TrackURI)
			cmd.Printf("Position: %s / %s\n", status.CurrentTime, status.Duration)
		}
		cmd.Printf("Volume: %d", status.Volume)
		if status.Muted {
			cmd.Printf(" (muted)")
		}
		cmd.Println()
		return nil
	},
}

var castVolumeCmd = &cobra.Command{
	Use:   "volume [0-100|up|down]",
	Short: "Set or step the renderer's volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		controller, err := newCastController(ctx)
		if err != nil {
			return err
		}

		switch args[0] {
		case "up", "down":
			delta := 10
			if args[0] == "down" {
				delta = -10
			}
			volume, err := controller.VolumeStep(ctx, delta)
			if err != nil {
				return err
			}
			cmd.Printf("Volume: %d\n", volume)
		default:
			volume, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("volume must be 0-100, up or down")
			}
			if err := controller.SetVolume(ctx, volume); err != nil {
				return err
			}
			cmd.Printf("Volume set to %d\n", volume)
		}
		return nil
	},
}

var castDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List media renderers on the network",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Cast.DiscoverTimeout()+5*time.Second)
		defer cancel()

		renderers, err := cast.Discover(ctx, cfg.Cast.DiscoverTimeout())
		if err != nil {
			return err
		}
		if len(renderers) == 0 {
			cmd.Println("No media renderers found")
			return nil
		}

		cmd.Printf("Found %d renderer(s):\n", len(renderers))
		for _, renderer := range renderers {
			cmd.Printf("  %s\n", renderer.Name)
			cmd.Printf("    Model: %s\n", renderer.Model)
			cmd.Printf("    Location: %s\n", renderer.Location)
		}
		return nil
	},
}

func init() {
	castURLCmd.Flags().StringVarP(&castContentType, "type", "t", "video/mp4", "MIME type of the media")

	castCmd.AddCommand(castURLCmd)
	castCmd.AddCommand(castPlayCmd)
	castCmd.AddCommand(castPauseCmd)
	castCmd.AddCommand(castStopCmd)
	castCmd.AddCommand(castStatusCmd)
	castCmd.AddCommand(castVolumeCmd)
	castCmd.AddCommand(castDiscoverCmd)

	rootCmd.AddCommand(castCmd)
}
