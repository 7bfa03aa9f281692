package samsung

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"zapper/internal/logger"
)

// Sender is the slice of RemoteClient the navigation macros need, kept
// narrow so tests can record key sequences without a TV.
type Sender interface {
	SendKeyDelay(key string, delay time.Duration) error
	SendText(text string) error
	LaunchApp(app string) error
}

// Home screen navigation timings. The home overlay animates slowly, so
// each step needs generous settle time before the next key lands.
const (
	homeSettle   = 2 * time.Second
	rowSettle    = 500 * time.Millisecond
	tileSettle   = 300 * time.Millisecond
	launchSettle = 3 * time.Second
)

// Navigator drives multi-step home screen and in-app flows built from
// timed key presses. The flows are blind: nothing reports where focus
// actually is, so the step order and delays carry all the state.
type Navigator struct {
	sender    Sender
	positions map[string]int
	wait      func(time.Duration)
	logger    zerolog.Logger
}

// NewNavigator creates a Navigator. A nil positions map falls back to
// DefaultPositions.
func NewNavigator(sender Sender, positions map[string]int) *Navigator {
	if positions == nil {
		positions = DefaultPositions
	}
	return &Navigator{
		sender:    sender,
		positions: positions,
		wait:      time.Sleep,
		logger:    logger.New(),
	}
}

// NavigateHome opens an app by walking the home screen content row: HOME,
// DOWN onto the row, RIGHT to the app's tile, ENTER. Apps that ignore
// DEEP_LINK launches can only be opened this way.
func (n *Navigator) NavigateHome(app string) error {
	position, exists := n.positions[NormalizeAppName(app)]
	if !exists {
		return fmt.Errorf("no home screen position for app: %s", app)
	}

	n.logger.Info().
		Str("app", app).
		Int("position", position).
		Msg("Navigating home screen")

	if err := n.sender.SendKeyDelay("HOME", homeSettle); err != nil {
		return err
	}
	if err := n.sender.SendKeyDelay("DOWN", rowSettle); err != nil {
		return err
	}
	for i := 0; i < position; i++ {
		if err := n.sender.SendKeyDelay("RIGHT", tileSettle); err != nil {
			return err
		}
	}
	return n.sender.SendKeyDelay("ENTER", launchSettle)
}

// OpenApp launches an app directly when a launch ID is known, and falls
// back to home screen navigation for tiles that only open by position.
// Anything else is assumed to be a raw Tizen app ID.
func (n *Navigator) OpenApp(app string) error {
	if HasLaunchID(app) {
		return n.sender.LaunchApp(app)
	}
	if _, exists := n.positions[NormalizeAppName(app)]; exists {
		return n.NavigateHome(app)
	}
	return n.sender.LaunchApp(app)
}

// PlayIPlayer launches BBC iPlayer, searches for a programme and starts
// the top result. The delays mirror how long the app takes to move
// between screens on real hardware.
func (n *Navigator) PlayIPlayer(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query is required")
	}

	n.logger.Info().Str("query", query).Msg("Starting iPlayer playback")

	if err := n.sender.LaunchApp("iplayer"); err != nil {
		return err
	}
	n.wait(5 * time.Second)

	// Search sits at the right-hand end of the top navigation bar.
	for i := 0; i < 3; i++ {
		if err := n.sender.SendKeyDelay("UP", rowSettle); err != nil {
			return err
		}
	}
	for i := 0; i < 5; i++ {
		if err := n.sender.SendKeyDelay("RIGHT", tileSettle); err != nil {
			return err
		}
	}
	if err := n.sender.SendKeyDelay("ENTER", time.Second); err != nil {
		return err
	}
	n.wait(time.Second)

	if err := n.sender.SendText(query); err != nil {
		return err
	}
	n.wait(2 * time.Second)

	// Results appear two rows below the on-screen keyboard.
	for i := 0; i < 2; i++ {
		if err := n.sender.SendKeyDelay("DOWN", rowSettle); err != nil {
			return err
		}
	}
	if err := n.sender.SendKeyDelay("ENTER", 2*time.Second); err != nil {
		return err
	}
	n.wait(2 * time.Second)

	// Confirm playback on the episode page.
	return n.sender.SendKeyDelay("ENTER", time.Second)
}

// PlayMatchOfTheDay is the canned flow for catching up on the football
func (n *Navigator) PlayMatchOfTheDay() error {
	return n.PlayIPlayer("Match of the Day")
}
