package cli

import (
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbletea"
	"zapper/internal"
	"zapper/internal/config"
	"zapper/internal/device"
	"zapper/internal/logger"
	"zapper/internal/samsung"
	"zapper/internal/wol"
)

// Setup screen input fields
type setupField int

const (
	setupFieldHostAddress setupField = iota
	setupFieldMACAddress
	setupFieldConnect
)

// SetupModel handles the TV setup screen
type SetupModel struct {
	// Navigation
	focusedField setupField

	// Input fields
	hostAddress string
	macAddress  string

	// Cursor positions
	hostAddressCursor int
	macAddressCursor  int

	// Connection state
	connecting      bool
	connectionError string

	// Connected device (when setup complete)
	device     device.Device
	deviceInfo device.DeviceInfo

	// Flags
	debugMode bool
	testMode  bool

	// Configuration
	configPath string
}

// NewSetupModel creates the setup screen, prefilled from the config file
// when one exists.
func NewSetupModel(configPath string, debug, test bool) SetupModel {
	m := SetupModel{
		focusedField: setupFieldHostAddress,
		debugMode:    debug,
		testMode:     test,
		configPath:   configPath,
	}

	if cfg, err := config.LoadOrDefault(configPath); err == nil {
		if cfg.HasValidTV() {
			m.hostAddress = cfg.TV.Host
			m.hostAddressCursor = len(m.hostAddress)
		}
		if cfg.HasValidMAC() {
			m.macAddress = cfg.TV.MAC
			m.macAddressCursor = len(m.macAddress)
		}
	}

	return m
}

// Reset clears the connection but keeps the entered addresses
func (m SetupModel) Reset() SetupModel {
	m.device = nil
	m.deviceInfo = device.DeviceInfo{}
	m.connecting = false
	m.connectionError = ""
	m.focusedField = setupFieldConnect
	return m
}

// Update handles setup screen messages
func (m SetupModel) Update(msg tea.Msg) (SetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "down", "up":
			return m.handleTabNavigation(msg.String() == "shift+tab" || msg.String() == "up"), nil

		case "enter":
			if m.focusedField == setupFieldConnect {
				return m.handleConnect()
			}
			return m.handleTabNavigation(false), nil

		case "left":
			return m.handleLeft(), nil

		case "right":
			return m.handleRight(), nil

		case "backspace":
			return m.handleBackspace(), nil

		case "delete":
			return m.handleDelete(), nil

		case "home":
			return m.handleHome(), nil

		case "end":
			return m.handleEnd(), nil

		case "ctrl+v":
			return m.handlePaste(), nil

		default:
			return m.handleTextInput(msg.String()), nil
		}
	}

	return m, nil
}

// View renders the setup screen
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Zapper - TV Setup"))
	b.WriteString("\n\n")

	// Host Address Input
	b.WriteString(subtitleStyle.Render("TV Address (IP or hostname):"))
	b.WriteString("\n")
	hostStyle := inputStyle
	showCursor := m.focusedField == setupFieldHostAddress
	if showCursor {
		hostStyle = inputFocusedStyle
	}
	hostText := renderTextWithCursor(m.hostAddress, m.hostAddressCursor, showCursor)
	b.WriteString(hostStyle.Render(hostText))
	b.WriteString("\n\n")

	// MAC Address Input
	b.WriteString(subtitleStyle.Render("MAC Address (optional, for wake-on-lan):"))
	b.WriteString("\n")
	macStyle := inputStyle
	showMACCursor := m.focusedField == setupFieldMACAddress
	if showMACCursor {
		macStyle = inputFocusedStyle
	}
	macText := renderTextWithCursor(m.macAddress, m.macAddressCursor, showMACCursor)
	b.WriteString(macStyle.Render(macText))
	b.WriteString("\n\n")

	// Connect Button
	connectStyle := buttonStyle
	if m.focusedField == setupFieldConnect {
		connectStyle = buttonActiveStyle
	}

	connectText := "Connect"
	if m.connecting {
		connectText = "Connecting..."
	}
	b.WriteString(connectStyle.Render(connectText))
	b.WriteString("\n\n")

	if m.testMode {
		b.WriteString(helpStyle.Render("Test mode: no TV needed, presses are simulated"))
		b.WriteString("\n\n")
	}

	// Connection Error
	if m.connectionError != "" {
		b.WriteString(errorStyle.Render("Error: " + m.connectionError))
		b.WriteString("\n\n")
	}

	// Help
	b.WriteString(helpStyle.Render("Tab/↑/↓: Navigate • Enter: Next/Connect • ←/→: Move cursor • Home/End: Start/End • Ctrl+V: Paste • q: Quit"))

	return b.String()
}

// handleTabNavigation moves between input fields
func (m SetupModel) handleTabNavigation(reverse bool) SetupModel {
	fields := []setupField{setupFieldHostAddress, setupFieldMACAddress, setupFieldConnect}

	currentIndex := -1
	for i, field := range fields {
		if field == m.focusedField {
			currentIndex = i
			break
		}
	}

	if reverse {
		currentIndex--
		if currentIndex < 0 {
			currentIndex = len(fields) - 1
		}
	} else {
		currentIndex++
		if currentIndex >= len(fields) {
			currentIndex = 0
		}
	}

	m.focusedField = fields[currentIndex]
	m.syncCursorPosition()
	return m
}

// handleConnect validates the inputs, saves the config and builds the remote
func (m SetupModel) handleConnect() (SetupModel, tea.Cmd) {
	if m.connecting {
		return m, nil
	}

	if m.hostAddress == "" {
		m.connectionError = "TV address is required"
		return m, nil
	}

	if !m.IsValidHostAddress(m.hostAddress) {
		m.connectionError = "Invalid TV address format"
		return m, nil
	}

	if m.macAddress != "" {
		if _, err := wol.ParseMAC(m.macAddress); err != nil {
			m.connectionError = "Invalid MAC address format"
			return m, nil
		}
	}

	m.connecting = true
	m.connectionError = ""

	log := logger.New()

	// Persist the addresses so CLI commands pick them up too
	cfg, err := config.LoadOrDefault(m.configPath)
	if err != nil {
		cfg = config.NewDefaultConfig()
	}
	cfg.TV.Host = m.hostAddress
	cfg.TV.MAC = m.macAddress
	if err := config.SaveConfig(cfg, m.configPath); err != nil {
		log.Warn().
			Err(err).
			Str("config_path", m.configPath).
			Msg("Failed to save config")
	}

	// The websocket dials on the first key press, so this cannot fail here
	remote := samsung.NewSamsungRemote(
		cfg.TV.ClientConfig(),
		m.macAddress,
		internal.NewModeOptions(internal.WithDebug(m.debugMode), internal.WithTest(m.testMode)),
	)

	m.device = remote
	m.deviceInfo = remote.GetDeviceInfo()
	m.connecting = false

	log.Info().
		Str("device_type", m.deviceInfo.Type).
		Str("address", m.hostAddress).
		Msg("TV configured")

	return m, nil
}

// handleLeft handles left arrow key
func (m SetupModel) handleLeft() SetupModel {
	switch m.focusedField {
	case setupFieldHostAddress:
		if m.hostAddressCursor > 0 {
			m.hostAddressCursor--
		}
	case setupFieldMACAddress:
		if m.macAddressCursor > 0 {
			m.macAddressCursor--
		}
	}
	return m
}

// handleRight handles right arrow key
func (m SetupModel) handleRight() SetupModel {
	switch m.focusedField {
	case setupFieldHostAddress:
		if m.hostAddressCursor < len(m.hostAddress) {
			m.hostAddressCursor++
		}
	case setupFieldMACAddress:
		if m.macAddressCursor < len(m.macAddress) {
			m.macAddressCursor++
		}
	}
	return m
}

// handleBackspace handles backspace key
func (m SetupModel) handleBackspace() SetupModel {
	switch m.focusedField {
	case setupFieldHostAddress:
		if m.hostAddressCursor > 0 && len(m.hostAddress) > 0 {
			m.hostAddress = deleteCharAt(m.hostAddress, m.hostAddressCursor-1)
			m.hostAddressCursor--
		}
	case setupFieldMACAddress:
		if m.macAddressCursor > 0 && len(m.macAddress) > 0 {
			m.macAddress = deleteCharAt(m.macAddress, m.macAddressCursor-1)
			m.macAddressCursor--
		}
	}
	return m
}

// handleDelete handles delete key
func (m SetupModel) handleDelete() SetupModel {
	switch m.focusedField {
	case setupFieldHostAddress:
		if m.hostAddressCursor < len(m.hostAddress) {
			m.hostAddress = deleteCharAt(m.hostAddress, m.hostAddressCursor)
		}
	case setupFieldMACAddress:
		if m.macAddressCursor < len(m.macAddress) {
			m.macAddress = deleteCharAt(m.macAddress, m.macAddressCursor)
		}
	}
	return m
}

// handleHome handles home key
func (m SetupModel) handleHome() SetupModel {
	switch m.focusedField {
	case setupFieldHostAddress:
		m.hostAddressCursor = 0
	case setupFieldMACAddress:
		m.macAddressCursor = 0
	}
	return m
}

// handleEnd handles end key
func (m SetupModel) handleEnd() SetupModel {
	switch m.focusedField {
	case setupFieldHostAddress:
		m.hostAddressCursor = len(m.hostAddress)
	case setupFieldMACAddress:
		m.macAddressCursor = len(m.macAddress)
	}
	return m
}

// handlePaste handles paste operation
func (m SetupModel) handlePaste() SetupModel {
	// Seed an example into an empty host field; MAC stays manual
	if m.focusedField == setupFieldHostAddress && m.hostAddress == "" {
		pasteText := "192.168.1.100"
		m.hostAddress = insertText(m.hostAddress, m.hostAddressCursor, pasteText)
		m.hostAddressCursor += len(pasteText)
	}
	return m
}

// handleTextInput handles character input
func (m SetupModel) handleTextInput(input string) SetupModel {
	// Filter out non-printable characters and control sequences
	if len(input) == 0 || input == "\x00" {
		return m
	}

	printableInput := ""
	for _, r := range input {
		if r >= 32 && r < 127 || r > 127 { // ASCII printable + Unicode
			printableInput += string(r)
		}
	}

	if len(printableInput) == 0 {
		return m
	}

	switch m.focusedField {
	case setupFieldHostAddress:
		m.hostAddress = insertText(m.hostAddress, m.hostAddressCursor, printableInput)
		m.hostAddressCursor += len(printableInput)
	case setupFieldMACAddress:
		m.macAddress = insertText(m.macAddress, m.macAddressCursor, printableInput)
		m.macAddressCursor += len(printableInput)
	}
	return m
}

// syncCursorPosition ensures cursor positions are within bounds
func (m *SetupModel) syncCursorPosition() {
	switch m.focusedField {
	case setupFieldHostAddress:
		if m.hostAddressCursor < 0 {
			m.hostAddressCursor = 0
		}
		if m.hostAddressCursor > len(m.hostAddress) {
			m.hostAddressCursor = len(m.hostAddress)
		}
	case setupFieldMACAddress:
		if m.macAddressCursor < 0 {
			m.macAddressCursor = 0
		}
		if m.macAddressCursor > len(m.macAddress) {
			m.macAddressCursor = len(m.macAddress)
		}
	}
}

// IsValidHostAddress validates the host address format (with optional port)
func (m SetupModel) IsValidHostAddress(address string) bool {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		// No port in the address, treat the whole string as host
		host = address
		portStr = ""
	}

	if net.ParseIP(host) == nil {
		matched, _ := regexp.MatchString(`^[a-zA-Z0-9.-]+$`, host)
		if !matched {
			return false
		}
	}

	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return false
		}
	}

	return true
}

// IsConnected returns true if a TV is configured and connected
func (m SetupModel) IsConnected() bool {
	return m.device != nil
}

// Device returns the connected device
func (m SetupModel) Device() device.Device {
	return m.device
}

// DeviceInfo returns the device info
func (m SetupModel) DeviceInfo() device.DeviceInfo {
	return m.deviceInfo
}

// DebugMode returns the debug mode flag
func (m SetupModel) DebugMode() bool {
	return m.debugMode
}

// TestMode returns the test mode flag
func (m SetupModel) TestMode() bool {
	return m.testMode
}
