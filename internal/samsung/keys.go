package samsung

import (
	"sort"
	"strings"
)

// Remote Control Key Codes for Samsung Smart TVs
const (
	// Power Controls
	KeyPower    KeyCode = "KEY_POWER"
	KeyPowerOff KeyCode = "KEY_POWEROFF"

	// Navigation Controls
	KeyUp     KeyCode = "KEY_UP"
	KeyDown   KeyCode = "KEY_DOWN"
	KeyLeft   KeyCode = "KEY_LEFT"
	KeyRight  KeyCode = "KEY_RIGHT"
	KeyEnter  KeyCode = "KEY_ENTER"
	KeyReturn KeyCode = "KEY_RETURN"
	KeyExit   KeyCode = "KEY_EXIT"

	// Menu Controls
	KeyHome   KeyCode = "KEY_HOME"
	KeyMenu   KeyCode = "KEY_MENU"
	KeySource KeyCode = "KEY_SOURCE"
	KeyApps   KeyCode = "KEY_APPS"
	KeyInfo   KeyCode = "KEY_INFO"
	KeyGuide  KeyCode = "KEY_GUIDE"

	// Volume Controls
	KeyVolumeUp   KeyCode = "KEY_VOLUP"
	KeyVolumeDown KeyCode = "KEY_VOLDOWN"
	KeyMute       KeyCode = "KEY_MUTE"

	// Channel Controls
	KeyChannelUp   KeyCode = "KEY_CHUP"
	KeyChannelDown KeyCode = "KEY_CHDOWN"

	// Playback Controls
	KeyPlay        KeyCode = "KEY_PLAY"
	KeyPause       KeyCode = "KEY_PAUSE"
	KeyStop        KeyCode = "KEY_STOP"
	KeyRewind      KeyCode = "KEY_REWIND"
	KeyFastForward KeyCode = "KEY_FF"

	// Colour Keys
	KeyRed    KeyCode = "KEY_RED"
	KeyGreen  KeyCode = "KEY_GREEN"
	KeyYellow KeyCode = "KEY_YELLOW"
	KeyBlue   KeyCode = "KEY_BLUE"

	// Number Keys
	Key0 KeyCode = "KEY_0"
	Key1 KeyCode = "KEY_1"
	Key2 KeyCode = "KEY_2"
	Key3 KeyCode = "KEY_3"
	Key4 KeyCode = "KEY_4"
	Key5 KeyCode = "KEY_5"
	Key6 KeyCode = "KEY_6"
	Key7 KeyCode = "KEY_7"
	Key8 KeyCode = "KEY_8"
	Key9 KeyCode = "KEY_9"
)

// keyNames maps friendly CLI names to Samsung key codes
var keyNames = map[string]KeyCode{
	"power":    KeyPower,
	"poweroff": KeyPowerOff,
	"up":       KeyUp,
	"down":     KeyDown,
	"left":     KeyLeft,
	"right":    KeyRight,
	"enter":    KeyEnter,
	"ok":       KeyEnter,
	"return":   KeyReturn,
	"back":     KeyReturn,
	"exit":     KeyExit,
	"home":     KeyHome,
	"menu":     KeyMenu,
	"source":   KeySource,
	"apps":     KeyApps,
	"info":     KeyInfo,
	"guide":    KeyGuide,
	"volup":    KeyVolumeUp,
	"voldown":  KeyVolumeDown,
	"mute":     KeyMute,
	"chup":     KeyChannelUp,
	"chdown":   KeyChannelDown,
	"play":     KeyPlay,
	"pause":    KeyPause,
	"stop":     KeyStop,
	"rewind":   KeyRewind,
	"ff":       KeyFastForward,
	"red":      KeyRed,
	"green":    KeyGreen,
	"yellow":   KeyYellow,
	"blue":     KeyBlue,
	"0":        Key0,
	"1":        Key1,
	"2":        Key2,
	"3":        Key3,
	"4":        Key4,
	"5":        Key5,
	"6":        Key6,
	"7":        Key7,
	"8":        Key8,
	"9":        Key9,
}

// NormalizeKey resolves a friendly key name to its Samsung key code.
// Unknown names become KEY_<NAME> uppercased; names already in KEY_ form
// pass through unchanged, so the function is idempotent.
func NormalizeKey(name string) KeyCode {
	if code, exists := keyNames[strings.ToLower(name)]; exists {
		return code
	}

	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "KEY_") {
		return KeyCode(upper)
	}
	return KeyCode("KEY_" + upper)
}

// KnownKeys returns the friendly key names in sorted order, for help text
func KnownKeys() []string {
	names := make([]string, 0, len(keyNames))
	for name := range keyNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
