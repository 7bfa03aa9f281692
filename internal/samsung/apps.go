package samsung

import (
	"sort"
	"strings"
)

// Tizen launch IDs for common apps. IDs drift between model years, and a
// few apps ignore DEEP_LINK launches entirely; those open via home screen
// navigation instead.
var appIDs = map[string]AppID{
	"iplayer": "3201602007865",
	"netflix": "3201907018807",
	"youtube": "111299001912",
	"prime":   "3201910019365",
	"disney":  "3201901017640",
	"plex":    "3201512006963",
	"spotify": "3201606009684",
}

// DefaultPositions is the left-to-right tile order on the home screen
// content row. After HOME and one DOWN, pressing RIGHT this many times
// lands on the app's tile.
var DefaultPositions = map[string]int{
	"smartthings":     0,
	"samsung_tv_plus": 1,
	"netflix":         2,
	"prime":           3,
	"iplayer":         4,
	"itvx":            5,
	"disney":          6,
	"now":             7,
	"rakuten":         8,
	"youtube":         9,
	"alexa":           10,
	"channel4":        11,
}

// ResolveApp maps a friendly app name to its Tizen launch ID. Names without
// an entry are assumed to already be IDs and pass through unchanged.
func ResolveApp(name string) AppID {
	if id, exists := appIDs[strings.ToLower(name)]; exists {
		return id
	}
	return AppID(name)
}

// HasLaunchID reports whether a friendly name has a known direct launch ID
func HasLaunchID(name string) bool {
	_, exists := appIDs[strings.ToLower(name)]
	return exists
}

// NormalizeAppName canonicalises a home screen tile label: lowercased,
// spaces to underscores, "+" dropped. "Samsung TV Plus" and "ITVX" both
// end up matching their position map keys.
func NormalizeAppName(name string) string {
	normalized := strings.ToLower(name)
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "+", "")
	return normalized
}

// KnownApps returns the friendly app names with direct launch IDs, sorted
func KnownApps() []string {
	names := make([]string, 0, len(appIDs))
	for name := range appIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
