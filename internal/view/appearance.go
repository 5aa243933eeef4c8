// Package view holds the declarative per-screen styling served to clients.
// Nothing here is mutable at runtime; clients read a screen's configuration and
// render it as-is.
package view

import (
	"strings"

	"github.com/healthlog/internal/locale"
	"github.com/healthlog/internal/tracker"
)

// Gradient is an ordered list of CSS colors with a direction.
type Gradient struct {
	Colors    []string `json:"colors"`
	Direction string   `json:"direction"`
}

// TypeStyle is the icon and accent color of an activity type.
type TypeStyle struct {
	Type  tracker.ActivityType `json:"type"`
	Label string               `json:"label"`
	Icon  string               `json:"icon"`
	Color string               `json:"color"`
	Unit  string               `json:"unit"`
}

// Screen is the styling of one client screen.
type Screen struct {
	Key        string      `json:"key"`
	Title      string      `json:"title"`
	Background Gradient    `json:"background"`
	Card       Gradient    `json:"card"`
	Accent     string      `json:"accent"`
	TextColor  string      `json:"text_color"`
	Types      []TypeStyle `json:"types"`
}

type screenAsset struct {
	key     string
	english string
	chinese string
	card    Gradient
	accent  string
}

var (
	pageBackground = Gradient{Colors: []string{"rgba(175,82,222,0.8)", "rgba(0,122,255,0.6)"}, Direction: "to bottom"}
	softCard       = Gradient{Colors: []string{"rgba(0,122,255,0.5)", "rgba(175,82,222,0.5)"}, Direction: "to bottom right"}

	screenDefinitions = []screenAsset{
		{key: "activities", english: "Activities", chinese: "活動記錄", card: softCard, accent: "#007AFF"},
		{key: "record_form", english: "New Activity", chinese: "新增記錄", card: Gradient{Colors: []string{"#007AFF", "#AF52DE"}, Direction: "to bottom right"}, accent: "#AF52DE"},
		{key: "record_detail", english: "Activity Detail", chinese: "記錄詳情", card: softCard, accent: "#FF3B30"},
		{key: "goals", english: "Goals", chinese: "目標", card: softCard, accent: "#34C759"},
		{key: "analysis", english: "Weekly Analysis", chinese: "每週分析", card: softCard, accent: "#AF52DE"},
		{key: "profile", english: "Profile", chinese: "個人資料", card: softCard, accent: "#007AFF"},
	}
	defaultScreen = screenDefinitions[0]

	typeIcons = map[tracker.ActivityType][2]string{
		tracker.Exercise:  {"heart.fill", "#FF3B30"},
		tracker.Hydration: {"drop.fill", "#007AFF"},
		tracker.Sleep:     {"moon.fill", "#FFCC00"},
	}
)

// TypeStyles returns the style of every activity type in display order.
func TypeStyles(language string) []TypeStyle {
	styles := make([]TypeStyle, 0, len(tracker.ActivityTypes))
	for _, t := range tracker.ActivityTypes {
		styles = append(styles, TypeStyleFor(t, language))
	}
	return styles
}

// TypeStyleFor returns the style of a single type.
func TypeStyleFor(t tracker.ActivityType, language string) TypeStyle {
	asset := typeIcons[t]
	return TypeStyle{
		Type:  t,
		Label: typeLabel(t, language),
		Icon:  asset[0],
		Color: asset[1],
		Unit:  t.Unit(),
	}
}

func typeLabel(t tracker.ActivityType, language string) string {
	switch t {
	case tracker.Exercise:
		return locale.Pick(language, "Exercise", "運動")
	case tracker.Hydration:
		return locale.Pick(language, "Hydration", "飲水")
	case tracker.Sleep:
		return locale.Pick(language, "Sleep", "睡眠")
	default:
		return string(t)
	}
}

// ScreenKeys lists the known screens.
func ScreenKeys() []string {
	keys := make([]string, 0, len(screenDefinitions))
	for _, s := range screenDefinitions {
		keys = append(keys, s.key)
	}
	return keys
}

// ScreenFor resolves the configuration for key, falling back to the activity list.
func ScreenFor(key, language string) (Screen, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(key))
	for _, asset := range screenDefinitions {
		if asset.key == trimmed {
			return buildScreen(asset, language), true
		}
	}
	return buildScreen(defaultScreen, language), false
}

// Screens returns every screen configuration.
func Screens(language string) []Screen {
	screens := make([]Screen, 0, len(screenDefinitions))
	for _, asset := range screenDefinitions {
		screens = append(screens, buildScreen(asset, language))
	}
	return screens
}

func buildScreen(asset screenAsset, language string) Screen {
	return Screen{
		Key:        asset.key,
		Title:      locale.Pick(language, asset.english, asset.chinese),
		Background: cloneGradient(pageBackground),
		Card:       cloneGradient(asset.card),
		Accent:     asset.accent,
		TextColor:  "#FFFFFF",
		Types:      TypeStyles(language),
	}
}

// cloneGradient keeps callers from mutating the shared definitions.
func cloneGradient(g Gradient) Gradient {
	return Gradient{Colors: append([]string(nil), g.Colors...), Direction: g.Direction}
}
