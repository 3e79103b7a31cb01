// Package emotion holds the emotion taxonomy used by journal entries: the
// six labels with their display color and icon, plus input validation.
package emotion

import (
	"regexp"
	"strings"
)

// Emotion is a taxonomy label. Labels are the stored form.
type Emotion string

// The taxonomy.
const (
	Anxiety    Emotion = "焦虑"
	Tension    Emotion = "紧张"
	Unease     Emotion = "不安"
	Loneliness Emotion = "孤独"
	Depression Emotion = "沮丧"
	Pressure   Emotion = "压力"
)

// Fallbacks for labels outside the taxonomy.
const (
	DefaultColor = "#64748B"
	DefaultIcon  = "fas fa-heart"
)

// Info describes one emotion.
type Info struct {
	Emotion Emotion `json:"emotion"`
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Icon    string  `json:"icon"`
}

var taxonomy = []Info{
	{Anxiety, "anxiety", "#F59E0B", "fas fa-exclamation-triangle"},
	{Tension, "tension", "#EF4444", "fas fa-bolt"},
	{Unease, "unease", "#8B5CF6", "fas fa-question-circle"},
	{Loneliness, "loneliness", "#06B6D4", "fas fa-user"},
	{Depression, "depression", "#6B7280", "fas fa-cloud-rain"},
	{Pressure, "pressure", "#10B981", "fas fa-weight-hanging"},
}

var byLabel = func() map[Emotion]Info {
	m := make(map[Emotion]Info, len(taxonomy))
	for _, info := range taxonomy {
		m[info.Emotion] = info
	}
	return m
}()

// All returns the taxonomy in display order.
func All() []Info {
	out := make([]Info, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// Lookup returns the taxonomy entry for label.
func Lookup(label string) (Info, bool) {
	info, ok := byLabel[Emotion(label)]
	return info, ok
}

// Valid reports whether label is one of the taxonomy labels.
func Valid(label string) bool {
	_, ok := byLabel[Emotion(label)]
	return ok
}

// Parse accepts a label or its English name (case-insensitive).
// Surrounding whitespace is ignored.
func Parse(s string) (Emotion, bool) {
	s = strings.TrimSpace(s)
	if Valid(s) {
		return Emotion(s), true
	}
	for _, info := range taxonomy {
		if strings.EqualFold(info.Name, s) {
			return info.Emotion, true
		}
	}
	return "", false
}

// Color returns the display color for label, or DefaultColor.
func Color(label string) string {
	if info, ok := byLabel[Emotion(label)]; ok {
		return info.Color
	}
	return DefaultColor
}

// Icon returns the icon class for label, or DefaultIcon.
func Icon(label string) string {
	if info, ok := byLabel[Emotion(label)]; ok {
		return info.Icon
	}
	return DefaultIcon
}

var scriptBlock = regexp.MustCompile(`(?is)<script\b.*?</script>`)

// Sanitize strips <script>...</script> blocks from free-text input.
func Sanitize(input string) string {
	return scriptBlock.ReplaceAllString(input, "")
}
