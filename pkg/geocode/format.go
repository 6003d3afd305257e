package geocode

import "strings"

// UnknownComponent is the sentinel for address parts the upstream could not
// resolve. It is never rendered to clients.
const UnknownComponent = "Unknown"

// FormatAddress joins address components most-specific first, skipping unknown
// parts and collapsing adjacent duplicates. A city and state that share a name
// (Lagos, Lagos, Nigeria) render once.
func FormatAddress(components ...string) string {
	parts := make([]string, 0, len(components))
	for _, component := range components {
		trimmed := strings.TrimSpace(component)
		if trimmed == "" || trimmed == UnknownComponent {
			continue
		}
		if len(parts) > 0 && strings.EqualFold(parts[len(parts)-1], trimmed) {
			continue
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, ", ")
}
