package vfs

import "strings"

// splitPath parses the path grammar: '/'-separated, empty segments
// ignored, leading '/' optional (treated as rooted).
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
