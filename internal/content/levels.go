// Package content holds the static learning material: word lists, reading
// passages, helper personas, FAQ copy and school levels.
package content

import "fmt"

const (
	MinLevel = 1
	MaxLevel = 6
)

// SchoolLevel maps the numeric level (1-6) to the Dutch school year label.
// Level 1 is groep 3 (age 6), level 6 is groep 8 (age 11-12).
func SchoolLevel(level int) string {
	if level < MinLevel || level > MaxLevel {
		return ""
	}
	return fmt.Sprintf("groep %d", level+2)
}

// ValidLevel reports whether level is within the supported range
func ValidLevel(level int) bool {
	return level >= MinLevel && level <= MaxLevel
}

// tier groups levels into three bands for word lists and passages
func tier(level int) int {
	switch {
	case level <= 2:
		return 0
	case level <= 4:
		return 1
	default:
		return 2
	}
}
