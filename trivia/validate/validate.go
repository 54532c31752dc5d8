package validate

import (
	"regexp"
	"strings"
)

var gameCodeRegex = regexp.MustCompile("^[A-Z]{4}$")

// IsGameCode returns true if the given value has the shape of a game code:
// exactly four uppercase ASCII letters.
func IsGameCode(value string) bool {
	return gameCodeRegex.MatchString(value)
}

// IsTeamName returns true if the given value is an acceptable team name.
// Team names are free text; they only need to be nonempty after trimming
// and short enough to display.
func IsTeamName(value string) bool {
	trimmed := strings.TrimSpace(value)
	return len(trimmed) > 0 && len(trimmed) <= 64
}
