package repository

import "strings"

// likeEscape is the escape character used with every LIKE pattern.
// A backslash is not portable between MySQL and SQLite string literals.
const likeEscape = "!"

// containsPattern returns a lower-cased "%q%" pattern with LIKE
// metacharacters escaped, for use with "LOWER(col) LIKE ? ESCAPE '!'".
func containsPattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
