package config

import (
	"strings"
)

// Anyone grants a permission to every user.
const Anyone = "anyone"

// Permission is a list of user ids and usernames allowed to perform an
// action, or the single entry "anyone".
type Permission []string

// UnmarshalText lets env parse PERMISSION_* into a Permission.
func (p *Permission) UnmarshalText(b []byte) error {
	*p = ParsePermission(string(b))
	return nil
}

// ParsePermission splits a comma separated list, trimming blanks and a
// leading "@" on usernames.
func ParsePermission(s string) Permission {
	parts := strings.Split(s, ",")
	out := make(Permission, 0, len(parts))
	for _, part := range parts {
		v := strings.TrimPrefix(strings.TrimSpace(part), "@")
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Allows reports whether the user matches the list by id or username.
func (p Permission) Allows(userID, username string) bool {
	username = strings.TrimPrefix(username, "@")
	for _, entry := range p {
		if strings.EqualFold(entry, Anyone) {
			return true
		}
		if entry == userID || (username != "" && strings.EqualFold(entry, username)) {
			return true
		}
	}
	return false
}
