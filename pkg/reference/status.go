package reference

import (
	"fmt"
	"strings"
)

// RedditStatus is the lifecycle state of a monitored subreddit.
type RedditStatus string

const (
	StatusActive    RedditStatus = "A"
	StatusInactive  RedditStatus = "I"
	StatusSuspended RedditStatus = "S"
)

var statusLabels = map[RedditStatus]string{
	StatusActive:    "Active",
	StatusInactive:  "Inactive",
	StatusSuspended: "Suspended",
}

// RedditStatuses returns every valid status in declaration order.
func RedditStatuses() []RedditStatus {
	return []RedditStatus{StatusActive, StatusInactive, StatusSuspended}
}

// Label returns the human-readable name of the status.
func (s RedditStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s RedditStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// ParseRedditStatus accepts either a status code ("A") or its label
// ("active"), case-insensitively.
func ParseRedditStatus(v string) (RedditStatus, error) {
	v = strings.TrimSpace(v)
	for _, s := range RedditStatuses() {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, s.Label()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown reddit status %q", v)
}
