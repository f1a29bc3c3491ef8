// Package featureflags evaluates runtime feature toggles from configuration.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags known to the API.
const (
	// RealtimeEvents publishes article and profile events to Redis channels.
	RealtimeEvents = "realtime_events"
)

type rule struct {
	raw     string
	percent int // 0..100; on is 100, off is 0
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "realtime_events=on,new_feed=25%,legacy=off"
type Manager struct {
	rules map[string]rule
}

// NewManager parses a comma-separated flag list. Malformed entries are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		if r, ok := parseRule(value); ok {
			rules[key] = r
		}
	}

	return &Manager{rules: rules}
}

func parseRule(value string) (rule, bool) {
	switch value {
	case "on", "true", "1":
		return rule{raw: value, percent: 100}, true
	case "off", "false", "0":
		return rule{raw: value, percent: 0}, true
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if !strings.HasSuffix(value, "%") || err != nil {
		return rule{}, false
	}
	return rule{raw: value, percent: min(max(pct, 0), 100)}, true
}

// Enabled reports whether name is on for userID. Percentage rollouts are
// deterministic per user and never include anonymous callers (userID 0).
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	r, ok := m.rules[normalize(name)]
	switch {
	case !ok || r.percent <= 0:
		return false
	case r.percent >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < r.percent
}

// Raw returns the configured value of every flag.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for k, r := range m.rules {
		out[k] = r.raw
	}
	return out
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.rules))
	for k := range m.rules {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
