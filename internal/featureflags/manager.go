// Package featureflags evaluates rollout flags configured through
// FEATURE_FLAGS, e.g. "post_authoring=on,google_login=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"maps"
	"strconv"
	"strings"
)

// Flags known to the application.
const (
	// PostAuthoring enables POST /api/v1/posts.
	PostAuthoring = "post_authoring"
	// CirclePicker exposes the caller's circles to the client's post form.
	CirclePicker = "circle_picker"
)

// Defaults apply to known flags missing from the configuration.
var Defaults = map[string]string{
	PostAuthoring: "on",
	CirclePicker:  "on",
}

// Manager evaluates feature flags.
type Manager struct {
	flags   map[string]string
	invalid []string
}

// NewManager parses a comma-separated key=value list on top of Defaults.
// Entries that cannot be parsed are skipped and reported by Invalid.
func NewManager(raw string) *Manager {
	m := &Manager{flags: maps.Clone(Defaults)}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" || !validValue(value) {
			m.invalid = append(m.invalid, pair)
			continue
		}
		m.flags[key] = value
	}

	return m
}

// Invalid lists the configuration entries that were ignored.
func (m *Manager) Invalid() []string {
	return m.invalid
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := percent(value)
	switch {
	case !ok || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	return maps.Clone(m.flags)
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func validValue(v string) bool {
	switch v {
	case "on", "true", "1", "off", "false", "0":
		return true
	}
	_, ok := percent(v)
	return ok
}

func percent(v string) (int, bool) {
	raw, found := strings.CutSuffix(v, "%")
	if !found {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
