package catalog

import (
	"strings"
	"time"
	"unicode"
)

// ModelDescriptor describes one selectable AI model offered by a provider.
type ModelDescriptor struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	Description   string `json:"description,omitempty"`
	ContextWindow *int   `json:"context_window,omitempty"`
}

// Origin records where the models of an entry came from.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginDefaults Origin = "defaults"
)

// Key partitions the catalog by provider and credential fingerprint.
type Key struct {
	Provider    string
	Fingerprint string
}

func (k Key) String() string {
	return k.Provider + ":" + k.Fingerprint
}

// Entry is one cached catalog snapshot. Entries are replaced, never mutated.
type Entry struct {
	Provider    string            `json:"provider"`
	Fingerprint string            `json:"fingerprint"`
	Models      []ModelDescriptor `json:"models"`
	FetchedAt   time.Time         `json:"fetched_at"`
	Origin      Origin            `json:"origin"`
}

// Key returns the partition key of the entry.
func (e *Entry) Key() Key {
	return Key{Provider: e.Provider, Fingerprint: e.Fingerprint}
}

// Age reports how old the entry is at now.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// ContextWindow is a convenience for building descriptors with a known window.
func ContextWindow(tokens int) *int {
	return &tokens
}

// HumanizeID turns a model identifier into a display label, e.g.
// "deepseek-chat" becomes "Deepseek Chat" and "gpt-4o-mini" becomes "GPT 4o Mini".
func HumanizeID(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == '/' || r == ' '
	})
	for i, p := range parts {
		switch strings.ToLower(p) {
		case "gpt":
			parts[i] = "GPT"
			continue
		}
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

// normalizeModels drops descriptors without an id and keeps the first
// occurrence of duplicated ids, preserving provider order.
func normalizeModels(in []ModelDescriptor) []ModelDescriptor {
	seen := make(map[string]struct{}, len(in))
	out := make([]ModelDescriptor, 0, len(in))
	for _, m := range in {
		m.ID = strings.TrimSpace(m.ID)
		if m.ID == "" {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		if m.DisplayName == "" {
			m.DisplayName = m.ID
		}
		out = append(out, m)
	}
	return out
}

// cloneModels copies a snapshot so callers cannot mutate cached state.
func cloneModels(in []ModelDescriptor) []ModelDescriptor {
	out := make([]ModelDescriptor, len(in))
	for i, m := range in {
		if m.ContextWindow != nil {
			m.ContextWindow = ContextWindow(*m.ContextWindow)
		}
		out[i] = m
	}
	return out
}
