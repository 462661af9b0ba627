package adventure

import (
	"sort"
	"strings"
	"time"
)

// Exit is a directed connection from one location to another, keyed in the
// owning location's Exits map by direction or action name ("north", "door").
type Exit struct {
	Direction    string `json:"direction"`
	LocationID   string `json:"location_id"`
	Description  string `json:"description,omitempty"`
	Locked       bool   `json:"locked,omitempty"`
	RequiredItem string `json:"required_item,omitempty"`
}

// Item is an object placed in a location. IDs are unique within a location,
// not globally. Hidden items stay out of descriptions and lookups until
// content logic reveals them.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Takeable    bool   `json:"takeable"`
	Visible     bool   `json:"visible"`
}

// Location is a node in the adventure's world graph. It is immutable game
// content; player-specific state (visited, items taken) lives in the session.
type Location struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Mood        string          `json:"mood,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Exits       map[string]Exit `json:"exits,omitempty"`
	Items       []Item          `json:"items,omitempty"`
}

// Adventure is a complete, static game content graph authored offline.
// It is loaded once and never mutated at runtime.
type Adventure struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	Author             string              `json:"author,omitempty"`
	Version            string              `json:"version,omitempty"`
	Rating             string              `json:"rating,omitempty"` // e.g. "PG13"; gates narration filtering
	Difficulty         string              `json:"difficulty,omitempty"`
	EstimatedDuration  int                 `json:"estimated_duration,omitempty"` // minutes
	Tags               []string            `json:"tags,omitempty"`
	CreatedAt          time.Time           `json:"created_at,omitempty"`
	UpdatedAt          time.Time           `json:"updated_at,omitempty"`
	StartingLocationID string              `json:"starting_location_id"`
	Locations          map[string]Location `json:"locations"`
}

// Location returns the location with the given ID, or nil if the adventure
// has no such location.
func (a *Adventure) Location(id string) *Location {
	loc, ok := a.Locations[id]
	if !ok {
		return nil
	}
	return &loc
}

// ExitKeys returns the location's exit keys in sorted order, for stable
// player-facing listings.
func (l *Location) ExitKeys() []string {
	keys := make([]string, 0, len(l.Exits))
	for k := range l.Exits {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VisibleItems returns the location's visible items in authored order.
func (l *Location) VisibleItems() []Item {
	items := make([]Item, 0, len(l.Items))
	for _, item := range l.Items {
		if item.Visible {
			items = append(items, item)
		}
	}
	return items
}

// VisibleItemNames returns the display names of the location's visible items.
func (l *Location) VisibleItemNames() []string {
	items := l.VisibleItems()
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

// FindVisibleItem matches a player-supplied name against the location's
// visible items. The match policy is a player-visible contract: the first item
// whose display name equals the query case-insensitively, or whose display
// name contains it, or whose ID equals it exactly (case-insensitive) wins.
// Hidden items never match. Returns nil when nothing matches.
func (l *Location) FindVisibleItem(name string) *Item {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil
	}
	for i := range l.Items {
		item := &l.Items[i]
		if !item.Visible {
			continue
		}
		lowerName := strings.ToLower(item.Name)
		if lowerName == query || strings.Contains(lowerName, query) || strings.ToLower(item.ID) == query {
			return item
		}
	}
	return nil
}
