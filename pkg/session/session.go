package session

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Session is one player's mutable progress through an adventure. A session is
// owned by a single player; the store serializes concurrent writes per id.
type Session struct {
	ID          uuid.UUID `json:"id"`
	AdventureID string    `json:"adventure_id"`
	PlayerName  string    `json:"player_name,omitempty"`

	CurrentLocationID string          `json:"current_location_id"`
	VisitedLocations  map[string]bool `json:"-"`

	// Inventory holds item ids, each at most once, in pickup order.
	Inventory []string `json:"inventory"`

	// LocationFlags are per-location booleans (e.g. item_taken_candle).
	// Absent flags read as false.
	LocationFlags map[string]map[string]bool `json:"location_flags,omitempty"`
	GlobalFlags   map[string]bool            `json:"global_flags,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

// New creates a session positioned at the adventure's starting location,
// with the starting location already marked visited.
func New(adventureID, startingLocationID, playerName string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:                uuid.New(),
		AdventureID:       adventureID,
		PlayerName:        playerName,
		CurrentLocationID: startingLocationID,
		VisitedLocations:  map[string]bool{startingLocationID: true},
		Inventory:         []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
		LastPlayedAt:      now,
	}
}

// Visit moves the session to locationID and records it as visited.
// The visited set only ever grows.
func (s *Session) Visit(locationID string) {
	s.CurrentLocationID = locationID
	if s.VisitedLocations == nil {
		s.VisitedLocations = make(map[string]bool)
	}
	s.VisitedLocations[locationID] = true
}

// HasVisited reports whether the player has ever been at locationID.
func (s *Session) HasVisited(locationID string) bool {
	return s.VisitedLocations[locationID]
}

// VisitedList returns the visited location ids sorted, for stable JSON
// output and display.
func (s *Session) VisitedList() []string {
	ids := make([]string, 0, len(s.VisitedLocations))
	for id := range s.VisitedLocations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddItem appends itemID to the inventory. Returns false without modifying
// anything if the item is already held.
func (s *Session) AddItem(itemID string) bool {
	if s.HasItem(itemID) {
		return false
	}
	s.Inventory = append(s.Inventory, itemID)
	return true
}

// RemoveItem removes itemID from the inventory, preserving the order of the
// remaining items. Returns false if the item is not held.
func (s *Session) RemoveItem(itemID string) bool {
	for i, id := range s.Inventory {
		if id == itemID {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// HasItem reports whether itemID is in the inventory.
func (s *Session) HasItem(itemID string) bool {
	for _, id := range s.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

// SetLocationFlag sets a boolean flag scoped to a location.
func (s *Session) SetLocationFlag(locationID, flag string, value bool) {
	if s.LocationFlags == nil {
		s.LocationFlags = make(map[string]map[string]bool)
	}
	if s.LocationFlags[locationID] == nil {
		s.LocationFlags[locationID] = make(map[string]bool)
	}
	s.LocationFlags[locationID][flag] = value
}

// LocationFlag reads a location-scoped flag. Absent flags are false.
func (s *Session) LocationFlag(locationID, flag string) bool {
	return s.LocationFlags[locationID][flag]
}

// SetGlobalFlag sets a session-wide boolean flag.
func (s *Session) SetGlobalFlag(flag string, value bool) {
	if s.GlobalFlags == nil {
		s.GlobalFlags = make(map[string]bool)
	}
	s.GlobalFlags[flag] = value
}

// GlobalFlag reads a session-wide flag. Absent flags are false.
func (s *Session) GlobalFlag(flag string) bool {
	return s.GlobalFlags[flag]
}

// sessionJSON is the wire form: the visited set serializes as a sorted list.
type sessionJSON struct {
	ID                uuid.UUID                  `json:"id"`
	AdventureID       string                     `json:"adventure_id"`
	PlayerName        string                     `json:"player_name,omitempty"`
	CurrentLocationID string                     `json:"current_location_id"`
	VisitedLocations  []string                   `json:"visited_locations"`
	Inventory         []string                   `json:"inventory"`
	LocationFlags     map[string]map[string]bool `json:"location_flags,omitempty"`
	GlobalFlags       map[string]bool            `json:"global_flags,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
	LastPlayedAt      time.Time                  `json:"last_played_at"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	inv := s.Inventory
	if inv == nil {
		inv = []string{}
	}
	return json.Marshal(sessionJSON{
		ID:                s.ID,
		AdventureID:       s.AdventureID,
		PlayerName:        s.PlayerName,
		CurrentLocationID: s.CurrentLocationID,
		VisitedLocations:  s.VisitedList(),
		Inventory:         inv,
		LocationFlags:     s.LocationFlags,
		GlobalFlags:       s.GlobalFlags,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		LastPlayedAt:      s.LastPlayedAt,
	})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var sj sessionJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}
	visited := make(map[string]bool, len(sj.VisitedLocations))
	for _, id := range sj.VisitedLocations {
		visited[id] = true
	}
	*s = Session{
		ID:                sj.ID,
		AdventureID:       sj.AdventureID,
		PlayerName:        sj.PlayerName,
		CurrentLocationID: sj.CurrentLocationID,
		VisitedLocations:  visited,
		Inventory:         sj.Inventory,
		LocationFlags:     sj.LocationFlags,
		GlobalFlags:       sj.GlobalFlags,
		CreatedAt:         sj.CreatedAt,
		UpdatedAt:         sj.UpdatedAt,
		LastPlayedAt:      sj.LastPlayedAt,
	}
	if s.Inventory == nil {
		s.Inventory = []string{}
	}
	return nil
}
