package adventure

import (
	"fmt"
	"strings"
)

// ValidationError collects every content problem found in an adventure so
// authors can fix them in one pass.
type ValidationError struct {
	AdventureID string
	Problems    []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("adventure %q has %d validation error(s):\n%s",
		e.AdventureID, len(e.Problems), strings.Join(e.Problems, "\n"))
}

// Validate checks the adventure's content graph for authoring errors:
// missing ids, a starting location that doesn't exist, exits pointing at
// locations that don't exist, and locked exits whose required item is not
// obtainable anywhere in the graph. These are load-time data errors; the
// runtime engine assumes a validated adventure.
func (a *Adventure) Validate() error {
	var problems []string

	if a.ID == "" {
		problems = append(problems, "adventure id is required")
	}
	if a.Name == "" {
		problems = append(problems, "adventure name is required")
	}
	if len(a.Locations) == 0 {
		problems = append(problems, "adventure has no locations")
	}
	if a.StartingLocationID == "" {
		problems = append(problems, "starting_location_id is required")
	} else if _, ok := a.Locations[a.StartingLocationID]; !ok {
		problems = append(problems, fmt.Sprintf("starting location %q does not exist", a.StartingLocationID))
	}

	// Items that can actually end up in a player's inventory.
	obtainable := make(map[string]bool)
	for _, loc := range a.Locations {
		for _, item := range loc.Items {
			if item.Takeable && item.Visible {
				obtainable[item.ID] = true
			}
		}
	}

	for key, loc := range a.Locations {
		if loc.ID == "" {
			problems = append(problems, fmt.Sprintf("location %q has no id", key))
		} else if loc.ID != key {
			problems = append(problems, fmt.Sprintf("location key %q does not match its id %q", key, loc.ID))
		}
		if loc.Name == "" {
			problems = append(problems, fmt.Sprintf("location %q has no name", key))
		}

		seen := make(map[string]bool)
		for _, item := range loc.Items {
			if item.ID == "" {
				problems = append(problems, fmt.Sprintf("location %q has an item without an id", key))
				continue
			}
			if seen[item.ID] {
				problems = append(problems, fmt.Sprintf("location %q has duplicate item id %q", key, item.ID))
			}
			seen[item.ID] = true
		}

		for dir, exit := range loc.Exits {
			if exit.LocationID == "" {
				problems = append(problems, fmt.Sprintf("exit %q from %q has no target location", dir, key))
				continue
			}
			if _, ok := a.Locations[exit.LocationID]; !ok {
				problems = append(problems, fmt.Sprintf("exit %q from %q targets unknown location %q", dir, key, exit.LocationID))
			}
			if exit.RequiredItem != "" && !obtainable[exit.RequiredItem] {
				problems = append(problems, fmt.Sprintf("exit %q from %q requires item %q, which is not obtainable anywhere", dir, key, exit.RequiredItem))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{AdventureID: a.ID, Problems: problems}
	}
	return nil
}
