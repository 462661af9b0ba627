package storage

import (
	"os"
	"path/filepath"
	"testing"
)

const validAdventureJSON = `{
	"id": "tiny",
	"name": "Tiny Adventure",
	"starting_location_id": "start",
	"locations": {
		"start": {
			"id": "start",
			"name": "Start",
			"description": "The beginning.",
			"exits": {}
		}
	}
}`

// danglingExitJSON fails validation: its only exit targets a missing location.
const danglingExitJSON = `{
	"id": "broken",
	"name": "Broken Adventure",
	"starting_location_id": "start",
	"locations": {
		"start": {
			"id": "start",
			"name": "Start",
			"description": "The beginning.",
			"exits": {
				"north": {"direction": "north", "location_id": "nowhere"}
			}
		}
	}
}`

func writeAdventureFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dataDir := t.TempDir()
	advDir := filepath.Join(dataDir, "adventures")
	if err := os.MkdirAll(advDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(advDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dataDir
}

func TestLoadAdventures(t *testing.T) {
	dataDir := writeAdventureFiles(t, map[string]string{
		"tiny.json":    validAdventureJSON,
		"notes.txt":    "not an adventure",
		"garbage.json": "{not json",
	})

	cache, err := loadAdventures(dataDir, testLogger())
	if err != nil {
		t.Fatalf("loadAdventures failed: %v", err)
	}

	if len(cache.byID) != 1 {
		t.Fatalf("expected 1 adventure, got %d", len(cache.byID))
	}
	adv := cache.get("tiny")
	if adv == nil || adv.Name != "Tiny Adventure" {
		t.Errorf("expected Tiny Adventure, got %+v", adv)
	}
	if cache.get("missing") != nil {
		t.Error("expected nil for unknown adventure")
	}
}

func TestLoadAdventuresSkipsInvalidContent(t *testing.T) {
	dataDir := writeAdventureFiles(t, map[string]string{
		"tiny.json":   validAdventureJSON,
		"broken.json": danglingExitJSON,
	})

	cache, err := loadAdventures(dataDir, testLogger())
	if err != nil {
		t.Fatalf("loadAdventures failed: %v", err)
	}

	if cache.get("broken") != nil {
		t.Error("adventure with dangling exit should not load")
	}
	if cache.get("tiny") == nil {
		t.Error("valid adventure should still load")
	}
}

func TestLoadAdventuresMissingDirIsEmpty(t *testing.T) {
	cache, err := loadAdventures(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("expected missing directory to yield empty cache, got %v", err)
	}
	if len(cache.list()) != 0 {
		t.Errorf("expected no adventures, got %d", len(cache.list()))
	}
}
