package storage

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/hearthfire/adventure-engine/pkg/adventure"
)

// adventureCache holds validated adventures loaded from a data directory.
// Adventures are immutable at runtime, so the cache is filled once and then
// only read.
type adventureCache struct {
	byID map[string]*adventure.Adventure
}

// loadAdventures reads every *.json file under dir/adventures, validates it,
// and indexes it by id. Files that fail to decode or validate are logged and
// skipped rather than taking the whole service down.
func loadAdventures(dataDir string, logger *slog.Logger) (*adventureCache, error) {
	advDir := filepath.Join(dataDir, "adventures")
	cache := &adventureCache{byID: make(map[string]*adventure.Adventure)}

	err := filepath.WalkDir(advDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		file, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read adventure file", "path", path, "error", err)
			return nil
		}

		var adv adventure.Adventure
		if err := json.Unmarshal(file, &adv); err != nil {
			logger.Warn("Failed to unmarshal adventure file", "path", path, "error", err)
			return nil
		}

		if err := adv.Validate(); err != nil {
			logger.Warn("Skipping invalid adventure file", "path", path, "error", err)
			return nil
		}

		if _, dup := cache.byID[adv.ID]; dup {
			logger.Warn("Duplicate adventure id, keeping first", "id", adv.ID, "path", path)
			return nil
		}

		cache.byID[adv.ID] = &adv
		logger.Info("Loaded adventure", "id", adv.ID, "name", adv.Name, "locations", len(adv.Locations))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk adventures directory %s: %w", advDir, err)
	}

	return cache, nil
}

func (c *adventureCache) get(id string) *adventure.Adventure {
	return c.byID[id]
}

func (c *adventureCache) list() []*adventure.Adventure {
	advs := make([]*adventure.Adventure, 0, len(c.byID))
	for _, adv := range c.byID {
		advs = append(advs, adv)
	}
	sort.Slice(advs, func(i, j int) bool { return advs[i].ID < advs[j].ID })
	return advs
}
