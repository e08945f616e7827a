package collections

import (
	"fmt"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// MigrateFreezeProfileNames fills in profileName on stored line items that
// only carry a profileId, using the profile's current name. Items whose
// profile no longer exists are left as they are.
// Safe to call on every startup -- returns early if nothing to migrate.
func MigrateFreezeProfileNames(app core.App) error {
	profilesCol, err := app.FindCollectionByNameOrId("profiles")
	if err != nil {
		return fmt.Errorf("migrate: could not find profiles collection: %w", err)
	}
	quotesCol, err := app.FindCollectionByNameOrId("quotes")
	if err != nil {
		return fmt.Errorf("migrate: could not find quotes collection: %w", err)
	}

	profiles, err := app.FindAllRecords(profilesCol)
	if err != nil {
		return fmt.Errorf("migrate: could not query profiles: %w", err)
	}
	names := make(map[string]string, len(profiles))
	for _, p := range profiles {
		names[p.Id] = p.GetString("name")
	}

	quotes, err := app.FindAllRecords(quotesCol)
	if err != nil {
		return fmt.Errorf("migrate: could not query quotes: %w", err)
	}

	updated := 0
	for _, q := range quotes {
		var items []map[string]any
		if err := q.UnmarshalJSONField("items", &items); err != nil {
			log.Printf("migrate: quote %s has unreadable items, skipping: %v\n", q.Id, err)
			continue
		}

		changed := false
		for _, item := range items {
			if name, _ := item["profileName"].(string); strings.TrimSpace(name) != "" {
				continue
			}
			id, _ := item["profileId"].(string)
			if name, ok := names[id]; ok && id != "" {
				item["profileName"] = name
				changed = true
			}
		}
		if !changed {
			continue
		}

		q.Set("items", items)
		if err := app.Save(q); err != nil {
			log.Printf("migrate: failed to update profile names on quote %s: %v\n", q.Id, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		log.Printf("migrate: froze profile names on %d quote(s).\n", updated)
	}
	return nil
}
