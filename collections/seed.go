package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
)

type profileDef struct {
	name      string
	unitPrice float64
}

// defaultProfiles are the aluminum systems offered on a fresh install,
// priced per square meter.
var defaultProfiles = []profileDef{
	{"קליל 2000", 650},
	{"קליל 4300", 780},
	{"קליל 4500", 850},
	{"קליל 7000", 1100},
	{"קליל 9000 הזזה", 1350},
	{"רשת נגד יתושים", 180},
}

// Seed inserts the default profiles. It is safe to call on every startup
// because it returns early if any profile records already exist.
func Seed(app core.App) error {
	profilesCol, err := app.FindCollectionByNameOrId("profiles")
	if err != nil {
		return fmt.Errorf("seed: could not find profiles collection: %w", err)
	}
	existing, err := app.FindAllRecords(profilesCol)
	if err != nil {
		return fmt.Errorf("seed: could not query profiles: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: profiles collection is empty – inserting default profiles …")

	return app.RunInTransaction(func(txApp core.App) error {
		for _, d := range defaultProfiles {
			r := core.NewRecord(profilesCol)
			r.Set("name", d.name)
			r.Set("unit_price", d.unitPrice)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("seed: save profile %q: %w", d.name, err)
			}
		}
		return nil
	})
}
