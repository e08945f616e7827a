package services

import (
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// Profile is an aluminum system with its price per square meter.
type Profile struct {
	ID        string
	Name      string
	UnitPrice float64
}

func profileFromRecord(r *core.Record) Profile {
	return Profile{ID: r.Id, Name: r.GetString("name"), UnitPrice: r.GetFloat("unit_price")}
}

// ListProfiles returns all profiles sorted by name.
func ListProfiles(app core.App) ([]Profile, error) {
	records, err := app.FindRecordsByFilter("profiles", "id != ''", "name", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]Profile, 0, len(records))
	for _, r := range records {
		out = append(out, profileFromRecord(r))
	}
	return out, nil
}

// GetProfile returns the profile with the given id.
func GetProfile(app core.App, id string) (Profile, error) {
	r, err := app.FindRecordById("profiles", id)
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s not found: %w", id, err)
	}
	return profileFromRecord(r), nil
}

// SaveProfile creates a profile when id is empty, otherwise updates it.
// Line items already stored keep the profile name they were created with.
func SaveProfile(app core.App, id, name string, unitPrice RawText) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, &ValidationError{Field: "name", Message: "יש להזין שם פרופיל"}
	}
	price := unitPrice.Number()
	if price < 0 {
		return Profile{}, &ValidationError{Field: "unit_price", Message: "מחיר למ\"ר אינו יכול להיות שלילי"}
	}

	var r *core.Record
	if id == "" {
		col, err := app.FindCollectionByNameOrId("profiles")
		if err != nil {
			return Profile{}, fmt.Errorf("profiles collection not found: %w", err)
		}
		r = core.NewRecord(col)
	} else {
		var err error
		r, err = app.FindRecordById("profiles", id)
		if err != nil {
			return Profile{}, fmt.Errorf("profile %s not found: %w", id, err)
		}
	}

	r.Set("name", name)
	r.Set("unit_price", price)
	if err := app.Save(r); err != nil {
		return Profile{}, fmt.Errorf("save profile %q: %w", name, err)
	}
	return profileFromRecord(r), nil
}

// DeleteProfile removes a profile. Saved quotes are unaffected.
func DeleteProfile(app core.App, id string) error {
	r, err := app.FindRecordById("profiles", id)
	if err != nil {
		return fmt.Errorf("profile %s not found: %w", id, err)
	}
	if err := app.Delete(r); err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}

// ApplyProfile copies a profile's name and price onto a line item.
func ApplyProfile(item LineItem, p Profile) LineItem {
	item.ProfileID = p.ID
	item.ProfileName = p.Name
	item.UnitPrice = RawText(FormatQty(p.UnitPrice))
	return item
}
