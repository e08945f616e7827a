package collections_test

import (
	"testing"

	"aluquote/collections"
	"aluquote/testhelpers"
)

func TestSeed_CreatesProfiles(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	profilesCol, _ := app.FindCollectionByNameOrId("profiles")
	profiles, err := app.FindAllRecords(profilesCol)
	if err != nil {
		t.Fatalf("query profiles error: %v", err)
	}
	if len(profiles) == 0 {
		t.Fatal("expected default profiles to be created")
	}
	for _, p := range profiles {
		if p.GetString("name") == "" {
			t.Errorf("profile %s has no name", p.Id)
		}
		if p.GetFloat("unit_price") <= 0 {
			t.Errorf("profile %q has unit_price %v, want > 0", p.GetString("name"), p.GetFloat("unit_price"))
		}
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}
	profilesCol, _ := app.FindCollectionByNameOrId("profiles")
	first, _ := app.FindAllRecords(profilesCol)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}
	second, _ := app.FindAllRecords(profilesCol)

	if len(first) != len(second) {
		t.Errorf("profile count changed after second Seed(): %d -> %d", len(first), len(second))
	}
}

func TestSeed_SkipsWhenProfilesExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProfile(t, app, "Custom", 500)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	profilesCol, _ := app.FindCollectionByNameOrId("profiles")
	profiles, _ := app.FindAllRecords(profilesCol)
	if len(profiles) != 1 {
		t.Errorf("expected only the existing profile, got %d", len(profiles))
	}
}
