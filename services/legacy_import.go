package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// LegacyData is the single-document JSON the tool stored before it had a
// database: every profile, customer and quote in one blob.
type LegacyData struct {
	Profiles  []LegacyProfile  `json:"profiles"`
	Customers []LegacyCustomer `json:"customers"`
	Quotes    []LegacyQuote    `json:"quotes"`
}

type LegacyProfile struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice RawText `json:"unitPrice"`
}

type LegacyCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type LegacyQuote struct {
	ID            string       `json:"id"`
	CustomerID    string       `json:"customerId"`
	CustomerName  string       `json:"customerName"`
	CustomerPhone string       `json:"customerPhone"`
	CustomerEmail string       `json:"customerEmail"`
	Title         string       `json:"title"`
	Date          string       `json:"date"`
	TaxPercent    RawText      `json:"taxPercent"`
	Notes         string       `json:"notes"`
	Items         []LineItem   `json:"items"`
	Totals        *QuoteTotals `json:"totals"`
}

// ImportReport counts what ImportLegacy wrote. Skipped lists the quotes and
// profiles that were left out, with the reason.
type ImportReport struct {
	Profiles  int
	Customers int
	Quotes    int
	Skipped   []string
}

// legacyDateLayouts are tried in order when reading a quote date.
var legacyDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "02/01/2006"}

func parseLegacyDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ImportLegacy reads a legacy blob from r and stores its contents. Profiles
// whose name already exists are kept as they are; customers are matched by
// name like SaveQuote does; quotes keep their stored totals. Entries that
// fail validation are skipped and reported, any other error rolls back the
// whole import.
func ImportLegacy(app core.App, r io.Reader) (ImportReport, error) {
	var data LegacyData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return ImportReport{}, fmt.Errorf("decode legacy data: %w", err)
	}

	var report ImportReport
	err := app.RunInTransaction(func(txApp core.App) error {
		report = ImportReport{}

		profileIDs, err := importLegacyProfiles(txApp, data.Profiles, &report)
		if err != nil {
			return err
		}

		customers := map[string]LegacyCustomer{}
		for _, c := range data.Customers {
			if strings.TrimSpace(c.Name) == "" {
				report.Skipped = append(report.Skipped, fmt.Sprintf("customer %s: empty name", c.ID))
				continue
			}
			customers[c.ID] = c
			rec, created, err := upsertCustomer(txApp, c.Name, c.Phone, c.Email)
			if err != nil {
				return err
			}
			if created {
				report.Customers++
			}
			if notes := strings.TrimSpace(c.Notes); notes != "" && rec.GetString("notes") == "" {
				rec.Set("notes", notes)
				if err := txApp.Save(rec); err != nil {
					return fmt.Errorf("save notes of %q: %w", c.Name, err)
				}
			}
		}

		for _, q := range data.Quotes {
			in := legacySaveInput(q, customers, profileIDs)
			saved, err := SaveQuote(txApp, in)
			var verr *ValidationError
			switch {
			case errors.As(err, &verr):
				report.Skipped = append(report.Skipped, fmt.Sprintf("quote %s: %s", q.ID, verr.Message))
				continue
			case err != nil:
				return fmt.Errorf("import quote %s: %w", q.ID, err)
			}
			if saved.CustomerCreated {
				report.Customers++
			}
			report.Quotes++
		}
		return nil
	})
	if err != nil {
		return ImportReport{}, err
	}

	log.Printf("import_legacy: %d profiles, %d customers, %d quotes, %d skipped",
		report.Profiles, report.Customers, report.Quotes, len(report.Skipped))
	return report, nil
}

// importLegacyProfiles returns the mapping from legacy profile id to the
// stored profile.
func importLegacyProfiles(app core.App, profiles []LegacyProfile, report *ImportReport) (map[string]Profile, error) {
	ids := map[string]Profile{}
	for _, p := range profiles {
		existing, err := app.FindFirstRecordByData("profiles", "name", strings.TrimSpace(p.Name))
		if err == nil {
			ids[p.ID] = profileFromRecord(existing)
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find profile %q: %w", p.Name, err)
		}

		saved, err := SaveProfile(app, "", p.Name, p.UnitPrice)
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			report.Skipped = append(report.Skipped, fmt.Sprintf("profile %s: %s", p.ID, verr.Message))
			continue
		case err != nil:
			return nil, err
		}
		ids[p.ID] = saved
		report.Profiles++
	}
	return ids, nil
}

func legacySaveInput(q LegacyQuote, customers map[string]LegacyCustomer, profiles map[string]Profile) SaveQuoteInput {
	in := SaveQuoteInput{
		CustomerName:  q.CustomerName,
		CustomerPhone: q.CustomerPhone,
		CustomerEmail: q.CustomerEmail,
		Title:         q.Title,
		Date:          parseLegacyDate(q.Date),
		TaxPercent:    q.TaxPercent,
		Notes:         q.Notes,
		Totals:        q.Totals,
	}
	if c, ok := customers[q.CustomerID]; ok {
		if strings.TrimSpace(in.CustomerName) == "" {
			in.CustomerName = c.Name
		}
		if in.CustomerPhone == "" {
			in.CustomerPhone = c.Phone
		}
		if in.CustomerEmail == "" {
			in.CustomerEmail = c.Email
		}
	}
	if strings.TrimSpace(string(in.TaxPercent)) == "" {
		in.TaxPercent = DefaultTaxPercent
	}

	for _, item := range q.Items {
		if p, ok := profiles[item.ProfileID]; ok {
			item.ProfileID = p.ID
			if strings.TrimSpace(item.ProfileName) == "" {
				item.ProfileName = p.Name
			}
		} else {
			item.ProfileID = ""
		}
		// items stored before prices were frozen carry no subtotal
		if item.Subtotal == 0 && item.PerItemPrice == 0 {
			item = CommitLineItem(item)
		}
		in.Items = append(in.Items, item)
	}
	return in
}
