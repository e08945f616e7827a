package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const stateCollection = "app_state"

// DraftKey is the app_state key of the quote being edited.
const DraftKey = "draft"

// StateStore keeps JSON documents in the app_state collection. Its methods
// never fail: errors are logged and a load falls back to "absent".
type StateStore struct {
	app core.App
	now func() time.Time
}

// NewStateStore returns a StateStore backed by app.
func NewStateStore(app core.App) *StateStore {
	return &StateStore{app: app, now: time.Now}
}

// Load decodes the document stored under key into v and reports whether it
// was found. A document that cannot be decoded is copied to
// "<key>.corrupt.<unix>" and reported as absent.
func (s *StateStore) Load(key string, v any) bool {
	rec, err := s.find(key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("state_store: load %q: %v", key, err)
		}
		return false
	}

	data := rec.GetString("data")
	if strings.TrimSpace(data) == "" {
		return false
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		backup := fmt.Sprintf("%s.corrupt.%d", key, s.now().Unix())
		log.Printf("state_store: %q is corrupt, preserving it as %q: %v", key, backup, err)
		if err := s.put(backup, data); err != nil {
			log.Printf("state_store: failed to back up %q: %v", key, err)
		}
		return false
	}
	return true
}

// Save encodes v and stores it under key, replacing any previous document.
func (s *StateStore) Save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("state_store: encode %q: %v", key, err)
		return
	}
	if err := s.put(key, string(data)); err != nil {
		log.Printf("state_store: save %q: %v", key, err)
	}
}

// Delete removes the document stored under key, if any.
func (s *StateStore) Delete(key string) {
	rec, err := s.find(key)
	if err != nil {
		return
	}
	if err := s.app.Delete(rec); err != nil {
		log.Printf("state_store: delete %q: %v", key, err)
	}
}

func (s *StateStore) find(key string) (*core.Record, error) {
	return s.app.FindFirstRecordByData(stateCollection, "key", key)
}

func (s *StateStore) put(key, data string) error {
	rec, err := s.find(key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		col, err := s.app.FindCollectionByNameOrId(stateCollection)
		if err != nil {
			return fmt.Errorf("%s collection not found: %w", stateCollection, err)
		}
		rec = core.NewRecord(col)
		rec.Set("key", key)
	}
	rec.Set("data", data)
	return s.app.Save(rec)
}

// Draft is the quote being edited: customer fields, the committed line items
// and the line currently being typed.
type Draft struct {
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone"`
	CustomerEmail string     `json:"customerEmail"`
	Title         string     `json:"title"`
	TaxPercent    RawText    `json:"taxPercent"`
	Notes         string     `json:"notes"`
	Items         []LineItem `json:"items"`
	Pending       LineItem   `json:"pending"`
}

// NewDraft returns an empty draft with the default tax rate filled in.
func NewDraft(defaultTax string) Draft {
	return Draft{TaxPercent: RawText(defaultTax), Pending: LineItem{Qty: "1"}}
}

// DraftFromPayload reopens a saved quote in the editor. The committed items
// keep their frozen prices.
func DraftFromPayload(p ExportPayload) Draft {
	d := NewDraft(string(p.TaxPercent))
	d.CustomerName = p.CustomerName
	d.CustomerPhone = p.CustomerPhone
	d.CustomerEmail = p.CustomerEmail
	d.Title = p.Title
	d.Notes = p.Notes
	d.Items = append([]LineItem(nil), p.Items...)
	return d
}

// LoadDraft returns the stored draft, or a fresh one when none can be read.
func (s *StateStore) LoadDraft(defaultTax string) Draft {
	d := NewDraft(defaultTax)
	if !s.Load(DraftKey, &d) {
		return NewDraft(defaultTax)
	}
	return d
}

// SaveDraft stores d as the current draft.
func (s *StateStore) SaveDraft(d Draft) {
	s.Save(DraftKey, d)
}

// Totals computes the draft totals from its committed items.
func (d Draft) Totals() QuoteTotals {
	return ComputeQuoteTotals(d.Items, d.TaxPercent)
}

// Payload converts the draft into an export payload dated today.
func (d Draft) Payload() ExportPayload {
	return ExportPayload{
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		CustomerEmail: d.CustomerEmail,
		Title:         d.Title,
		Date:          time.Now(),
		TaxPercent:    d.TaxPercent,
		Notes:         d.Notes,
		Items:         d.Items,
	}
}

// SaveInput converts the draft into the input of SaveQuote.
func (d Draft) SaveInput() SaveQuoteInput {
	return SaveQuoteInput{
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		CustomerEmail: d.CustomerEmail,
		Title:         d.Title,
		Date:          time.Now(),
		TaxPercent:    d.TaxPercent,
		Notes:         d.Notes,
		Items:         d.Items,
	}
}

// CommitPending prices the pending line, appends it to the items and starts
// a new pending line that keeps the selected profile and price.
func (d *Draft) CommitPending() LineItem {
	item := CommitLineItem(d.Pending)
	d.Items = append(d.Items, item)
	d.Pending = LineItem{
		Qty:         "1",
		ProfileID:   item.ProfileID,
		ProfileName: item.ProfileName,
		UnitPrice:   item.UnitPrice,
	}
	return item
}

// RemoveItem deletes the item at index i; out-of-range indexes are ignored.
func (d *Draft) RemoveItem(i int) bool {
	if i < 0 || i >= len(d.Items) {
		return false
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	return true
}
