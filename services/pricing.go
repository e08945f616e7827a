// Package services provides quote pricing, document layout and export functions.
package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawText is a numeric field exactly as typed by the user. It may be empty,
// partially typed or carry currency symbols and separators. Number is the
// only conversion to a numeric value.
type RawText string

// Number parses the text with ParseLooseNumber.
func (t RawText) Number() float64 {
	return ParseLooseNumber(string(t))
}

// UnmarshalJSON accepts a JSON string or a bare number, which older saved
// documents use for dimensions and prices.
func (t *RawText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = RawText(s)
		return nil
	}
	if string(data) == "null" {
		*t = ""
		return nil
	}
	*t = RawText(strings.TrimSpace(string(data)))
	return nil
}

// Addon is an optional extra charge on a line item. Unchecked add-ons are kept
// so they can be toggled back on, but never contribute to price.
type Addon struct {
	Name    string  `json:"name"`
	Price   RawText `json:"price"`
	Checked bool    `json:"checked"`
}

// LineItem is one priced row of a quote. Subtotal and PerItemPrice are frozen
// by CommitLineItem and are never recomputed afterwards.
type LineItem struct {
	WidthCm      RawText `json:"widthCm"`
	HeightCm     RawText `json:"heightCm"`
	Qty          RawText `json:"qty"`
	UnitPrice    RawText `json:"unitPrice"`
	ProfileID    string  `json:"profileId,omitempty"`
	ProfileName  string  `json:"profileName,omitempty"`
	Location     string  `json:"location,omitempty"`
	Details      string  `json:"details,omitempty"`
	Addons       []Addon `json:"addons,omitempty"`
	PerItemPrice float64 `json:"perItemPrice"`
	Subtotal     float64 `json:"subtotal"`
}

// LineCalc is the breakdown of a single line item price.
type LineCalc struct {
	Area         float64 // square meters
	AddonsSum    float64
	PerItemPrice float64 // Area*unit + AddonsSum
	Qty          float64 // never negative
	Subtotal     float64 // PerItemPrice * Qty
}

// QuoteTotals holds the aggregated totals of a quote.
type QuoteTotals struct {
	Sub   float64 `json:"sub"`
	Tax   float64 `json:"tax"`
	Grand float64 `json:"grand"`
}

// ParseLooseNumber converts free-form text into a number and never fails.
// Every character other than digits, comma, period and minus is dropped.
// If a period remains, commas are thousands separators; otherwise the first
// comma is the decimal separator. The longest numeric prefix is parsed.
// Empty or non-finite results yield 0.
func ParseLooseNumber(text string) float64 {
	var b strings.Builder
	hasPeriod := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '-':
			b.WriteRune(r)
		case r == '.':
			hasPeriod = true
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if hasPeriod {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	} else {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	prefix := numericPrefix(cleaned)
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// numericPrefix returns the longest leading "-?digits[.digits]" of s.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	return s[:i]
}

// DefaultTaxPercent is the VAT rate a new quote starts with.
const DefaultTaxPercent = "18"

// NormalizeTaxPercent turns a tax rate typed as either a whole percentage (18)
// or a fraction (0.18) into a fraction. Values <= 0 or non-finite give 0.
//
// A value of exactly 1 is ambiguous (1% or 100%); it is treated as a fraction,
// i.e. 100%.
func NormalizeTaxPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v > 1 {
		return v / 100
	}
	return v
}

// ComputeLineTotal prices one line item. Dimensions are in centimeters and the
// unit price is per square meter; checked add-ons are charged per unit.
func ComputeLineTotal(item LineItem) LineCalc {
	width := item.WidthCm.Number()
	height := item.HeightCm.Number()
	area := width * height / 10000
	qty := math.Max(0, item.Qty.Number())

	var addonsSum float64
	for _, a := range item.Addons {
		if a.Checked {
			addonsSum += a.Price.Number()
		}
	}

	unit := item.UnitPrice.Number()
	perItem := area*unit + addonsSum

	return LineCalc{
		Area:         area,
		AddonsSum:    addonsSum,
		PerItemPrice: perItem,
		Qty:          qty,
		Subtotal:     perItem * qty,
	}
}

// CommitLineItem is the "add item" transition: it prices the item once and
// returns a copy with Subtotal and PerItemPrice frozen. The add-on slice is
// copied so later edits to the draft do not leak into the committed item.
func CommitLineItem(item LineItem) LineItem {
	calc := ComputeLineTotal(item)

	committed := item
	committed.ProfileName = strings.TrimSpace(item.ProfileName)
	committed.Location = strings.TrimSpace(item.Location)
	committed.Details = strings.TrimSpace(item.Details)
	if len(item.Addons) > 0 {
		committed.Addons = make([]Addon, len(item.Addons))
		copy(committed.Addons, item.Addons)
	}
	committed.PerItemPrice = calc.PerItemPrice
	committed.Subtotal = calc.Subtotal
	return committed
}

// ComputeQuoteTotals sums the frozen subtotals and applies the tax rate.
func ComputeQuoteTotals(items []LineItem, taxPercent RawText) QuoteTotals {
	var sub float64
	for _, item := range items {
		sub += item.Subtotal
	}

	rate := NormalizeTaxPercent(taxPercent.Number())
	tax := sub * rate
	return QuoteTotals{
		Sub:   sub,
		Tax:   tax,
		Grand: sub + tax,
	}
}
