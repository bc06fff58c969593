package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Block is a header row plus its data rows.
type Block struct {
	Header []string
	Rows   [][]string
}

// Segmented is a datasheet split into its fixed-width entity block and its
// variable-width repeating (per-course) block. Keys holds the natural key of
// each repeating row, read from the entity-end column.
type Segmented struct {
	Entity    Block
	Repeating Block
	Keys      []string
	Warnings  []string
}

// Segment splits a raw datasheet per its spec.
//
// A row is base-valid iff every required column is non-empty. Entity rows
// additionally need at least one non-empty cell within the entity bounds.
// Blank entity sub-headers are synthesized as Col_<Letter>; date-like fields
// are normalized to DD/MM/YYYY (malformed values kept raw with a warning);
// the graduation-date column, wherever it sits, is merged in as a trailing
// "Grad" field defaulting to "-".
func Segment(s RawSheet, sp Spec) (*Segmented, error) {
	header := s.Header()
	lay, err := sp.Resolve(header)
	if err != nil {
		return nil, err
	}

	baseValid := func(row []string) bool {
		for _, idx := range lay.Required {
			if cellAt(row, idx) == "" {
				return false
			}
		}
		return true
	}

	// entity headers come from the secondary header row
	var sub []string
	if len(s.Rows) > 1 {
		sub = s.Rows[1]
	}
	entityHeader := make([]string, 0, lay.EntityEnd-lay.EntityStart+2)
	for i := lay.EntityStart; i <= lay.EntityEnd; i++ {
		h := cellAt(sub, i)
		if IsContinuationHeader(h) {
			h = "Col_" + ColumnLetter(i)
		}
		entityHeader = append(entityHeader, h)
	}

	gradIdx := -1
	if sp.GradLabel != "" {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), sp.GradLabel) {
				gradIdx = i
				break
			}
		}
		entityHeader = append(entityHeader, "Grad")
	}

	end := lay.Sentinel
	if end < 0 {
		end = len(header)
	}
	repeatHeader := make([]string, 0, end-lay.RepeatingStart)
	for i := lay.RepeatingStart; i < end; i++ {
		repeatHeader = append(repeatHeader, cellAt(header, i))
	}

	seg := &Segmented{
		Entity:    Block{Header: entityHeader},
		Repeating: Block{Header: repeatHeader},
	}

	dateField := make(map[int]bool, len(sp.DateFields))
	for off, h := range entityHeader {
		for _, df := range sp.DateFields {
			if strings.EqualFold(h, df) {
				dateField[off] = true
			}
		}
	}

	for r := 2; r < len(s.Rows); r++ {
		row := s.Rows[r]
		if !baseValid(row) {
			continue
		}

		ent := make([]string, 0, len(entityHeader))
		var any bool
		for i := lay.EntityStart; i <= lay.EntityEnd; i++ {
			v := cellAt(row, i)
			if v != "" {
				any = true
			}
			ent = append(ent, v)
		}
		if any {
			for off := range ent {
				if !dateField[off] || ent[off] == "" {
					continue
				}
				if d, ok := NormalizeDate(ent[off]); ok {
					ent[off] = d
				} else {
					seg.Warnings = append(seg.Warnings,
						fmt.Sprintf("row %d: unparseable %s date %q left as-is", r+1, entityHeader[off], ent[off]))
				}
			}
			if sp.GradLabel != "" {
				grad := NotAttemptedToken
				if gradIdx >= 0 {
					if v := cellAt(row, gradIdx); v != "" {
						grad = v
					}
				}
				ent = append(ent, grad)
			}
			seg.Entity.Rows = append(seg.Entity.Rows, ent)
		}

		rep := make([]string, 0, len(repeatHeader))
		for i := lay.RepeatingStart; i < end; i++ {
			rep = append(rep, cellAt(row, i))
		}
		seg.Keys = append(seg.Keys, cellAt(row, lay.EntityEnd))
		seg.Repeating.Rows = append(seg.Repeating.Rows, rep)
	}
	return seg, nil
}

const DateLayout = "02/01/2006"

// dateLayouts covers the formats seen across cohort intakes. Day-first
// variants come before month-first ones.
var dateLayouts = []string{
	DateLayout,
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan-06",
	"2006-01-02T15:04:05Z07:00",
	"1/2/06 15:04",
}

// NormalizeDate reformats a date-like cell to DD/MM/YYYY. Bare numbers are
// treated as workbook serial dates (days since 1899-12-30). Reports false
// when no known format matches.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)).Format(DateLayout), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return raw, false
}
