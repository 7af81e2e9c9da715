package domain

import (
	"sort"
	"time"
)

// SharedExtract is a saved paper excerpt broadcast into a room. The
// backend list is the source of truth; clients only ever re-pull it.
type SharedExtract struct {
	ID              FlexID    `json:"id"`
	Title           string    `json:"title"`
	Authors         string    `json:"authors,omitempty"`
	DOI             string    `json:"doi,omitempty"`
	Link            string    `json:"link,omitempty"`
	PDFLink         string    `json:"pdf_link,omitempty"`
	PublicationLink string    `json:"publication_link,omitempty"`
	Extract         string    `json:"extract"`
	SharedBy        string    `json:"shared_by,omitempty"`
	SharedAt        time.Time `json:"shared_at,omitempty"`
}

// Same reports whether two extracts are the same share event.
// The pair (id, shared_at) is the identity; the same extract may be
// shared into a room more than once.
func (e SharedExtract) Same(other SharedExtract) bool {
	return e.ID == other.ID && e.SharedAt.Equal(other.SharedAt)
}

// SortExtracts orders extracts ascending by shared timestamp, the
// display order of the references panel.
func SortExtracts(extracts []SharedExtract) {
	sort.SliceStable(extracts, func(i, j int) bool {
		return extracts[i].SharedAt.Before(extracts[j].SharedAt)
	})
}

// TimelineEntry is one rendered row of the shared-references panel.
// ShowDate marks rows preceded by a date separator.
type TimelineEntry struct {
	Extract  SharedExtract
	ShowDate bool
	Date     string
}

// Timeline builds the display rows for a sorted extract list, inserting
// a date separator whenever the calendar date differs from the previous
// entry.
func Timeline(extracts []SharedExtract) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(extracts))
	prevDate := ""
	for _, e := range extracts {
		date := e.SharedAt.Format("2006-01-02")
		entries = append(entries, TimelineEntry{
			Extract:  e,
			ShowDate: date != prevDate,
			Date:     date,
		})
		prevDate = date
	}
	return entries
}
