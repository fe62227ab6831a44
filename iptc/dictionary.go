// Package iptc translates between the raw IPTC records embedded in an
// image file and a label-keyed document of human-readable fields.
package iptc

// Entry describes one curated metadata field: the label callers use,
// the raw tag identifier it resolves to, and whether the field is a
// collection regardless of how many values are currently stored.
type Entry struct {
	Label       string `json:"label"`
	RawKey      string `json:"raw_key"`
	Multi       bool   `json:"multi_valued"`
	Description string `json:"description"`
}

// Dictionary resolves human labels to raw tag identifiers. It is built
// once and never modified; the zero value resolves nothing. Resolution
// is one-directional: the reverse direction on export goes through the
// metadata library's own tag names so that reading tolerates raw
// identifiers outside the curated set.
type Dictionary struct {
	entries []Entry
	byLabel map[string]Entry
}

// NewDictionary builds a dictionary from entries. Later duplicates of
// a label win.
func NewDictionary(entries []Entry) Dictionary {
	d := Dictionary{
		entries: append([]Entry(nil), entries...),
		byLabel: make(map[string]Entry, len(entries)),
	}
	for _, e := range d.entries {
		d.byLabel[e.Label] = e
	}
	return d
}

// RawKey resolves a label to its raw tag identifier.
func (d Dictionary) RawKey(label string) (string, bool) {
	e, ok := d.byLabel[label]
	return e.RawKey, ok
}

// IsMulti reports whether the label is flagged as inherently
// multi-valued. Unknown labels are not.
func (d Dictionary) IsMulti(label string) bool {
	return d.byLabel[label].Multi
}

// Entries returns the dictionary contents in table order.
func (d Dictionary) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// DefaultDictionary returns the curated set of writable IPTC fields.
func DefaultDictionary() Dictionary {
	return NewDictionary([]Entry{
		{Label: "ObjectName", RawKey: "Iptc.Application2.ObjectName",
			Description: "Shorthand reference or title for the object."},
		{Label: "Keywords", RawKey: "Iptc.Application2.Keywords", Multi: true,
			Description: "Keywords to assist with searching or indexing."},
		{Label: "Caption", RawKey: "Iptc.Application2.Caption",
			Description: "A textual description or caption of the object."},
		{Label: "By-line", RawKey: "Iptc.Application2.By-line",
			Description: "Name of the creator or photographer."},
		{Label: "By-lineTitle", RawKey: "Iptc.Application2.By-lineTitle",
			Description: "Job title or position of the creator."},
		{Label: "Credit", RawKey: "Iptc.Application2.Credit",
			Description: "Credit line for the content's source or provider."},
		{Label: "Source", RawKey: "Iptc.Application2.Source",
			Description: "Original source of the content."},
		{Label: "CopyrightNotice", RawKey: "Iptc.Application2.CopyrightNotice",
			Description: "Copyright information or notice."},
		{Label: "Headline", RawKey: "Iptc.Application2.Headline",
			Description: "A brief summary or headline for the content."},
		{Label: "SpecialInstructions", RawKey: "Iptc.Application2.SpecialInstructions",
			Description: "Special handling instructions for the content."},
		{Label: "Category", RawKey: "Iptc.Application2.Category",
			Description: "Subject category for the content."},
		{Label: "SupplementalCategories", RawKey: "Iptc.Application2.SupplementalCategories", Multi: true,
			Description: "Additional subject categories."},
		{Label: "Urgency", RawKey: "Iptc.Application2.Urgency",
			Description: "Editorial urgency level (1-8)."},
		{Label: "DateCreated", RawKey: "Iptc.Application2.DateCreated",
			Description: "Date the content was created (YYYYMMDD)."},
		{Label: "City", RawKey: "Iptc.Application2.City",
			Description: "City where the content was created."},
		{Label: "Province-State", RawKey: "Iptc.Application2.Province-State",
			Description: "Province or state where the content was created."},
		{Label: "Country-PrimaryLocationName", RawKey: "Iptc.Application2.Country-PrimaryLocationName",
			Description: "Name of the country where the content was created."},
		{Label: "OriginalTransmissionReference", RawKey: "Iptc.Application2.OriginalTransmissionReference",
			Description: "Unique identifier of the transmission or reference."},
	})
}
