package iptc

import (
	"fmt"
	"sort"

	"github.com/camden-git/photometabackend/iim"
)

type state int

const (
	stateClosed state = iota
	stateOpened
	stateFailedOpen
)

// Adapter owns one opened image and its in-memory IPTC record set, and
// translates between that record set and the canonical document in both
// directions. Every mutating call persists the full record set and
// flushes it to storage before returning.
//
// An adapter is single-use: a failed open is terminal, and instances are
// not safe for concurrent use. Callers wanting to retry or to share a
// file across goroutines must coordinate externally.
type Adapter struct {
	dict    Dictionary
	state   state
	file    *iim.File
	records *iim.RecordSet
}

// NewAdapter returns a closed adapter using the given dictionary for
// label resolution.
func NewAdapter(dict Dictionary) *Adapter {
	return &Adapter{dict: dict}
}

// Open loads the file's full metadata set into memory eagerly. On
// failure the adapter enters a terminal failed state and every later
// operation returns ErrNotOpen.
func (a *Adapter) Open(path string) error {
	if a.state != stateClosed {
		return ErrAlreadyOpened
	}
	file, records, err := iim.Open(path)
	if err != nil {
		a.state = stateFailedOpen
		return &OpenError{Path: path, Err: err}
	}
	a.file = file
	a.records = records
	a.state = stateOpened
	return nil
}

func (a *Adapter) ready() error {
	if a.state != stateOpened {
		return ErrNotOpen
	}
	return nil
}

// GetTag returns the first stored value whose identifier exactly equals
// rawKey, or "" when the file holds none. The record set is not
// modified.
func (a *Adapter) GetTag(rawKey string) (string, error) {
	if err := a.ready(); err != nil {
		return "", err
	}
	rec, ds, err := iim.ParseKey(rawKey)
	if err != nil {
		return "", err
	}
	value, _ := a.records.First(rec, ds)
	return value, nil
}

// SetTag replaces every record under rawKey with a single record
// holding value, then persists and flushes. Deletion removes the
// contiguous run of records with the exact identifier; records under
// any other identifier are untouched.
func (a *Adapter) SetTag(rawKey, value string) error {
	if err := a.ready(); err != nil {
		return err
	}
	rec, ds, err := iim.ParseKey(rawKey)
	if err != nil {
		return err
	}
	a.records.DeleteAll(rec, ds)
	a.records.Add(iim.Record{Record: rec, Dataset: ds, Value: value})
	return a.flush()
}

// ExportDocument builds a fresh canonical document from the in-memory
// record set. For each distinct identifier, in identifier order: the
// label is the library tag name, or the raw identifier itself when the
// library has no name for it; values keep storage order and are
// deduplicated first-occurrence-first; the field becomes a list when
// more than one distinct value remains or the dictionary flags the
// label multi-valued, and a scalar otherwise. When two identifiers
// resolve to the same label the later one wins.
func (a *Adapter) ExportDocument() (Document, error) {
	if err := a.ready(); err != nil {
		return Document{}, err
	}
	section := make(map[string]Value)
	for _, run := range a.records.Runs() {
		label := iim.TagName(run.Record, run.Dataset)
		if label == "" {
			label = run.Key()
		}
		uniq := dedupe(run.Values)
		if len(uniq) > 1 || a.dict.IsMulti(label) {
			section[label] = List(uniq...)
		} else {
			section[label] = Scalar(uniq[0])
		}
	}
	return Document{IPTC: section}, nil
}

// ImportDocument applies the document's IPTC section to the record set
// and flushes once for the whole batch. A document without the section
// is a no-op. Labels the dictionary does not recognize are skipped
// silently; for each recognized label the existing run is erased and
// one record is added per element.
func (a *Adapter) ImportDocument(doc Document) error {
	if err := a.ready(); err != nil {
		return err
	}
	if doc.IPTC == nil {
		return nil
	}

	labels := make([]string, 0, len(doc.IPTC))
	for label := range doc.IPTC {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		rawKey, ok := a.dict.RawKey(label)
		if !ok {
			continue
		}
		rec, ds, err := iim.ParseKey(rawKey)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", label, err)
		}
		a.records.DeleteAll(rec, ds)
		for _, v := range doc.IPTC[label].Strings() {
			a.records.Add(iim.Record{Record: rec, Dataset: ds, Value: v})
		}
	}
	return a.flush()
}

func (a *Adapter) flush() error {
	if err := a.file.Flush(a.records); err != nil {
		return &WriteError{Path: a.file.Path(), Err: err}
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	uniq := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	return uniq
}
