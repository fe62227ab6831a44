// Package iim reads and writes IPTC-IIM records embedded in JPEG files
// through the Photoshop APP13 image resource block. It models each
// dataset occurrence as an ordered record and keeps records grouped by
// identifier, so repeated fields form one contiguous run.
package iim

import "sort"

// Record is one dataset occurrence: the atomic metadata unit.
type Record struct {
	Record  uint8
	Dataset uint8
	Value   string
}

// Key renders the record's canonical dotted identifier.
func (r Record) Key() string {
	return DatasetKey(r.Record, r.Dataset)
}

func (r Record) ident() int {
	return int(r.Record)<<8 | int(r.Dataset)
}

// Run is a contiguous group of records sharing one identifier, with
// values in storage order.
type Run struct {
	Record  uint8
	Dataset uint8
	Values  []string
}

// Key renders the run's canonical dotted identifier.
func (r Run) Key() string {
	return DatasetKey(r.Record, r.Dataset)
}

// RecordSet is a mutable, ordered collection of records. Records are
// kept sorted by (record, dataset); records sharing an identifier keep
// their insertion order within the run.
type RecordSet struct {
	records []Record
}

// NewRecordSet builds a set from records in any order. The relative
// order of records sharing an identifier is preserved.
func NewRecordSet(records []Record) *RecordSet {
	rs := &RecordSet{records: append([]Record(nil), records...)}
	sort.SliceStable(rs.records, func(i, j int) bool {
		return rs.records[i].ident() < rs.records[j].ident()
	})
	return rs
}

// Len reports the number of records in the set.
func (s *RecordSet) Len() int {
	return len(s.records)
}

// Records returns a copy of the records in storage order.
func (s *RecordSet) Records() []Record {
	return append([]Record(nil), s.records...)
}

// runStart returns the index of the first record with the identifier,
// or the insertion point when none exists.
func (s *RecordSet) runStart(record, dataset uint8) int {
	ident := Record{Record: record, Dataset: dataset}.ident()
	return sort.Search(len(s.records), func(i int) bool {
		return s.records[i].ident() >= ident
	})
}

// First returns the first record value under the identifier, in storage
// order, and whether any record exists.
func (s *RecordSet) First(record, dataset uint8) (string, bool) {
	i := s.runStart(record, dataset)
	if i < len(s.records) && s.records[i].Record == record && s.records[i].Dataset == dataset {
		return s.records[i].Value, true
	}
	return "", false
}

// ValuesOf returns all values under the identifier in storage order.
func (s *RecordSet) ValuesOf(record, dataset uint8) []string {
	var values []string
	for i := s.runStart(record, dataset); i < len(s.records); i++ {
		if s.records[i].Record != record || s.records[i].Dataset != dataset {
			break
		}
		values = append(values, s.records[i].Value)
	}
	return values
}

// DeleteAll removes the contiguous run of records under the identifier
// and reports how many were removed. The walk stops at the first record
// whose identifier no longer matches.
func (s *RecordSet) DeleteAll(record, dataset uint8) int {
	start := s.runStart(record, dataset)
	end := start
	for end < len(s.records) && s.records[end].Record == record && s.records[end].Dataset == dataset {
		end++
	}
	if end == start {
		return 0
	}
	s.records = append(s.records[:start], s.records[end:]...)
	return end - start
}

// Add inserts a record at the end of its identifier's run, creating the
// run in sorted position when absent.
func (s *RecordSet) Add(r Record) {
	i := s.runStart(r.Record, r.Dataset)
	for i < len(s.records) && s.records[i].Record == r.Record && s.records[i].Dataset == r.Dataset {
		i++
	}
	s.records = append(s.records, Record{})
	copy(s.records[i+1:], s.records[i:])
	s.records[i] = r
}

// Runs returns the contiguous identifier groups in identifier-sorted
// order, values in storage order.
func (s *RecordSet) Runs() []Run {
	var runs []Run
	for i := 0; i < len(s.records); {
		r := s.records[i]
		run := Run{Record: r.Record, Dataset: r.Dataset}
		for i < len(s.records) && s.records[i].Record == r.Record && s.records[i].Dataset == r.Dataset {
			run.Values = append(run.Values, s.records[i].Value)
			i++
		}
		runs = append(runs, run)
	}
	return runs
}
