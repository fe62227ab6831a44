package iim

import (
	"fmt"
	"strconv"
	"strings"
)

// IPTC-IIM record numbers handled by this package. Other record numbers
// are preserved verbatim but render hex key components.
const (
	RecordEnvelope    = 1
	RecordApplication = 2
)

// Application record (2) dataset names. Dataset numbers follow the
// IPTC-IIM 4.2 standard.
var application2Names = map[uint8]string{
	0:   "RecordVersion",
	3:   "ObjectTypeReference",
	4:   "ObjectAttributeReference",
	5:   "ObjectName",
	7:   "EditStatus",
	8:   "EditorialUpdate",
	10:  "Urgency",
	12:  "SubjectReference",
	15:  "Category",
	20:  "SupplementalCategories",
	22:  "FixtureIdentifier",
	25:  "Keywords",
	26:  "ContentLocationCode",
	27:  "ContentLocationName",
	30:  "ReleaseDate",
	35:  "ReleaseTime",
	37:  "ExpirationDate",
	38:  "ExpirationTime",
	40:  "SpecialInstructions",
	42:  "ActionAdvised",
	45:  "ReferenceService",
	47:  "ReferenceDate",
	50:  "ReferenceNumber",
	55:  "DateCreated",
	60:  "TimeCreated",
	62:  "DigitalCreationDate",
	63:  "DigitalCreationTime",
	65:  "OriginatingProgram",
	70:  "ProgramVersion",
	75:  "ObjectCycle",
	80:  "By-line",
	85:  "By-lineTitle",
	90:  "City",
	92:  "Sub-location",
	95:  "Province-State",
	100: "Country-PrimaryLocationCode",
	101: "Country-PrimaryLocationName",
	103: "OriginalTransmissionReference",
	105: "Headline",
	110: "Credit",
	115: "Source",
	116: "CopyrightNotice",
	118: "Contact",
	120: "Caption",
	121: "LocalCaption",
	122: "Writer-Editor",
	125: "RasterizedCaption",
	131: "ImageType",
	132: "ImageOrientation",
	135: "LanguageIdentifier",
}

// Envelope record (1) dataset names, kept so files carrying envelope
// records round-trip under readable keys.
var envelopeNames = map[uint8]string{
	0:   "ModelVersion",
	5:   "Destination",
	20:  "FileFormat",
	22:  "FileVersion",
	30:  "ServiceId",
	40:  "EnvelopeNumber",
	50:  "ProductId",
	60:  "EnvelopePriority",
	70:  "DateSent",
	80:  "TimeSent",
	90:  "CharacterSet",
	100: "UNO",
	120: "ARMId",
	122: "ARMVersion",
}

var (
	application2Datasets = invertNames(application2Names)
	envelopeDatasets     = invertNames(envelopeNames)
)

func invertNames(names map[uint8]string) map[string]uint8 {
	m := make(map[string]uint8, len(names))
	for ds, name := range names {
		m[name] = ds
	}
	return m
}

// TagName returns the library's name for a dataset, or "" when the
// dataset has no assigned name.
func TagName(record, dataset uint8) string {
	switch record {
	case RecordEnvelope:
		return envelopeNames[dataset]
	case RecordApplication:
		return application2Names[dataset]
	}
	return ""
}

func recordName(record uint8) string {
	switch record {
	case RecordEnvelope:
		return "Envelope"
	case RecordApplication:
		return "Application2"
	}
	return fmt.Sprintf("0x%02x", record)
}

// DatasetKey renders the canonical dotted key for an identifier, e.g.
// "Iptc.Application2.Keywords". Unnamed datasets render in hex, e.g.
// "Iptc.Application2.0x00c8".
func DatasetKey(record, dataset uint8) string {
	name := TagName(record, dataset)
	if name == "" {
		name = fmt.Sprintf("0x%04x", dataset)
	}
	return "Iptc." + recordName(record) + "." + name
}

// ParseKey inverts DatasetKey. Both named and hex components are
// accepted. Returns ErrUnknownKey for anything else.
func ParseKey(key string) (record, dataset uint8, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "Iptc" {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	var datasets map[string]uint8
	switch parts[1] {
	case "Envelope":
		record = RecordEnvelope
		datasets = envelopeDatasets
	case "Application2":
		record = RecordApplication
		datasets = application2Datasets
	default:
		n, perr := parseHexComponent(parts[1], 0xff)
		if perr != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		record = uint8(n)
	}

	if datasets != nil {
		if ds, ok := datasets[parts[2]]; ok {
			return record, ds, nil
		}
	}
	n, perr := parseHexComponent(parts[2], 0xff)
	if perr != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return record, uint8(n), nil
}

func parseHexComponent(s string, max uint64) (uint64, error) {
	if !strings.HasPrefix(s, "0x") {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseUint(s[2:], 16, 16)
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, strconv.ErrRange
	}
	return n, nil
}
