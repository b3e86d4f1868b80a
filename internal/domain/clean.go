package domain

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// SubmittedTimeLayout is the only accepted submission timestamp format,
// 12-hour month/day/year as the portal emits it. A row that deviates is a
// data-quality failure, not a fallback case.
const SubmittedTimeLayout = "1/2/2006 3:04:05 PM"

// normalizedTimeLayout is the ISO-8601 form derived rows carry.
const normalizedTimeLayout = "2006-01-02T15:04:05"

// ParseSubmissionTime parses a submission timestamp against the strict layout.
func ParseSubmissionTime(s string) (time.Time, error) {
	t, err := time.Parse(SubmittedTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("submission time %q does not match %q: %w", s, SubmittedTimeLayout, err)
	}
	return t, nil
}

// SegmentRow is one deduplicated (segment, application) pair with geometry
// dropped, used for aggregate cable-length analysis.
type SegmentRow struct {
	SegmentID     string  `csv:"segment_id"`
	SubmittedTime string  `csv:"application_submitted_time"`
	SegmentLength float64 `csv:"segment_length"`
	CableLength   float64 `csv:"ofc_cable_length"`
	Company       string  `csv:"company"`
	NumberOfPits  int     `csv:"number_of_pits"`
	WardName      string  `csv:"ward_name"`

	// ApplicationID is the second half of the dedup key; it is not a summary
	// column.
	ApplicationID string `csv:"-"`
}

// SpreadRow is one deduplicated (geometry, segment) pair with geometry kept,
// used for spatial spread analysis.
type SpreadRow struct {
	Geometry      orb.LineString
	Company       string
	StreetName    string
	SubmittedTime string
	SegmentID     string
}

// DedupeSegments keeps the first record per (segment_id, application_id)
// pair and reports how many were dropped. Input order decides which record
// wins; the collector reads raw files in sorted name order, so the choice is
// deterministic across runs.
func DedupeSegments(records []PermitRecord) ([]PermitRecord, int) {
	seen := make(map[[2]string]struct{}, len(records))
	kept := make([]PermitRecord, 0, len(records))
	for _, r := range records {
		key := [2]string{r.SegmentID, r.ApplicationID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}

// DedupeSpread keeps the first record per (geometry, segment_id) pair, so
// every distinct physical line string of a segment survives even when it
// appears under multiple applications. Geometry is keyed by its WKT form.
func DedupeSpread(records []PermitRecord) ([]PermitRecord, int) {
	seen := make(map[string]struct{}, len(records))
	kept := make([]PermitRecord, 0, len(records))
	for _, r := range records {
		key := wkt.MarshalString(r.Geometry) + "|" + r.SegmentID
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}

// BuildSegmentRow derives a segment summary row from a deduplicated record:
// operator from the email domain, normalized timestamp, numeric casts.
func BuildSegmentRow(rec PermitRecord, domains map[string]string) (SegmentRow, OperatorLookup, error) {
	lookup := LookupOperator(domains, rec.EmailID)

	submitted, err := ParseSubmissionTime(rec.SubmittedDate)
	if err != nil {
		return SegmentRow{}, lookup, err
	}
	cable, err := strconv.ParseFloat(rec.OFCCableLength, 64)
	if err != nil {
		return SegmentRow{}, lookup, fmt.Errorf("segment %s: cable length %q: %w", rec.SegmentID, rec.OFCCableLength, err)
	}
	segLen, err := strconv.ParseFloat(rec.SegmentLength, 64)
	if err != nil {
		return SegmentRow{}, lookup, fmt.Errorf("segment %s: segment length %q: %w", rec.SegmentID, rec.SegmentLength, err)
	}
	pits, err := strconv.Atoi(rec.NumberOfPits)
	if err != nil {
		return SegmentRow{}, lookup, fmt.Errorf("segment %s: pit count %q: %w", rec.SegmentID, rec.NumberOfPits, err)
	}

	return SegmentRow{
		SegmentID:     rec.SegmentID,
		SubmittedTime: submitted.Format(normalizedTimeLayout),
		SegmentLength: segLen,
		CableLength:   cable,
		Company:       lookup.Name,
		NumberOfPits:  pits,
		WardName:      rec.WardName,
		ApplicationID: rec.ApplicationID,
	}, lookup, nil
}

// BuildSpreadRow derives a spread row from a deduplicated record.
func BuildSpreadRow(rec PermitRecord, domains map[string]string) (SpreadRow, OperatorLookup, error) {
	lookup := LookupOperator(domains, rec.EmailID)

	submitted, err := ParseSubmissionTime(rec.SubmittedDate)
	if err != nil {
		return SpreadRow{}, lookup, err
	}

	return SpreadRow{
		Geometry:      rec.Geometry,
		Company:       lookup.Name,
		StreetName:    rec.StreetName,
		SubmittedTime: submitted.Format(normalizedTimeLayout),
		SegmentID:     rec.SegmentID,
	}, lookup, nil
}

// OperatorTotal is the total deduplicated cable length attributed to one
// operator.
type OperatorTotal struct {
	Company     string
	CableLength float64
}

// TotalCableByOperator sums cable length per mapped operator over the segment
// view, sorted by company name. Rows without a company are excluded from the
// totals but are still present in the view itself.
func TotalCableByOperator(rows []SegmentRow) []OperatorTotal {
	sums := make(map[string]float64)
	for _, r := range rows {
		if r.Company == "" {
			continue
		}
		sums[r.Company] += r.CableLength
	}

	totals := make([]OperatorTotal, 0, len(sums))
	for company, length := range sums {
		totals = append(totals, OperatorTotal{Company: company, CableLength: length})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Company < totals[j].Company })
	return totals
}

// CableExceedsSegment returns the rows whose recorded cable length is greater
// than the recorded segment length. The meaning upstream is unresolved, so
// the rows are surfaced rather than rejected.
func CableExceedsSegment(rows []SegmentRow) []SegmentRow {
	var anomalies []SegmentRow
	for _, r := range rows {
		if r.CableLength > r.SegmentLength {
			anomalies = append(anomalies, r)
		}
	}
	return anomalies
}
