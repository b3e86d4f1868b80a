package domain

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permitFixture(segmentID, applicationID string, line orb.LineString) PermitRecord {
	return PermitRecord{
		SegmentID:      segmentID,
		StreetName:     "Old Airport Road",
		ApplicationID:  applicationID,
		SubmittedDate:  "1/2/2020 3:04:05 PM",
		EmailID:        "a@actcorp.in",
		OFCCableLength: "120.5",
		NumberOfPits:   "4",
		SegmentLength:  "100",
		WardName:       "Domlur",
		ZoneName:       "East",
		Geometry:       line,
	}
}

var (
	lineA = orb.LineString{{77.68, 12.92}, {77.69, 12.93}}
	lineB = orb.LineString{{77.50, 13.01}, {77.51, 13.02}}
)

func TestParseSubmissionTime(t *testing.T) {
	t.Run("strict format parses", func(t *testing.T) {
		got, err := ParseSubmissionTime("1/2/2020 3:04:05 PM")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2020, 1, 2, 15, 4, 5, 0, time.UTC), got)
	})

	t.Run("padded digits parse too", func(t *testing.T) {
		got, err := ParseSubmissionTime("01/02/2020 03:04:05 PM")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2020, 1, 2, 15, 4, 5, 0, time.UTC), got)
	})

	t.Run("anything else fails", func(t *testing.T) {
		for _, bad := range []string{"2020-01-02 15:04:05", "1/2/2020 15:04:05", "1/2/2020", ""} {
			_, err := ParseSubmissionTime(bad)
			require.Error(t, err, bad)
			assert.Contains(t, err.Error(), "does not match")
		}
	})
}

func TestDedupeSegments(t *testing.T) {
	first := permitFixture("S1", "A1", lineA)
	duplicate := permitFixture("S1", "A1", lineB) // same pair, different geometry
	duplicate.WardName = "Other"
	other := permitFixture("S2", "A1", lineA)

	kept, dropped := DedupeSegments([]PermitRecord{first, duplicate, other})

	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	// First occurrence wins.
	assert.Equal(t, "Domlur", kept[0].WardName)

	seen := map[[2]string]bool{}
	for _, r := range kept {
		key := [2]string{r.SegmentID, r.ApplicationID}
		assert.False(t, seen[key], "duplicate pair %v", key)
		seen[key] = true
	}
}

func TestDedupeSpread(t *testing.T) {
	a := permitFixture("S1", "A1", lineA)
	sameShapeOtherApp := permitFixture("S1", "A2", lineA) // exact duplicate portion
	otherShape := permitFixture("S1", "A1", lineB)
	otherSegment := permitFixture("S2", "A1", lineA)

	kept, dropped := DedupeSpread([]PermitRecord{a, sameShapeOtherApp, otherShape, otherSegment})

	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 3)
	// Every distinct geometry under a segment survives.
	assert.Equal(t, lineA, kept[0].Geometry)
	assert.Equal(t, lineB, kept[1].Geometry)
	assert.Equal(t, "S2", kept[2].SegmentID)
}

func TestBuildSegmentRow(t *testing.T) {
	t.Run("casts and enriches", func(t *testing.T) {
		row, lookup, err := BuildSegmentRow(permitFixture("S1", "A1", lineA), testDomains)

		require.NoError(t, err)
		assert.Equal(t, OperatorMatched, lookup.Outcome)
		assert.Equal(t, SegmentRow{
			SegmentID:     "S1",
			SubmittedTime: "2020-01-02T15:04:05",
			SegmentLength: 100,
			CableLength:   120.5,
			Company:       "ACT Fibernet",
			NumberOfPits:  4,
			WardName:      "Domlur",
			ApplicationID: "A1",
		}, row)
	})

	t.Run("unmapped email keeps the row", func(t *testing.T) {
		rec := permitFixture("S1", "A1", lineA)
		rec.EmailID = "a@unknown.org"

		row, lookup, err := BuildSegmentRow(rec, testDomains)
		require.NoError(t, err)
		assert.Equal(t, OperatorUnknownDomain, lookup.Outcome)
		assert.Empty(t, row.Company)
	})

	t.Run("bad timestamp is fatal", func(t *testing.T) {
		rec := permitFixture("S1", "A1", lineA)
		rec.SubmittedDate = "2nd Jan 2020"

		_, _, err := BuildSegmentRow(rec, testDomains)
		require.Error(t, err)
	})

	t.Run("bad cable length is fatal", func(t *testing.T) {
		rec := permitFixture("S1", "A1", lineA)
		rec.OFCCableLength = "n/a"

		_, _, err := BuildSegmentRow(rec, testDomains)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cable length")
	})
}

func TestBuildSpreadRow(t *testing.T) {
	row, lookup, err := BuildSpreadRow(permitFixture("S1", "A1", lineA), testDomains)

	require.NoError(t, err)
	assert.Equal(t, OperatorMatched, lookup.Outcome)
	assert.Equal(t, SpreadRow{
		Geometry:      lineA,
		Company:       "ACT Fibernet",
		StreetName:    "Old Airport Road",
		SubmittedTime: "2020-01-02T15:04:05",
		SegmentID:     "S1",
	}, row)
}

func TestTotalCableByOperator(t *testing.T) {
	rows := []SegmentRow{
		{Company: "ACT Fibernet", CableLength: 100},
		{Company: "Reliance Jio", CableLength: 40},
		{Company: "ACT Fibernet", CableLength: 20.5},
		{Company: "", CableLength: 999}, // absent operator excluded from totals
	}

	totals := TotalCableByOperator(rows)

	assert.Equal(t, []OperatorTotal{
		{Company: "ACT Fibernet", CableLength: 120.5},
		{Company: "Reliance Jio", CableLength: 40},
	}, totals)
}

func TestCableExceedsSegment(t *testing.T) {
	rows := []SegmentRow{
		{SegmentID: "ok", SegmentLength: 100, CableLength: 80},
		{SegmentID: "odd", SegmentLength: 100, CableLength: 120.5},
		{SegmentID: "equal", SegmentLength: 100, CableLength: 100},
	}

	anomalies := CableExceedsSegment(rows)

	require.Len(t, anomalies, 1)
	assert.Equal(t, "odd", anomalies[0].SegmentID)
}
