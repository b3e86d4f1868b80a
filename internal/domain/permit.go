package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// envelope is the ASP.NET wrapper both endpoints use: the payload of interest
// is a JSON document encoded as a string in the "d" field.
type envelope struct {
	D string `json:"d"`
}

// DecodeEnvelope unwraps the outer envelope and returns the inner JSON bytes.
func DecodeEnvelope(body []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return []byte(env.D), nil
}

// flexString decodes either a JSON string or a JSON number into its textual
// form. The portal is inconsistent about which one it emits per column.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// permitRow is the shape GetOFCData returns inside its envelope.
type permitRow struct {
	SegmentID        flexString `json:"SegmentID"`
	StreetName       string     `json:"StreetName"`
	ApplicationID    flexString `json:"ApplicationId"`
	SubmittedDate    string     `json:"ApplicationsubmittedDate"`
	EmailID          string     `json:"EmailId"`
	OFCCableLength   flexString `json:"OFCcableLength"`
	NumberOfPits     flexString `json:"NumberOfPits"`
	AuthorizedPerson string     `json:"NameofAuthorizedPerson"`
	SegmentLength    flexString `json:"SegmentLength"`
	WardName         string     `json:"WardName"`
	ZoneName         string     `json:"ZoneName"`
	ShapeCoordinates string     `json:"Shape_Coordinates"`
}

// PermitRecord is one permit feature: the properties as the portal reports
// them (numeric casts happen in the cleaning stage) plus the segment-portion
// geometry.
type PermitRecord struct {
	SegmentID        string
	StreetName       string
	ApplicationID    string
	SubmittedDate    string
	EmailID          string
	OFCCableLength   string
	NumberOfPits     string
	AuthorizedPerson string
	SegmentLength    string
	WardName         string
	ZoneName         string
	Geometry         orb.LineString
}

// ParsePermitRows decodes the inner permit list of one ward. The coordinate
// list of each row is itself a JSON-encoded string.
func ParsePermitRows(inner []byte) ([]PermitRecord, error) {
	var rows []permitRow
	if err := json.Unmarshal(inner, &rows); err != nil {
		return nil, fmt.Errorf("parse permit rows: %w", err)
	}

	records := make([]PermitRecord, 0, len(rows))
	for i, r := range rows {
		var coords [][]float64
		if err := json.Unmarshal([]byte(r.ShapeCoordinates), &coords); err != nil {
			return nil, fmt.Errorf("row %d: parse shape coordinates: %w", i, err)
		}
		line := make(orb.LineString, 0, len(coords))
		for _, c := range coords {
			if len(c) < 2 {
				return nil, fmt.Errorf("row %d: coordinate pair has %d values", i, len(c))
			}
			line = append(line, orb.Point{c[0], c[1]})
		}

		records = append(records, PermitRecord{
			SegmentID:        string(r.SegmentID),
			StreetName:       r.StreetName,
			ApplicationID:    string(r.ApplicationID),
			SubmittedDate:    r.SubmittedDate,
			EmailID:          r.EmailID,
			OFCCableLength:   string(r.OFCCableLength),
			NumberOfPits:     string(r.NumberOfPits),
			AuthorizedPerson: r.AuthorizedPerson,
			SegmentLength:    string(r.SegmentLength),
			WardName:         r.WardName,
			ZoneName:         r.ZoneName,
			Geometry:         line,
		})
	}
	return records, nil
}

// Feature converts the record into a GeoJSON feature for the consolidated
// collection.
func (p PermitRecord) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.Geometry)
	f.Properties = geojson.Properties{
		"segment_id":                 p.SegmentID,
		"street_name":                p.StreetName,
		"application_id":             p.ApplicationID,
		"application_submitted_date": p.SubmittedDate,
		"application_email_id":       p.EmailID,
		"ofc_cable_length":           p.OFCCableLength,
		"number_of_pits":             p.NumberOfPits,
		"authorized_person":          p.AuthorizedPerson,
		"segment_length":             p.SegmentLength,
		"ward_name":                  p.WardName,
		"zone_name":                  p.ZoneName,
	}
	return f
}

// PermitFromFeature is the inverse of [PermitRecord.Feature].
func PermitFromFeature(f *geojson.Feature) (PermitRecord, error) {
	line, ok := f.Geometry.(orb.LineString)
	if !ok {
		return PermitRecord{}, fmt.Errorf("feature geometry is %T, want LineString", f.Geometry)
	}
	p := f.Properties
	return PermitRecord{
		SegmentID:        propString(p, "segment_id"),
		StreetName:       propString(p, "street_name"),
		ApplicationID:    propString(p, "application_id"),
		SubmittedDate:    propString(p, "application_submitted_date"),
		EmailID:          propString(p, "application_email_id"),
		OFCCableLength:   propString(p, "ofc_cable_length"),
		NumberOfPits:     propString(p, "number_of_pits"),
		AuthorizedPerson: propString(p, "authorized_person"),
		SegmentLength:    propString(p, "segment_length"),
		WardName:         propString(p, "ward_name"),
		ZoneName:         propString(p, "zone_name"),
		Geometry:         line,
	}, nil
}

func propString(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
