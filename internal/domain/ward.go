package domain

import (
	"encoding/json"
	"fmt"
)

// Ward identifies a municipal subdivision, the fetch key for permit data.
type Ward struct {
	ZoneID   string `csv:"zone_id" json:"zone_id"`
	ZoneName string `csv:"zone_name" json:"zone_name"`
	WardID   string `csv:"ward_id" json:"ward_id"`
	WardName string `csv:"ward_name" json:"ward_name"`
}

// wardRow is the shape LoadWardByZone returns inside its envelope.
type wardRow struct {
	ZoneName string     `json:"Zone_Name"`
	WardID   flexString `json:"Ward_Id"`
	WardName string     `json:"Ward_Name"`
}

// ParseWardRows decodes the inner ward list of one zone into Ward records.
func ParseWardRows(inner []byte, zoneID string) ([]Ward, error) {
	var rows []wardRow
	if err := json.Unmarshal(inner, &rows); err != nil {
		return nil, fmt.Errorf("parse ward rows: %w", err)
	}

	wards := make([]Ward, 0, len(rows))
	for _, r := range rows {
		wards = append(wards, Ward{
			ZoneID:   zoneID,
			ZoneName: r.ZoneName,
			WardID:   string(r.WardID),
			WardName: r.WardName,
		})
	}
	return wards, nil
}
