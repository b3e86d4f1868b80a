// Package domain models BBMP optical-fibre-cable permit data.
//
// # Data Source
//
// Permit records come from the Bruhat Bengaluru Mahanagara Palike (BBMP) road
// history portal. Two ASP.NET page methods are scraped: LoadWardByZone, which
// lists the wards of a zone, and GetOFCData, which lists the permit rows of a
// ward. Both answer with an envelope of the form
//
//	{"d": "<JSON document encoded as a string>"}
//
// so every payload has to be decoded twice. Permit rows carry a third level:
// the Shape_Coordinates field is itself a JSON-encoded list of
// [longitude, latitude] pairs forming a LineString.
//
// # Terminology
//
// A segment is a named length of roadway; it may be covered by several permit
// applications and several physical line strings. A segment portion is one
// contiguous line string of a segment's cabling. An application is one permit
// request and may span multiple segments. Because of this, neither SegmentID
// nor ApplicationId is unique across permit rows.
//
// # Submission timestamps
//
// ApplicationsubmittedDate uses 12-hour month/day/year notation, e.g.
// "1/2/2020 3:04:05 PM". The format is a hard contract: a row that deviates
// aborts the cleaning stage rather than being guessed at.
//
// # Operators
//
// The portal does not record which telecom company an application belongs to.
// The applicant email domain is the only signal, mapped through a fixed table
// (actcorp.in -> "ACT Fibernet", ril.com -> "Reliance Jio", ...). A missing
// "@" or an unlisted domain leaves the operator absent; both are normal
// outcomes, distinguished by [LookupOutcome] so reports can tell data gaps
// from table gaps.
//
// # Known data oddities
//
// Some rows record a cable length greater than the segment length. What that
// means upstream is unresolved, so such rows are counted and reported by
// [CableExceedsSegment] but never rejected.
package domain
