package domain

import "strings"

// LookupOutcome classifies an operator lookup so reports can tell an email
// without "@" apart from a domain the table simply does not know.
type LookupOutcome int

const (
	OperatorMatched LookupOutcome = iota
	OperatorUnknownDomain
	OperatorMalformedEmail
)

func (o LookupOutcome) String() string {
	switch o {
	case OperatorMatched:
		return "matched"
	case OperatorUnknownDomain:
		return "unknown_domain"
	case OperatorMalformedEmail:
		return "malformed_email"
	default:
		return "unknown"
	}
}

// OperatorLookup is the result of mapping an applicant email to an operator.
// Name is empty unless Outcome is OperatorMatched.
type OperatorLookup struct {
	Name    string
	Outcome LookupOutcome
}

// LookupOperator maps an applicant email to an operator display name through
// the domain table. Both failure modes are normal outcomes, not errors.
func LookupOperator(domains map[string]string, email string) OperatorLookup {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return OperatorLookup{Outcome: OperatorMalformedEmail}
	}
	name, ok := domains[parts[1]]
	if !ok {
		return OperatorLookup{Outcome: OperatorUnknownDomain}
	}
	return OperatorLookup{Name: name, Outcome: OperatorMatched}
}
