package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testDomains = map[string]string{
	"actcorp.in": "ACT Fibernet",
	"ril.com":    "Reliance Jio",
}

func TestLookupOperator(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		want    string
		outcome LookupOutcome
	}{
		{"known domain", "a@actcorp.in", "ACT Fibernet", OperatorMatched},
		{"another known domain", "noc.team@ril.com", "Reliance Jio", OperatorMatched},
		{"unknown domain", "a@unknown.org", "", OperatorUnknownDomain},
		{"no at sign", "not-an-email", "", OperatorMalformedEmail},
		{"empty email", "", "", OperatorMalformedEmail},
		{"double at sign keeps middle part", "a@b@actcorp.in", "", OperatorUnknownDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LookupOperator(testDomains, tt.email)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, tt.outcome, got.Outcome)
		})
	}
}

func TestLookupOutcome_String(t *testing.T) {
	assert.Equal(t, "matched", OperatorMatched.String())
	assert.Equal(t, "unknown_domain", OperatorUnknownDomain.String())
	assert.Equal(t, "malformed_email", OperatorMalformedEmail.String())
}
