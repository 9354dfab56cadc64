package domain

import "strings"

// Outcome classifies a returned item.
type Outcome string

const (
	OutcomeOK      Outcome = "OK"
	OutcomeDamaged Outcome = "DAÑADO"
	OutcomeMissing Outcome = "FALTANTE"
	// OutcomeNotReviewed is derived locally and never sent to the backend.
	OutcomeNotReviewed Outcome = "NO_REVISADO"
)

// legacy labels written by older backend builds
var legacyOutcomes = map[string]Outcome{
	"DANADO":  OutcomeDamaged,
	"PERDIDO": OutcomeMissing,
}

// ParseOutcome normalizes a submitted or stored outcome.
func ParseOutcome(raw string) (Outcome, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch Outcome(value) {
	case OutcomeOK, OutcomeDamaged, OutcomeMissing:
		return Outcome(value), nil
	}
	if legacy, ok := legacyOutcomes[strings.ReplaceAll(value, "Ñ", "N")]; ok {
		return legacy, nil
	}
	return "", ErrInvalidOutcome
}

// RaisesIncident reports whether the backend opens an incident for this outcome.
func (o Outcome) RaisesIncident() bool {
	return o == OutcomeDamaged || o == OutcomeMissing
}
