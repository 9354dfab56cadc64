package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOutcome(t *testing.T) {
	cases := map[string]Outcome{
		"OK":       OutcomeOK,
		" ok ":     OutcomeOK,
		"DAÑADO":   OutcomeDamaged,
		"dañado":   OutcomeDamaged,
		"Dañado":   OutcomeDamaged,
		"FALTANTE": OutcomeMissing,
		"Perdido":  OutcomeMissing,
	}
	for raw, want := range cases {
		got, err := ParseOutcome(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "NO_REVISADO", "roto"} {
		_, err := ParseOutcome(raw)
		require.ErrorIs(t, err, ErrInvalidOutcome, raw)
	}
}

func TestOutcomeRaisesIncident(t *testing.T) {
	require.False(t, OutcomeOK.RaisesIncident())
	require.True(t, OutcomeDamaged.RaisesIncident())
	require.True(t, OutcomeMissing.RaisesIncident())
	require.False(t, OutcomeNotReviewed.RaisesIncident())
}

func TestReturnGates(t *testing.T) {
	pending := &Return{ID: 1, Status: StatusPending}
	approved := &Return{ID: 2, Status: StatusApproved}

	require.NoError(t, pending.CanReview())
	require.ErrorIs(t, approved.CanReview(), ErrNotPending)

	require.ErrorIs(t, pending.CanApprove(false), ErrReviewIncomplete)
	require.NoError(t, pending.CanApprove(true))
	require.ErrorIs(t, approved.CanApprove(true), ErrNotPending)

	_, err := pending.CanReject("   ")
	require.ErrorIs(t, err, ErrReasonRequired)
	reason, err := pending.CanReject("  piezas rotas ")
	require.NoError(t, err)
	require.Equal(t, "piezas rotas", reason)
	_, err = approved.CanReject("tarde")
	require.ErrorIs(t, err, ErrNotPending)
}

func TestUnknownStatusIsNotPending(t *testing.T) {
	r := &Return{Status: Status(7)}
	require.False(t, r.IsPending())
	require.False(t, Status(7).IsTerminal())
	require.Equal(t, "UNKNOWN", Status(7).String())
}

func TestPhaseBusy(t *testing.T) {
	require.True(t, IsBusy(Reviewing{ItemID: 3}))
	require.True(t, IsBusy(Deciding{Action: DecisionApprove}))
	require.False(t, IsBusy(Loaded{}))
	require.False(t, IsBusy(NotFound{}))
}
