package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
)

func newTestLead(t *testing.T) *Lead {
	t.Helper()
	l, err := NewLead(7, "website", nil, money.New(250000, "ILS"), "")
	require.NoError(t, err)
	return l
}

func TestNewLead_Validation(t *testing.T) {
	_, err := NewLead(0, "website", nil, money.Zero("ILS"), "")
	assert.Error(t, err)

	_, err = NewLead(1, "website", nil, money.New(-1, "ILS"), "")
	assert.Error(t, err)
}

func TestLead_MoveTo(t *testing.T) {
	tests := []struct {
		name    string
		path    []Stage
		target  Stage
		reason  string
		wantErr bool
	}{
		{name: "forward", target: StageQualified},
		{name: "backward among open stages", path: []Stage{StageProposal}, target: StageContacted},
		{name: "win", path: []Stage{StageProposal}, target: StageWon},
		{name: "lost without reason", target: StageLost, wantErr: true},
		{name: "lost with reason", target: StageLost, reason: "too expensive"},
		{name: "reopen won", path: []Stage{StageWon}, target: StageNew, wantErr: true},
		{name: "unknown stage", target: "negotiation", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLead(t)
			for _, s := range tt.path {
				require.NoError(t, l.MoveTo(s, ""))
			}

			err := l.MoveTo(tt.target, tt.reason)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.target, l.Stage())
			if tt.target.IsFinal() {
				assert.NotNil(t, l.ClosedAt())
			}
			if tt.target == StageLost {
				assert.Equal(t, tt.reason, l.LostReason())
			}
		})
	}
}

func TestLead_MoveToSameStageIsNoop(t *testing.T) {
	l := newTestLead(t)
	require.NoError(t, l.MoveTo(StageWon, ""))
	assert.NoError(t, l.MoveTo(StageWon, ""))
}
