package lead

// Stage is the position of a lead in the sales funnel.
type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageQualified Stage = "qualified"
	StageProposal  Stage = "proposal"
	StageWon       Stage = "won"
	StageLost      Stage = "lost"
)

// FunnelStages lists every stage in funnel order.
var FunnelStages = []Stage{StageNew, StageContacted, StageQualified, StageProposal, StageWon, StageLost}

func (s Stage) IsValid() bool {
	for _, st := range FunnelStages {
		if s == st {
			return true
		}
	}
	return false
}

func (s Stage) IsOpen() bool {
	return s.IsValid() && !s.IsFinal()
}

func (s Stage) IsFinal() bool {
	return s == StageWon || s == StageLost
}

func (s Stage) String() string {
	return string(s)
}
