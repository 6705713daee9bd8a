package deal

type Status string

const (
	StatusOpen      Status = "open"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusWon, StatusLost, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsFinal() bool {
	return s == StatusWon || s == StatusLost || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}
