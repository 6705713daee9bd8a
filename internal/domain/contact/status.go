package contact

type Status string

const (
	StatusLead     Status = "lead"
	StatusCustomer Status = "customer"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusLead, StatusCustomer, StatusInactive:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
