package billing

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// months returns the month step, or 0 for day-based frequencies.
func (f Frequency) months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	}
	return 0
}

// MonthlyFactor converts one charge into its monthly equivalent as a fraction num/den.
func (f Frequency) MonthlyFactor() (num, den int64) {
	switch f {
	case FrequencyWeekly:
		return 52, 12
	case FrequencyQuarterly:
		return 1, 3
	case FrequencyYearly:
		return 1, 12
	}
	return 1, 1
}

func (f Frequency) String() string { return string(f) }
