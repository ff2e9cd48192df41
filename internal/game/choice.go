package game

// abstentionValue is what a missing submission adds to the target sum.
const abstentionValue = -1

// Choice is a player's submission for one round. The zero value is an
// abstention, which is never confused with a submitted number.
type Choice struct {
	value     float64
	submitted bool
}

func Submitted(value float64) Choice {
	return Choice{value: value, submitted: true}
}

func Abstained() Choice {
	return Choice{}
}

// Value reports the submitted number, or false for an abstention.
func (c Choice) Value() (float64, bool) {
	return c.value, c.submitted
}

func (c Choice) IsSubmitted() bool {
	return c.submitted
}

func (c Choice) sumTerm() float64 {
	if !c.submitted {
		return abstentionValue
	}
	return c.value
}
