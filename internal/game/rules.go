package game

import "slices"

type Rule string

const (
	RuleZeroVsHundred    Rule = "ZERO_VS_HUNDRED"
	RuleHighNumberGambit Rule = "HIGH_NUMBER_GAMBIT"
	RuleTieInvalid       Rule = "TIE_INVALID"
	RuleDoublePenalty    Rule = "DOUBLE_PENALTY"
)

// RuleSet is an ordered set of rules in force for one round.
type RuleSet []Rule

// RulesFor returns the rules for a round played by the given number of
// active players.
func RulesFor(active int) RuleSet {
	switch {
	case active == 2:
		return RuleSet{RuleZeroVsHundred}
	case active > 2:
		rules := RuleSet{RuleHighNumberGambit}
		if active <= 4 {
			rules = append(rules, RuleTieInvalid)
		}
		if active <= 3 {
			rules = append(rules, RuleDoublePenalty)
		}
		return rules
	default:
		return RuleSet{}
	}
}

func (s RuleSet) Has(rule Rule) bool {
	return slices.Contains(s, rule)
}

// Added returns the rules in s that prev does not contain, keeping the order of s.
func (s RuleSet) Added(prev RuleSet) RuleSet {
	added := RuleSet{}
	for _, rule := range s {
		if !prev.Has(rule) {
			added = append(added, rule)
		}
	}
	return added
}

func (s RuleSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, rule := range s {
		names = append(names, string(rule))
	}
	return names
}
