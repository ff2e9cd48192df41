package game

import (
	"math"
	"strconv"
)

const (
	TargetFactor     = 0.8
	GambitThreshold  = 75
	ImmunityBonus    = 0.5
	StandardPenalty  = 1
	DoubledPenalty   = 2
	EliminationScore = -10

	// NoWinner is the winner name reported when nobody wins the round.
	NoWinner = "none"
)

type Outcome string

const (
	OutcomeWinner       Outcome = "winner"
	OutcomeImmune       Outcome = "immune"
	OutcomeDisqualified Outcome = "disqualified"
	OutcomePenalized    Outcome = "penalized"
	OutcomeAbstained    Outcome = "abstained"
)

// Entrant is an active player taking part in the round being resolved.
type Entrant struct {
	ID     string
	Name   string
	Score  float64
	Choice Choice
}

type ChoiceResult struct {
	PlayerID   string   `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Choice     *float64 `json:"choice"`
	Outcome    Outcome  `json:"outcome"`
	ScoreDelta float64  `json:"scoreDelta"`
}

// Result is the record of one resolved round. Target is empty when the
// round was decided without computing one.
type Result struct {
	Choices           []ChoiceResult `json:"choices"`
	Target            string         `json:"target"`
	WinnerName        string         `json:"winnerName"`
	EliminatedPlayers []string       `json:"eliminatedPlayers"`
	Penalty           int            `json:"penalty"`
	Rules             RuleSet        `json:"rules"`
}

// Settlement is the score an entrant ends the round with.
type Settlement struct {
	PlayerID   string
	Score      float64
	Eliminated bool
}

type resolution struct {
	entrants     []Entrant
	rules        RuleSet
	target       float64
	hasTarget    bool
	winner       int
	immune       int
	disqualified map[int]bool
	penalty      int
}

// Resolve decides a round for the given active players. The rules applied
// are the ones in force for len(entrants) players. Entrant order is kept in
// the returned record.
func Resolve(entrants []Entrant) (Result, []Settlement) {
	if len(entrants) == 0 {
		return Result{}, nil
	}
	r := &resolution{
		entrants:     entrants,
		rules:        RulesFor(len(entrants)),
		winner:       -1,
		immune:       -1,
		disqualified: make(map[int]bool),
		penalty:      StandardPenalty,
	}
	if !r.duel() {
		r.gambit()
		r.invalidateTies()
		r.computeTarget()
		r.pickWinner()
		r.doublePenalty()
	}
	return r.settle()
}

// duel handles the exact 0 against 100 case of a two-player round.
func (r *resolution) duel() bool {
	if !r.rules.Has(RuleZeroVsHundred) || len(r.entrants) != 2 {
		return false
	}
	a, aok := r.entrants[0].Choice.Value()
	b, bok := r.entrants[1].Choice.Value()
	if !aok || !bok {
		return false
	}
	switch {
	case a == 0 && b == 100:
		r.winner = 1
	case a == 100 && b == 0:
		r.winner = 0
	default:
		return false
	}
	return true
}

func (r *resolution) gambit() {
	if !r.rules.Has(RuleHighNumberGambit) {
		return
	}
	var gamblers []int
	for i, entrant := range r.entrants {
		if value, ok := entrant.Choice.Value(); ok && value >= GambitThreshold {
			gamblers = append(gamblers, i)
		}
	}
	switch len(gamblers) {
	case 0:
	case 1:
		r.immune = gamblers[0]
	default:
		for _, i := range gamblers {
			r.disqualified[i] = true
		}
	}
}

func (r *resolution) invalidateTies() {
	if !r.rules.Has(RuleTieInvalid) {
		return
	}
	counts := make(map[float64]int, len(r.entrants))
	for _, entrant := range r.entrants {
		if value, ok := entrant.Choice.Value(); ok {
			counts[value]++
		}
	}
	for i, entrant := range r.entrants {
		if value, ok := entrant.Choice.Value(); ok && counts[value] > 1 {
			r.disqualified[i] = true
		}
	}
}

// computeTarget always averages over every entrant, disqualified or not.
func (r *resolution) computeTarget() {
	sum := 0.0
	for _, entrant := range r.entrants {
		sum += entrant.Choice.sumTerm()
	}
	r.target = sum / float64(len(r.entrants)) * TargetFactor
	r.hasTarget = true
}

func (r *resolution) candidate(i int) bool {
	return r.entrants[i].Choice.IsSubmitted() && i != r.immune && !r.disqualified[i]
}

func (r *resolution) pickWinner() {
	best := math.Inf(1)
	winner := -1
	tied := false
	for i, entrant := range r.entrants {
		if !r.candidate(i) {
			continue
		}
		value, _ := entrant.Choice.Value()
		distance := math.Abs(value - r.target)
		switch {
		case distance < best:
			best = distance
			winner = i
			tied = false
		case distance == best:
			tied = true
		}
	}
	if !tied {
		r.winner = winner
	}
}

func (r *resolution) doublePenalty() {
	if !r.rules.Has(RuleDoublePenalty) || r.winner < 0 {
		return
	}
	value, _ := r.entrants[r.winner].Choice.Value()
	if roundHalfUp(value) == roundHalfUp(r.target) {
		r.penalty = DoubledPenalty
	}
}

func (r *resolution) settle() (Result, []Settlement) {
	result := Result{
		Choices:           make([]ChoiceResult, 0, len(r.entrants)),
		WinnerName:        NoWinner,
		EliminatedPlayers: []string{},
		Penalty:           r.penalty,
		Rules:             r.rules,
	}
	if r.hasTarget {
		result.Target = strconv.FormatFloat(r.target, 'f', 2, 64)
	}
	if r.winner >= 0 {
		result.WinnerName = r.entrants[r.winner].Name
	}

	settlements := make([]Settlement, 0, len(r.entrants))
	for i, entrant := range r.entrants {
		delta, outcome := r.scoreChange(i)
		score := entrant.Score + delta
		eliminated := delta < 0 && score <= EliminationScore
		if eliminated {
			result.EliminatedPlayers = append(result.EliminatedPlayers, entrant.Name)
		}
		entry := ChoiceResult{
			PlayerID:   entrant.ID,
			PlayerName: entrant.Name,
			Outcome:    outcome,
			ScoreDelta: delta,
		}
		if value, ok := entrant.Choice.Value(); ok {
			entry.Choice = &value
		}
		result.Choices = append(result.Choices, entry)
		settlements = append(settlements, Settlement{
			PlayerID:   entrant.ID,
			Score:      score,
			Eliminated: eliminated,
		})
	}
	return result, settlements
}

func (r *resolution) scoreChange(i int) (float64, Outcome) {
	switch {
	case i == r.immune:
		return ImmunityBonus, OutcomeImmune
	case i == r.winner:
		return 0, OutcomeWinner
	}
	penalty := -float64(r.penalty)
	switch {
	case !r.entrants[i].Choice.IsSubmitted():
		return penalty, OutcomeAbstained
	case r.disqualified[i]:
		return penalty, OutcomeDisqualified
	default:
		return penalty, OutcomePenalized
	}
}

func roundHalfUp(value float64) float64 {
	return math.Floor(value + 0.5)
}
