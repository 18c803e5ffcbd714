package signals

// Decide maps signal counts to an exposure action. The advance gate runs
// first; the retreat gate runs after it and overrides unconditionally, so a
// panel with many greens and many reds still retreats.
func Decide(greens, reds int, p Policy) Advice {
	advice := AdviceHold

	if greens >= p.AdvanceMinGreens && reds <= p.AdvanceMaxReds {
		advice = AdviceAdvance
	}
	if reds >= p.RetreatMinReds {
		advice = AdviceRetreat
	}

	return advice
}
