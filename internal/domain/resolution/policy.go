package resolution

// MatchPolicy holds the matcher's tunable thresholds and tie-break weights.
// The values are business policy observed against labeled production data,
// not derived constants, so they ship as configuration with these defaults.
type MatchPolicy struct {
	// MinAddressKeyLen is the minimum normalized-address length for the
	// address-fallback index. Shorter addresses produce false positives.
	MinAddressKeyLen int

	// Tie-break weights applied when a lookup key returns several candidates.
	ScoreExactName       int
	ScoreNameContainment int
	ScoreExactAddress    int
	ScoreZipMatch        int
}

// DefaultMatchPolicy returns the production policy.
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		MinAddressKeyLen:     5,
		ScoreExactName:       5,
		ScoreNameContainment: 3,
		ScoreExactAddress:    2,
		ScoreZipMatch:        1,
	}
}
