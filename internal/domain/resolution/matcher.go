package resolution

import "strings"

// SourceRecord is the engine's view of one transactional-directory row to be
// matched against the reference dataset. PrimaryID and SecondaryID are the
// two independently generated identifiers, either of which may equal the
// reference side's cross-reference id.
type SourceRecord struct {
	ID            string
	Name          string
	PrimaryID     string
	SecondaryID   string
	Address       string
	Zip           string
	AlreadyLinked bool
}

// Strategy identifies which cascade step produced a match.
type Strategy string

const (
	StrategyPrimaryID   Strategy = "primary_id"
	StrategySecondaryID Strategy = "secondary_id"
	StrategyAddress     Strategy = "address"
)

// Confidence is the qualitative strength tier of a match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchResult links one source record to one reference record. At most one
// result exists per source record; the first successful strategy wins.
type MatchResult struct {
	SourceID      string
	SourceName    string
	ReferenceID   string
	ReferenceName string
	Strategy      Strategy
	Confidence    Confidence

	// Evidence records the field values that produced the match, for audit.
	Evidence map[string]string
}

// UnmatchedReasons is the diagnostic breakdown for records that matched
// nothing. Each unmatched record counts in exactly one bucket; already
// linked takes precedence over the identifier buckets.
type UnmatchedReasons struct {
	AlreadyLinked            int `json:"already_linked"`
	MissingIdentifier        int `json:"missing_identifier"`
	IdentifierNotInReference int `json:"identifier_not_in_reference"`
}

// MatchStats summarizes one matching run.
type MatchStats struct {
	SourcesScanned  int              `json:"sources_scanned"`
	Matched         int              `json:"matched"`
	Unmatched       int              `json:"unmatched"`
	ByStrategy      map[Strategy]int `json:"by_strategy"`
	UnmatchedReason UnmatchedReasons `json:"unmatched_reasons"`
}

// Matcher cascades through match strategies against an identity index.
type Matcher struct {
	index  *IdentityIndex
	policy MatchPolicy
}

// NewMatcher creates a matcher over a built identity index.
func NewMatcher(index *IdentityIndex, policy MatchPolicy) *Matcher {
	return &Matcher{index: index, policy: policy}
}

// Match runs the strategy cascade for one source record and returns the
// first hit, or nil when no strategy matches. Records already linked never
// match; they only count toward the diagnostic breakdown.
func (m *Matcher) Match(src SourceRecord) *MatchResult {
	if src.AlreadyLinked {
		return nil
	}
	if ref := m.lookupIdentifier(src.PrimaryID); ref != nil {
		return m.result(src, ref, StrategyPrimaryID, ConfidenceHigh, map[string]string{
			"primary_id": strings.TrimSpace(src.PrimaryID),
		})
	}
	if ref := m.lookupIdentifier(src.SecondaryID); ref != nil {
		return m.result(src, ref, StrategySecondaryID, ConfidenceHigh, map[string]string{
			"secondary_id": strings.TrimSpace(src.SecondaryID),
		})
	}

	addr := NormalizeAddress(src.Address)
	if ref := m.index.LookupAddress(addr); ref != nil {
		return m.result(src, ref, StrategyAddress, ConfidenceMedium, map[string]string{
			"address": addr,
		})
	}

	return nil
}

// MatchAll matches every source record in order and returns the results
// plus the diagnostic breakdown.
func (m *Matcher) MatchAll(sources []SourceRecord) ([]MatchResult, MatchStats) {
	stats := MatchStats{
		SourcesScanned: len(sources),
		ByStrategy:     make(map[Strategy]int),
	}
	results := make([]MatchResult, 0, len(sources))

	for _, src := range sources {
		if res := m.Match(src); res != nil {
			results = append(results, *res)
			stats.Matched++
			stats.ByStrategy[res.Strategy]++
			continue
		}

		stats.Unmatched++
		switch {
		case src.AlreadyLinked:
			stats.UnmatchedReason.AlreadyLinked++
		case strings.TrimSpace(src.PrimaryID) == "" && strings.TrimSpace(src.SecondaryID) == "":
			stats.UnmatchedReason.MissingIdentifier++
		default:
			stats.UnmatchedReason.IdentifierNotInReference++
		}
	}

	return results, stats
}

// lookupIdentifier checks one source identifier against the reference
// cross-reference map, then against the reference's own account-id map.
func (m *Matcher) lookupIdentifier(id string) *ReferenceRecord {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	if ref := m.index.LookupCrossRef(id); ref != nil {
		return ref
	}
	return m.index.LookupAccountID(id)
}

func (m *Matcher) result(src SourceRecord, ref *ReferenceRecord, strategy Strategy, confidence Confidence, evidence map[string]string) *MatchResult {
	return &MatchResult{
		SourceID:      src.ID,
		SourceName:    src.Name,
		ReferenceID:   ref.ID,
		ReferenceName: ref.Name,
		Strategy:      strategy,
		Confidence:    confidence,
		Evidence:      evidence,
	}
}

// TieBreakFields carries the pre-normalized comparison fields of one side of
// a candidate scoring decision.
type TieBreakFields struct {
	Name    string
	Address string
	Zip     string
}

// Score computes the weighted tie-break score between a source and one
// candidate when a lookup key returns several candidates. Exact name
// equality also satisfies containment, so it earns both weights, matching
// the observed production policy.
func (p MatchPolicy) Score(src, candidate TieBreakFields) int {
	score := 0
	if src.Name != "" && candidate.Name != "" {
		if src.Name == candidate.Name {
			score += p.ScoreExactName
		}
		if strings.Contains(src.Name, candidate.Name) || strings.Contains(candidate.Name, src.Name) {
			score += p.ScoreNameContainment
		}
	}
	if src.Address != "" && src.Address == candidate.Address {
		score += p.ScoreExactAddress
	}
	if src.Zip != "" && src.Zip == candidate.Zip {
		score += p.ScoreZipMatch
	}
	return score
}
