package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIdentityIndex(t *testing.T) {
	policy := DefaultMatchPolicy()
	records := []ReferenceRecord{
		{ID: "r1", AccountID: "ACME-1", CrossRefID: "X-100", Name: "acme", Address: "123 Main Street"},
		{ID: "r2", AccountID: "BETA-2", Name: "beta", Address: "500 Oak Avenue"},
		{ID: "r3", AccountID: "GAMMA-3", Name: "gamma", Address: "123 Main St"},
	}

	idx := BuildIdentityIndex(records, policy)

	accountIDs, crossRefs, addresses := idx.Sizes()
	assert.Equal(t, 3, accountIDs)
	assert.Equal(t, 1, crossRefs)
	// r1 and r3 normalize to the same address, so the key is ambiguous and
	// dropped; only r2's address survives.
	assert.Equal(t, 1, addresses)
	assert.Equal(t, 1, idx.AmbiguousAddresses)

	assert.Nil(t, idx.LookupAddress(NormalizeAddress("123 Main Street")))
	require.NotNil(t, idx.LookupAddress(NormalizeAddress("500 Oak Avenue")))
	assert.Equal(t, "r2", idx.LookupAddress(NormalizeAddress("500 Oak Avenue")).ID)
}

func TestBuildIdentityIndex_IDCollisionKeepsFirst(t *testing.T) {
	records := []ReferenceRecord{
		{ID: "r1", AccountID: "DUP-1"},
		{ID: "r2", AccountID: "DUP-1"},
	}

	idx := BuildIdentityIndex(records, DefaultMatchPolicy())

	ref := idx.LookupAccountID("DUP-1")
	require.NotNil(t, ref)
	assert.Equal(t, "r1", ref.ID)
}

func TestBuildIdentityIndex_ShortAddressNotIndexed(t *testing.T) {
	records := []ReferenceRecord{
		{ID: "r1", AccountID: "A-1", Address: "12 A"},
	}

	idx := BuildIdentityIndex(records, DefaultMatchPolicy())

	_, _, addresses := idx.Sizes()
	assert.Equal(t, 0, addresses)
	assert.Nil(t, idx.LookupAddress(NormalizeAddress("12 A")))
}

func TestMatcher_Match_PrimaryID(t *testing.T) {
	idx := BuildIdentityIndex([]ReferenceRecord{
		{ID: "r1", AccountID: "A-1", CrossRefID: "X-100", Name: "Acme"},
	}, DefaultMatchPolicy())
	m := NewMatcher(idx, DefaultMatchPolicy())

	res := m.Match(SourceRecord{ID: "s1", PrimaryID: "X-100"})

	require.NotNil(t, res)
	assert.Equal(t, "r1", res.ReferenceID)
	assert.Equal(t, StrategyPrimaryID, res.Strategy)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	assert.Equal(t, "X-100", res.Evidence["primary_id"])
}

// A reference row may carry the shared identifier in its own account-id
// column instead of the cross-reference column, and the source side may
// carry it in its secondary slot. The cascade still finds it.
func TestMatcher_Match_SecondaryIDAgainstAccountID(t *testing.T) {
	idx := BuildIdentityIndex([]ReferenceRecord{
		{ID: "r1", AccountID: "ACME-1", Name: "Acme"},
	}, DefaultMatchPolicy())
	m := NewMatcher(idx, DefaultMatchPolicy())

	res := m.Match(SourceRecord{ID: "s1", PrimaryID: "NOPE-9", SecondaryID: "ACME-1"})

	require.NotNil(t, res)
	assert.Equal(t, "r1", res.ReferenceID)
	assert.Equal(t, StrategySecondaryID, res.Strategy)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
}

func TestMatcher_Match_AddressFallback(t *testing.T) {
	idx := BuildIdentityIndex([]ReferenceRecord{
		{ID: "r1", AccountID: "A-1", Address: "123 Main Street"},
	}, DefaultMatchPolicy())
	m := NewMatcher(idx, DefaultMatchPolicy())

	res := m.Match(SourceRecord{ID: "s1", Address: "123 MAIN ST"})

	require.NotNil(t, res)
	assert.Equal(t, "r1", res.ReferenceID)
	assert.Equal(t, StrategyAddress, res.Strategy)
	assert.Equal(t, ConfidenceMedium, res.Confidence)
}

func TestMatcher_Match_CascadeOrder(t *testing.T) {
	// Identifier and address both resolve, but to different records; the
	// identifier wins because the cascade stops at the first hit.
	idx := BuildIdentityIndex([]ReferenceRecord{
		{ID: "r1", AccountID: "A-1"},
		{ID: "r2", AccountID: "A-2", Address: "123 Main Street"},
	}, DefaultMatchPolicy())
	m := NewMatcher(idx, DefaultMatchPolicy())

	res := m.Match(SourceRecord{ID: "s1", PrimaryID: "A-1", Address: "123 Main St"})

	require.NotNil(t, res)
	assert.Equal(t, "r1", res.ReferenceID)
	assert.Equal(t, StrategyPrimaryID, res.Strategy)
}

func TestMatcher_Match_NoHit(t *testing.T) {
	idx := BuildIdentityIndex(nil, DefaultMatchPolicy())
	m := NewMatcher(idx, DefaultMatchPolicy())

	assert.Nil(t, m.Match(SourceRecord{ID: "s1", PrimaryID: "A-1", Address: "123 Main St"}))
}

func TestMatcher_MatchAll_Diagnostics(t *testing.T) {
	idx := BuildIdentityIndex([]ReferenceRecord{
		{ID: "r1", AccountID: "A-1"},
	}, DefaultMatchPolicy())
	m := NewMatcher(idx, DefaultMatchPolicy())

	sources := []SourceRecord{
		{ID: "s1", PrimaryID: "A-1"},
		{ID: "s2"},
		// Linked already; would hit A-1 otherwise but must stay out of results.
		{ID: "s3", PrimaryID: "A-1", AlreadyLinked: true},
		{ID: "s4", PrimaryID: "MISSING"},
	}

	results, stats := m.MatchAll(sources)

	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].SourceID)
	assert.Equal(t, 4, stats.SourcesScanned)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 3, stats.Unmatched)
	assert.Equal(t, 1, stats.ByStrategy[StrategyPrimaryID])
	assert.Equal(t, 1, stats.UnmatchedReason.MissingIdentifier)
	assert.Equal(t, 1, stats.UnmatchedReason.IdentifierNotInReference)
	assert.Equal(t, 1, stats.UnmatchedReason.AlreadyLinked)
}

func TestMatchPolicy_Score(t *testing.T) {
	policy := DefaultMatchPolicy()

	tests := []struct {
		name      string
		src       TieBreakFields
		candidate TieBreakFields
		want      int
	}{
		{
			name:      "exact name earns both name weights",
			src:       TieBreakFields{Name: "acme distribution"},
			candidate: TieBreakFields{Name: "acme distribution"},
			want:      8,
		},
		{
			name:      "containment only",
			src:       TieBreakFields{Name: "acme distribution west"},
			candidate: TieBreakFields{Name: "acme distribution"},
			want:      3,
		},
		{
			name:      "address and zip",
			src:       TieBreakFields{Address: "123 main st", Zip: "90210"},
			candidate: TieBreakFields{Address: "123 main st", Zip: "90210"},
			want:      3,
		},
		{
			name:      "full agreement",
			src:       TieBreakFields{Name: "acme", Address: "123 main st", Zip: "90210"},
			candidate: TieBreakFields{Name: "acme", Address: "123 main st", Zip: "90210"},
			want:      11,
		},
		{
			name:      "empty fields score nothing",
			src:       TieBreakFields{},
			candidate: TieBreakFields{},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Score(tt.src, tt.candidate))
		})
	}
}
