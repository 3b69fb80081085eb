package resolution

import "strings"

// ReferenceRecord is the engine's view of one reference-directory row.
// AccountID is the directory's own identifier and is always populated;
// CrossRefID is the field expected to hold the source side's identifier.
type ReferenceRecord struct {
	ID         string
	AccountID  string
	CrossRefID string
	Name       string
	Address    string
	Zip        string
}

// IdentityIndex holds the lookup maps built over the reference dataset.
// It is built once per run and only read afterwards.
type IdentityIndex struct {
	byAccountID map[string]*ReferenceRecord
	byCrossRef  map[string]*ReferenceRecord
	byAddress   map[string]*ReferenceRecord

	// AmbiguousAddresses counts normalized addresses shared by more than one
	// reference record. Those keys are excluded from the address map rather
	// than resolved by guessing.
	AmbiguousAddresses int

	records []ReferenceRecord
	policy  MatchPolicy
}

// BuildIdentityIndex indexes the reference dataset by account id, by
// cross-reference id and by normalized address. Collisions on the id maps
// keep the first-seen record; an address key that maps to more than one
// distinct record is dropped from the address map entirely.
func BuildIdentityIndex(records []ReferenceRecord, policy MatchPolicy) *IdentityIndex {
	idx := &IdentityIndex{
		byAccountID: make(map[string]*ReferenceRecord, len(records)),
		byCrossRef:  make(map[string]*ReferenceRecord, len(records)),
		byAddress:   make(map[string]*ReferenceRecord, len(records)),
		records:     records,
		policy:      policy,
	}

	ambiguous := make(map[string]bool)
	for i := range idx.records {
		rec := &idx.records[i]

		if key := strings.TrimSpace(rec.AccountID); key != "" {
			if _, exists := idx.byAccountID[key]; !exists {
				idx.byAccountID[key] = rec
			}
		}
		if key := strings.TrimSpace(rec.CrossRefID); key != "" {
			if _, exists := idx.byCrossRef[key]; !exists {
				idx.byCrossRef[key] = rec
			}
		}

		addr := NormalizeAddress(rec.Address)
		if len(addr) <= policy.MinAddressKeyLen {
			continue
		}
		if _, exists := idx.byAddress[addr]; exists {
			ambiguous[addr] = true
			continue
		}
		idx.byAddress[addr] = rec
	}

	for addr := range ambiguous {
		delete(idx.byAddress, addr)
	}
	idx.AmbiguousAddresses = len(ambiguous)

	return idx
}

// LookupAccountID returns the reference record whose account id equals key.
func (idx *IdentityIndex) LookupAccountID(key string) *ReferenceRecord {
	return idx.byAccountID[strings.TrimSpace(key)]
}

// LookupCrossRef returns the reference record whose cross-reference id
// equals key.
func (idx *IdentityIndex) LookupCrossRef(key string) *ReferenceRecord {
	return idx.byCrossRef[strings.TrimSpace(key)]
}

// LookupAddress returns the reference record with the given normalized
// address, or nil when the address is unknown, too short, or ambiguous.
func (idx *IdentityIndex) LookupAddress(normalizedAddress string) *ReferenceRecord {
	if len(normalizedAddress) <= idx.policy.MinAddressKeyLen {
		return nil
	}
	return idx.byAddress[normalizedAddress]
}

// Sizes returns the entry counts of the three maps, for run diagnostics.
func (idx *IdentityIndex) Sizes() (accountIDs, crossRefs, addresses int) {
	return len(idx.byAccountID), len(idx.byCrossRef), len(idx.byAddress)
}
