package prefetch

import (
	"strings"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
)

// Entry is one fetched dynamic-field child, indexed both by its object ID
// and by the composite key that tolerates address drift from package
// upgrades (§4.6 step 4, §4.9).
type Entry struct {
	ParentID  object.Address
	ChildID   object.Address
	KeyType   object.TypeTag
	KeyBCS    []byte
	ValueType object.TypeTag
	Bytes     []byte
	Version   object.Version
}

type compositeKey struct {
	parent  object.Address
	keyType string
	keyBCS  string
}

// Index is the dual (ID, composite-key) lookup structure the object
// runtime's key-based fetcher (§4.8 on-demand hydration step 2) consults.
type Index struct {
	byID  map[object.Address]*Entry
	byKey map[compositeKey]*Entry
	// byParentKeyBytes groups entries sharing a parent, regardless of key
	// type, to support the "same key bytes, ignoring type" strategy.
	byParentKeyBytes map[object.Address][]*Entry
}

func NewIndex() *Index {
	return &Index{
		byID:             map[object.Address]*Entry{},
		byKey:            map[compositeKey]*Entry{},
		byParentKeyBytes: map[object.Address][]*Entry{},
	}
}

func (idx *Index) Add(e *Entry) {
	idx.byID[e.ChildID] = e
	key := compositeKey{parent: e.ParentID, keyType: e.KeyType.String(), keyBCS: string(e.KeyBCS)}
	idx.byKey[key] = e
	idx.byParentKeyBytes[e.ParentID] = append(idx.byParentKeyBytes[e.ParentID], e)
}

// ByID is the ID-based fetcher strategy.
func (idx *Index) ByID(id object.Address) (*Entry, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

// ExactKey is the first of the three lookup strategies in §4.6: exact
// (parent, key_type, key_bcs) match.
func (idx *Index) ExactKey(parent object.Address, keyType object.TypeTag, keyBCS []byte) (*Entry, bool) {
	e, ok := idx.byKey[compositeKey{parent: parent, keyType: keyType.String(), keyBCS: string(keyBCS)}]
	return e, ok
}

// SameBytesIgnoreType is the second strategy: same parent and same key
// bytes, regardless of the key's declared type (tolerates the type's
// struct address having drifted across an upgrade while its BCS encoding
// did not change).
func (idx *Index) SameBytesIgnoreType(parent object.Address, keyBCS []byte) (*Entry, bool) {
	for _, e := range idx.byParentKeyBytes[parent] {
		if string(e.KeyBCS) == string(keyBCS) {
			return e, true
		}
	}
	return nil, false
}

// fuzzyExactBytes and fuzzySimilarity are the thresholds of §4.6's third
// strategy: at least this many leading bytes exact, and at least this
// fraction of the common prefix length matching overall. These are
// heuristics carried over from the original implementation verbatim
// (§9 open question: revisiting requires a corpus study).
const (
	fuzzyExactBytes      = 20
	fuzzySimilarityRatio = 0.5
)

// FuzzyPrefix is the third lookup strategy: same parent, and the key
// bytes share a long-enough, similar-enough common prefix. Used as a
// last resort when an upgrade changed both the type and some trailing
// bytes of an embedded address within the key.
func (idx *Index) FuzzyPrefix(parent object.Address, keyBCS []byte) (*Entry, bool) {
	var best *Entry
	var bestScore float64
	for _, e := range idx.byParentKeyBytes[parent] {
		score, ok := similarity(e.KeyBCS, keyBCS)
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = e, score
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

func similarity(a, b []byte) (float64, bool) {
	common := commonPrefixLen(a, b)
	if common < fuzzyExactBytes {
		return 0, false
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0, false
	}
	ratio := float64(common) / float64(maxLen)
	if ratio < fuzzySimilarityRatio {
		return 0, false
	}
	return ratio, true
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// Lookup tries all three strategies of §4.6 in order, returning the first
// hit and which strategy produced it (useful for diagnostics).
func (idx *Index) Lookup(parent object.Address, keyType object.TypeTag, keyBCS []byte) (*Entry, string, bool) {
	if e, ok := idx.ExactKey(parent, keyType, keyBCS); ok {
		return e, "exact", true
	}
	if e, ok := idx.SameBytesIgnoreType(parent, keyBCS); ok {
		return e, "same_bytes", true
	}
	if e, ok := idx.FuzzyPrefix(parent, keyBCS); ok {
		return e, "fuzzy_prefix", true
	}
	return nil, "", false
}

// KeyTypeMatches is a small helper callers use after a fuzzy/same-bytes
// hit to decide whether the recovered entry's key type string corresponds
// to a rewritten candidate, since fuzzy hits may straddle an alias.
func KeyTypeMatches(e *Entry, want object.TypeTag) bool {
	return strings.EqualFold(e.KeyType.String(), want.String())
}
