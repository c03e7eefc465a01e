package replay

import (
	"fmt"
	"sort"

	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"
	"github.com/Evan-Kim2028/sui-sandbox-sub004/internal/transport"
)

// Mismatch is one structured disagreement between the local replay and
// the recorded on-chain effects (§4.10).
type Mismatch struct {
	Field string
	Local string
	Chain string
}

// Comparison is §4.10's comparison output: a weighted match score in
// [0,1] plus every mismatch that contributed to it.
type Comparison struct {
	StatusMatch  bool
	SetsMatch    bool
	VersionMatch bool
	DigestMatch  bool
	Score        float64
	Mismatches   []Mismatch
}

// comparisonWeights assigns the relative importance of each dimension
// §4.10 compares. Status and change-set agreement dominate the score;
// version/digest agreement is the finer-grained, optional layer.
var comparisonWeights = struct {
	status, sets, version, digest float64
}{
	status:  0.4,
	sets:    0.4,
	version: 0.1,
	digest:  0.1,
}

// Compare reports how local diverges from chain. The finer per-object
// version and digest comparisons §4.10 makes optional run only when
// chain.Versions / chain.Digests are non-empty, since a transport
// response may not carry effects detail beyond the terminal change sets;
// versions and digests supply the local side of those comparisons.
func Compare(local Effects, chain *transport.OnChainEffects, versions map[object.Address]object.Version, digests map[object.Address]object.Digest) *Comparison {
	c := &Comparison{}
	if chain == nil {
		c.Mismatches = append(c.Mismatches, Mismatch{Field: "chain_effects", Local: "present", Chain: "absent"})
		return c
	}

	wantStatus := "success"
	if !local.Success {
		wantStatus = "failure"
	}
	c.StatusMatch = wantStatus == chain.Status
	if !c.StatusMatch {
		c.Mismatches = append(c.Mismatches, Mismatch{Field: "status", Local: wantStatus, Chain: chain.Status})
	}

	setsOK := true
	setsOK = compareSet("created", local.Created, chain.Created, &c.Mismatches) && setsOK
	setsOK = compareSet("mutated", local.Mutated, chain.Mutated, &c.Mismatches) && setsOK
	setsOK = compareSet("deleted", local.Deleted, chain.Deleted, &c.Mismatches) && setsOK
	setsOK = compareSet("wrapped", local.Wrapped, chain.Wrapped, &c.Mismatches) && setsOK
	c.SetsMatch = setsOK

	c.VersionMatch = true
	if len(chain.Versions) > 0 {
		for id, chainV := range chain.Versions {
			localV, ok := versions[id]
			if !ok || localV != chainV {
				c.VersionMatch = false
				c.Mismatches = append(c.Mismatches, Mismatch{
					Field: fmt.Sprintf("version[%s]", id),
					Local: fmt.Sprintf("%d", localV),
					Chain: fmt.Sprintf("%d", chainV),
				})
			}
		}
	}

	c.DigestMatch = true
	if len(chain.Digests) > 0 {
		for id, chainD := range chain.Digests {
			localD, ok := digests[id]
			if !ok || localD != chainD {
				c.DigestMatch = false
				c.Mismatches = append(c.Mismatches, Mismatch{
					Field: fmt.Sprintf("digest[%s]", id),
					Local: fmt.Sprintf("%x", localD),
					Chain: fmt.Sprintf("%x", chainD),
				})
			}
		}
	}

	score := 0.0
	if c.StatusMatch {
		score += comparisonWeights.status
	}
	if c.SetsMatch {
		score += comparisonWeights.sets
	}
	if c.VersionMatch {
		score += comparisonWeights.version
	}
	if c.DigestMatch {
		score += comparisonWeights.digest
	}
	c.Score = score
	return c
}

// compareSet checks two address sets for exact membership equality,
// order-independent, appending a Mismatch (and returning false) on any
// disagreement.
func compareSet(field string, local, chain []object.Address, mismatches *[]Mismatch) bool {
	localSet := toSet(local)
	chainSet := toSet(chain)
	if len(localSet) == len(chainSet) {
		match := true
		for id := range localSet {
			if !chainSet[id] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	*mismatches = append(*mismatches, Mismatch{
		Field: field,
		Local: addrListString(local),
		Chain: addrListString(chain),
	})
	return false
}

func toSet(ids []object.Address) map[object.Address]bool {
	out := make(map[object.Address]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func addrListString(ids []object.Address) string {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	sort.Strings(strs)
	return fmt.Sprintf("%v", strs)
}
