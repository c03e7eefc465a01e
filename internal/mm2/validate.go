package mm2

import "github.com/Evan-Kim2028/sui-sandbox-sub004/internal/object"

// GroundTruthField is one ground-truth dynamic-field entry to validate
// predictions against: its key type (already normalized through the
// storage-to-original alias map by the caller, per §4.7) and the child
// ID it resolves to.
type GroundTruthField struct {
	KeyType object.TypeTag
	ChildID object.Address
}

// ValidatedAccess pairs a prediction with whichever ground-truth field
// confirmed it, if any.
type ValidatedAccess struct {
	Prediction PredictedAccess
	Confirmed  bool
	Matched    *GroundTruthField
}

// Validate checks each prediction against ground truth two ways: a
// direct type-string match against an existing field's key type, and —
// for phantom-key predictions, where PhantomKeyBCS supplies the
// deterministic key bytes a zero-sized marker type always encodes to —
// derivation of the child ID from every parent candidate, checked for
// membership in the ground-truth ID set (§4.7).
func Validate(preds []PredictedAccess, fields []GroundTruthField, phantomKeyBCS func(object.TypeTag) ([]byte, bool), parents []object.Address) []ValidatedAccess {
	byKeyType := map[string]*GroundTruthField{}
	byChildID := map[object.Address]bool{}
	for i := range fields {
		f := &fields[i]
		byKeyType[f.KeyType.String()] = f
		byChildID[f.ChildID] = true
	}

	out := make([]ValidatedAccess, len(preds))
	for i, pa := range preds {
		out[i] = ValidatedAccess{Prediction: pa}

		if f, ok := byKeyType[pa.KeyType.String()]; ok {
			out[i].Confirmed = true
			out[i].Matched = f
			continue
		}

		if phantomKeyBCS == nil {
			continue
		}
		keyBCS, ok := phantomKeyBCS(pa.KeyType)
		if !ok {
			continue
		}
		for _, parent := range parents {
			childID := object.DeriveChildID(parent, keyBCS, pa.KeyType)
			if byChildID[childID] {
				out[i].Confirmed = true
				break
			}
		}
	}
	return out
}
