package models

import (
	"encoding/json"
	"fmt"
)

// Patch is a partial update of a record, keyed by JSON field name.
type Patch map[string]any

// patchable records fix up their invariants after a patch was merged.
type patchable interface {
	afterPatch()
}

// immutableFields cannot be changed by a patch.
var immutableFields = []string{"id", "userId"}

// ApplyPatch returns r with patch merged on top of it.
//
// Only top level fields are replaced, nested values are replaced as a whole.
// After the merge, the record specific invariants are applied, e.g. wallets
// are normalized. r itself is never modified.
func ApplyPatch[T any, P MutableRecord[T]](r T, patch Patch) (T, error) {
	if len(patch) == 0 {
		return r, nil
	}

	out, err := merge(r, patch, immutableFields)
	if err != nil {
		return r, err
	}

	if p, ok := any(P(&out)).(patchable); ok {
		p.afterPatch()
	}

	return out, nil
}

// merge overlays the top level fields of patch onto the JSON document of r.
func merge[T any](r T, patch Patch, immutable []string) (T, error) {
	for _, f := range immutable {
		if _, ok := patch[f]; ok {
			return r, fmt.Errorf("%w: %s", ErrImmutableField, f)
		}
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return r, fmt.Errorf("encoding record for patch: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return r, fmt.Errorf("decoding record for patch: %w", err)
	}

	for field, value := range patch {
		v, err := json.Marshal(value)
		if err != nil {
			return r, fmt.Errorf("%w: field %s: %v", ErrInvalid, field, err)
		}
		doc[field] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return r, fmt.Errorf("encoding patched record: %w", err)
	}

	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return r, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return out, nil
}
