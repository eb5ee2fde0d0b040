// Package expand flattens one-to-many source structures into canonical rows:
// molecular profiles that reference several variants, and variant records
// that carry several transcript consequences.
package expand

import (
	"math"
	"strconv"
	"strings"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/listfield"
)

// ProfileVariant is one (profile, variant) association.
type ProfileVariant struct {
	ProfileID string
	VariantID int64
}

// ProfileVariants expands the list-like variantsCol of every row into one
// ProfileVariant per referenced variant. Variant tokens that are not
// integral numbers are discarded, and duplicate pairs are dropped with
// first-seen order preserved.
func ProfileVariants(t *domain.Table, profileCol, variantsCol string) ([]ProfileVariant, error) {
	if err := t.RequireColumns(profileCol, variantsCol); err != nil {
		return nil, err
	}

	seen := make(map[ProfileVariant]struct{})
	var out []ProfileVariant
	for _, r := range t.Rows {
		profile := NormalizeKey(r[profileCol])
		if profile == "" {
			continue
		}
		for _, tok := range listfield.Parse(r[variantsCol]) {
			id, ok := VariantID(tok)
			if !ok {
				continue
			}
			pv := ProfileVariant{ProfileID: profile, VariantID: id}
			if _, dup := seen[pv]; dup {
				continue
			}
			seen[pv] = struct{}{}
			out = append(out, pv)
		}
	}
	return out, nil
}

// VariantID coerces a variant token to its numeric id. Only finite,
// integral values are accepted ("45" and "45.0", not "4.5" or "x").
func VariantID(tok string) (int64, bool) {
	s := strings.TrimSpace(tok)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// NormalizeKey canonicalises a join key: integral numbers lose any ".0"
// suffix, other values are trimmed.
func NormalizeKey(raw string) string {
	s := strings.TrimSpace(raw)
	if id, ok := VariantID(s); ok {
		return strconv.FormatInt(id, 10)
	}
	return s
}
