package expand

import (
	"math"
	"strconv"
	"strings"
)

// PopulationCodes are the 1000 Genomes super-population codes reported for
// every variant, in output order.
var PopulationCodes = []string{"AFR", "AMR", "EAS", "EUR", "SAS"}

// Populations holds one allele frequency slot per super-population.
// A nil slot means the tag was absent; it still serialises as null so the
// output schema never loses a key.
type Populations struct {
	AFR *float64 `json:"AFR"`
	AMR *float64 `json:"AMR"`
	EAS *float64 `json:"EAS"`
	EUR *float64 `json:"EUR"`
	SAS *float64 `json:"SAS"`
}

func (p *Populations) slot(code string) **float64 {
	switch code {
	case "AFR":
		return &p.AFR
	case "AMR":
		return &p.AMR
	case "EAS":
		return &p.EAS
	case "EUR":
		return &p.EUR
	case "SAS":
		return &p.SAS
	}
	return nil
}

// Get returns the frequency for code and whether it was present.
func (p Populations) Get(code string) (float64, bool) {
	s := p.slot(strings.ToUpper(code))
	if s == nil || *s == nil {
		return 0, false
	}
	return **s, true
}

// ParsePopulations reads a "AFR=0.12;EUR=0.3" annotation string. Tags may
// also be spelled AFR_AF. Unknown tags, non-numeric values and NaN or
// infinite values are ignored; when a tag repeats, the last value wins.
func ParsePopulations(s string) Populations {
	var p Populations
	for _, part := range strings.Split(s, ";") {
		tag, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		tag = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(tag)), "_AF")
		slot := p.slot(tag)
		if slot == nil {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		*slot = &f
	}
	return p
}
