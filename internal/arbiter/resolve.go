package arbiter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/residential-checks/internal/model"
)

// Attempt records one candidate considered for a report field.
type Attempt struct {
	Source model.DocumentKind `json:"source"`
	Field  model.FieldName    `json:"field"`
	Value  model.Value        `json:"value"`
	Valid  bool               `json:"valid"`
}

// Decision is the outcome of arbitration for one report field.
type Decision struct {
	Key      string           `json:"key"`
	Section  string           `json:"section"`
	Label    string           `json:"label"`
	Value    string           `json:"value"`
	Winner   *model.Candidate `json:"winner,omitempty"`
	Attempts []Attempt        `json:"attempts"`
}

// Decided reports whether a candidate qualified.
func (d Decision) Decided() bool {
	return d.Winner != nil
}

// Result is the arbitration outcome for every configured field, in layout
// order.
type Result struct {
	Decisions []Decision `json:"decisions"`
	Decided   int        `json:"fields_decided"`
	Total     int        `json:"fields_total"`
}

// Get returns the decision for key.
func (r Result) Get(key string) (Decision, bool) {
	for _, d := range r.Decisions {
		if d.Key == key {
			return d, true
		}
	}
	return Decision{}, false
}

// Value returns the decided value for key, or "".
func (r Result) Value(key string) string {
	d, _ := r.Get(key)
	return d.Value
}

// Resolver applies a report layout to a corpus.
type Resolver struct {
	specs []FieldSpec
	floor decimal.Decimal
}

// NewResolver creates a Resolver. The floor is used as given; zero accepts
// any contract figure.
func NewResolver(specs []FieldSpec, floor decimal.Decimal) *Resolver {
	return &Resolver{specs: specs, floor: floor}
}

// Specs returns the resolver's layout.
func (r *Resolver) Specs() []FieldSpec {
	return r.specs
}

// Floor returns the energy-savings floor in use.
func (r *Resolver) Floor() decimal.Decimal {
	return r.floor
}

// Resolve decides every field of the layout against c.
func (r *Resolver) Resolve(c model.Corpus) Result {
	res := Result{Decisions: make([]Decision, 0, len(r.specs))}
	for _, spec := range r.specs {
		d := r.Decide(spec, c)
		res.Total++
		if d.Decided() {
			res.Decided++
		}
		res.Decisions = append(res.Decisions, d)
	}
	return res
}

// Decide arbitrates a single field.
func (r *Resolver) Decide(spec FieldSpec, c model.Corpus) Decision {
	d := Decision{
		Key:      spec.Key,
		Section:  spec.Section,
		Label:    spec.Label,
		Attempts: make([]Attempt, 0, len(spec.Sources)),
	}

	winner := -1
	var value string
	if spec.Policy == PolicyNumericFloor {
		cands := make([]FloorCandidate, len(spec.Sources))
		for i, l := range spec.Sources {
			cands[i] = FloorCandidate{Value: c.Lookup(l.Kind, l.Field), Floored: l.Floor}
			_, ok := numericValue(cands[i], r.floor)
			d.Attempts = append(d.Attempts, attempt(l, cands[i].Value, ok))
		}
		winner, value = PickNumeric(cands, r.floor)
	} else {
		gate := spec.Gate()
		vals := make([]model.Value, len(spec.Sources))
		for i, l := range spec.Sources {
			vals[i] = c.Lookup(l.Kind, l.Field)
			d.Attempts = append(d.Attempts, attempt(l, vals[i], gate.Valid(vals[i])))
		}
		winner = gate.first(vals)
		if winner >= 0 {
			value = gate.Pick(vals[winner : winner+1])
		}
	}

	if winner < 0 {
		return d
	}
	l := spec.Sources[winner]
	d.Winner = &model.Candidate{Value: d.Attempts[winner].Value, Source: l.Kind, Field: l.Field}
	if spec.Numeric {
		value = NormalizeNumber(value)
	}
	d.Value = strings.TrimSpace(value)
	return d
}

func attempt(l Lookup, v model.Value, valid bool) Attempt {
	return Attempt{Source: l.Kind, Field: l.Field, Value: v, Valid: valid}
}
