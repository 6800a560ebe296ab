package arbiter

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/residential-checks/internal/model"
)

//go:embed fields.yaml
var defaultFieldsYAML []byte

// ErrInvalidFieldSpec is returned when a field layout fails validation.
var ErrInvalidFieldSpec = eris.New("arbiter: invalid field spec")

// Policy selects how a report field picks its value.
type Policy string

const (
	// PolicyFirstValid takes the first candidate passing the standard gate.
	PolicyFirstValid Policy = "first_valid"
	// PolicyFreeText adds the leading-junk filter for names and addresses.
	PolicyFreeText Policy = "free_text"
	// PolicyNumericFloor takes the first numeric candidate, applying the
	// energy-savings floor to sources marked floor.
	PolicyNumericFloor Policy = "numeric_floor"
)

// Lookup is one (document kind, field) source for a report field.
type Lookup struct {
	Kind  model.DocumentKind `yaml:"kind" json:"kind"`
	Field model.FieldName    `yaml:"field" json:"field"`
	Floor bool               `yaml:"floor,omitempty" json:"floor,omitempty"`
}

// FieldSpec configures one row of the report: where it sits, which sources
// to try in priority order and how strict the validity gate is.
type FieldSpec struct {
	Key     string   `yaml:"key" json:"key"`
	Section string   `yaml:"section" json:"section"`
	Label   string   `yaml:"label" json:"label"`
	Policy  Policy   `yaml:"policy,omitempty" json:"policy,omitempty"`
	MinLen  int      `yaml:"min_len" json:"min_len"`
	Numeric bool     `yaml:"numeric,omitempty" json:"numeric,omitempty"`
	Sources []Lookup `yaml:"sources" json:"sources"`
}

// Gate returns the validity gate for the field's policy.
func (f FieldSpec) Gate() Gate {
	return Gate{MinLen: f.MinLen, FreeText: f.Policy == PolicyFreeText}
}

// SourceFor returns the first lookup reading from kind.
func (f FieldSpec) SourceFor(kind model.DocumentKind) (Lookup, bool) {
	for _, l := range f.Sources {
		if l.Kind == kind {
			return l, true
		}
	}
	return Lookup{}, false
}

// DefaultFieldSpecs returns the built-in report layout.
func DefaultFieldSpecs() ([]FieldSpec, error) {
	return ParseFieldSpecs(defaultFieldsYAML)
}

// LoadFieldSpecs reads a report layout from a YAML file with a top-level
// "fields" list. An empty path returns the built-in layout.
func LoadFieldSpecs(path string) ([]FieldSpec, error) {
	if path == "" {
		return DefaultFieldSpecs()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "arbiter: read field specs %s", path)
	}
	return ParseFieldSpecs(data)
}

// ParseFieldSpecs decodes and validates a report layout.
func ParseFieldSpecs(data []byte) ([]FieldSpec, error) {
	var wrapper struct {
		Fields []FieldSpec `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "arbiter: parse field specs")
	}
	if len(wrapper.Fields) == 0 {
		return nil, eris.Wrap(ErrInvalidFieldSpec, "no fields defined")
	}

	seen := make(map[string]bool, len(wrapper.Fields))
	for i := range wrapper.Fields {
		f := &wrapper.Fields[i]
		if f.Policy == "" {
			f.Policy = PolicyFirstValid
		}
		if err := validateSpec(*f); err != nil {
			return nil, err
		}
		if seen[f.Key] {
			return nil, eris.Wrapf(ErrInvalidFieldSpec, "duplicate key %q", f.Key)
		}
		seen[f.Key] = true
	}
	return wrapper.Fields, nil
}

func validateSpec(f FieldSpec) error {
	if f.Key == "" {
		return eris.Wrap(ErrInvalidFieldSpec, "field without key")
	}
	if f.Label == "" || f.Section == "" {
		return eris.Wrapf(ErrInvalidFieldSpec, "field %q: section and label are required", f.Key)
	}
	switch f.Policy {
	case PolicyFirstValid, PolicyFreeText, PolicyNumericFloor:
	default:
		return eris.Wrapf(ErrInvalidFieldSpec, "field %q: unknown policy %q", f.Key, f.Policy)
	}
	if f.MinLen < 0 {
		return eris.Wrapf(ErrInvalidFieldSpec, "field %q: negative min_len", f.Key)
	}
	if len(f.Sources) == 0 {
		return eris.Wrapf(ErrInvalidFieldSpec, "field %q: no sources", f.Key)
	}
	for _, l := range f.Sources {
		if _, ok := model.ParseDocumentKind(string(l.Kind)); !ok {
			return eris.Wrapf(ErrInvalidFieldSpec, "field %q: unknown kind %q", f.Key, l.Kind)
		}
		if l.Field == "" {
			return eris.Wrapf(ErrInvalidFieldSpec, "field %q: source %s has no field", f.Key, l.Kind)
		}
		if l.Floor && f.Policy != PolicyNumericFloor {
			return eris.Wrapf(ErrInvalidFieldSpec, "field %q: floor requires policy %s", f.Key, PolicyNumericFloor)
		}
	}
	if f.Policy == PolicyNumericFloor {
		for _, kind := range numericFloorKinds {
			if _, ok := f.SourceFor(kind); !ok {
				return eris.Wrapf(ErrInvalidFieldSpec, "field %q: policy %s needs a %s source", f.Key, f.Policy, kind)
			}
		}
	}
	return nil
}

// numericFloorKinds are the sources a numeric_floor field must read.
var numericFloorKinds = []model.DocumentKind{
	model.KindInstallerCertificate,
	model.KindCalculationSheet,
	model.KindContract,
}

// Sections returns the distinct section names in first-seen order.
func Sections(specs []FieldSpec) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range specs {
		if !seen[f.Section] {
			seen[f.Section] = true
			out = append(out, f.Section)
		}
	}
	return out
}

// MarshalFieldSpecs renders specs in the same YAML shape LoadFieldSpecs reads.
func MarshalFieldSpecs(specs []FieldSpec) ([]byte, error) {
	out, err := yaml.Marshal(struct {
		Fields []FieldSpec `yaml:"fields"`
	}{Fields: specs})
	if err != nil {
		return nil, eris.Wrap(err, "arbiter: marshal field specs")
	}
	return out, nil
}
