// Package classify tags project files with their document kind from file and
// folder naming conventions.
package classify

import (
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/textutil"
)

// Extensions handled by the text extractor and the sheet reader.
var (
	DocumentExtensions    = []string{".pdf", ".jpg", ".jpeg", ".png", ".tif", ".tiff"}
	SpreadsheetExtensions = []string{".xlsx", ".xlsm"}
)

// Rule maps a name pattern to a kind. A name matches when any Include
// pattern matches and Exclude (if set) does not. Extensions, when set,
// restricts the rule to those file types.
type Rule struct {
	Kind       model.DocumentKind
	Include    []*regexp.Regexp
	Exclude    *regexp.Regexp
	Extensions []string
}

// Matches reports whether the folded name matches the rule.
func (r Rule) Matches(folded string) bool {
	if r.Exclude != nil && r.Exclude.MatchString(folded) {
		return false
	}
	for _, re := range r.Include {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}

func (r Rule) acceptsExt(ext string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	for _, e := range r.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func rule(kind model.DocumentKind, exts []string, exclude string, include ...string) Rule {
	r := Rule{Kind: kind, Extensions: exts}
	for _, p := range include {
		r.Include = append(r.Include, regexp.MustCompile(p))
	}
	if exclude != "" {
		r.Exclude = regexp.MustCompile(exclude)
	}
	return r
}

// DefaultRules returns the built-in table. Patterns are plain substrings of
// the folded name so plurals and glued tokens still match. Order matters: the
// energy-efficiency certificate is tested before the registry and the
// installer certificate because their names overlap.
func DefaultRules() []Rule {
	docs := DocumentExtensions
	return []Rule{
		rule(model.KindCalculationSheet, SpreadsheetExtensions, "", `CALCULO`, `CALC ?UI`, `RTOTAL`),
		rule(model.KindEnergyEfficiencyCert, docs, "",
			`CEE.*FINAL`, `FINAL.*CEE`, `CERTIFICADO ?ENERGETIC`, `CERTIFICADO DE EFICIENCIA`, `EFICIENCIA ENERGETICA`),
		rule(model.KindRegistry, docs, `CEE.*FINAL|FINAL.*CEE`, `REGISTRO`),
		rule(model.KindContract, docs, "", `CONTRATO`, `CONVENIO`, `CESION`),
		rule(model.KindDatasheet, docs, `CALCULO`, `FICHA`, `RES0?\d{2}`),
		rule(model.KindSelfDeclaration, docs, "", `DECLARACION`),
		rule(model.KindInvoice, docs, "", `FACTURA`),
		rule(model.KindPhotoReport, docs, "", `FOTOGRAFIC`, `FOTOS`, `REPORTAJE`),
		rule(model.KindInstallerCertificate, docs, `CEE|ENERGETIC|EFICIENCIA`, `CERTIFICADO`),
		// NIE stays a whole word: it is a prefix of common given names.
		rule(model.KindNationalID, docs, "", `DNI`, `\bNIES?\b`, `IDENTIDAD`),
	}
}

// Classifier assigns document kinds by walking an ordered rule table.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier over rules, or DefaultRules when none are given.
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

var separators = regexp.MustCompile(`[_\-.]+`)

// FoldName prepares a name for matching: upper case, accents stripped,
// separators turned into spaces.
func FoldName(name string) string {
	return textutil.CollapseSpace(separators.ReplaceAllString(textutil.Fold(name), " "))
}

// Classify returns the kind for path. The file name is tried first, then the
// parent folder name. No match yields model.KindUnknown.
func (c *Classifier) Classify(path string) model.DocumentKind {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parent := filepath.Base(filepath.Dir(path))

	if k := c.match(FoldName(base), ext); k != model.KindUnknown {
		return k
	}
	if parent == "." || parent == string(filepath.Separator) {
		return model.KindUnknown
	}
	return c.match(FoldName(parent), ext)
}

func (c *Classifier) match(folded, ext string) model.DocumentKind {
	for _, r := range c.rules {
		if r.acceptsExt(ext) && r.Matches(folded) {
			return r.Kind
		}
	}
	return model.KindUnknown
}

// Classified pairs a path with its kind.
type Classified struct {
	Path string             `json:"path"`
	Kind model.DocumentKind `json:"kind"`
}

// ClassifyAll tags every path. Unknown files are logged and returned
// separately; they are never an error.
func (c *Classifier) ClassifyAll(paths []string) (known []Classified, unknown []string) {
	for _, p := range paths {
		k := c.Classify(p)
		if k == model.KindUnknown {
			zap.L().Warn("classify: skipping unknown document", zap.String("file", p))
			unknown = append(unknown, p)
			continue
		}
		known = append(known, Classified{Path: p, Kind: k})
	}
	return known, unknown
}
