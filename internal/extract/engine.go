// Package extract turns document text into named field values. Each document
// kind is described by a Catalog of declarative rules evaluated by one
// first-match engine.
package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/textutil"
)

// Scope names a region of a document's text.
type Scope string

// Contract scopes. ScopeFull is the whole text.
const (
	ScopeFull       Scope = ""
	ScopeCesionario Scope = "cesionario"
	ScopeCedente    Scope = "cedente"
)

// Text is prepared document text plus optional named regions.
type Text struct {
	Full   string
	Scopes map[Scope]string
}

// NewText wraps already-prepared text with no scopes.
func NewText(full string) *Text {
	return &Text{Full: full}
}

// In returns the text of scope, falling back to the full text when the
// region was not found.
func (t *Text) In(s Scope) string {
	if s == ScopeFull {
		return t.Full
	}
	if v := t.Scopes[s]; v != "" {
		return v
	}
	return t.Full
}

// Has reports whether the region was found.
func (t *Text) Has(s Scope) bool {
	if s == ScopeFull {
		return t.Full != ""
	}
	return t.Scopes[s] != ""
}

// PostFunc turns the submatches of a rule into a value. groups[0] is the full
// match. Returning false rejects the match and moves on to the next rule.
type PostFunc func(groups []string) (string, bool)

// Rule is one pattern tried for a field.
type Rule struct {
	Scope   Scope
	Pattern *regexp.Regexp
	Post    PostFunc
}

// Field is an ordered rule list. Derive, when set, runs after every rule
// failed and may compute the value from the whole text.
type Field struct {
	Name   model.FieldName
	Rules  []Rule
	Derive func(*Text) model.Value
}

// Catalog describes how to extract one document kind.
type Catalog struct {
	Kind    model.DocumentKind
	Prepare func(string) *Text
	Fields  []Field
}

// Extract evaluates every field independently against raw text. Blank text
// yields every field absent, defaults included.
func (c *Catalog) Extract(raw string) map[model.FieldName]model.Value {
	out := make(map[model.FieldName]model.Value, len(c.Fields))
	if strings.TrimSpace(raw) == "" {
		for _, f := range c.Fields {
			out[f.Name] = model.Absent()
		}
		return out
	}

	prepare := c.Prepare
	if prepare == nil {
		prepare = func(s string) *Text { return NewText(Clean(s)) }
	}
	t := prepare(raw)
	for _, f := range c.Fields {
		out[f.Name] = f.Eval(t)
	}
	return out
}

// Eval returns the first accepted rule match, then Derive, else absent.
func (f Field) Eval(t *Text) model.Value {
	for _, r := range f.Rules {
		if v, ok := r.apply(t); ok {
			return v
		}
	}
	if f.Derive != nil {
		return f.Derive(t)
	}
	return model.Absent()
}

func (r Rule) apply(t *Text) (model.Value, bool) {
	groups := r.Pattern.FindStringSubmatch(t.In(r.Scope))
	if groups == nil {
		return model.Absent(), false
	}
	post := r.Post
	if post == nil {
		post = group1
	}
	s, ok := post(groups)
	if !ok {
		return model.Absent(), false
	}
	v := model.ValueOf(s)
	return v, !v.IsAbsent()
}

// group1 is the default post-process: first group, whitespace collapsed.
func group1(g []string) (string, bool) {
	if len(g) < 2 {
		return textutil.CollapseSpace(g[0]), true
	}
	return textutil.CollapseSpace(g[1]), true
}

// rx compiles a pattern at package init.
func rx(p string) *regexp.Regexp {
	return regexp.MustCompile(p)
}

// on builds a full-text rule.
func on(p string, post ...PostFunc) Rule {
	return in(ScopeFull, p, post...)
}

// in builds a scoped rule. Several post funcs run as a chain, each seeing
// the previous result as group 1.
func in(s Scope, p string, post ...PostFunc) Rule {
	r := Rule{Scope: s, Pattern: rx(p)}
	switch len(post) {
	case 0:
	case 1:
		r.Post = post[0]
	default:
		r.Post = chain(post...)
	}
	return r
}

func chain(fs ...PostFunc) PostFunc {
	return func(g []string) (string, bool) {
		cur := g
		var s string
		for _, f := range fs {
			var ok bool
			if s, ok = f(cur); !ok {
				return "", false
			}
			cur = []string{g[0], s}
		}
		return s, true
	}
}

// derived lifts a plain text function into a Derive for scope s.
func derived(s Scope, fn func(string) (string, bool)) func(*Text) model.Value {
	return func(t *Text) model.Value {
		v, ok := fn(t.In(s))
		if !ok {
			return model.Absent()
		}
		return model.ValueOf(v)
	}
}
