package extract

import (
	"regexp"

	"github.com/sells-group/residential-checks/internal/model"
)

var (
	partyOne   = regexp.MustCompile(`(?i)\bDE\s+UNA\s+PARTE\b`)
	partyOther = regexp.MustCompile(`(?i)\bY\s+DE\s+OTRA\b`)
	cesionario = regexp.MustCompile(`(?i)\bCESIONARIO\b`)
	cedente    = regexp.MustCompile(`(?i)\bCEDENTE\b`)

	nameBadWords = regexp.MustCompile(`(?i)\b(haya|debido|cantidad|instalador|por\s+cuanto|notificaciones|cl[aá]usula|presente)\b`)
)

// splitParties cuts a contract into the cesionario block (the obliged or
// delegated party) and the cedente block (the homeowner). Two templates are
// known: "DE UNA PARTE ... Y DE OTRA ..." and "CESIONARIO ... CEDENTE ...".
// When neither is found the whole text is treated as the cedente block.
func splitParties(t string) (ces, ced string) {
	if t == "" {
		return "", ""
	}
	for _, pair := range [][2]*regexp.Regexp{{partyOne, partyOther}, {cesionario, cedente}} {
		a, b := pair[0].FindStringIndex(t), pair[1].FindStringIndex(t)
		if a != nil && b != nil && b[0] > a[0] {
			return t[a[0]:b[0]], t[b[0]:]
		}
	}
	return "", t
}

func prepareContract(raw string) *Text {
	t := Clean(raw)
	ces, ced := splitParties(t)
	return &Text{Full: t, Scopes: map[Scope]string{ScopeCesionario: ces, ScopeCedente: ced}}
}

// Shared rule sets. Several catalogs read the same kind of value the same way.
var (
	actCodeRules = []Rule{on(`(?i)\b(RES0*\d{2,3})\b`, actCode)}

	catastralShapeRule = on(`\b(\d{6,8}[A-Z]{1,3}\d{2,6}[A-Z]{1,4}\d{1,6}[A-Z]{1,4})\b`)

	locationRules = []Rule{
		on(`(?i)Direcci[oó]n\s*:\s*([^\n.]{8,220})`, trimDot, minText(8)),
		on(`(?i)\ben\s+(.{8,200}?(?:PLAZA|CALLE|AVENIDA|CARRETERA|CL)\b.{0,80}?(?:\b\d{5}\b|Castilla y Le[oó]n))`, minText(8)),
		on(`(?i)localidad\s+de\s+(.{3,80}?)(?:\s+Castilla y Le[oó]n|\s+\b\d{5}\b)`, minText(8)),
	}

	lifespanRules = []Rule{
		on(`(?i)duraci[oó]n.*?actuaci[oó]n.*?(\d+)\s*años`),
		on(`(?i)vida\s+[uú]til[^\d\n]{0,40}(\d+)\s*años`),
	}
)

// cifRules reads a company tax id: the checked letter-seven-digits-control
// shape first, then any letter followed by eight digits.
func cifRules(s Scope) []Rule {
	return []Rule{
		in(s, `(?i)\b([A-HJ-NP-SUVW]\d{7}[0-9A-J])\b`, upper),
		in(s, `(?i)\b([A-Z]\d{8})\b`, upper),
	}
}

// installerRules reads "Instalador: NAME" with a trailing tax id dropped.
func installerRules(extra ...Rule) []Rule {
	return append(extra,
		on(`(?i)(?:El\s+)?Instalador[: ]+([A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚ &.\-]{3,80})`, installerName),
	)
}

func catalogContract() *Catalog {
	name := chain(wordsBetween(2, 6), rejectIf(nameBadWords))
	title := `(?:DOÑA\s+|DON\s+|D(?:ÑA|NA|ª)?\.\s*)`

	return &Catalog{
		Kind:    model.KindContract,
		Prepare: prepareContract,
		Fields: []Field{
			{Name: model.FieldSDCompanyName, Rules: []Rule{
				in(ScopeCesionario, `(?is)DE\s+UNA\s+PARTE[,\s]+(.+?)(?:,?\s*con\s+(?:CIF|NIF)|\s+(?:CIF|NIF)\b)`, minText(3)),
				in(ScopeCesionario, `(?i)\bCESIONARIO\b\s*[:\-]?\s*(.+?)(?:\s+(?:CIF|NIF)\b|,|\n)`, minText(3)),
			}},
			{Name: model.FieldSDCIF, Rules: cifRules(ScopeCesionario)},
			{Name: model.FieldSDAddress, Rules: []Rule{
				in(ScopeCesionario, `(?i)domicilio[^:\n]*:\s*(.+?)(?:\n|,?\s*CP\b|\s+C\.P\.)`, minText(8)),
			}},
			{Name: model.FieldSDRepresentativeName, Rules: []Rule{
				in(ScopeCesionario, `(?i)representad[oa]\s+por\s+D[./]?\s*([A-ZÑÁÉÍÓÚ][A-Za-zÑÁÉÍÓÚ ]{5,60}?)(?:,|\s+con|\n)`, minText(3)),
			}},
			{Name: model.FieldSDRepresentativeDNI, Derive: func(t *Text) model.Value {
				if !t.Has(ScopeCesionario) {
					return model.Absent()
				}
				dni, _ := FindDNI(t.In(ScopeCesionario))
				return model.ValueOf(dni)
			}},
			{Name: model.FieldSDSignature, Rules: []Rule{
				in(ScopeCesionario, `(?i)Firma.*Cesionario|Cesionario.*Firma`, constant("Present")),
				on(`(?i)Firma.*Cesionario|Cesionario.*Firma`, constant("Present")),
			}},

			{Name: model.FieldHomeownerName, Rules: []Rule{
				in(ScopeCedente, `(?is)Y\s+DE\s+OTRA\s+PARTE[:,\s]*`+title+`([A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚ\s]{6,60}?)\s*,\s*mayor\s+de\s+edad`, name),
				in(ScopeCedente, `(?is)CEDENTE[:\s]*`+title+`([A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚ\s]{6,60}?)\s*,\s*mayor\s+de\s+edad`, name),
				in(ScopeCedente, `(?is)\b`+title+`([A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚ\s]{6,60}?)\s*,\s*mayor\s+de\s+edad,\s*con\s+DNI`, name),
			}},
			{
				Name: model.FieldHomeownerDNI,
				Rules: []Rule{
					in(ScopeCedente, `(?i)mayor\s+de\s+edad,\s*con\s+DNI[:\s]*([0-9OIL]{7,8}\s*[A-Z])`, postDNI),
					in(ScopeCedente, `(?i)\bDNI[:\s]*([0-9OIL]{7,8}\s*[A-Z])\b`, postDNI),
				},
				Derive: derived(ScopeCedente, FindDNI),
			},
			{Name: model.FieldHomeownerAddress, Rules: locationRules},
			{Name: model.FieldHomeownerPhone, Rules: []Rule{
				in(ScopeCedente, `(?i)tel[eé]fono[:\s]*([+\d][\d\s-]{8,})`, phone),
				in(ScopeCedente, `(?:\+34\s*)?\b[6789]\d{8}\b`, squeeze),
			}},
			{Name: model.FieldHomeownerEmail, Rules: []Rule{
				in(ScopeCedente, `[\w.\-]+@[\w.\-]+\.\w+`),
			}},
			{Name: model.FieldHomeownerNotifications, Rules: []Rule{
				in(ScopeCedente, `(?i)notificaciones[:\s]+(.+?)(?:\n|$)`, minText(8)),
			}},
			{Name: model.FieldHomeownerSignatures, Derive: derived(ScopeCedente, countSignatures)},

			{Name: model.FieldInstaller, Rules: installerRules()},
			{Name: model.FieldLocation, Rules: locationRules},
			{Name: model.FieldCatastralRef, Rules: []Rule{
				on(`(?i:Referencia\s+catastral)\s*:\s*([0-9A-Z]{7} ?[0-9A-Z]{7}(?: ?[0-9A-Z]{4} ?[0-9A-Z]{2})?)\b`, catastralLabelled),
				on(`(?i:Referencia\s+catastral)\s*:\s*([0-9A-Z]{10,25})\b`, catastralLabelled),
				catastralShapeRule,
			}},
			{Name: model.FieldUTMCoordinates, Derive: derived(ScopeFull, utmValue)},
			{Name: model.FieldEnergySavings, Rules: []Rule{
				on(`(?i)(\d[\d.,]*)\s*kWh\s*/\s*a(?:ñ|n)o`, numeric),
				on(`(?i)(\d[\d.]*)\s*kWh/a[ñnrio]+(?:\s|,|\.)`, numeric),
			}},
			{Name: model.FieldActCode, Rules: actCodeRules},
			{Name: model.FieldLifespan, Rules: lifespanRules},
		},
	}
}
