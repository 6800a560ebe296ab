package extract

import (
	"fmt"
	"regexp"

	"github.com/sells-group/residential-checks/internal/model"
)

var (
	photoRef = regexp.MustCompile(`(?i)\b(?:foto|fotograf[ií]a|imagen)\s*(?:n[º°o]\.?\s*)?\d+`)
	before   = regexp.MustCompile(`(?i)\bantes\b`)
	after    = regexp.MustCompile(`(?i)\bdespu[eé]s\b`)
)

var catalogs = map[model.DocumentKind]func() *Catalog{
	model.KindContract:             catalogContract,
	model.KindInstallerCertificate: catalogCertificate,
	model.KindSelfDeclaration:      catalogDeclaration,
	model.KindInvoice:              catalogInvoice,
	model.KindRegistry:             catalogRegistry,
	model.KindEnergyEfficiencyCert: catalogEnergyCert,
	model.KindNationalID:           catalogNationalID,
	model.KindDatasheet:            catalogDatasheet,
	model.KindPhotoReport:          catalogPhotoReport,
}

var builtCatalogs = func() map[model.DocumentKind]*Catalog {
	out := make(map[model.DocumentKind]*Catalog, len(catalogs))
	for k, build := range catalogs {
		out[k] = build()
	}
	return out
}()

// CatalogFor returns the text catalog for kind. The calculation sheet is
// read from cells by CalculationSheet and has no catalog.
func CatalogFor(kind model.DocumentKind) (*Catalog, bool) {
	c, ok := builtCatalogs[kind]
	return c, ok
}

// tableValue reads "Key: 0.23" style numbers with the decimal comma.
func tableValue(key string) Rule {
	return on(`(?i)\b`+key+`\b\s*[:=]?\s*([0-9]+(?:[.,]\d+)?)`, decimalComma)
}

func catalogCertificate() *Catalog {
	return &Catalog{
		Kind: model.KindInstallerCertificate,
		Fields: []Field{
			{Name: model.FieldActCode, Rules: actCodeRules},
			{Name: model.FieldEnergySavings, Rules: []Rule{
				on(`(?i)Ahorro.*?\bAE\s+(\d[\d.]*)`, trimDot),
				on(`(?i)\bAE\s+(\d[\d.]*)`, trimDot),
			}},
			{Name: model.FieldStartDate, Rules: []Rule{
				on(`(?i)inici[oó]\s+el\s+(\d+)\s+de\s+(\w+)\s+de\s+(\d{4})`, postDate),
				on(`(?i)fecha.*?inicio[:\s]+(\d[\d/]*)`),
			}},
			{Name: model.FieldFinishDate, Rules: []Rule{
				on(`(?is)finaliz[oó].*?el\s+(\d+)\s+de\s+(\w+)\s+de\s+(\d{4})`, postDate),
				on(`(?is)fecha.*?\bfin[:\s]+(\d[\d/]*)`),
			}},
			{Name: model.FieldAddress, Rules: []Rule{
				on(`(?im)situado\s+en\s+(.+?)(?:\.|\s*La referencia|$)`, minText(8)),
			}},
			{Name: model.FieldCatastralRef, Rules: []Rule{
				on(`(?i)referencia catastral[^.]*\bes\s+([0-9A-Z]+)`, catastral),
			}},
			{Name: model.FieldLifespan, Rules: lifespanRules},
			{Name: model.FieldSurface, Rules: []Rule{
				on(`(?i)superficie de la envolvente t[eé]rmica final es de\s+([0-9]+(?:[.,]\d+)?)`, decimalComma),
			}},
			{Name: model.FieldClimaticZone, Rules: []Rule{
				on(`(?i)zona clim[aá]tica.*?\bes\b.*?\b([A-E]\d)\b`, upper),
			}},
			{Name: model.FieldCalculationMethodology, Rules: []Rule{
				on(`(?i)resistencia\s+t[eé]rmica`, constant("R t")),
			}},
			{Name: model.FieldFp, Rules: []Rule{tableValue(`F\s*P`)}},
			{Name: model.FieldUi, Rules: []Rule{tableValue(`U\s*I`)}},
			{Name: model.FieldUf, Rules: []Rule{tableValue(`U\s*F`)}},
			{Name: model.FieldG, Rules: []Rule{tableValue(`G\s*j?`)}},
			{
				Name:   model.FieldB,
				Rules:  []Rule{on(`(?i)valor\s+de\s+b\s+de\s+([0-9]+(?:[.,]\d+)?)`, decimalComma)},
				Derive: func(*Text) model.Value { return model.Present("0,70") },
			},
			{Name: model.FieldIsolationThickness, Rules: []Rule{
				on(`(?i)(?:espesor|aislamiento|thickness|e\s*=)[^0-9]{0,40}(\d{2,4})\s*mm`, suffix(" mm")),
				on(`(?i)(?:cubierta|fachada|muro|cerramiento|aislamiento|espesor)[^\n]{0,80}?(\d+(?:[.,]\d+)?)\s*cm\b`, thicknessCM),
				on(`(?i)\b(\d{2,4})\s*mm\b`, suffix(" mm")),
			}},
			{Name: model.FieldIsolationType, Rules: []Rule{
				on(`(?i)tipo\s+(Soplado|Rollo)`, upper),
				on(`(?i)\bURSA\b`, constant("SOPLADO")),
			}},
			{Name: model.FieldInstallerName, Rules: installerRules(
				on(`(?i)empresa\s+instaladora[: ]+([A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚ &.\-]{3,80})`, installerName),
			)},
			{Name: model.FieldInstallerCIF, Rules: cifRules(ScopeFull)},
			{Name: model.FieldInstallerSignature, Derive: derived(ScopeFull, signaturePresent)},
		},
	}
}

// nameWithID matches the "SURNAMES NAME 71109449G" line of a declaration.
const nameWithID = `(?i)\n([A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚ\s]{10,80})\s+([0-9OIL]{7,8}\s*[A-Z6])\b`

func catalogDeclaration() *Catalog {
	return &Catalog{
		Kind: model.KindSelfDeclaration,
		Fields: []Field{
			{Name: model.FieldHomeownerName, Rules: []Rule{
				on(nameWithID, wordsBetween(2, 8)),
				on(`D[./]?\s*([A-ZÑ][a-zñ]+\s+[A-ZÑ][a-zñ]+(?:\s+[A-ZÑ][a-zñ]+)?)`),
				on(`titular[:\s]+([A-ZÑ][a-zñ]+\s+[A-ZÑ][a-zñ]+)`),
			}},
			{
				Name: model.FieldHomeownerDNI,
				Rules: []Rule{
					on(nameWithID, func(g []string) (string, bool) { return CorrectDNI(g[2]) }),
					on(`(?i)NIF\s*/\s*NIE\s*([0-9OIL]{7,8}\s*[A-Z6])`, postDNI),
				},
				Derive: derived(ScopeFull, FindDNI),
			},
			{Name: model.FieldHomeownerAddress, Rules: []Rule{
				on(`(?i)domicilio[:\s]+(.+?)(?:\n|,\s*\d{5})`),
				on(`(?i)direcci[oó]n[:\s]+(.+?)(?:\n|CP)`),
			}},
			{Name: model.FieldCatastralRef, Rules: []Rule{
				on(`(?is)Referencia\s+catastral.*?\n\s*([0-9A-Z\s]{10,40})`, catastralNextLine),
				catastralShapeRule,
			}},
			{Name: model.FieldActCode, Rules: actCodeRules},
			{Name: model.FieldSignature, Derive: derived(ScopeFull, signaturePresent)},
		},
	}
}

func catalogInvoice() *Catalog {
	person := `([A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚa-zñáéíóú]+(?: [A-ZÑÁÉÍÓÚ][A-ZÑÁÉÍÓÚa-zñáéíóú]+){1,4})`
	number := `([A-Z0-9][A-Z0-9\-/]*)`

	return &Catalog{
		Kind: model.KindInvoice,
		Fields: []Field{
			{Name: model.FieldInvoiceNumber, Rules: []Rule{
				on(`(?i)factura[:\s]+n(?:[úu]mero|[º°.o])*\s*[:.]?\s*`+number, withDigit),
				on(`(?i)\bn(?:[úu]mero|[º°.o])*\s*(?:de\s+)?factura[:\s]+`+number, withDigit),
				on(`(?i)\bN[úº°]\s+`+number, withDigit),
			}},
			{Name: model.FieldInvoiceDate, Rules: []Rule{
				on(`(?i)fecha[:\s]+(\d{1,2}/\d{1,2}/\d{2,4})`),
				on(`(\d{2}/\d{2}/\d{4})`),
				on(`(?i)\b(\d{1,2})\s+de\s+(\w+)\s+de\s+(\d{4})`, postDate),
			}},
			{Name: model.FieldHomeownerName, Rules: []Rule{
				on(`(?i:cliente)[: ]+`+person, wordsBetween(2, 5)),
				on(`(?i:nombre)[: ]+`+person, wordsBetween(2, 5)),
			}},
			{Name: model.FieldHomeownerDNI, Derive: derived(ScopeFull, FindDNI)},
			{Name: model.FieldHomeownerAddress, Rules: []Rule{
				on(`(?i)direcci[oó]n[:\s]+(.+?)(?:\n|\bCP\b|$)`, minText(3)),
				on(`(?i)domicilio[:\s]+(.+?)(?:\n|\bCP\b|$)`, minText(3)),
			}},
			{Name: model.FieldAmount, Rules: []Rule{
				on(`(?i)\btotal[:\s]+(\d[\d.,]*)\s*€`, suffix(" €")),
				on(`(?i)\bimporte[:\s]+(\d[\d.,]*)\s*€`, suffix(" €")),
				on(`(?i)\btotal[^\d\n]{0,30}(\d[\d.,]*)\s*€`, suffix(" €")),
			}},
		},
	}
}

func catalogRegistry() *Catalog {
	return &Catalog{
		Kind: model.KindRegistry,
		Fields: []Field{
			{Name: model.FieldRegistrationDate, Rules: []Rule{
				on(`(?i)fecha[:\s]+(?:de\s+)?(?:registro|inscripci[oó]n)[:\s]+(\d[\d/]*)`),
				on(`(\d{2}/\d{2}/\d{4})`),
			}},
			{Name: model.FieldRegistrationNumber, Rules: []Rule{
				on(`(?i)\bn(?:[úu]mero|[º°.o])*\s*(?:de\s+)?registro[:\s]+([A-Z0-9][A-Z0-9\-/]*)`, withDigit),
				on(`(?i)registro[:\s]+n(?:[úu]mero|[º°.o])*\s*[:.]?\s*([A-Z0-9][A-Z0-9\-/]*)`, withDigit),
			}},
			{Name: model.FieldAddress, Rules: []Rule{
				on(`(?i)direcci[oó]n[:\s]+(.+?)(?:\n|Referencia)`, minText(3)),
				on(`(?i)domicilio[:\s]+(.+?)(?:\n|\bCP\b)`, minText(3)),
			}},
			{Name: model.FieldCatastralRef, Rules: []Rule{
				on(`(?i)referencia catastral[^0-9A-Z]*([0-9A-Z]+)`, catastral),
			}},
		},
	}
}

func catalogEnergyCert() *Catalog {
	addr := longerThan(9)
	return &Catalog{
		Kind: model.KindEnergyEfficiencyCert,
		Fields: []Field{
			{Name: model.FieldAddress, Rules: []Rule{
				on(`(?is)direcci[oó]n[:\s]+(.+?)(?:\n|Referencia|\bCP\b|C\.P\.|Catastral)`, addr),
				on(`(?is)domicilio[:\s]+(.+?)(?:\n|\bCP\b|C\.P\.|Referencia)`, addr),
				on(`(?i)direcci[oó]n\s*:\s*([^\n]{10,150})`, addr),
				on(`(?i)domicilio\s*:\s*([^\n]{10,150})`, addr),
				on(`(?i)\b((?:CL|CALLE|AV|AVENIDA|PLAZA|PL)\s+[A-ZÁÉÍÓÚÑ\s,\d]{10,100})`, addr),
			}},
			{Name: model.FieldCatastralRef, Rules: []Rule{
				on(`(?i)referencia\s+catastral[^0-9A-Z]{0,30}([0-9A-Z\s]{14,25})`, catastral),
				catastralShapeRule,
			}},
			{Name: model.FieldCertificationDate, Rules: []Rule{
				on(`(?i)fecha[:\s]+(\d[\d/]*)`),
				on(`(\d{2}/\d{2}/\d{4})`),
			}},
			{Name: model.FieldSignature, Derive: derived(ScopeFull, signaturePresent)},
		},
	}
}

func catalogNationalID() *Catalog {
	return &Catalog{
		Kind: model.KindNationalID,
		Fields: []Field{
			{Name: model.FieldDNINumber, Derive: derived(ScopeFull, FindDNI)},
			{Name: model.FieldPersonName, Derive: derived(ScopeFull, PersonName)},
		},
	}
}

func catalogDatasheet() *Catalog {
	long := longerThan(3)
	return &Catalog{
		Kind: model.KindDatasheet,
		Fields: []Field{
			{Name: model.FieldHomeownerName, Rules: []Rule{
				on(`(?i)(?:propietario|titular|dueño)[:\s]*([^\n\r]{10,50})`, long),
				on(`(?i)\b(?:nombre|name)[:\s]*([^\n\r]{10,50})`, long),
			}},
			{Name: model.FieldHomeownerAddress, Rules: []Rule{
				on(`(?i)(?:domicilio|dirección|address)[:\s]*([^\n\r]{15,80})`, long),
				on(`(?i)(?:ubicación|location)[:\s]*([^\n\r]{15,80})`, long),
			}},
			{Name: model.FieldHomeownerDNI, Rules: []Rule{
				on(`(?i)\b(?:dni|nie|documento)[:\s]*([0-9]{8}[A-Z]|[XYZ][0-9]{7}[A-Z])\b`, upper),
				on(`(?i)\b(?:nif|cif)[:\s]*([0-9]{8}[A-Z]|[XYZ][0-9]{7}[A-Z])\b`, upper),
			}},
			{Name: model.FieldActCode, Rules: append(actCodeRules,
				on(`(?i)(?:c[oó]digo\s*act|act\s*code|tipo\s*de\s*act|act\s*type|medida|actuaci[oó]n)[:\s]*(RES\s*0*\d{2,3})`, actCode),
			)},
			{Name: model.FieldCatastralRef, Rules: []Rule{
				on(`(?i)(?:referencia\s*catastral|catastral\s*ref|ref\s*catastral)[:\s]*([0-9A-Z ]{14,20})`, catastralLabelled),
			}},
			{Name: model.FieldEnergySavings, Rules: []Rule{
				on(`(?i)(?:ahorro\s*energ[eé]tico|energy\s*savings)[:\s]*([0-9.,]+)`, long),
				on(`(?i)(?:kwh|kilowatts? hora)[:\s]*([0-9.,]+)`, long),
			}},
			{Name: model.FieldFp, Rules: []Rule{
				on(`(?i)(?:\bfp|factor\s*p)[:\s]*([0-9.,]+)`, long),
				on(`(?i)\bp\s*factor[:\s]*([0-9.,]+)`, long),
			}},
			{Name: model.FieldUi, Rules: []Rule{
				on(`(?i)(?:\bui|transmitancia)[:\s]*([0-9.,]+)`, long),
				on(`(?i)\bu\s*inicial[:\s]*([0-9.,]+)`, long),
			}},
			{Name: model.FieldUf, Rules: []Rule{
				on(`(?i)(?:\buf|\bu\s*final)[:\s]*([0-9.,]+)`, long),
				on(`(?i)transmitancia\s*final[:\s]*([0-9.,]+)`, long),
			}},
			{Name: model.FieldSurface, Rules: []Rule{
				on(`(?i)(?:superficie|surface|área)[:\s]*([0-9.,]+)`, long),
				on(`(?i)(?:\bs\s*=|superficie\s*=)[:\s]*([0-9.,]+)`, long),
			}},
			{Name: model.FieldClimaticZone, Rules: []Rule{
				on(`(?i)(?:zona\s*clim[aá]tica|climatic\s*zone)[:\s]*([A-E]\d)\b`, upper),
				on(`(?i)\b(?:zona\s*=|zone\s*=)[:\s]*([A-E]\d)\b`, upper),
			}},
			{Name: model.FieldIsolationThickness, Rules: []Rule{
				on(`(?i)(?:espesor\s*(?:de\s*)?aislamiento|isolation\s*thickness|grosor\s*aislante)[:\s]*([0-9]+(?:[.,]\d+)?)\s*(mm|cm)?`, thickness),
			}},
		},
	}
}

func catalogPhotoReport() *Catalog {
	return &Catalog{
		Kind: model.KindPhotoReport,
		Fields: []Field{
			{Name: model.FieldActCode, Rules: actCodeRules},
			{Name: model.FieldAddress, Rules: []Rule{
				on(`(?i)(?:direcci[oó]n|emplazamiento|ubicaci[oó]n)\s*:\s*([^\n]{8,150})`, trimDot, minText(8)),
			}},
			{Name: model.FieldPhotoCount, Derive: derived(ScopeFull, func(s string) (string, bool) {
				n := len(photoRef.FindAllString(s, -1))
				return fmt.Sprint(n), n > 0
			})},
			{Name: model.FieldBeforeAfter, Derive: derived(ScopeFull, beforeAfter)},
		},
	}
}

func beforeAfter(s string) (string, bool) {
	b, a := before.MatchString(s), after.MatchString(s)
	switch {
	case b && a:
		return "Antes/Después", true
	case b:
		return "Antes", true
	case a:
		return "Después", true
	}
	return "", false
}
