package classify

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/residential-checks/internal/model"
)

func TestClassify_ProjectNaming(t *testing.T) {
	t.Parallel()

	c := New()
	project := filepath.Join("data", "ALEGRE SANTA CRUZ MARIA PILAR")

	tests := []struct {
		file string
		want model.DocumentKind
	}{
		{"E1-1-1 CONTRATO CESION AHORROS.pdf", model.KindContract},
		{"E1-3-1 FICHA RES020 010.pdf", model.KindDatasheet},
		{"E1-3-2 DECLARACION RESPONSABLE.pdf", model.KindSelfDeclaration},
		{"E1-3-3 FACTURA.pdf", model.KindInvoice},
		{"E1-3-4 INFORME FOTOGRÁFICO.pdf", model.KindPhotoReport},
		{"E1-3-4 informe fotografico.PDF", model.KindPhotoReport},
		{"E1-3-5 CERTIFICADO INSTALADOR.pdf", model.KindInstallerCertificate},
		{"E1-3-6-1 CEE FINAL.pdf", model.KindEnergyEfficiencyCert},
		{"E1-3-6-1_CEE_FINAL.pdf", model.KindEnergyEfficiencyCert},
		{"E1-3-6-2 REGISTRO CEE.pdf", model.KindRegistry},
		{"E1-4-1 DNI.jpg", model.KindNationalID},
		{"E1-4-2 CALCULO UI RTOTAL.xlsx", model.KindCalculationSheet},
		{"convenio cesión.pdf", model.KindContract},
		{"notes.txt", model.KindUnknown},
		{"CALCULO.pdf", model.KindUnknown},
		{"FACTURA.xlsx", model.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.Classify(filepath.Join(project, tt.file)))
		})
	}
}

func TestClassify_SubstringNames(t *testing.T) {
	t.Parallel()

	c := New()
	tests := []struct {
		file string
		want model.DocumentKind
	}{
		{"Contratos.pdf", model.KindContract},
		{"FACTURAS.pdf", model.KindInvoice},
		{"DNIs.pdf", model.KindNationalID},
		{"CERTIFICADOS.pdf", model.KindInstallerCertificate},
		{"DECLARACIONES.pdf", model.KindSelfDeclaration},
		{"FICHAS.pdf", model.KindDatasheet},
		{"RegistroCEE FINAL.pdf", model.KindEnergyEfficiencyCert},
		{"CEEFINAL.pdf", model.KindEnergyEfficiencyCert},
		{"RES020.pdf", model.KindDatasheet},
		{"res 093 aerotermia.pdf", model.KindUnknown},
		{"certificado de eficiencia.pdf", model.KindEnergyEfficiencyCert},
		{"CertificadoEnergetico.pdf", model.KindEnergyEfficiencyCert},
		{"NIEVES GARCIA.pdf", model.KindUnknown},
		{"NIE titular.jpg", model.KindNationalID},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.Classify(tt.file))
		})
	}
}

func TestClassify_DatasheetExcludesCalculation(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Equal(t, model.KindUnknown, c.Classify("CALCULO RES020.pdf"))
	assert.Equal(t, model.KindCalculationSheet, c.Classify("CALCULO RES020.xlsx"))
}

func TestClassify_CEEFinalBeforeRegistry(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Equal(t, model.KindEnergyEfficiencyCert, c.Classify("registro cee final.pdf"))
	assert.Equal(t, model.KindEnergyEfficiencyCert, c.Classify("REGISTRO_CEE-FINAL.pdf"))
	assert.Equal(t, model.KindEnergyEfficiencyCert, c.Classify("final cee registro.pdf"))
	assert.Equal(t, model.KindRegistry, c.Classify("registro cee.pdf"))
}

func TestClassify_InstallerCertificateExclusion(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Equal(t, model.KindEnergyEfficiencyCert, c.Classify("certificado energetico.pdf"))
	assert.Equal(t, model.KindInstallerCertificate, c.Classify("certificado.pdf"))
}

func TestClassify_ParentFolderFallback(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Equal(t, model.KindNationalID, c.Classify(filepath.Join("proj", "E1-4-1 DNI", "scan001.jpg")))
	assert.Equal(t, model.KindInvoice, c.Classify(filepath.Join("proj", "FACTURA", "001.pdf")))
	// the file name wins over the folder
	assert.Equal(t, model.KindContract, c.Classify(filepath.Join("proj", "FACTURA", "contrato.pdf")))
	assert.Equal(t, model.KindUnknown, c.Classify("scan001.jpg"))
}

func TestClassify_CustomRules(t *testing.T) {
	t.Parallel()

	c := New(Rule{
		Kind:    model.KindInvoice,
		Include: []*regexp.Regexp{regexp.MustCompile(`INVOICE`)},
		Exclude: regexp.MustCompile(`DRAFT`),
	})
	assert.Equal(t, model.KindInvoice, c.Classify("invoice-2024.pdf"))
	assert.Equal(t, model.KindUnknown, c.Classify("invoice draft.pdf"))
}

func TestClassifyAll(t *testing.T) {
	t.Parallel()

	known, unknown := New().ClassifyAll([]string{"a/CONTRATO.pdf", "a/readme.md", "a/DNI.png"})

	assert.Equal(t, []Classified{
		{Path: "a/CONTRATO.pdf", Kind: model.KindContract},
		{Path: "a/DNI.png", Kind: model.KindNationalID},
	}, known)
	assert.Equal(t, []string{"a/readme.md"}, unknown)
}

func TestFoldName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "E1 3 4 INFORME FOTOGRAFICO", FoldName("E1-3-4 Informe_Fotográfico"))
}
