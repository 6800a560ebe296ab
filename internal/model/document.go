package model

import "strings"

// DocumentKind identifies which subsidy document a file is.
type DocumentKind string

const (
	KindContract             DocumentKind = "contract"
	KindDatasheet            DocumentKind = "datasheet"
	KindSelfDeclaration      DocumentKind = "self_declaration"
	KindInvoice              DocumentKind = "invoice"
	KindPhotoReport          DocumentKind = "photo_report"
	KindInstallerCertificate DocumentKind = "installer_certificate"
	KindEnergyEfficiencyCert DocumentKind = "energy_efficiency_cert"
	KindRegistry             DocumentKind = "registry"
	KindNationalID           DocumentKind = "national_id"
	KindCalculationSheet     DocumentKind = "calculation_sheet"
	KindUnknown              DocumentKind = "unknown"
)

// AllDocumentKinds returns the known kinds in report column order.
// KindUnknown is not included.
func AllDocumentKinds() []DocumentKind {
	return []DocumentKind{
		KindContract,
		KindDatasheet,
		KindSelfDeclaration,
		KindInvoice,
		KindPhotoReport,
		KindInstallerCertificate,
		KindEnergyEfficiencyCert,
		KindRegistry,
		KindNationalID,
		KindCalculationSheet,
	}
}

// ParseDocumentKind converts a string into a DocumentKind. Unrecognised input
// yields KindUnknown and false.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	k := DocumentKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllDocumentKinds() {
		if k == known {
			return k, true
		}
	}
	return KindUnknown, false
}

// IsSpreadsheet reports whether documents of this kind are workbooks rather
// than PDFs or images.
func (k DocumentKind) IsSpreadsheet() bool {
	return k == KindCalculationSheet
}

func (k DocumentKind) String() string {
	return string(k)
}
