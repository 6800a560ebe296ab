package model

// FieldName names one extracted field within a document.
type FieldName string

// Homeowner (cedente) fields.
const (
	FieldHomeownerName          FieldName = "homeowner_name"
	FieldHomeownerDNI           FieldName = "homeowner_dni"
	FieldHomeownerAddress       FieldName = "homeowner_address"
	FieldHomeownerPhone         FieldName = "homeowner_phone"
	FieldHomeownerEmail         FieldName = "homeowner_email"
	FieldHomeownerNotifications FieldName = "homeowner_notifications"
	FieldHomeownerSignatures    FieldName = "homeowner_signatures"
)

// Obliged subject / delegated party (cesionario) fields.
const (
	FieldSDCompanyName        FieldName = "sd_do_company_name"
	FieldSDCIF                FieldName = "sd_do_cif"
	FieldSDAddress            FieldName = "sd_do_address"
	FieldSDRepresentativeName FieldName = "sd_do_representative_name"
	FieldSDRepresentativeDNI  FieldName = "sd_do_representative_dni"
	FieldSDSignature          FieldName = "sd_do_signature"
)

// Action fields.
const (
	FieldActCode                FieldName = "act_code"
	FieldEnergySavings          FieldName = "energy_savings"
	FieldStartDate              FieldName = "start_date"
	FieldFinishDate             FieldName = "finish_date"
	FieldAddress                FieldName = "address"
	FieldLocation               FieldName = "location"
	FieldCatastralRef           FieldName = "catastral_ref"
	FieldUTMCoordinates         FieldName = "utm_coordinates"
	FieldLifespan               FieldName = "lifespan"
	FieldSurface                FieldName = "surface"
	FieldClimaticZone           FieldName = "climatic_zone"
	FieldCalculationMethodology FieldName = "calculation_methodology"
	FieldFp                     FieldName = "fp"
	FieldUi                     FieldName = "ui"
	FieldUf                     FieldName = "uf"
	FieldG                      FieldName = "g"
	FieldB                      FieldName = "b"
	FieldKi                     FieldName = "ki"
	FieldKf                     FieldName = "kf"
	FieldIsolationThickness     FieldName = "isolation_thickness"
	FieldIsolationType          FieldName = "isolation_type"
	FieldAreaTotal              FieldName = "area_total"
	FieldAreaAffected           FieldName = "area_affected"
	FieldPercentage             FieldName = "percentage"
	FieldClientName             FieldName = "client_name"
)

// Installer fields.
const (
	FieldInstaller          FieldName = "installer"
	FieldInstallerName      FieldName = "installer_name"
	FieldInstallerCIF       FieldName = "installer_cif"
	FieldInstallerSignature FieldName = "installer_signature"
)

// Billing, registry, certification and identity fields.
const (
	FieldInvoiceNumber      FieldName = "invoice_number"
	FieldInvoiceDate        FieldName = "invoice_date"
	FieldAmount             FieldName = "amount"
	FieldRegistrationDate   FieldName = "registration_date"
	FieldRegistrationNumber FieldName = "registration_number"
	FieldCertificationDate  FieldName = "certification_date"
	FieldSignature          FieldName = "signature"
	FieldDNINumber          FieldName = "dni_number"
	FieldPersonName         FieldName = "name"
	FieldPhotoCount         FieldName = "photo_count"
	FieldBeforeAfter        FieldName = "before_after"
)
