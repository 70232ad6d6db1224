package ai

// Document types recognized by classifiers.
const (
	DocumentTypeIdentityCard   = "IDENTITY_CARD"
	DocumentTypePassport       = "PASSPORT"
	DocumentTypeDrivingLicense = "DRIVING_LICENSE"
	DocumentTypeContract       = "CONTRACT"
	DocumentTypeGeneric        = "GENERIC_DOCUMENT"
)

// DocumentTypes lists the valid classifier outputs, most specific first.
var DocumentTypes = []string{
	DocumentTypeIdentityCard,
	DocumentTypePassport,
	DocumentTypeDrivingLicense,
	DocumentTypeContract,
	DocumentTypeGeneric,
}

// IsDocumentType reports whether s is one of DocumentTypes.
func IsDocumentType(s string) bool {
	for _, t := range DocumentTypes {
		if t == s {
			return true
		}
	}
	return false
}
