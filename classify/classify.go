package classify

import (
	"context"
	"regexp"
	"strings"

	"github.com/poiesic/quaero/ai"
)

// Field names produced by ExtractFields.
const (
	FieldFiscalCode     = "fiscal_code"
	FieldAddress        = "address"
	FieldBirthDate      = "birth_date"
	FieldBirthPlace     = "birth_place"
	FieldPassportNumber = "passport_number"
	FieldLicenseNumber  = "license_number"
)

const issuer = "REPUBBLICA ITALIANA"

var (
	fiscalCodePattern = regexp.MustCompile(`(?im)(?:CODICE\s+FISCALE|FISCAL\s+CODE)\s*\n\s*([A-Z]{6}\d{2}[A-Z]\d{2}[A-Z]\d{3}[A-Z])`)
	addressPattern    = regexp.MustCompile(`(VIA|VIALE|PIAZZA|CORSO|STRADA)\s+([A-Z\s,'-]+?),\s+N\.\s+(\d+)\s+([A-Z\s()]+)`)
	birthPattern      = regexp.MustCompile(`(?im)(?:LUOGO\s+E\s+DATA|PLACE\s+AND\s+DATE)[^\n]*\n\s*([A-Z\s]+)\s+(\d{1,2})[./](\d{1,2})[./](\d{4})`)
	passportPattern   = regexp.MustCompile(`[A-Z]{2}\d{7}`)
	licensePattern    = regexp.MustCompile(`(?:Numero|Number|N\.|Nr\.)\s*[:\s]*([A-Z0-9]{10})`)
)

// Classifier is the keyword and regular-expression classifier.
type Classifier struct{}

var _ ai.Classifier = (*Classifier)(nil)

// New returns a rule-based classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify returns the document type of text.
func (c *Classifier) Classify(_ context.Context, text string) (string, error) {
	return DetectType(text), nil
}

// ExtractFields returns the fields found in text for documentType.
func (c *Classifier) ExtractFields(_ context.Context, text, documentType string) (map[string]string, error) {
	return ExtractFields(text, documentType), nil
}

// DetectType checks, most specific first: identity card, passport, driving
// license, contract. Anything else is a generic document.
func DetectType(text string) string {
	upper := strings.ToUpper(text)
	italian := strings.Contains(upper, issuer)

	switch {
	case italian && containsAny(upper, "CARTA DI IDENTITA", "CARTA DI IDENTITÀ", "IDENTITY CARD"):
		return ai.DocumentTypeIdentityCard
	case italian && containsAny(upper, "PASSAPORTO", "PASSPORT"):
		return ai.DocumentTypePassport
	case containsAny(upper, "PATENTE DI GUIDA", "DRIVING LICENSE"):
		return ai.DocumentTypeDrivingLicense
	case containsAny(upper, "CONTRATTO", "CONTRACT", "AGREEMENT"):
		return ai.DocumentTypeContract
	default:
		return ai.DocumentTypeGeneric
	}
}

// ExtractFields dispatches to the extractor for documentType. Types without
// an extractor yield an empty map.
func ExtractFields(text, documentType string) map[string]string {
	switch documentType {
	case ai.DocumentTypeIdentityCard:
		return identityCardFields(text)
	case ai.DocumentTypePassport:
		return passportFields(text)
	case ai.DocumentTypeDrivingLicense:
		return licenseFields(text)
	default:
		return map[string]string{}
	}
}

func identityCardFields(text string) map[string]string {
	fields := make(map[string]string)

	if m := fiscalCodePattern.FindStringSubmatch(text); m != nil {
		fields[FieldFiscalCode] = m[1]
	}
	if m := addressPattern.FindStringSubmatch(text); m != nil {
		fields[FieldAddress] = m[1] + " " + m[2] + ", N. " + m[3] + " " + strings.TrimSpace(m[4])
	}
	if m := birthPattern.FindStringSubmatch(text); m != nil {
		fields[FieldBirthDate] = m[2] + "." + m[3] + "." + m[4]
		fields[FieldBirthPlace] = strings.TrimSpace(m[1])
	}
	return fields
}

func passportFields(text string) map[string]string {
	fields := make(map[string]string)
	if m := passportPattern.FindString(text); m != "" {
		fields[FieldPassportNumber] = m
	}
	return fields
}

// licenseFields only accepts a number preceded by an explicit label, and
// only on documents that name themselves a driving license.
func licenseFields(text string) map[string]string {
	fields := make(map[string]string)
	if !containsAny(strings.ToUpper(text), "PATENTE DI GUIDA", "DRIVING LICENSE") {
		return fields
	}
	if m := licensePattern.FindStringSubmatch(text); m != nil {
		fields[FieldLicenseNumber] = m[1]
	}
	return fields
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
