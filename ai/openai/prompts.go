package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/quaero/ai"
)

const classificationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "document_type": {
      "type": "string",
      "enum": [%s]
    }
  },
  "required": ["document_type"],
  "additionalProperties": false
}`

const classificationPromptTemplate = `Classify the document text given by the user and return the result as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- document_type must be exactly one of: %s.
- IDENTITY_CARD and PASSPORT apply only to documents issued by the Italian Republic (REPUBBLICA ITALIANA).
- CONTRACT covers contracts and agreements in any language.
- When unsure, answer GENERIC_DOCUMENT.

Example:
Input: "REPUBBLICA ITALIANA CARTA DI IDENTITA COGNOME ROSSI NOME MARIO"
Output:
{"document_type":"IDENTITY_CARD"}`

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "fields": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  },
  "required": ["fields"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract structured fields from the %s document text given by the user and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble or explanation:

%s

Rules:
- Use only these field names: %s.
- Copy values exactly as they appear in the text.
- Omit fields that are not present. Do not hallucinate.
- If nothing can be extracted, return {"fields": {}}.`

// fieldNames lists the fields worth extracting for each document type.
var fieldNames = map[string][]string{
	ai.DocumentTypeIdentityCard:   {"fiscal_code", "address", "birth_date", "birth_place"},
	ai.DocumentTypePassport:       {"passport_number"},
	ai.DocumentTypeDrivingLicense: {"license_number"},
	ai.DocumentTypeContract:       {"parties", "effective_date"},
}

func quotedTypes() string {
	quoted := make([]string, len(ai.DocumentTypes))
	for i, t := range ai.DocumentTypes {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, ", ")
}

// buildClassificationPrompt creates the system prompt with document types embedded.
func buildClassificationPrompt() string {
	return fmt.Sprintf(classificationPromptTemplate,
		fmt.Sprintf(classificationResponseSchema, quotedTypes()),
		strings.Join(ai.DocumentTypes, ", "))
}

// buildExtractionPrompt returns the system prompt for documentType, or ""
// when the type has no fields.
func buildExtractionPrompt(documentType string) string {
	names, ok := fieldNames[documentType]
	if !ok {
		return ""
	}
	return fmt.Sprintf(extractionPromptTemplate, documentType, extractionResponseSchema, strings.Join(names, ", "))
}
