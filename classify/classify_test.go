package classify

import (
	"context"
	"testing"

	"github.com/poiesic/quaero/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const identityCard = `REPUBBLICA ITALIANA
CARTA DI IDENTITÀ
COGNOME ROSSI
NOME MARIO
LUOGO E DATA DI NASCITA
ROMA 12.03.1985
CODICE FISCALE
RSSMRA85C12H501Z
INDIRIZZO DI RESIDENZA
VIA GIUSEPPE GARIBALDI, N. 10 ROMA (RM)`

func TestDetectType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"identity card", identityCard, ai.DocumentTypeIdentityCard},
		{"identity card english", "Repubblica Italiana identity card", ai.DocumentTypeIdentityCard},
		{"identity card needs issuer", "CARTA DI IDENTITA", ai.DocumentTypeGeneric},
		{"passport", "REPUBBLICA ITALIANA PASSAPORTO YA1234567", ai.DocumentTypePassport},
		{"foreign passport", "PASSPORT United Kingdom", ai.DocumentTypeGeneric},
		{"driving license", "patente di guida cat. B", ai.DocumentTypeDrivingLicense},
		{"contract", "This Agreement is made between the parties", ai.DocumentTypeContract},
		{"contratto", "CONTRATTO DI LOCAZIONE", ai.DocumentTypeContract},
		{"generic", "Quarterly report on revenue", ai.DocumentTypeGeneric},
		{"empty", "", ai.DocumentTypeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectType(tt.text))
		})
	}
}

func TestExtractFields_IdentityCard(t *testing.T) {
	fields := ExtractFields(identityCard, ai.DocumentTypeIdentityCard)

	assert.Equal(t, "RSSMRA85C12H501Z", fields[FieldFiscalCode])
	assert.Equal(t, "12.03.1985", fields[FieldBirthDate])
	assert.Equal(t, "ROMA", fields[FieldBirthPlace])
	assert.Equal(t, "VIA GIUSEPPE GARIBALDI, N. 10 ROMA (RM)", fields[FieldAddress])
}

func TestExtractFields_Passport(t *testing.T) {
	fields := ExtractFields("REPUBBLICA ITALIANA PASSAPORTO\nN. YA1234567", ai.DocumentTypePassport)
	assert.Equal(t, map[string]string{FieldPassportNumber: "YA1234567"}, fields)

	assert.Empty(t, ExtractFields("PASSAPORTO senza numero", ai.DocumentTypePassport))
}

func TestExtractFields_DrivingLicense(t *testing.T) {
	fields := ExtractFields("PATENTE DI GUIDA\nNumero: U1AB234567", ai.DocumentTypeDrivingLicense)
	assert.Equal(t, "U1AB234567", fields[FieldLicenseNumber])

	t.Run("requires the document keyword", func(t *testing.T) {
		assert.Empty(t, ExtractFields("Numero: U1AB234567", ai.DocumentTypeDrivingLicense))
	})
}

func TestExtractFields_OtherTypes(t *testing.T) {
	assert.Empty(t, ExtractFields("CONTRACT between A and B", ai.DocumentTypeContract))
	assert.Empty(t, ExtractFields("anything", ai.DocumentTypeGeneric))
	assert.NotNil(t, ExtractFields("anything", "UNKNOWN"))
}

func TestClassifier_Interface(t *testing.T) {
	c := New()
	ctx := context.Background()

	docType, err := c.Classify(ctx, identityCard)
	require.NoError(t, err)
	assert.Equal(t, ai.DocumentTypeIdentityCard, docType)

	fields, err := c.ExtractFields(ctx, identityCard, docType)
	require.NoError(t, err)
	assert.Len(t, fields, 4)
}
