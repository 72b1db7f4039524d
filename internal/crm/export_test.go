package crm

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia4pymes/chatbot-admin/internal/entity"
)

func TestWriteCSVHeaderAndEscaping(t *testing.T) {
	leads := []entity.Lead{
		{
			LeadID: "l1",
			SourceContact: entity.SourceContact{
				Type:  "web",
				Name:  `Pérez, S.L. "La Buena"`,
				Email: "info@perez.es",
			},
			CRMStatus:     "won",
			Qualification: entity.Qualification{Temperature: "hot"},
			DealValue:     2500,
			CreatedAt:     time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, leads))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Nombre,Email,Teléfono,Canal,Estado,Temperatura,Valor,Fecha", lines[0])

	// comillas dobladas y campo entrecomillado por la coma
	assert.Contains(t, lines[1], `"Pérez, S.L. ""La Buena"""`)

	// y el resultado se vuelve a parsear limpio
	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `Pérez, S.L. "La Buena"`, records[1][1])
	assert.Equal(t, "2500", records[1][7])
	assert.Equal(t, "2025-11-03T09:30:00Z", records[1][8])
}

func TestWriteCSVEmptyListStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "ID,Nombre,Email,Teléfono,Canal,Estado,Temperatura,Valor,Fecha\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	leads := []entity.Lead{
		{LeadID: "l1", SourceContact: entity.SourceContact{Type: "email", Name: "Eva"}, CreatedAt: time.Now()},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, leads))
	// cabecera ZIP del xlsx
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2025, 11, 3, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "leads_export_2025-11-03.csv", ExportFileName("csv", now))
	assert.Equal(t, "leads_export_2025-11-03.xlsx", ExportFileName("xlsx", now))
}
