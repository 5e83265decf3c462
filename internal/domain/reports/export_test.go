package reports

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []BalanceRow {
	return []BalanceRow{
		{
			FirstName: "Marie", LastName: "Durand", Year: 2025,
			Acquired: 25, CarriedOver: 2, FractionnementBonus: 1,
			Compensatory: 0.5, Taken: 10.5, Remaining: 18,
		},
		{
			FirstName: "Paul", LastName: "Martin", Year: 2025,
			Acquired: 12.44, Taken: 5, Remaining: 7.44,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Nom;Prenom;Annee;Acquis;Report;Fractionnement;Compensateur;Pris;Restant", lines[0])
	assert.Equal(t, "Durand;Marie;2025;25;2;1;0.5;10.5;18", lines[1])
	assert.Equal(t, "Martin;Paul;2025;12.44;0;0;0;5;7.44", lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(buf.String()), "\n")+1)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRows(), 2025))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "Soldes 2025")

	name, err := f.GetCellValue("Soldes 2025", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Durand", name)

	remaining, err := f.GetCellValue("Soldes 2025", "I3")
	require.NoError(t, err)
	assert.Equal(t, "7.44", remaining)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleRows(), 2025))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
