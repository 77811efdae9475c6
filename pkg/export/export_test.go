package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Code", "Grade"},
		Rows: []map[string]string{
			{"Code": "A101", "Grade": "2.00"},
			{"Code": "A102", "Grade": "4.00"},
		},
		Notes: []string{"GPA: 3.00"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Code,Grade\nA101,2.00\nA102,4.00\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Name", "Grade"},
		Rows:    []map[string]string{{"Name": "=HYPERLINK(\"x\")", "Grade": "-1.5"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Grade\n\"'=HYPERLINK(\"\"x\"\")\",-1.5\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Academic Record")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter("Grades").Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows("Grades")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Code", "Grade"}, rows[0])
	assert.Equal(t, []string{"A102", "4.00"}, rows[2])
}
