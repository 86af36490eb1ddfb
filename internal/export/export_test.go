package export

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCSV(t *testing.T) {
	headers := []string{"ID", "Guest", "Note"}
	rows := [][]string{
		{"B-1001", "John Doe", `said "hi"`},
		{"B-1002", "Sarah, Lee", ""},
		{"B-1003", "Mike\nTan", "x"},
	}

	t.Run("LineCount", func(t *testing.T) {
		out := CSV(headers, rows[:2])
		assert.Len(t, strings.Split(out, "\n"), 3)
		assert.False(t, strings.HasSuffix(out, "\n"))
	})

	t.Run("QuotesEverything", func(t *testing.T) {
		out := CSV(headers, rows[:2])
		lines := strings.Split(out, "\n")
		assert.Equal(t, `"ID","Guest","Note"`, lines[0])
		assert.Equal(t, `"B-1001","John Doe","said ""hi"""`, lines[1])
		assert.Equal(t, `"B-1002","Sarah, Lee",""`, lines[2])
	})

	t.Run("HeaderOnly", func(t *testing.T) {
		assert.Equal(t, `"ID","Guest","Note"`, CSV(headers, nil))
	})

	t.Run("Writer", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, headers, rows[:1]))
		assert.Equal(t, CSV(headers, rows[:1]), buf.String())
	})
}

func TestXLSX(t *testing.T) {
	headers := []string{"ID", "Guest"}
	rows := [][]string{{"B-1001", "John Doe"}, {"B-1002", "Sarah Lee"}}

	t.Run("Cells", func(t *testing.T) {
		f, err := XLSX("bookings", headers, rows)
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"bookings"}, f.GetSheetList())
		v, err := f.GetCellValue("bookings", "A1")
		require.NoError(t, err)
		assert.Equal(t, "ID", v)
		v, err = f.GetCellValue("bookings", "B3")
		require.NoError(t, err)
		assert.Equal(t, "Sarah Lee", v)
	})

	t.Run("WriteAndReopen", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteXLSX(&buf, "users", headers, rows))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		got, err := f.GetRows("users")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("Save", func(t *testing.T) {
		dir := t.TempDir()
		path, err := SaveXLSX(dir, "rentals", headers, rows, time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, "rentals_2025-10-01_120000.xlsx"))
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})
}
