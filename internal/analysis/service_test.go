package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDropsBlankRows(t *testing.T) {
	data := ",,,\n" +
		"Nombre, Correo ,Telegram\n" +
		"Ana,ana@uc.cl,@ana\n" +
		",,\n" +
		" , ,\n" +
		"Luis,,luis\n"

	df, err := NewCSVService().Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Nombre", "Correo", "Telegram"}, df.Headers)
	require.Len(t, df.Rows, 2)
	assert.Equal(t, "Ana", df.Cell(0, 0))
	assert.Equal(t, "luis", df.Cell(1, 2))
	assert.Equal(t, "", df.Cell(1, 9), "out of range cells read as empty")
}

func TestParseStripsBOMAndHandlesQuotedNewlines(t *testing.T) {
	data := "\xEF\xBB\xBFNombre,¿Por qué quieres postular?\n" +
		"\"María José\",\"Porque me gusta\nprogramar, mucho\"\n"

	df, err := NewCSVService().Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "Nombre", df.Headers[0])
	require.Len(t, df.Rows, 1)
	assert.Equal(t, "Porque me gusta\nprogramar, mucho", df.Cell(0, 1))
}

func TestParseSemicolonFallback(t *testing.T) {
	data := "Nombre;Correo\nAna;ana@uc.cl\n"

	df, err := NewCSVService().Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"Nombre", "Correo"}, df.Headers)
	assert.Equal(t, "ana@uc.cl", df.Cell(0, 1))
}

func TestParseErrors(t *testing.T) {
	_, err := NewCSVService().Parse([]byte{0xff, 0xfe, 'a', ',', 'b'})
	assert.ErrorIs(t, err, ErrDecoding)

	_, err = NewCSVService().Parse([]byte(",,,\n , \n"))
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = NewCSVService().Parse([]byte(";;;\n ; \n"))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestParseSkipsSeparatorOnlyRowsInSemicolonFiles(t *testing.T) {
	df, err := NewCSVService().Parse([]byte(";;\nNombre;Correo\n;;\nAna;ana@uc.cl\n , ;\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Nombre", "Correo"}, df.Headers)
	require.Len(t, df.Rows, 1)
	assert.Equal(t, "Ana", df.Cell(0, 0))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024-1.csv")
	require.NoError(t, os.WriteFile(path, []byte("Nombre\nAna\n"), 0o644))

	df, err := NewCSVService().ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, df.FilePath)
	assert.Equal(t, "2024-1.csv", df.FileName)
	assert.Equal(t, []string{"Ana"}, df.ColumnValues(0))

	_, err = NewCSVService().ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseAttendanceTable(t *testing.T) {
	doc := strings.Join([]string{
		"# Curso IIC2233",
		"",
		"| Sesión | Ana Pérez | Luis Soto | |",
		"|--------|:---------:|-----------|-|",
		"| S1 | A | X | |",
		"| S2 |   | J |",
		"| S3 | A |",
		"",
		"Notas al pie sin tabla",
	}, "\n")

	table, err := ParseAttendanceTable(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Ana Pérez", "Luis Soto"}, table.People)
	assert.Equal(t, []string{"S1", "S2", "S3"}, table.Sessions)
	assert.Equal(t, "A", table.StatusOf("S1", "Ana Pérez"))
	assert.Equal(t, "X", table.StatusOf("S1", "Luis Soto"))
	assert.Equal(t, "", table.StatusOf("S2", "Ana Pérez"), "blank cell keeps its column")
	assert.Equal(t, "J", table.StatusOf("S2", "Luis Soto"))
	assert.Equal(t, "", table.StatusOf("S3", "Luis Soto"), "short rows leave trailing people absent")
}

func TestParseAttendanceTableDuplicateSession(t *testing.T) {
	doc := "| | Ana |\n|---|---|\n| S1 | A |\n| S1 | J |\n"

	table, err := ParseAttendanceTable(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"S1"}, table.Sessions)
	assert.Equal(t, "J", table.StatusOf("S1", "Ana"))
}

func TestParseAttendanceTableWithoutTable(t *testing.T) {
	_, err := ParseAttendanceTable(strings.NewReader("just prose\n"))
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestReadAttendanceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IIC2233.md")
	require.NoError(t, os.WriteFile(path, []byte("| | Ana |\n|-|-|\n| S1 | A |\n"), 0o644))

	table, err := ReadAttendanceFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana"}, table.People)
}
