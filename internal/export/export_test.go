package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"rpy-translator/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUnits(t *testing.T) []Unit {
	t.Helper()
	lines := []string{
		"label start:",
		`    mc happy "Tab	and \"quotes\" and \n"`,
		`    "Plain narration."`,
	}
	res, err := parser.ParseFile(lines, parser.ModeAuto)
	require.NoError(t, err)
	return FromResult("game/script.rpy", res)
}

func TestFromResult(t *testing.T) {
	units := sampleUnits(t)
	require.Len(t, units, 2)

	assert.Equal(t, "game/script.rpy", units[0].File)
	assert.Equal(t, 2, units[0].Line)
	assert.Equal(t, "dialogue", units[0].Type)
	assert.Equal(t, "label", units[0].Context)
	assert.Equal(t, "mc", units[0].Character)
	assert.Len(t, units[0].Hash, 64)

	assert.Equal(t, "narration", units[1].Type)
	assert.Empty(t, units[1].Character)
}

func TestTSV_EditRoundTrip(t *testing.T) {
	units := sampleUnits(t)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, units))

	rows := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, rows, 3, "tabs and newlines inside strings must be escaped")
	assert.Equal(t, "file\tline\ttype\tcontext\tlanguage\tcharacter\toriginal\tcurrent", rows[0])

	edits, err := ReadTSV(strings.NewReader(buf.String()))
	require.NoError(t, err)

	require.Contains(t, edits, "game/script.rpy")
	assert.Equal(t, units[0].Current, edits["game/script.rpy"][1])
	assert.Equal(t, "Plain narration.", edits["game/script.rpy"][2])
}

func TestReadTSV_ReorderedColumns(t *testing.T) {
	in := "current\tline\tfile\r\nSelam\t4\ta.rpy\r\n\r\nBye\\tnow\t7\ta.rpy\r\n"

	edits, err := ReadTSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, Edits{"a.rpy": {3: "Selam", 6: "Bye\tnow"}}, edits)
}

func TestReadTSV_Errors(t *testing.T) {
	_, err := ReadTSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrBadHeader)

	_, err = ReadTSV(strings.NewReader("file\toriginal\n"))
	assert.ErrorIs(t, err, ErrBadHeader)

	_, err = ReadTSV(strings.NewReader("file\tline\tcurrent\na.rpy\tzero\tx\n"))
	assert.ErrorContains(t, err, "bad line number")

	_, err = ReadTSV(strings.NewReader("file\tline\tcurrent\na.rpy\t1\n"))
	assert.ErrorContains(t, err, "expected at least 3 columns")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleUnits(t)))

	var decoded []Unit
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 2)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	assert.Error(t, Write(&buf, Format("xml"), nil))
}

func TestEscapeTSV(t *testing.T) {
	for _, s := range []string{`a\nb`, "tab\there", `back\\slash`, "crlf\r\n", ""} {
		assert.Equal(t, s, unescapeTSV(escapeTSV(s)))
	}
}
