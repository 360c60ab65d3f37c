package dialect

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateFile writes recordCnt 4-field records joined by delim, optionally
// quoting every field.
func generateFile(t *testing.T, delim rune, quoting bool, recordCnt int) string {
	t.Helper()

	names := []string{"smith", "jones", "thompson", "ritchie"}
	roles := []string{"pm", "programmer", "dba", "sysadmin", "qa", "manager"}
	projects := []string{"cads53", "jefta", "norma", "us-cepa"}

	var sb strings.Builder
	for i := 0; i < recordCnt; i++ {
		fields := []string{
			fmt.Sprintf("%d", i),
			projects[rand.Intn(len(projects))],
			roles[rand.Intn(len(roles))],
			names[rand.Intn(len(names))],
		}
		if quoting {
			for j, f := range fields {
				fields[j] = `"` + f + `"`
			}
		}
		sb.WriteString(strings.Join(fields, string(delim)))
		sb.WriteByte('\n')
	}

	path := filepath.Join(t.TempDir(), "generated.psv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

func TestQuotedFile(t *testing.T) {
	path := generateFile(t, '|', true, 100)

	det := NewDetector(path)
	require.NoError(t, det.Analyze())

	assert.Equal(t, 100, det.RecordCount())
	assert.Equal(t, 4, det.FieldCount())
	assert.Equal(t, FormatCSV, det.FormatType())
	assert.Equal(t, '|', det.Delimiter())
	assert.True(t, det.Quoting())
}

func TestUnquotedFile(t *testing.T) {
	path := generateFile(t, '|', false, 100)

	det := NewDetector(path)
	require.NoError(t, det.Analyze())

	assert.Equal(t, 100, det.RecordCount())
	assert.Equal(t, 4, det.FieldCount())
	assert.Equal(t, FormatCSV, det.FormatType())
	assert.Equal(t, '|', det.Delimiter())
	assert.False(t, det.Quoting())
}

func TestExplicitDelimiter(t *testing.T) {
	path := generateFile(t, '|', false, 20)

	det := NewDetector(path, WithDelimiter('|'))
	require.NoError(t, det.Analyze())

	assert.Equal(t, '|', det.Delimiter())
	assert.Equal(t, FormatCSV, det.FormatType())
}

func TestCommaDetection(t *testing.T) {
	path := generateFile(t, ',', false, 50)

	det := NewDetector(path)
	require.NoError(t, det.Analyze())

	assert.Equal(t, ',', det.Delimiter())
	assert.Equal(t, FormatCSV, det.FormatType())
	assert.Equal(t, 4, det.FieldCount())
}

func TestAnalyzeIdempotent(t *testing.T) {
	path := generateFile(t, '|', true, 30)

	det := NewDetector(path)
	require.NoError(t, det.Analyze())
	records, fields := det.RecordCount(), det.FieldCount()

	// removing the file proves Analyze does not re-open it once cached
	require.NoError(t, os.Remove(path))
	require.NoError(t, det.Analyze())

	assert.Equal(t, records, det.RecordCount())
	assert.Equal(t, fields, det.FieldCount())
}

func TestEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	det := NewDetector(path)
	require.NoError(t, det.Analyze())

	assert.Equal(t, 0, det.RecordCount())
	assert.Equal(t, 0, det.FieldCount())
	assert.Equal(t, FormatUnknown, det.FormatType())
}

func TestSingleColumnNotCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbravo\ncharlie\n"), 0644))

	det := NewDetector(path, WithDelimiter(','))
	require.NoError(t, det.Analyze())

	assert.NotEqual(t, FormatCSV, det.FormatType())
	assert.Equal(t, 3, det.RecordCount())
}

func TestFixedWidthFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixed.txt")
	require.NoError(t, os.WriteFile(path, []byte("aaaa11\nbbbb22\ncccc33\n"), 0644))

	det := NewDetector(path, WithDelimiter(','))
	require.NoError(t, det.Analyze())

	assert.Equal(t, FormatFixed, det.FormatType())
	assert.Equal(t, 1, det.FieldCount())
}

func TestIrregularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\nd,e\nf\ng,h,i,j\n"), 0644))

	det := NewDetector(path, WithDelimiter(','))
	require.NoError(t, det.Analyze())

	assert.Equal(t, FormatUnknown, det.FormatType())
	assert.Equal(t, 4, det.RecordCount())
}

func TestQuotedMultilineRecords(t *testing.T) {
	// an embedded newline inside a quoted field is one record, not two
	path := filepath.Join(t.TempDir(), "multiline.csv")
	content := "a,\"line one\nline two\",c\nd,e,f\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	det := NewDetector(path, WithDelimiter(','))
	require.NoError(t, det.Analyze())

	assert.Equal(t, 2, det.RecordCount())
	assert.Equal(t, 3, det.FieldCount())
	assert.Equal(t, FormatCSV, det.FormatType())
}

func TestQuotingWithEmbeddedDelimiter(t *testing.T) {
	// delimiters inside quoted fields split neither the record nor the
	// quoting vote
	path := filepath.Join(t.TempDir(), "embedded.csv")
	content := "\"a,b\",\"c\",\"d,e\"\n\"f\",\"g,h\",\"i\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	det := NewDetector(path, WithDelimiter(','))
	require.NoError(t, det.Analyze())

	assert.Equal(t, 2, det.RecordCount())
	assert.Equal(t, 3, det.FieldCount())
	assert.Equal(t, FormatCSV, det.FormatType())
	assert.True(t, det.Quoting())
}

func TestColonDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colon.txt")
	content := "id:role:name\n1:pm:smith\n2:dba:jones\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	det := NewDetector(path)
	require.NoError(t, det.Analyze())

	assert.Equal(t, ':', det.Delimiter())
	assert.Equal(t, FormatCSV, det.FormatType())
	assert.Equal(t, 3, det.FieldCount())
}

func TestMissingFile(t *testing.T) {
	det := NewDetector(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, det.Analyze())
}
