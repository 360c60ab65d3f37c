package profiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlanham/csvsleuth/internal/classify"
	"github.com/mlanham/csvsleuth/internal/fieldstats"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestProfile(t *testing.T) {
	path := writeFile(t, "id|amount|name|joined\n"+
		"1|2.5|Smith|2020-01-02\n"+
		"2|10.25|JONES|2020-02-03\n"+
		"3|unknown|thompson|2020-03-04\n")

	p := New(Options{HasHeader: true, Delimiter: '|'})
	result, err := p.Profile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowCount)
	require.Len(t, result.Fields, 4)

	id := result.Fields[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, classify.TypeInteger, id.Type)
	assert.Equal(t, fieldstats.CaseNA, id.Case)
	assert.Equal(t, "1", id.Min)
	assert.Equal(t, "3", id.Max)
	assert.Equal(t, 3, id.DistinctCount)
	assert.False(t, id.Truncated)

	amount := result.Fields[1]
	assert.Equal(t, classify.TypeFloat, amount.Type)
	assert.Equal(t, "2.5", amount.Min)
	assert.Equal(t, "10.25", amount.Max)

	name := result.Fields[2]
	assert.Equal(t, classify.TypeString, name.Type)
	assert.Equal(t, fieldstats.CaseMixed, name.Case)
	assert.Equal(t, "JONES", name.Min)
	assert.Equal(t, "thompson", name.Max)
	assert.Equal(t, 5, name.MinLen)
	assert.True(t, name.HasMinLen)
	assert.Equal(t, 8, name.MaxLen)

	joined := result.Fields[3]
	assert.Equal(t, classify.TypeTimestamp, joined.Type)
	assert.Equal(t, "2020-01-02", joined.Min)
	assert.Equal(t, "2020-03-04", joined.Max)
}

func TestProfileNoHeader(t *testing.T) {
	path := writeFile(t, "1,a\n2,b\n3,c\n")

	p := New(Options{HasHeader: false, Delimiter: ','})
	result, err := p.Profile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowCount)
	require.Len(t, result.Fields, 2)
	assert.Equal(t, "field_num_0", result.Fields[0].Name)
	assert.Equal(t, "field_num_1", result.Fields[1].Name)
	assert.Equal(t, 3, result.Fields[0].DistinctCount)
}

func TestProfileEmptyFile(t *testing.T) {
	path := writeFile(t, "")

	p := New(Options{HasHeader: true})
	result, err := p.Profile(path)
	require.NoError(t, err)

	assert.Equal(t, 0, result.RowCount)
	assert.Empty(t, result.Fields)
}

func TestProfileAllUnknownField(t *testing.T) {
	path := writeFile(t, "v\nunknown\nn/a\n\n")

	p := New(Options{HasHeader: true, Delimiter: ','})
	result, err := p.Profile(path)
	require.NoError(t, err)

	require.Len(t, result.Fields, 1)
	f := result.Fields[0]
	assert.Equal(t, classify.TypeUnknown, f.Type)
	assert.False(t, f.HasMin)
	assert.False(t, f.HasMax)
	assert.Equal(t, 0, f.MaxLen)
	assert.False(t, f.HasMinLen)
}

func TestProfileTruncation(t *testing.T) {
	path := writeFile(t, "v\na\nb\nc\nd\ne\n")

	p := New(Options{HasHeader: true, Delimiter: ',', MaxFreqSize: 2})
	result, err := p.Profile(path)
	require.NoError(t, err)

	require.Len(t, result.Fields, 1)
	f := result.Fields[0]
	assert.True(t, f.Truncated)
	assert.Equal(t, 2, f.DistinctCount)
}

func TestProfileField(t *testing.T) {
	path := writeFile(t, "id|role|name\n1|pm|smith\n2|dba|jones\n3|pm|thompson\n")

	p := New(Options{HasHeader: true, Delimiter: '|'})
	fp, err := p.ProfileField(path, 1)
	require.NoError(t, err)

	assert.Equal(t, "role", fp.Name)
	assert.Equal(t, classify.TypeString, fp.Type)
	assert.Equal(t, fieldstats.CaseLower, fp.Case)
	assert.Equal(t, "dba", fp.Min)
	assert.Equal(t, "pm", fp.Max)
	assert.Equal(t, 2, fp.DistinctCount)
}

func TestProfileFieldEmptyFile(t *testing.T) {
	path := writeFile(t, "")

	p := New(Options{HasHeader: true, Delimiter: ','})
	_, err := p.ProfileField(path, 0)
	assert.Error(t, err)
}

func TestProfileMixedNumericPromotesToFloat(t *testing.T) {
	path := writeFile(t, "v\n1\n2.5\n3\n")

	p := New(Options{HasHeader: true, Delimiter: ','})
	result, err := p.Profile(path)
	require.NoError(t, err)

	require.Len(t, result.Fields, 1)
	assert.Equal(t, classify.TypeFloat, result.Fields[0].Type)
	assert.Equal(t, "1", result.Fields[0].Min)
	assert.Equal(t, "3", result.Fields[0].Max)
}

// failingReader serves its data and then fails with err instead of EOF.
type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestProfileReaderStream(t *testing.T) {
	p := New(Options{HasHeader: true, Delimiter: ','})
	result, err := p.ProfileReader(strings.NewReader("id,name\n1,smith\n2,jones\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowCount)
	require.Len(t, result.Fields, 2)
	assert.Equal(t, "name", result.Fields[1].Name)
}

func TestProfileReaderErrorContext(t *testing.T) {
	// two complete records, then the stream dies mid-record: the error
	// names the physical record being read, header included
	r := &failingReader{data: "id,name\n1,smith\n2,", err: errors.New("stream died")}

	p := New(Options{HasHeader: true, Delimiter: ','})
	_, err := p.ProfileReader(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 3")
	assert.Contains(t, err.Error(), "stream died")
}

func TestProfileCustomSentinels(t *testing.T) {
	path := writeFile(t, "v\nvoid\n7\n9\n")

	p := New(Options{
		HasHeader:  true,
		Delimiter:  ',',
		Classifier: classify.New("void"),
	})
	result, err := p.Profile(path)
	require.NoError(t, err)

	f := result.Fields[0]
	assert.Equal(t, classify.TypeInteger, f.Type)
	assert.Equal(t, "7", f.Min)
	assert.Equal(t, "9", f.Max)
}
