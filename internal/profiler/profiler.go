// Package profiler assembles per-field profiles for a delimited file by
// combining the frequency scanner, the value classifier and the field
// statistics engine.
package profiler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mlanham/csvsleuth/internal/classify"
	"github.com/mlanham/csvsleuth/internal/fieldstats"
	"github.com/mlanham/csvsleuth/internal/freq"
)

// FieldProfile is the derived, read-only result bundle for one field.
type FieldProfile struct {
	Name          string
	Type          classify.ValueType
	Case          fieldstats.Case
	Min           string
	HasMin        bool
	Max           string
	HasMax        bool
	MinLen        int
	HasMinLen     bool
	MaxLen        int
	DistinctCount int
	UnknownCount  int
	Truncated     bool
}

// FileProfile bundles the profiles of every field of one file.
type FileProfile struct {
	Path     string
	RowCount int
	Fields   []FieldProfile
}

// Options configures a Profiler.
type Options struct {
	HasHeader   bool
	Delimiter   rune                 // defaults to comma
	MaxFreqSize int                  // defaults to freq.MaxFreqSizeDefault
	Classifier  *classify.Classifier // defaults to classify.Default
}

// Profiler derives field profiles. Each call performs its own scan; no
// state is shared between files.
type Profiler struct {
	opts  Options
	clf   *classify.Classifier
	stats *fieldstats.Stats
}

// New builds a Profiler, filling in defaults for zero option values.
func New(opts Options) *Profiler {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.MaxFreqSize <= 0 {
		opts.MaxFreqSize = freq.MaxFreqSizeDefault
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.Default
	}
	return &Profiler{
		opts:  opts,
		clf:   opts.Classifier,
		stats: fieldstats.New(opts.Classifier),
	}
}

// ProfileField profiles a single field: one pass for the name, one for the
// frequency distribution, then statistics over the distinct values.
func (p *Profiler) ProfileField(path string, fieldNumber int) (*FieldProfile, error) {
	name, ok, err := freq.FieldName(path, fieldNumber, p.opts.HasHeader, p.opts.Delimiter)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("profiler: %s is empty", path)
	}

	fm, truncated, err := freq.FieldFreq(path, fieldNumber, p.opts.HasHeader, p.opts.Delimiter, p.opts.MaxFreqSize)
	if err != nil {
		return nil, err
	}

	prof, err := p.derive(name, fm, truncated)
	if err != nil {
		return nil, err
	}
	return prof, nil
}

// Profile performs one pass over the whole file, building a bounded
// frequency distribution for every field at once, then derives a profile
// per field. Callers who need many fields of the same file should prefer
// this over repeated ProfileField calls.
func (p *Profiler) Profile(path string) (*FileProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result, err := p.ProfileReader(f)
	if err != nil {
		return nil, err
	}
	result.Path = path
	return result, nil
}

// ProfileReader is Profile over an already-open stream; the caller owns
// the stream.
func (p *Profiler) ProfileReader(r io.Reader) (*FileProfile, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.opts.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	result := &FileProfile{}

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading first record: %w", err)
	}

	names := make([]string, len(first))
	freqs := make([]fieldstats.FreqMap, len(first))
	truncs := make([]bool, len(first))
	for i := range first {
		if p.opts.HasHeader {
			names[i] = first[i]
		} else {
			names[i] = fmt.Sprintf("field_num_%d", i)
		}
		freqs[i] = make(fieldstats.FreqMap)
	}

	if !p.opts.HasHeader {
		p.tally(freqs, truncs, first)
		result.RowCount++
	}

	recNum := 1 // physical records consumed, header included
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", recNum+1, err)
		}
		recNum++
		p.tally(freqs, truncs, rec)
		result.RowCount++
	}

	result.Fields = make([]FieldProfile, len(first))
	for i := range first {
		prof, err := p.derive(names[i], freqs[i], truncs[i])
		if err != nil {
			return nil, err
		}
		result.Fields[i] = *prof
	}
	return result, nil
}

// tally counts one record's tokens. A field whose map has reached the
// configured bound stops accepting updates and is marked truncated; the
// other fields keep counting.
func (p *Profiler) tally(freqs []fieldstats.FreqMap, truncs []bool, rec []string) {
	for i, tok := range rec {
		if i >= len(freqs) || truncs[i] {
			continue
		}
		freqs[i][tok]++
		if len(freqs[i]) >= p.opts.MaxFreqSize {
			truncs[i] = true
		}
	}
}

// derive turns a frequency distribution into a FieldProfile.
func (p *Profiler) derive(name string, fm fieldstats.FreqMap, truncated bool) (*FieldProfile, error) {
	keys := fm.Keys()
	vt := p.inferType(keys)

	prof := &FieldProfile{
		Name:          name,
		Type:          vt,
		Case:          p.stats.GetCase(vt, keys),
		DistinctCount: len(fm),
		Truncated:     truncated,
	}
	for _, k := range keys {
		if p.clf.IsUnknown(k) {
			prof.UnknownCount += fm[k]
		}
	}

	var err error
	prof.Min, prof.HasMin, err = p.stats.GetMin(vt, keys)
	if err != nil {
		return nil, err
	}
	prof.Max, prof.HasMax, err = p.stats.GetMax(vt, keys)
	if err != nil {
		return nil, err
	}
	prof.MaxLen = p.stats.MaxLength(keys)
	prof.MinLen, prof.HasMinLen = p.stats.MinLength(keys)
	return prof, nil
}

// inferType decides a field's overall type from its distinct values.
// Unknown tokens never vote. Any plain string forces TypeString, as does a
// mix of timestamps and numerics. Integers promote to float when floats
// appear alongside them.
func (p *Profiler) inferType(values []string) classify.ValueType {
	var ints, floats, stamps, strs int
	for _, v := range values {
		switch p.clf.Classify(v) {
		case classify.TypeInteger:
			ints++
		case classify.TypeFloat:
			floats++
		case classify.TypeTimestamp:
			stamps++
		case classify.TypeString:
			strs++
		}
	}

	switch {
	case ints+floats+stamps+strs == 0:
		return classify.TypeUnknown
	case strs > 0:
		return classify.TypeString
	case stamps > 0 && ints+floats > 0:
		return classify.TypeString
	case stamps > 0:
		return classify.TypeTimestamp
	case floats > 0:
		return classify.TypeFloat
	default:
		return classify.TypeInteger
	}
}
