// Package freq builds bounded per-field frequency distributions by
// streaming a delimited file in a single sequential pass.
package freq

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mlanham/csvsleuth/internal/fieldstats"
)

// MaxFreqSizeDefault caps the number of distinct tokens tracked per field.
const MaxFreqSizeDefault = 10000

// FieldFreq opens path and collects the frequency distribution of the field
// at fieldNumber. The file is closed before returning on every path.
func FieldFreq(path string, fieldNumber int, hasHeader bool, delimiter rune, maxFreqSize int) (fieldstats.FreqMap, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return FieldFreqReader(f, fieldNumber, hasHeader, delimiter, maxFreqSize)
}

// FieldFreqReader streams r record by record, skipping the first record when
// hasHeader is set, and counts the token at fieldNumber. The scan stops the
// moment the map holds maxFreqSize distinct tokens; the returned bool
// reports that truncation. A maxFreqSize of zero or less selects
// MaxFreqSizeDefault. Records with too few fields contribute nothing.
func FieldFreqReader(r io.Reader, fieldNumber int, hasHeader bool, delimiter rune, maxFreqSize int) (fieldstats.FreqMap, bool, error) {
	if fieldNumber < 0 {
		return nil, false, fmt.Errorf("freq: field number %d out of range", fieldNumber)
	}
	if maxFreqSize <= 0 {
		maxFreqSize = MaxFreqSizeDefault
	}

	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	fm := make(fieldstats.FreqMap)
	truncated := false
	recNum := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("reading record %d: %w", recNum+1, err)
		}
		recNum++
		if recNum == 1 && hasHeader {
			continue
		}
		if fieldNumber >= len(rec) {
			continue
		}
		fm[rec[fieldNumber]]++
		if len(fm) >= maxFreqSize {
			logrus.WithFields(logrus.Fields{
				"field":    fieldNumber,
				"distinct": len(fm),
				"limit":    maxFreqSize,
			}).Warn("frequency distribution reached its size limit, truncating scan")
			truncated = true
			break
		}
	}
	return fm, truncated, nil
}

// FieldName resolves the name of the field at fieldNumber by reading only
// the first line of path. ok is false when the file is empty.
func FieldName(path string, fieldNumber int, hasHeader bool, delimiter rune) (string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return FieldNameReader(f, fieldNumber, hasHeader, delimiter)
}

// FieldNameReader is FieldName over an already-open stream. With a header
// the token at fieldNumber of the first line is returned; without one a
// positional name of the form field_num_<N> is synthesized.
func FieldNameReader(r io.Reader, fieldNumber int, hasHeader bool, delimiter rune) (string, bool, error) {
	if fieldNumber < 0 {
		return "", false, fmt.Errorf("freq: field number %d out of range", fieldNumber)
	}

	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("reading first line: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", false, nil
	}

	if !hasHeader {
		return fmt.Sprintf("field_num_%d", fieldNumber), true, nil
	}

	fields := strings.Split(line, string(delimiter))
	if fieldNumber >= len(fields) {
		return "", false, fmt.Errorf("freq: field number %d out of range for header with %d fields", fieldNumber, len(fields))
	}
	return fields[fieldNumber], true, nil
}
