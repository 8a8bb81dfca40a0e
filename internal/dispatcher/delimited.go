package dispatcher

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/models"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// txtDelimiters are the separators sniffed for txt files, in tie-break order.
var txtDelimiters = []rune{'|', '\t', ',', ';'}

func readDelimited(r io.Reader, ft filetype.FileType, opts ReadOptions) (*models.Table, error) {
	decoded, err := decode(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(decoded)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ','
		if ft == filetype.TXT {
			delimiter = sniffDelimiter(br)
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed delimited content: %w", err)
	}
	records = dropBlankRecords(records)
	if opts.SkipRows > 0 {
		if opts.SkipRows >= len(records) {
			records = nil
		} else {
			records = records[opts.SkipRows:]
		}
	}
	return buildTable(records, opts.HeaderInfo)
}

// decode wraps r with a decoder for the named charset. Empty means UTF-8.
func decode(r io.Reader, name string) (io.Reader, error) {
	if name == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	if enc == unicode.UTF8 || enc == encoding.Nop {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

func sniffDelimiter(br *bufio.Reader) rune {
	line, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return ','
	}
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', 0
	for _, d := range txtDelimiters {
		if n := strings.Count(string(line), string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func dropBlankRecords(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		blank := true
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out
}

// buildTable turns raw records into a table. With a header row the first
// record names the columns; otherwise the configured header list does, or
// generated col_N names when none is configured.
func buildTable(records [][]string, info *models.HeaderInfo) (*models.Table, error) {
	hasHeader := info == nil || info.HasHeader

	var header []string
	switch {
	case hasHeader && len(records) > 0:
		header, records = records[0], records[1:]
	case hasHeader:
		return models.NewTable(), nil
	case len(info.Header) > 0:
		header = info.Header
	default:
		width := 0
		for _, rec := range records {
			if len(rec) > width {
				width = len(rec)
			}
		}
		header = make([]string, width)
		for i := range header {
			header[i] = fmt.Sprintf("col_%d", i+1)
		}
	}

	table := models.NewTable(uniqueHeader(header)...)
	for i, rec := range records {
		if err := table.AppendRow(trimTrailingEmpty(rec, len(table.Columns))); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return table, nil
}

// trimTrailingEmpty drops empty cells beyond width so trailing separators do
// not count as extra columns.
func trimTrailingEmpty(rec []string, width int) []string {
	for len(rec) > width && strings.TrimSpace(rec[len(rec)-1]) == "" {
		rec = rec[:len(rec)-1]
	}
	return rec
}

// uniqueHeader normalizes header names to NFC and suffixes repeats with .1, .2, ...
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := norm.NFC.String(strings.TrimSpace(h))
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}
