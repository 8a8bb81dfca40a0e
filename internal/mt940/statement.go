// Package mt940 parses SWIFT MT940 customer statements and joins statements
// that were split across several messages.
package mt940

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fjacquet/mis-parser/internal/dateutils"

	"github.com/shopspring/decimal"
)

// Statement is one MT940 message. A statement split across messages shares
// Account and Number and differs in Sequence.
type Statement struct {
	Reference string
	Account   string
	Number    string
	Sequence  int
	Currency  string
	Lines     []Line
}

// Line is a :61: statement line with its :86: narrative.
type Line struct {
	ValueDate         time.Time
	EntryDate         time.Time
	Mark              string
	Amount            decimal.Decimal
	TransactionType   string
	CustomerReference string
	BankReference     string
	Narrative         string
}

// Signed returns the amount with debits and credit reversals negative.
func (l Line) Signed() decimal.Decimal {
	if l.Mark == "D" || l.Mark == "RC" {
		return l.Amount.Neg()
	}
	return l.Amount
}

var (
	tagLine       = regexp.MustCompile(`^:(\d{2}[A-Z]?):(.*)$`)
	statementLine = regexp.MustCompile(`^(\d{6})(\d{4})?(RC|RD|C|D)([A-Z])?(\d+,\d*)([A-Z][A-Z0-9]{3})([^/]*)(?://(.*))?$`)
	balanceLine   = regexp.MustCompile(`^[CD]\d{6}([A-Z]{3})`)
)

type field struct {
	tag   string
	value string
}

// Parse reads every statement in data. Messages are separated by a line
// starting with '-' or by a new :20: tag; SWIFT block headers are ignored.
func Parse(data []byte) ([]Statement, error) {
	var (
		statements []Statement
		fields     []field
	)
	flush := func() error {
		if len(fields) == 0 {
			return nil
		}
		st, err := buildStatement(fields)
		fields = nil
		if err != nil {
			return err
		}
		statements = append(statements, st)
		return nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r ")
		if i := strings.LastIndex(line, "{4:"); i >= 0 {
			line = line[i+3:]
		}
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "-"):
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		case strings.HasPrefix(line, "{"):
			continue
		}

		if m := tagLine.FindStringSubmatch(line); m != nil {
			if m[1] == "20" {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			fields = append(fields, field{tag: m[1], value: m[2]})
			continue
		}
		if len(fields) == 0 {
			continue
		}
		fields[len(fields)-1].value += "\n" + line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan MT940 content: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return statements, nil
}

func buildStatement(fields []field) (Statement, error) {
	var st Statement
	for _, f := range fields {
		switch f.tag {
		case "20":
			st.Reference = strings.TrimSpace(f.value)
		case "25":
			st.Account = strings.TrimSpace(f.value)
		case "28C", "28":
			number, seq, _ := strings.Cut(strings.TrimSpace(f.value), "/")
			st.Number = number
			if seq != "" {
				n, err := strconv.Atoi(seq)
				if err != nil {
					return st, fmt.Errorf("invalid statement sequence %q: %w", f.value, err)
				}
				st.Sequence = n
			}
		case "60F", "60M":
			if m := balanceLine.FindStringSubmatch(f.value); m != nil {
				st.Currency = m[1]
			}
		case "61":
			line, err := parseLine(f.value)
			if err != nil {
				return st, err
			}
			st.Lines = append(st.Lines, line)
		case "86":
			if len(st.Lines) > 0 {
				last := &st.Lines[len(st.Lines)-1]
				last.Narrative = strings.Join(strings.Fields(f.value), " ")
			}
		}
	}
	return st, nil
}

func parseLine(value string) (Line, error) {
	first, supplementary, _ := strings.Cut(value, "\n")
	m := statementLine.FindStringSubmatch(strings.TrimSpace(first))
	if m == nil {
		return Line{}, fmt.Errorf("invalid :61: statement line %q", first)
	}

	valueDate, err := dateutils.ParseMT940Date(m[1])
	if err != nil {
		return Line{}, err
	}
	entryDate := valueDate
	if m[2] != "" {
		entryDate, err = entryDateNear(valueDate, m[2])
		if err != nil {
			return Line{}, err
		}
	}

	amount, err := decimal.NewFromString(strings.Replace(m[5], ",", ".", 1))
	if err != nil {
		return Line{}, fmt.Errorf("invalid :61: amount %q: %w", m[5], err)
	}

	bankRef := strings.TrimSpace(m[8])
	if s := strings.TrimSpace(supplementary); s != "" {
		bankRef = strings.TrimSpace(bankRef + " " + s)
	}

	return Line{
		ValueDate:         valueDate,
		EntryDate:         entryDate,
		Mark:              m[3],
		Amount:            amount,
		TransactionType:   m[6],
		CustomerReference: strings.TrimSpace(m[7]),
		BankReference:     bankRef,
	}, nil
}

// entryDateNear resolves an MMDD entry date to the year closest to valueDate.
func entryDateNear(valueDate time.Time, mmdd string) (time.Time, error) {
	month, _ := strconv.Atoi(mmdd[:2])
	day, _ := strconv.Atoi(mmdd[2:])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid entry date %q", mmdd)
	}
	best := time.Date(valueDate.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
	for _, delta := range []int{-1, 1} {
		candidate := time.Date(valueDate.Year()+delta, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if absDuration(candidate.Sub(valueDate)) < absDuration(best.Sub(valueDate)) {
			best = candidate
		}
	}
	return best, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
