package mt940

import (
	"fmt"
	"sort"

	"fjacquet/mis-parser/internal/dateutils"
	"fjacquet/mis-parser/internal/fileutils"
	"fjacquet/mis-parser/internal/logging"

	"github.com/gocarina/gocsv"
)

// Row is one statement line in the joined CSV.
type Row struct {
	Account           string `csv:"Account"`
	StatementNumber   string `csv:"StatementNumber"`
	Currency          string `csv:"Currency"`
	ValueDate         string `csv:"ValueDate"`
	EntryDate         string `csv:"EntryDate"`
	DebitCredit       string `csv:"DebitCredit"`
	Amount            string `csv:"Amount"`
	TransactionType   string `csv:"TransactionType"`
	CustomerReference string `csv:"CustomerReference"`
	BankReference     string `csv:"BankReference"`
	Narrative         string `csv:"Narrative"`
}

// Joiner merges split statements into a single CSV file.
type Joiner struct {
	logger logging.Logger
}

// NewJoiner creates a Joiner.
func NewJoiner(logger logging.Logger) *Joiner {
	return &Joiner{logger: logging.OrDefault(logger)}
}

// Join parses every part, merges the statements that share an account and
// statement number in sequence order, and writes their lines as CSV to a new
// file under dir. The caller owns the returned file.
func (j *Joiner) Join(parts [][]byte, dir string) (string, error) {
	var statements []Statement
	for i, part := range parts {
		parsed, err := Parse(part)
		if err != nil {
			return "", fmt.Errorf("part %d: %w", i+1, err)
		}
		statements = append(statements, parsed...)
	}
	if len(statements) == 0 {
		return "", fmt.Errorf("no MT940 statement found")
	}

	joined := Merge(statements)
	rows := make([]Row, 0)
	for _, st := range joined {
		for _, l := range st.Lines {
			rows = append(rows, Row{
				Account:           st.Account,
				StatementNumber:   st.Number,
				Currency:          st.Currency,
				ValueDate:         dateutils.ToISODate(l.ValueDate),
				EntryDate:         dateutils.ToISODate(l.EntryDate),
				DebitCredit:       l.Mark,
				Amount:            l.Signed().StringFixed(2),
				TransactionType:   l.TransactionType,
				CustomerReference: l.CustomerReference,
				BankReference:     l.BankReference,
				Narrative:         l.Narrative,
			})
		}
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to write joined statement: %w", err)
	}
	path, err := fileutils.StageBytes(dir, "joined.csv", data)
	if err != nil {
		return "", err
	}

	j.logger.Info("Joined MT940 statements",
		logging.Field{Key: logging.FieldCount, Value: len(statements)},
		logging.Field{Key: logging.FieldRows, Value: len(rows)},
		logging.Field{Key: logging.FieldFile, Value: path})
	return path, nil
}

// Merge combines statements split across messages. Groups keep the order in
// which they first appear; parts within a group are ordered by sequence.
func Merge(statements []Statement) []Statement {
	type key struct{ account, number string }
	var order []key
	groups := make(map[key][]Statement)
	for _, st := range statements {
		k := key{st.Account, st.Number}
		if st.Number == "" {
			k.number = st.Reference
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], st)
	}

	out := make([]Statement, 0, len(order))
	for _, k := range order {
		parts := groups[k]
		sort.SliceStable(parts, func(i, j int) bool { return parts[i].Sequence < parts[j].Sequence })
		merged := parts[0]
		merged.Lines = nil
		for _, p := range parts {
			if merged.Currency == "" {
				merged.Currency = p.Currency
			}
			merged.Lines = append(merged.Lines, p.Lines...)
		}
		out = append(out, merged)
	}
	return out
}
