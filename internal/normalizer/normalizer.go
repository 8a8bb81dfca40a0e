// Package normalizer maps a raw table onto the canonical column vocabulary.
package normalizer

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/mis-parser/internal/filter"
	"fjacquet/mis-parser/internal/logging"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parsererror"
)

// Normalizer renames raw columns to canonical ones and applies the
// post-mapping rules of a source.
type Normalizer struct {
	logger logging.Logger
}

// New creates a Normalizer.
func New(logger logging.Logger) *Normalizer {
	return &Normalizer{logger: logging.OrDefault(logger)}
}

// Normalize checks the row threshold, maps columns, derives edge-case columns
// and applies the transaction-type filter, in that order. Unmapped raw columns
// are dropped. Output columns follow raw column order, then derived columns.
// Every failure is returned as a single SanitizationError.
func (n *Normalizer) Normalize(raw *models.Table, cfg models.SourceConfig) (*models.Table, error) {
	out, err := n.normalize(raw, cfg)
	if err != nil {
		return nil, &parsererror.SanitizationError{Err: err}
	}
	return out, nil
}

func (n *Normalizer) normalize(raw *models.Table, cfg models.SourceConfig) (*models.Table, error) {
	if raw == nil {
		return nil, fmt.Errorf("no table to sanitize")
	}
	logger := n.logger.WithFields(logging.Field{Key: logging.FieldSource, Value: cfg.Name})

	if !cfg.Threshold.Allows(raw.Len()) {
		return nil, &parsererror.ThresholdViolationError{Rows: raw.Len(), Min: cfg.Threshold.Min, Max: cfg.Threshold.Max}
	}

	var (
		out *models.Table
		err error
	)
	if cfg.MapBasedOnTxnType {
		out, err = mapByTxnType(raw, cfg, logger)
	} else {
		out = mapColumns(raw, cfg.ColumnsMapping)
	}
	if err != nil {
		return nil, err
	}

	if cfg.EdgeCase != nil && cfg.EdgeCase.ReversalTxRef != nil {
		out, err = addReversalTxRef(out, cfg.EdgeCase.ReversalTxRef)
		if err != nil {
			return nil, err
		}
	}

	out, err = filter.Apply(out, cfg.TransactionTypeFilter)
	if err != nil {
		return nil, err
	}

	logger.Debug("Sanitized table",
		logging.Field{Key: logging.FieldRows, Value: out.Len()},
		logging.Field{Key: logging.FieldCount, Value: len(out.Columns)})
	return out, nil
}

// mapColumns projects raw onto the targets of mapping. Raw columns named in
// mapping but absent from raw produce no output column.
func mapColumns(raw *models.Table, mapping map[string]string) *models.Table {
	var (
		columns []string
		indexes []int
	)
	for i, col := range raw.Columns {
		if target, ok := mapping[col]; ok {
			columns = append(columns, target)
			indexes = append(indexes, i)
		}
	}

	out := models.NewTable(columns...)
	out.Rows = make([][]string, 0, raw.Len())
	for _, row := range raw.Rows {
		projected := make([]string, len(indexes))
		for j, idx := range indexes {
			if idx < len(row) {
				projected[j] = row[idx]
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// mapByTxnType picks the mapping of each row from the trimmed value of the
// transaction-type column, falling back to columns_mapping. Rows with no
// applicable mapping are dropped.
func mapByTxnType(raw *models.Table, cfg models.SourceConfig, logger logging.Logger) (*models.Table, error) {
	if !raw.HasColumn(cfg.TxnTypeColumn) {
		if raw.Len() == 0 {
			return models.NewTable(), nil
		}
		return nil, fmt.Errorf("transaction type column '%s' not found", cfg.TxnTypeColumn)
	}
	typeIdx := raw.ColumnIndex(cfg.TxnTypeColumn)

	txnTypes := make([]string, 0, len(cfg.ColumnsMappingByTxnType))
	for t := range cfg.ColumnsMappingByTxnType {
		txnTypes = append(txnTypes, t)
	}
	sort.Strings(txnTypes)
	mappings := make([]map[string]string, 0, len(txnTypes)+1)
	for _, t := range txnTypes {
		mappings = append(mappings, cfg.ColumnsMappingByTxnType[t])
	}
	if len(cfg.ColumnsMapping) > 0 {
		mappings = append(mappings, cfg.ColumnsMapping)
	}

	var columns []string
	position := make(map[string]int)
	for _, col := range raw.Columns {
		for _, m := range mappings {
			target, ok := m[col]
			if !ok {
				continue
			}
			if _, seen := position[target]; !seen {
				position[target] = len(columns)
				columns = append(columns, target)
			}
		}
	}

	out := models.NewTable(columns...)
	dropped := make(map[string]int)
	for _, row := range raw.Rows {
		var txnType string
		if typeIdx < len(row) {
			txnType = strings.TrimSpace(row[typeIdx])
		}
		mapping, ok := cfg.ColumnsMappingByTxnType[txnType]
		if !ok {
			mapping = cfg.ColumnsMapping
		}
		if len(mapping) == 0 {
			dropped[txnType]++
			continue
		}

		projected := make([]string, len(columns))
		for i, col := range raw.Columns {
			target, ok := mapping[col]
			if !ok || i >= len(row) {
				continue
			}
			projected[position[target]] = row[i]
		}
		out.Rows = append(out.Rows, projected)
	}

	if len(dropped) > 0 {
		total := 0
		types := make([]string, 0, len(dropped))
		for t, c := range dropped {
			total += c
			types = append(types, t)
		}
		sort.Strings(types)
		logger.Warn("Dropped rows without a column mapping for their transaction type",
			logging.Field{Key: logging.FieldCount, Value: total},
			logging.Field{Key: logging.FieldReason, Value: strings.Join(types, ",")})
	}
	return out, nil
}

// addReversalTxRef fills rule.Target with the source column value on rows
// whose transaction type is a reversal type, and leaves it empty elsewhere.
// An empty table only gains the column.
func addReversalTxRef(t *models.Table, rule *models.ReversalTxRefRule) (*models.Table, error) {
	if t.Len() == 0 {
		return t.WithColumn(rule.Target, []string{})
	}
	for _, required := range []string{models.MisTransactionType, rule.SourceColumn} {
		if !t.HasColumn(required) {
			return nil, fmt.Errorf("edge case add_reversal_tx_ref_column needs column '%s'", required)
		}
	}
	types, _ := t.Column(models.MisTransactionType)
	refs, _ := t.Column(rule.SourceColumn)

	values := make([]string, t.Len())
	for i, txnType := range types {
		if isReversal(txnType, rule.TransactionTypes) {
			values[i] = refs[i]
		}
	}
	return t.WithColumn(rule.Target, values)
}

func isReversal(txnType string, reversalTypes []string) bool {
	txnType = strings.TrimSpace(txnType)
	for _, r := range reversalTypes {
		if strings.EqualFold(txnType, r) {
			return true
		}
	}
	return false
}
