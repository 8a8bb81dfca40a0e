package models

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/mis-parser/internal/filetype"
	"fjacquet/mis-parser/internal/parsererror"

	"gopkg.in/yaml.v3"
)

// ReadStrategy selects how a source's input is retrieved and materialized.
type ReadStrategy string

const (
	ReadFromS3            ReadStrategy = "readFromS3"
	ReadCompleteExcelFile ReadStrategy = "read_complete_excel_file"
	ReadZipFromS3         ReadStrategy = "readZipFromS3"
	ReadSplitMT940FromS3  ReadStrategy = "read_split_mt940_from_s3"
)

// UnmarshalText resolves a strategy identifier, rejecting unknown ones.
func (s *ReadStrategy) UnmarshalText(text []byte) error {
	switch v := ReadStrategy(strings.TrimSpace(string(text))); v {
	case ReadFromS3, ReadCompleteExcelFile, ReadZipFromS3, ReadSplitMT940FromS3:
		*s = v
		return nil
	default:
		return fmt.Errorf("unknown read_from_s3_func %q", string(text))
	}
}

// DType is the expected primitive type of a raw column.
type DType string

const (
	DTypeString DType = "str"
	DTypeInt    DType = "int"
	DTypeFloat  DType = "float"
	DTypeDate   DType = "date"
)

// UnmarshalText accepts the short and long spellings of each type.
func (d *DType) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "str", "string", "object":
		*d = DTypeString
	case "int", "int64", "integer":
		*d = DTypeInt
	case "float", "float64", "decimal":
		*d = DTypeFloat
	case "date", "datetime":
		*d = DTypeDate
	default:
		return fmt.Errorf("unknown dtype %q", string(text))
	}
	return nil
}

// PasswordType selects how an archive password is obtained.
type PasswordType string

const (
	PasswordStatic          PasswordType = ""
	PasswordChangesWithTime PasswordType = "password_changes_wrt_time"
)

// UnmarshalText rejects unknown password derivations.
func (p *PasswordType) UnmarshalText(text []byte) error {
	switch v := PasswordType(strings.TrimSpace(string(text))); v {
	case PasswordStatic, PasswordChangesWithTime:
		*p = v
		return nil
	default:
		return fmt.Errorf("unknown password_type %q", string(text))
	}
}

// CompressionType is either empty or zip.
type CompressionType string

const (
	CompressionNone CompressionType = ""
	CompressionZip  CompressionType = "zip"
)

// UnmarshalText rejects unsupported compressions.
func (c *CompressionType) UnmarshalText(text []byte) error {
	switch v := CompressionType(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case CompressionNone, CompressionZip:
		*c = v
		return nil
	default:
		return fmt.Errorf("unsupported compression_type %q", string(text))
	}
}

// FilterType selects the row predicate of a transaction-type filter.
type FilterType string

const (
	FilterNone       FilterType = ""
	FilterEquals     FilterType = "equals"
	FilterStartsWith FilterType = "startswith"
)

// UnmarshalText rejects unknown filter types at load time.
func (f *FilterType) UnmarshalText(text []byte) error {
	switch v := FilterType(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case FilterNone, FilterEquals, FilterStartsWith:
		*f = v
		return nil
	default:
		return fmt.Errorf("unknown filter type %q", string(text))
	}
}

// HeaderInfo describes whether a delimited file or sheet carries its own header row.
type HeaderInfo struct {
	HasHeader bool     `yaml:"has_header"`
	Header    []string `yaml:"header"`
}

// ReadParameters is the parameter bag handed to a retrieval strategy.
type ReadParameters struct {
	SaleSheetNames        []string    `yaml:"sale_sheet_names"`
	RefundSheetNames      []string    `yaml:"refund_sheet_names"`
	ChargebackSheetNames  []string    `yaml:"chargeback_sheet_names"`
	IgnoreExtensions      []string    `yaml:"ignore_file_based_on_extension"`
	IgnoreNames           []string    `yaml:"ignore_file_based_on_name_list"`
	HeaderInfo            *HeaderInfo `yaml:"header_info"`
	SheetName             string      `yaml:"sheet_name"`
	Delimiter             string      `yaml:"delimiter"`
	Encoding              string      `yaml:"encoding"`
	SkipRows              int         `yaml:"skip_rows"`
	SkipFooter            int         `yaml:"skip_footer"`
	DisableSkipRowsSheets []string    `yaml:"disable_skip_rows_sheets"`
}

// SheetGroup is a named set of workbook sheets whose rows share a semantic label.
type SheetGroup struct {
	Label  string
	Sheets []string
}

// SheetGroups returns the non-empty sheet groupings in sale, refund, chargeback order.
// An empty result selects flat archive assembly.
func (p *ReadParameters) SheetGroups() []SheetGroup {
	if p == nil {
		return nil
	}
	var groups []SheetGroup
	for _, g := range []SheetGroup{
		{Label: LabelSale, Sheets: p.SaleSheetNames},
		{Label: LabelRefund, Sheets: p.RefundSheetNames},
		{Label: LabelChargeback, Sheets: p.ChargebackSheetNames},
	} {
		if len(g.Sheets) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// IgnoredFileTypes converts the extension ignore list into file types,
// resolving aliases the same way entry detection does.
func (p *ReadParameters) IgnoredFileTypes() []filetype.FileType {
	if p == nil {
		return nil
	}
	out := make([]filetype.FileType, 0, len(p.IgnoreExtensions))
	for _, ext := range p.IgnoreExtensions {
		out = append(out, filetype.FromExtension(ext))
	}
	return out
}

// Threshold bounds the acceptable row count of a parsed table. A zero bound is open.
// The scalar YAML form `threshold: 2000` sets the maximum.
type Threshold struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// UnmarshalYAML accepts either a scalar maximum or a {min, max} mapping.
func (t *Threshold) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var limit int
		if err := value.Decode(&limit); err != nil {
			return fmt.Errorf("threshold: %w", err)
		}
		*t = Threshold{Max: limit}
		return nil
	}
	type plain Threshold
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	*t = Threshold(p)
	return nil
}

// Allows reports whether rows satisfies both bounds.
func (t *Threshold) Allows(rows int) bool {
	if t == nil {
		return true
	}
	if t.Min > 0 && rows < t.Min {
		return false
	}
	if t.Max > 0 && rows > t.Max {
		return false
	}
	return true
}

// ReversalTxRefRule derives a cross-reference column for reversal rows. For rows
// whose transaction type is one of TransactionTypes, Target receives the value of
// SourceColumn; other rows get an empty value.
type ReversalTxRefRule struct {
	Target           string
	SourceColumn     string
	TransactionTypes []string
}

// Default reversal policy.
var (
	DefaultReversalSourceColumn     = MisTxRef
	DefaultReversalTransactionTypes = []string{"REFUND", "CHARGEBACK", "CB_REV"}
)

// EdgeCases is the closed set of post-mapping transformations a source may declare.
type EdgeCases struct {
	ReversalTxRef *ReversalTxRefRule
}

var edgeCaseKeys = map[string]bool{
	"add_reversal_tx_ref_column": true,
	"reversal_source_column":     true,
	"reversal_transaction_types": true,
}

// UnmarshalYAML decodes the edge_case mapping and rejects unknown variants.
func (e *EdgeCases) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("edge_case must be a mapping")
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if key := value.Content[i].Value; !edgeCaseKeys[key] {
			return fmt.Errorf("unknown edge case %q", key)
		}
	}

	var raw struct {
		AddReversalTxRefColumn   string   `yaml:"add_reversal_tx_ref_column"`
		ReversalSourceColumn     string   `yaml:"reversal_source_column"`
		ReversalTransactionTypes []string `yaml:"reversal_transaction_types"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*e = EdgeCases{}
	if raw.AddReversalTxRefColumn != "" {
		rule := &ReversalTxRefRule{
			Target:           raw.AddReversalTxRefColumn,
			SourceColumn:     raw.ReversalSourceColumn,
			TransactionTypes: raw.ReversalTransactionTypes,
		}
		if rule.SourceColumn == "" {
			rule.SourceColumn = DefaultReversalSourceColumn
		}
		if len(rule.TransactionTypes) == 0 {
			rule.TransactionTypes = append([]string(nil), DefaultReversalTransactionTypes...)
		}
		e.ReversalTxRef = rule
	}
	return nil
}

// DerivedColumns lists the columns the edge cases add.
func (e *EdgeCases) DerivedColumns() []string {
	if e == nil || e.ReversalTxRef == nil {
		return nil
	}
	return []string{e.ReversalTxRef.Target}
}

// TransactionTypeFilter restricts normalized rows by the value of one column.
type TransactionTypeFilter struct {
	Column string     `yaml:"column"`
	Values []string   `yaml:"values"`
	Type   FilterType `yaml:"type"`
}

// SourceConfig is the declarative description of one MIS source.
type SourceConfig struct {
	Name                    string                       `yaml:"-"`
	ReadFromS3Func          ReadStrategy                 `yaml:"read_from_s3_func"`
	ParametersForReadS3     *ReadParameters              `yaml:"parameters_for_read_s3"`
	FileType                filetype.FileType            `yaml:"file_type"`
	FileDType               map[string]DType             `yaml:"file_dtype"`
	MapBasedOnTxnType       bool                         `yaml:"map_based_on_txn_type"`
	TxnTypeColumn           string                       `yaml:"txn_type_column"`
	ColumnsMapping          map[string]string            `yaml:"columns_mapping"`
	ColumnsMappingByTxnType map[string]map[string]string `yaml:"columns_mapping_by_txn_type"`
	EdgeCase                *EdgeCases                   `yaml:"edge_case"`
	Threshold               *Threshold                   `yaml:"threshold"`
	CompressionType         CompressionType              `yaml:"compression_type"`
	PasswordProtected       bool                         `yaml:"password_protected"`
	PasswordSecretKey       string                       `yaml:"password_secret_key"`
	PasswordType            PasswordType                 `yaml:"password_type"`
	TransactionTypeFilter   *TransactionTypeFilter       `yaml:"transaction_type_filter"`
}

// Strategy returns the configured retrieval strategy, defaulting by compression type.
func (c SourceConfig) Strategy() ReadStrategy {
	if c.ReadFromS3Func != "" {
		return c.ReadFromS3Func
	}
	if c.CompressionType == CompressionZip {
		return ReadZipFromS3
	}
	return ReadFromS3
}

// Parameters never returns nil.
func (c SourceConfig) Parameters() *ReadParameters {
	if c.ParametersForReadS3 == nil {
		return &ReadParameters{}
	}
	return c.ParametersForReadS3
}

// Validate checks the invariants that cannot be expressed in the YAML types.
func (c SourceConfig) Validate() error {
	if err := validateMapping(c.Name, "columns_mapping", c.ColumnsMapping); err != nil {
		return err
	}

	if c.MapBasedOnTxnType {
		if c.TxnTypeColumn == "" {
			return &parsererror.ConfigError{Source: c.Name, Field: "txn_type_column",
				Reason: "required when map_based_on_txn_type is true"}
		}
		if len(c.ColumnsMappingByTxnType) == 0 && len(c.ColumnsMapping) == 0 {
			return &parsererror.ConfigError{Source: c.Name, Field: "columns_mapping_by_txn_type",
				Reason: "no mapping configured"}
		}
		txnTypes := make([]string, 0, len(c.ColumnsMappingByTxnType))
		for txnType := range c.ColumnsMappingByTxnType {
			txnTypes = append(txnTypes, txnType)
		}
		sort.Strings(txnTypes)
		for _, txnType := range txnTypes {
			field := fmt.Sprintf("columns_mapping_by_txn_type.%s", txnType)
			if err := validateMapping(c.Name, field, c.ColumnsMappingByTxnType[txnType]); err != nil {
				return err
			}
		}
	}

	if c.Threshold != nil {
		if c.Threshold.Min < 0 || c.Threshold.Max < 0 {
			return &parsererror.ConfigError{Source: c.Name, Field: "threshold", Reason: "bounds must not be negative"}
		}
		if c.Threshold.Max > 0 && c.Threshold.Min > c.Threshold.Max {
			return &parsererror.ConfigError{Source: c.Name, Field: "threshold", Reason: "min greater than max"}
		}
	}

	for _, derived := range c.EdgeCase.DerivedColumns() {
		if IsCanonicalColumn(derived) {
			return &parsererror.ConfigError{Source: c.Name, Field: "edge_case.add_reversal_tx_ref_column",
				Reason: fmt.Sprintf("derived column '%s' collides with the canonical vocabulary", derived)}
		}
	}

	if c.PasswordProtected && c.PasswordSecretKey == "" && c.PasswordType == PasswordStatic {
		return &parsererror.ConfigError{Source: c.Name, Field: "password_secret_key",
			Reason: "password_protected requires password_secret_key or password_type"}
	}

	if f := c.TransactionTypeFilter; f != nil && f.Type != FilterNone && f.Column == "" {
		return &parsererror.ConfigError{Source: c.Name, Field: "transaction_type_filter.column", Reason: "required"}
	}

	return nil
}

func validateMapping(source, field string, mapping map[string]string) error {
	targets := make(map[string]string, len(mapping))
	raws := make([]string, 0, len(mapping))
	for raw := range mapping {
		raws = append(raws, raw)
	}
	sort.Strings(raws)
	for _, raw := range raws {
		target := mapping[raw]
		if !IsCanonicalColumn(target) {
			return &parsererror.ConfigError{Source: source, Field: field,
				Reason: fmt.Sprintf("'%s' maps to unknown canonical column '%s'", raw, target)}
		}
		if prev, dup := targets[target]; dup {
			return &parsererror.ConfigError{Source: source, Field: field,
				Reason: fmt.Sprintf("'%s' and '%s' both map to '%s'", prev, raw, target)}
		}
		targets[target] = raw
	}
	return nil
}
