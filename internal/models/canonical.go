package models

// Canonical column vocabulary. Every normalized table exposes a subset of these
// names plus the derived edge-case columns configured for its source.
const (
	MisTransactionType       = "MisTransactionType"
	MisPaymentMode           = "MisPaymentMode"
	MisMerchantName          = "MisMerchantName"
	MisMerchantId            = "MisMerchantId"
	MisUrn                   = "MisUrn"
	MisArn                   = "MisArn"
	MisCardScheme            = "MisCardScheme"
	MisSettlementDate        = "MisSettlementDate"
	MisSettlementAmount      = "MisSettlementAmount"
	MisServiceCharge         = "MisServiceCharge"
	MisServiceTax            = "MisServiceTax"
	MisCgst                  = "MisCgst"
	MisSgst                  = "MisSgst"
	MisIgst                  = "MisIgst"
	MisNetSettlementAmount   = "MisNetSettlementAmount"
	MisAmount                = "MisAmount"
	MisTxRef                 = "MisTxRef"
	MisIssuerReferenceNumber = "MisIssuerReferenceNumber"
	MisPgReferenceId         = "MisPgReferenceId"
	MisCardType              = "MisCardType"
	MisSettlementCurrency    = "MisSettlementCurrency"
	MisAuthId                = "MisAuthId"
	MisCardNumber            = "MisCardNumber"
	MisGstNumber             = "MisGstNumber"
	MisDateTime              = "MisDateTime"
	MisDomesticAmount        = "MisDomesticAmount"
)

// SheetLabelColumn is the raw column the archive assembler adds in name-grouped
// mode. It carries the semantic label (SALE, REFUND, CHARGEBACK) of the sheet group
// a row was read from and can be mapped like any other raw column.
const SheetLabelColumn = "SheetTransactionType"

// Sheet group labels.
const (
	LabelSale       = "SALE"
	LabelRefund     = "REFUND"
	LabelChargeback = "CHARGEBACK"
)

// CanonicalColumns lists the vocabulary in output order.
var CanonicalColumns = []string{
	MisTransactionType,
	MisPaymentMode,
	MisMerchantName,
	MisMerchantId,
	MisUrn,
	MisArn,
	MisCardScheme,
	MisSettlementDate,
	MisSettlementAmount,
	MisServiceCharge,
	MisServiceTax,
	MisCgst,
	MisSgst,
	MisIgst,
	MisNetSettlementAmount,
	MisAmount,
	MisTxRef,
	MisIssuerReferenceNumber,
	MisPgReferenceId,
	MisCardType,
	MisSettlementCurrency,
	MisAuthId,
	MisCardNumber,
	MisGstNumber,
	MisDateTime,
	MisDomesticAmount,
}

var canonicalSet = func() map[string]bool {
	m := make(map[string]bool, len(CanonicalColumns))
	for _, c := range CanonicalColumns {
		m[c] = true
	}
	return m
}()

// IsCanonicalColumn reports whether name belongs to the canonical vocabulary.
func IsCanonicalColumn(name string) bool {
	return canonicalSet[name]
}

// CanonicalRecord is the full-width export shape of a normalized row.
// Columns a source does not populate are written empty.
type CanonicalRecord struct {
	TransactionType       string `csv:"MisTransactionType" parquet:"name=mis_transaction_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	PaymentMode           string `csv:"MisPaymentMode" parquet:"name=mis_payment_mode, type=BYTE_ARRAY, convertedtype=UTF8"`
	MerchantName          string `csv:"MisMerchantName" parquet:"name=mis_merchant_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	MerchantId            string `csv:"MisMerchantId" parquet:"name=mis_merchant_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Urn                   string `csv:"MisUrn" parquet:"name=mis_urn, type=BYTE_ARRAY, convertedtype=UTF8"`
	Arn                   string `csv:"MisArn" parquet:"name=mis_arn, type=BYTE_ARRAY, convertedtype=UTF8"`
	CardScheme            string `csv:"MisCardScheme" parquet:"name=mis_card_scheme, type=BYTE_ARRAY, convertedtype=UTF8"`
	SettlementDate        string `csv:"MisSettlementDate" parquet:"name=mis_settlement_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	SettlementAmount      string `csv:"MisSettlementAmount" parquet:"name=mis_settlement_amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	ServiceCharge         string `csv:"MisServiceCharge" parquet:"name=mis_service_charge, type=BYTE_ARRAY, convertedtype=UTF8"`
	ServiceTax            string `csv:"MisServiceTax" parquet:"name=mis_service_tax, type=BYTE_ARRAY, convertedtype=UTF8"`
	Cgst                  string `csv:"MisCgst" parquet:"name=mis_cgst, type=BYTE_ARRAY, convertedtype=UTF8"`
	Sgst                  string `csv:"MisSgst" parquet:"name=mis_sgst, type=BYTE_ARRAY, convertedtype=UTF8"`
	Igst                  string `csv:"MisIgst" parquet:"name=mis_igst, type=BYTE_ARRAY, convertedtype=UTF8"`
	NetSettlementAmount   string `csv:"MisNetSettlementAmount" parquet:"name=mis_net_settlement_amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	Amount                string `csv:"MisAmount" parquet:"name=mis_amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	TxRef                 string `csv:"MisTxRef" parquet:"name=mis_tx_ref, type=BYTE_ARRAY, convertedtype=UTF8"`
	IssuerReferenceNumber string `csv:"MisIssuerReferenceNumber" parquet:"name=mis_issuer_reference_number, type=BYTE_ARRAY, convertedtype=UTF8"`
	PgReferenceId         string `csv:"MisPgReferenceId" parquet:"name=mis_pg_reference_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CardType              string `csv:"MisCardType" parquet:"name=mis_card_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	SettlementCurrency    string `csv:"MisSettlementCurrency" parquet:"name=mis_settlement_currency, type=BYTE_ARRAY, convertedtype=UTF8"`
	AuthId                string `csv:"MisAuthId" parquet:"name=mis_auth_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CardNumber            string `csv:"MisCardNumber" parquet:"name=mis_card_number, type=BYTE_ARRAY, convertedtype=UTF8"`
	GstNumber             string `csv:"MisGstNumber" parquet:"name=mis_gst_number, type=BYTE_ARRAY, convertedtype=UTF8"`
	DateTime              string `csv:"MisDateTime" parquet:"name=mis_date_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	DomesticAmount        string `csv:"MisDomesticAmount" parquet:"name=mis_domestic_amount, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// RecordsFromTable projects a normalized table onto the full canonical shape.
// Non-canonical columns (edge-case derivations) are not part of the record.
func RecordsFromTable(t *Table) []CanonicalRecord {
	records := make([]CanonicalRecord, 0, t.Len())
	for i := range t.Rows {
		v := func(col string) string { return t.Value(i, col) }
		records = append(records, CanonicalRecord{
			TransactionType:       v(MisTransactionType),
			PaymentMode:           v(MisPaymentMode),
			MerchantName:          v(MisMerchantName),
			MerchantId:            v(MisMerchantId),
			Urn:                   v(MisUrn),
			Arn:                   v(MisArn),
			CardScheme:            v(MisCardScheme),
			SettlementDate:        v(MisSettlementDate),
			SettlementAmount:      v(MisSettlementAmount),
			ServiceCharge:         v(MisServiceCharge),
			ServiceTax:            v(MisServiceTax),
			Cgst:                  v(MisCgst),
			Sgst:                  v(MisSgst),
			Igst:                  v(MisIgst),
			NetSettlementAmount:   v(MisNetSettlementAmount),
			Amount:                v(MisAmount),
			TxRef:                 v(MisTxRef),
			IssuerReferenceNumber: v(MisIssuerReferenceNumber),
			PgReferenceId:         v(MisPgReferenceId),
			CardType:              v(MisCardType),
			SettlementCurrency:    v(MisSettlementCurrency),
			AuthId:                v(MisAuthId),
			CardNumber:            v(MisCardNumber),
			GstNumber:             v(MisGstNumber),
			DateTime:              v(MisDateTime),
			DomesticAmount:        v(MisDomesticAmount),
		})
	}
	return records
}
