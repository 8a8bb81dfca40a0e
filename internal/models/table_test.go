package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcat_PreservesOrderAndSumsRows(t *testing.T) {
	first := &Table{Columns: []string{"A", "B"}, Rows: [][]string{{"1", "4"}, {"2", "5"}, {"3", "6"}}}
	second := &Table{Columns: []string{"B", "C"}, Rows: [][]string{{"10", "7"}}}

	out := Concat(first, second)

	assert.Equal(t, []string{"A", "B", "C"}, out.Columns)
	require.Equal(t, 4, out.Len())
	assert.Equal(t, []string{"1", "4", ""}, out.Rows[0])
	assert.Equal(t, []string{"3", "6", ""}, out.Rows[2])
	assert.Equal(t, []string{"", "10", "7"}, out.Rows[3])
}

func TestConcat_Empty(t *testing.T) {
	out := Concat()
	assert.Equal(t, 0, out.Len())
	assert.Empty(t, out.Columns)

	out = Concat(nil, NewTable("A"))
	assert.Equal(t, []string{"A"}, out.Columns)
	assert.Equal(t, 0, out.Len())
}

func TestTable_WithColumn(t *testing.T) {
	tbl := &Table{Columns: []string{"A"}, Rows: [][]string{{"1"}, {"2"}}}

	added, err := tbl.WithColumn("B", []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, added.Columns)
	assert.Equal(t, "y", added.Value(1, "B"))
	assert.False(t, tbl.HasColumn("B"), "original must not change")

	replaced, err := added.WithColumn("A", []string{"9", "8"})
	require.NoError(t, err)
	assert.Equal(t, "9", replaced.Value(0, "A"))

	_, err = tbl.WithColumn("C", []string{"only one"})
	assert.Error(t, err)
}

func TestTable_TrimFooter(t *testing.T) {
	tbl := &Table{Columns: []string{"A"}, Rows: [][]string{{"1"}, {"2"}, {"Total"}}}
	tbl.TrimFooter(0)
	assert.Equal(t, 3, tbl.Len())
	tbl.TrimFooter(1)
	assert.Equal(t, 2, tbl.Len())
	tbl.TrimFooter(5)
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_AppendRowAndColumn(t *testing.T) {
	tbl := NewTable("A", "B")
	require.NoError(t, tbl.AppendRow([]string{"1"}))
	assert.Equal(t, []string{"1", ""}, tbl.Rows[0])
	assert.Error(t, tbl.AppendRow([]string{"1", "2", "3"}))

	values, ok := tbl.Column("A")
	require.True(t, ok)
	assert.Equal(t, []string{"1"}, values)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)
	assert.Equal(t, "", tbl.Value(0, "missing"))
	assert.Equal(t, "", tbl.Value(5, "A"))
}

func TestRecordsFromTable(t *testing.T) {
	tbl := &Table{
		Columns: []string{MisTxRef, MisAmount, "reversal_txRef"},
		Rows:    [][]string{{"961326679", "123", ""}},
	}
	records := RecordsFromTable(tbl)
	require.Len(t, records, 1)
	assert.Equal(t, "961326679", records[0].TxRef)
	assert.Equal(t, "123", records[0].Amount)
	assert.Equal(t, "", records[0].MerchantName)
}

func TestIsCanonicalColumn(t *testing.T) {
	assert.True(t, IsCanonicalColumn(MisServiceTax))
	assert.True(t, IsCanonicalColumn(MisDomesticAmount))
	assert.False(t, IsCanonicalColumn("Order_Number"))
	assert.Len(t, CanonicalColumns, 26)
}
