package csvio

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type product struct {
	ID    string
	Name  string
	Note  string
	Stock int
	// Internal is not part of the export schema.
	Internal string
}

var productCodec = Codec[product]{
	Columns: []Column[product]{
		{Header: "ID", Get: func(p product) string { return p.ID }},
		{
			Header:   "Name",
			Get:      func(p product) string { return p.Name },
			Set:      func(p *product, v string) error { p.Name = v; return nil },
			Required: true,
		},
		{
			Header: "Note",
			Get:    func(p product) string { return p.Note },
			Set:    func(p *product, v string) error { p.Note = v; return nil },
		},
		{
			Header: "Stock",
			Get:    func(p product) string { return strconv.Itoa(p.Stock) },
			Set: func(p *product, v string) error {
				if v == "" {
					return nil
				}
				n, err := strconv.Atoi(v)
				p.Stock = n
				return err
			},
		},
	},
}

func TestRoundTripKeepsDocumentedSubset(t *testing.T) {
	items := []product{
		{ID: "1", Name: "Flour, Type 00", Note: `the "good" one`, Stock: 12, Internal: "x"},
		{ID: "2", Name: "Sugar", Note: "line one\nline two", Stock: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, productCodec.Encode(&buf, items))

	got, err := productCodec.Decode(&buf)
	require.NoError(t, err)

	want := []product{
		{Name: "Flour, Type 00", Note: `the "good" one`, Stock: 12},
		{Name: "Sugar", Note: "line one\nline two", Stock: 0},
	}
	assert.Equal(t, want, got)
}

func TestEncodeQuotesSpecialCharacters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, productCodec.Encode(&buf, []product{{ID: "1", Name: "a,b", Note: `say "hi"`}}))

	assert.Equal(t, "ID,Name,Note,Stock\n1,\"a,b\",\"say \"\"hi\"\"\",0\n", buf.String())
}

func TestDecodeMatchesHeadersByName(t *testing.T) {
	in := "\ufeffstock, name ,extra\n5,Milk,ignored\n\n7,Eggs,\n"

	got, err := productCodec.Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []product{{Name: "Milk", Stock: 5}, {Name: "Eggs", Stock: 7}}, got)
}

func TestDecodeMissingRequiredHeader(t *testing.T) {
	_, err := productCodec.Decode(strings.NewReader("Note,Stock\nx,1\n"))
	require.ErrorIs(t, err, ErrMissingHeader)

	_, err = productCodec.Decode(strings.NewReader(""))
	require.ErrorIs(t, err, ErrMissingHeader)
}

func TestDecodeReportsBadRowsAndKeepsGoodOnes(t *testing.T) {
	in := "Name,Stock\nMilk,5\nBread,many\n,3\nEggs,2\n"

	got, err := productCodec.Decode(strings.NewReader(in))

	require.Error(t, err)
	assert.Equal(t, []product{{Name: "Milk", Stock: 5}, {Name: "Eggs", Stock: 2}}, got)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Line)
	assert.Equal(t, "Stock", rowErr.Column)
	assert.Contains(t, err.Error(), `line 4, column "Name": value required`)
}

func TestEncodeXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, productCodec.EncodeXLSX(&buf, "Products", []product{{ID: "1", Name: "Milk", Stock: 5}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"ID", "Name", "Note", "Stock"}, {"1", "Milk", "", "5"}}, rows)
}
