// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package signal

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/media-batch/pkg/types"
)

func TestReadTable(t *testing.T) {
	in := "time,signal,label\n0,1.5,\"a,b\"\n1,2,c\n"
	tbl, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"time", "signal", "label"}, tbl.Header)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"0", "1.5", "a,b"}, tbl.Rows[0])
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty input", ""},
		{"ragged row", "a,b\n1,2\n3\n"},
		{"bare quote", "a,b\n1,\"2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, types.ErrParse)
		})
	}
}

func TestReadTable_ByteOrderMark(t *testing.T) {
	in := "\ufeffsignal,time\n1,0\n2,1\n"
	tbl, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"signal", "time"}, tbl.Header)

	got, err := tbl.Float64Column("signal")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))
	assert.Equal(t, "signal,time\n1,0\n2,1\n", buf.String())
}

func TestReadTable_ByteOrderMarkBeforeQuotedHeader(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("\ufeff\"signal\"\n3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"signal"}, tbl.Header)
}

func TestReadTable_HeaderOnly(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("signal\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestFloat64Column(t *testing.T) {
	tbl := &Table{
		Header: []string{"signal", "other"},
		Rows: [][]string{
			{"1", "x"},
			{" 2.5 ", "y"},
			{"", "z"},
			{"NaN", "w"},
			{"-1e3", "v"},
		},
	}

	got, err := tbl.Float64Column("signal")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 1.0, got[0])
	assert.Equal(t, 2.5, got[1])
	assert.True(t, math.IsNaN(got[2]))
	assert.True(t, math.IsNaN(got[3]))
	assert.Equal(t, -1000.0, got[4])
}

func TestFloat64Column_MissingColumn(t *testing.T) {
	tbl := &Table{Header: []string{"time", "value"}}
	_, err := tbl.Float64Column("signal")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSchema)
	assert.Contains(t, err.Error(), `"signal"`)
}

func TestFloat64Column_NonNumeric(t *testing.T) {
	tbl := &Table{
		Header: []string{"signal"},
		Rows:   [][]string{{"1"}, {"abc"}},
	}
	_, err := tbl.Float64Column("signal")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)
	assert.Contains(t, err.Error(), "row 2")
}

func TestFloat64Column_NumberSyntax(t *testing.T) {
	tests := []struct {
		cell    string
		want    float64
		wantErr bool
	}{
		{cell: "0x1p-2", wantErr: true},
		{cell: "-0X10", wantErr: true},
		{cell: "1_000", wantErr: true},
		{cell: "inf", want: math.Inf(1)},
		{cell: "-Infinity", want: math.Inf(-1)},
		{cell: "1e-5", want: 1e-5},
		{cell: ".5", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			tbl := &Table{Header: []string{"signal"}, Rows: [][]string{{tt.cell}}}
			got, err := tbl.Float64Column("signal")
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []float64{tt.want}, got)
		})
	}
}

func TestSetColumn(t *testing.T) {
	tbl := &Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "2"}, {"3", "4"}},
	}

	require.NoError(t, tbl.SetColumn("c", []string{"x", "y"}))
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Equal(t, []string{"3", "4", "y"}, tbl.Rows[1])

	require.NoError(t, tbl.SetColumn("a", []string{"p", "q"}))
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Equal(t, []string{"p", "2", "x"}, tbl.Rows[0])

	assert.Error(t, tbl.SetColumn("d", []string{"only one"}))
}

func TestWriteTable(t *testing.T) {
	tbl := &Table{
		Header: []string{"signal", "note"},
		Rows:   [][]string{{"1", "plain"}, {"2", "has,comma"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))
	assert.Equal(t, "signal,note\n1,plain\n2,\"has,comma\"\n", buf.String())

	back, err := ReadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, tbl, back)
}
