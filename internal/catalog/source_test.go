package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lender-qualify/internal/fetcher"
	"github.com/sells-group/lender-qualify/internal/resilience"
)

const lenderCSV = "Lender,Specialty,Min FICO\nAcme Capital,MCA,550\n,orphan,600\nBeta Funding,SBA,680\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func writeWorkbook(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, r := range rows {
		row := sheet.AddRow()
		for _, c := range r {
			row.AddCell().SetString(c)
		}
	}
	p := filepath.Join(t.TempDir(), "matrix.xlsx")
	require.NoError(t, f.Save(p))
	return p
}

func testDownloader() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:    2 * time.Second,
		RatePerSec: 1000,
		Retry:      resilience.RetryConfig{MaxAttempts: 1},
	})
}

func TestSource_LocalCSV(t *testing.T) {
	src := NewSource(writeFile(t, "matrix.csv", lenderCSV), "", fetcher.XLSXOptions{}, nil)

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Beta Funding", rows[3][0])
}

func TestSource_LocalXLSX(t *testing.T) {
	path := writeWorkbook(t, "Lenders", [][]string{{"Lender"}, {"Acme Capital"}})
	src := NewSource(path, "", fetcher.XLSXOptions{SheetName: "Lenders"}, nil)

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Lender"}, {"Acme Capital"}}, rows)
}

func TestSource_FormatOverride(t *testing.T) {
	src := NewSource(writeFile(t, "matrix.txt", lenderCSV), FormatCSV, fetcher.XLSXOptions{}, nil)

	rows, err := src.Rows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestSource_Errors(t *testing.T) {
	_, err := NewSource("", "", fetcher.XLSXOptions{}, nil).Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source configured")

	_, err = NewSource(filepath.Join(t.TempDir(), "missing.csv"), "", fetcher.XLSXOptions{}, nil).Rows(context.Background())
	require.Error(t, err)
}

func TestSource_URLReusesUnchangedBody(t *testing.T) {
	var full atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"m1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		full.Add(1)
		w.Header().Set("ETag", `"m1"`)
		w.Write([]byte(lenderCSV)) //nolint:errcheck
	}))
	defer srv.Close()

	src := NewSource(srv.URL+"/exports/matrix.csv?token=abc", "", fetcher.XLSXOptions{}, testDownloader())

	first, err := src.Rows(context.Background())
	require.NoError(t, err)
	second, err := src.Rows(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 4)
	assert.Equal(t, int32(1), full.Load())
}

func TestSource_URLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewSource(srv.URL+"/matrix.xlsx", "", fetcher.XLSXOptions{}, testDownloader()).Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download source")
}

func TestSource_DetectFormat(t *testing.T) {
	tests := []struct {
		location string
		format   Format
		want     Format
	}{
		{"lenders.csv", "", FormatCSV},
		{"LENDERS.CSV", "", FormatCSV},
		{"lenders.xlsx", "", FormatXLSX},
		{"lenders", "", FormatXLSX},
		{"https://example.com/export.csv?x=1", "", FormatCSV},
		{"https://example.com/export", "", FormatXLSX},
		{"lenders.xlsx", "CSV", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			src := &Source{Location: tt.location, Format: tt.format}
			assert.Equal(t, tt.want, src.format())
		})
	}
}
