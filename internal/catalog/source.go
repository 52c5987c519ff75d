// Package catalog loads the lender matrix from its source and keeps the
// parsed catalog warm in memory and in Redis.
package catalog

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lender-qualify/internal/fetcher"
)

// Format is the encoding of the lender matrix.
type Format string

// Supported source formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Loader produces the raw rows of the lender matrix, header included.
type Loader interface {
	Name() string
	Rows(ctx context.Context) ([][]string, error)
}

// Source reads the matrix from a local file or an http(s) URL.
type Source struct {
	Location   string
	Format     Format // empty means detect from the extension
	Sheet      fetcher.XLSXOptions
	Downloader fetcher.Downloader

	mu       sync.Mutex
	etag     string
	lastBody []byte
}

// NewSource creates a Source. A nil downloader gets a default HTTP fetcher
// when the location is a URL.
func NewSource(location string, format Format, sheet fetcher.XLSXOptions, dl fetcher.Downloader) *Source {
	return &Source{
		Location:   location,
		Format:     format,
		Sheet:      sheet,
		Downloader: dl,
	}
}

// Name returns the configured location.
func (s *Source) Name() string { return s.Location }

// Rows reads every row of the matrix.
func (s *Source) Rows(ctx context.Context) ([][]string, error) {
	if strings.TrimSpace(s.Location) == "" {
		return nil, eris.New("catalog: no source configured")
	}
	if isURL(s.Location) {
		data, err := s.download(ctx)
		if err != nil {
			return nil, err
		}
		return s.decode(data)
	}

	switch s.format() {
	case FormatCSV:
		f, err := os.Open(s.Location)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: open %s", s.Location)
		}
		defer f.Close() //nolint:errcheck
		return fetcher.ReadCSV(f)
	default:
		return fetcher.ReadXLSX(s.Location, s.Sheet)
	}
}

// download fetches the remote matrix, reusing the previous body when the
// server reports it unchanged.
func (s *Source) download(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Downloader == nil {
		s.Downloader = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
	}

	etag := s.etag
	if s.lastBody == nil {
		etag = ""
	}
	body, newETag, changed, err := s.Downloader.DownloadIfChanged(ctx, s.Location, etag)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: download source")
	}
	if !changed {
		zap.L().Debug("catalog: source unchanged", zap.String("source", s.Location), zap.String("etag", etag))
		return s.lastBody, nil
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read source body")
	}
	s.etag = newETag
	s.lastBody = data
	return data, nil
}

func (s *Source) decode(data []byte) ([][]string, error) {
	if s.format() == FormatCSV {
		return fetcher.ReadCSV(bytes.NewReader(data))
	}
	return fetcher.ParseXLSX(data, s.Sheet)
}

func (s *Source) format() Format {
	if s.Format != "" {
		return Format(strings.ToLower(string(s.Format)))
	}
	p := s.Location
	if isURL(p) {
		if u, err := url.Parse(p); err == nil {
			p = path.Clean(u.Path)
		}
	}
	if strings.EqualFold(filepath.Ext(p), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
