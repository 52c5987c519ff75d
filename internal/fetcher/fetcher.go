// Package fetcher materialises the lender matrix into rows of cell strings.
// It reads local XLSX and CSV files and downloads remote copies over HTTP.
package fetcher

import (
	"context"
	"io"
)

// Downloader retrieves a remote spreadsheet.
type Downloader interface {
	// Download returns the response body for url.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadIfChanged returns (body, etag, changed, err). When the server
	// reports the etag unchanged, body is nil and changed is false.
	DownloadIfChanged(ctx context.Context, url, etag string) (io.ReadCloser, string, bool, error)
}
