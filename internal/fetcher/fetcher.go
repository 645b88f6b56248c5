// Package fetcher downloads building-registry dumps over HTTP and FTP and
// resolves local copies, with per-host rate limiting and retry towards the
// public endpoints.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// OpenSource resolves a dump source to a reader. The source may be a local
// file path, an http(s) URL, or an ftp URL; a ".zip" source is downloaded,
// its single entry extracted under tmpDir and opened instead.
func OpenSource(ctx context.Context, source, tmpDir string) (io.ReadCloser, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		return openLocal(ctx, source, tmpDir)
	}

	var f Fetcher
	switch u.Scheme {
	case "http", "https":
		f = NewHTTPFetcher(HTTPOptions{})
	case "ftp":
		f = NewFTPFetcher(FTPOptions{})
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}

	if !strings.EqualFold(filepath.Ext(u.Path), ".zip") {
		return f.Download(ctx, source)
	}

	archive := filepath.Join(tmpDir, filepath.Base(u.Path))
	if _, err := f.DownloadToFile(ctx, source, archive); err != nil {
		return nil, err
	}
	extracted, err := ExtractArchiveSingle(archive, tmpDir)
	if err != nil {
		return nil, err
	}
	return os.Open(extracted)
}

func openLocal(_ context.Context, path, tmpDir string) (io.ReadCloser, error) {
	path = strings.TrimPrefix(path, "file://")
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		extracted, err := ExtractArchiveSingle(path, tmpDir)
		if err != nil {
			return nil, err
		}
		path = extracted
	}
	rc, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	return rc, nil
}
