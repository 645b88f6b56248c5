package main

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/paikkatieto/rakennus-cli/internal/fetcher"
	"github.com/paikkatieto/rakennus-cli/internal/gml"
	"github.com/paikkatieto/rakennus-cli/internal/registry"
	"github.com/paikkatieto/rakennus-cli/internal/snapshot"
	"github.com/paikkatieto/rakennus-cli/pkg/wfs"
)

// activeProfile resolves the field profile: the YAML file from config when
// one is set, the built-in HSY building layer profile otherwise.
func activeProfile() (*registry.Profile, error) {
	if cfg.Profile.Path == "" {
		return registry.DefaultProfile(), nil
	}
	return registry.LoadProfile(cfg.Profile.Path)
}

// openSnapshots opens the snapshot catalog and runs its migration.
func openSnapshots(ctx context.Context) (snapshot.Store, error) {
	st, err := snapshot.NewSQLite(cfg.Snapshot.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// wfsClient builds a WFS client from config. Transport goes through the
// retrying fetcher so a transient failure does not abort a dump request.
func wfsClient() wfs.Client {
	return wfs.NewClient(
		wfs.WithURL(cfg.WFS.URL),
		wfs.WithVersion(cfg.WFS.Version),
		wfs.WithFetcher(httpFetcher()),
		wfs.WithRateLimit(cfg.WFS.RatePerSec, cfg.WFS.RateBurst),
	)
}

// httpFetcher builds the shared HTTP fetcher from config.
func httpFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: cfg.WFS.Timeout()})
}

// fetchDocument runs one GetFeature against the configured layer, optionally
// filtered to a street.
func fetchDocument(ctx context.Context, profile *registry.Profile, street string) ([]byte, error) {
	q := wfs.Query{
		TypeName:    cfg.WFS.FeatureType,
		MaxFeatures: cfg.WFS.MaxFeatures,
	}
	if street != "" {
		q.Filter = wfs.PropertyIsLike(profile.StreetField, street)
	}
	return wfsClient().GetFeature(ctx, q)
}

// loadDocument resolves a feature document for the query commands, in
// precedence order: an explicit snapshot id, an explicit source (file path or
// http/ftp URL, zipped or plain), the newest snapshot of the configured
// layer, and finally a live fetch.
func loadDocument(ctx context.Context, src, snapshotID string) ([]byte, error) {
	log := zap.L().With(zap.String("component", "cmd.source"))

	switch {
	case snapshotID != "":
		st, err := openSnapshots(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close() //nolint:errcheck
		snap, doc, err := st.Get(ctx, snapshotID)
		if err != nil {
			return nil, err
		}
		log.Info("loaded snapshot",
			zap.String("id", snap.ID),
			zap.Int64("bytes", snap.Bytes))
		return doc, nil

	case src != "":
		if doc, ok := cachedSource(ctx, src); ok {
			return doc, nil
		}
		rc, err := fetcher.OpenSource(ctx, src, cfg.Fetch.TempDir)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck
		doc, err := io.ReadAll(rc)
		if err != nil {
			return nil, eris.Wrapf(err, "read source %s", src)
		}
		log.Info("loaded source", zap.String("src", src), zap.Int("bytes", len(doc)))
		return doc, nil
	}

	// No source given: try the newest snapshot before going to the network.
	st, err := openSnapshots(ctx)
	if err == nil {
		defer st.Close() //nolint:errcheck
		if snap, doc, latestErr := st.Latest(ctx, cfg.WFS.FeatureType); latestErr == nil {
			log.Info("loaded latest snapshot",
				zap.String("id", snap.ID),
				zap.Time("fetched_at", snap.FetchedAt))
			return doc, nil
		}
	}

	log.Info("no local copy, fetching live", zap.String("layer", cfg.WFS.FeatureType))
	profile, err := activeProfile()
	if err != nil {
		return nil, err
	}
	return fetchDocument(ctx, profile, "")
}

// cachedSource returns the newest snapshot's document when it came from the
// same mirror URL and the mirror still serves the same ETag. A cheap HEAD
// decides; any failure falls back to a full download.
func cachedSource(ctx context.Context, src string) ([]byte, bool) {
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, false
	}

	st, err := openSnapshots(ctx)
	if err != nil {
		return nil, false
	}
	defer st.Close() //nolint:errcheck

	snap, doc, err := st.Latest(ctx, cfg.WFS.FeatureType)
	if err != nil || snap.Source != src || snap.ETag == "" {
		return nil, false
	}

	etag, err := httpFetcher().HeadETag(ctx, src)
	if err != nil || etag != snap.ETag {
		return nil, false
	}

	zap.L().Info("source unchanged, using snapshot",
		zap.String("component", "cmd.source"),
		zap.String("src", src),
		zap.String("id", snap.ID),
		zap.String("etag", etag))
	return doc, true
}

// downloadConditional fetches an http(s) source, replaying prev's ETag when
// the previous snapshot came from the same URL. A nil document with a nil
// error means the mirror still serves the version prev archived.
func downloadConditional(ctx context.Context, src string, prev *snapshot.Snapshot) ([]byte, string, error) {
	etag := ""
	if prev != nil && prev.Source == src {
		etag = prev.ETag
	}

	rc, newETag, changed, err := httpFetcher().DownloadIfChanged(ctx, src, etag)
	if err != nil {
		return nil, "", err
	}
	if !changed {
		return nil, etag, nil
	}
	defer rc.Close() //nolint:errcheck

	doc, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", eris.Wrapf(err, "read source %s", src)
	}
	return doc, newETag, nil
}

// buildRegistry loads a document and builds the registry plus the parsed
// tree, which the geometry exporters walk again.
func buildRegistry(ctx context.Context, src, snapshotID string) (*registry.Database, *gml.Node, error) {
	doc, err := loadDocument(ctx, src, snapshotID)
	if err != nil {
		return nil, nil, err
	}

	profile, err := activeProfile()
	if err != nil {
		return nil, nil, err
	}

	root, err := gml.ParseBytes(doc)
	if err != nil {
		return nil, nil, err
	}
	return registry.FromTree(root, profile), root, nil
}

// outPath places street into a multi-fetch output path, before the
// extension: dump.xml + "Mannerheimintie" -> dump-mannerheimintie.xml.
func outPath(base, street string) string {
	if street == "" {
		return base
	}
	slug := strings.ToLower(strings.ReplaceAll(street, " ", "_"))
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + slug + ext
}
