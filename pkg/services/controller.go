package services

import (
	"context"
	"log/slog"

	"github.com/scanfr/readercore/pkg/catalog"
	"github.com/scanfr/readercore/pkg/config"
	"github.com/scanfr/readercore/pkg/data"
)

// CatalogClient is everything the controller needs from the remote
// catalog.
type CatalogClient interface {
	Catalog
	FollowPusher
	Mangas(ctx context.Context) ([]data.Manga, error)
	RecentChapters(ctx context.Context, limit int) ([]data.Chapter, error)
	RemoteFollows(ctx context.Context, deviceToken string) ([]string, error)
}

// Controller wires the core together and is the surface the
// presentation layer talks to.
type Controller struct {
	catalog    CatalogClient
	store      data.Store
	manifest   *data.Manifest
	downloader *Downloader
	sync       *Synchronizer
	tokens     TokenProvider
}

// NewController builds the full core from configuration: DuckDB store,
// manifest, follow store, catalog client, download engine and follow
// synchronizer.
func NewController(cfg config.Config, notifier Notifier, tokens TokenProvider, log *slog.Logger) (*Controller, error) {
	store, err := data.NewDuckDBStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	client := catalog.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.HTTPTimeout)
	return newController(client, store, cfg.DataDir, notifier, tokens, log), nil
}

func newController(client CatalogClient, store data.Store, dataDir string, notifier Notifier, tokens TokenProvider, log *slog.Logger) *Controller {
	if tokens == nil {
		tokens = NewStoredTokenProvider(store)
	}
	manifest := data.NewManifest(store)
	follows := data.NewFollowStore(store)
	return &Controller{
		catalog:    client,
		store:      store,
		manifest:   manifest,
		downloader: NewDownloader(client, manifest, notifier, dataDir, log),
		sync:       NewSynchronizer(follows, client, tokens, log),
		tokens:     tokens,
	}
}

// Mangas lists the catalog's titles.
func (c *Controller) Mangas(ctx context.Context) ([]data.Manga, error) {
	return c.catalog.Mangas(ctx)
}

// RecentFollowedChapters returns the latest chapters of the titles the
// remote service knows this device follows. The remote set is used,
// not the local one: it is the cross-device system of record for this
// feed.
func (c *Controller) RecentFollowedChapters(ctx context.Context, limit int) ([]data.Chapter, error) {
	chapters, err := c.catalog.RecentChapters(ctx, limit)
	if err != nil {
		return nil, err
	}
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	follows, err := c.catalog.RemoteFollows(ctx, token)
	if err != nil {
		return nil, err
	}
	followed := make(map[string]bool, len(follows))
	for _, id := range follows {
		followed[id] = true
	}
	out := make([]data.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if followed[ch.Manga.ID] {
			out = append(out, ch)
		}
	}
	return out, nil
}

// Download fetches a chapter for offline reading. See
// Downloader.Download.
func (c *Controller) Download(ctx context.Context, chapter data.Chapter) (data.DownloadRecord, error) {
	return c.downloader.Download(ctx, chapter)
}

// Progress exposes download progress updates to the presentation
// layer.
func (c *Controller) Progress() <-chan Progress {
	return c.downloader.ProgressChannel()
}

// Downloads returns the manifest snapshot, keyed by chapter key.
func (c *Controller) Downloads() map[string]data.DownloadRecord {
	return c.manifest.Records()
}

// IsDownloaded reports whether the chapter is available offline.
func (c *Controller) IsDownloaded(chapter data.Chapter) bool {
	return c.manifest.Has(chapter.Key())
}

// ToggleFollow flips the follow state of a title. See
// Synchronizer.Toggle.
func (c *Controller) ToggleFollow(ctx context.Context, mangaID string) ([]string, error) {
	return c.sync.Toggle(ctx, mangaID)
}

func (c *Controller) IsFollowing(mangaID string) bool {
	return c.sync.IsFollowing(mangaID)
}

func (c *Controller) Close() error {
	return c.store.Close()
}
