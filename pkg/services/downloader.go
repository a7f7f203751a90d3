package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/scanfr/readercore/pkg/data"
)

// Catalog is the slice of the remote catalog client the download
// engine depends on.
type Catalog interface {
	ChapterPages(ctx context.Context, mangaID, number string) ([]data.Page, error)
	FetchPage(ctx context.Context, uri string) ([]byte, error)
}

// Progress reports the advancement of one chapter download. Fraction
// is done/total, non-decreasing per key, exactly 1.0 when the last
// page lands.
type Progress struct {
	Key      string
	Done     int
	Total    int
	Fraction float64
}

// Downloader fetches a chapter's pages to local storage and commits
// the result to the manifest exactly once per chapter key. Downloads
// of different chapters proceed fully in parallel; concurrent calls
// for the same key collapse into one transfer.
type Downloader struct {
	catalog  Catalog
	manifest *data.Manifest
	notifier Notifier
	dataDir  string
	log      *slog.Logger

	group        singleflight.Group
	progressChan chan Progress
}

func NewDownloader(catalog Catalog, manifest *data.Manifest, notifier Notifier, dataDir string, log *slog.Logger) *Downloader {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{
		catalog:      catalog,
		manifest:     manifest,
		notifier:     notifier,
		dataDir:      dataDir,
		log:          log,
		progressChan: make(chan Progress, 100),
	}
}

// ProgressChannel returns the channel carrying progress updates for
// all in-flight downloads. Updates are dropped, never blocked on, when
// the observer lags.
func (d *Downloader) ProgressChannel() <-chan Progress {
	return d.progressChan
}

// Download fetches every page of chapter and records the completed
// download in the manifest. If the chapter is already downloaded the
// existing record is returned immediately, with no transfer and no
// notification. Once started, a download runs to completion or
// failure; there is no cancellation.
func (d *Downloader) Download(ctx context.Context, chapter data.Chapter) (data.DownloadRecord, error) {
	key := chapter.Key()
	if rec, ok := d.manifest.Get(key); ok {
		return rec, nil
	}

	v, err, _ := d.group.Do(key, func() (any, error) {
		// A concurrent call may have committed between the check
		// above and joining the flight.
		if rec, ok := d.manifest.Get(key); ok {
			return rec, nil
		}
		return d.download(ctx, chapter, key)
	})
	if err != nil {
		return data.DownloadRecord{}, err
	}
	return v.(data.DownloadRecord), nil
}

func (d *Downloader) download(ctx context.Context, chapter data.Chapter, key string) (data.DownloadRecord, error) {
	d.notifier.Notify(fmt.Sprintf("Downloading chapter %s", chapter.Number))

	// Best-effort: the directory usually already exists from an
	// earlier partial attempt.
	dir := filepath.Join(d.dataDir, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.log.Debug("chapter directory", slog.String("key", key), slog.Any("error", err))
	}

	pages, err := d.catalog.ChapterPages(ctx, chapter.Manga.ID, chapter.Number)
	if err != nil {
		d.notifier.Notify("Chapter download failed")
		return data.DownloadRecord{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if len(pages) == 0 {
		d.notifier.Notify("Chapter download failed")
		return data.DownloadRecord{}, fmt.Errorf("%w: empty page list for %s", ErrFetchFailed, key)
	}

	// Fan-out: every page transfers concurrently; the first failure
	// does not cancel its siblings, the join below just refuses to
	// commit. Each call owns its own progress counter; increments and
	// sends share one lock so observed fractions never go backwards.
	total := len(pages)
	paths := make([]string, total)
	failures := make([]error, total)
	var progressMu sync.Mutex
	done := 0
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i int, page data.Page) {
			defer wg.Done()
			body, err := d.catalog.FetchPage(ctx, page.URI)
			if err != nil {
				failures[i] = fmt.Errorf("page %d: %w", i+1, err)
				return
			}
			path := filepath.Join(dir, fmt.Sprintf("%d.jpg", i+1))
			if err := os.WriteFile(path, body, 0o644); err != nil {
				failures[i] = fmt.Errorf("page %d: %w", i+1, err)
				return
			}
			paths[i] = path
			progressMu.Lock()
			done++
			d.sendProgress(Progress{
				Key:      key,
				Done:     done,
				Total:    total,
				Fraction: float64(done) / float64(total),
			})
			progressMu.Unlock()
		}(i, page)
	}
	wg.Wait()

	if err := errors.Join(failures...); err != nil {
		d.notifier.Notify("Chapter download failed")
		return data.DownloadRecord{}, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	rec := data.DownloadRecord{
		Chapter: chapter,
		Pages:   paths,
		Type:    data.LayoutFor(pages),
	}
	if err := d.manifest.Commit(rec); err != nil {
		d.notifier.Notify("Chapter download failed")
		return data.DownloadRecord{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	d.notifier.Notify("Chapter downloaded")
	return rec, nil
}

// sendProgress emits an update without blocking the transfer.
func (d *Downloader) sendProgress(p Progress) {
	select {
	case d.progressChan <- p:
	default:
	}
}
