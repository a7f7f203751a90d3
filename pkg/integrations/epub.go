// Package integrations packages downloaded chapters for hand-off to
// other readers. It operates only on committed download records and
// never touches the network.
package integrations

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"

	"github.com/scanfr/readercore/pkg/data"
)

// EPubBuilder compiles a downloaded chapter's pages into an EPUB file.
type EPubBuilder struct {
	outputDir  string
	normalizer *Normalizer
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	return &EPubBuilder{outputDir: outputDir, normalizer: NewNormalizer()}
}

// ExportChapter writes an EPUB for rec and returns its path. The
// record must come from the manifest, so every page file exists.
func (b *EPubBuilder) ExportChapter(rec data.DownloadRecord) (string, error) {
	if len(rec.Pages) == 0 {
		return "", fmt.Errorf("record %s has no pages", rec.Key())
	}
	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	title := fmt.Sprintf("%s - Chapter %s", rec.Manga.Name, data.NormalizeNumber(rec.Number))
	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("creating epub: %w", err)
	}
	e.SetAuthor(rec.Manga.Name)

	// Pages are normalized into a scratch directory; go-epub copies
	// them into the archive on write.
	scratch, err := os.MkdirTemp("", "readercore-epub-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	for i, page := range rec.Pages {
		raw, err := os.ReadFile(page)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i+1, err)
		}
		normalized, err := b.normalizer.Normalize(raw)
		if err != nil {
			return "", fmt.Errorf("normalizing page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("%d.jpg", i+1)
		path := filepath.Join(scratch, name)
		if err := os.WriteFile(path, normalized, 0o644); err != nil {
			return "", err
		}
		internal, err := e.AddImage(path, name)
		if err != nil {
			return "", fmt.Errorf("adding page %d: %w", i+1, err)
		}
		body := fmt.Sprintf(`<img src="%s" alt="Page %d"/>`, internal, i+1)
		if _, err := e.AddSection(body, fmt.Sprintf("Page %d", i+1), "", ""); err != nil {
			return "", fmt.Errorf("adding section %d: %w", i+1, err)
		}
	}

	outputPath := filepath.Join(b.outputDir, sanitizeFilename(rec.Key())+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("writing epub: %w", err)
	}
	return outputPath, nil
}

// sanitizeFilename replaces characters that are unsafe in filenames.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	return replacer.Replace(name)
}
