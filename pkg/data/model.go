package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout types for a downloaded chapter. Webtoon chapters scroll
// continuously; manga chapters are read page by page.
const (
	LayoutWebtoon = "webtoon"
	LayoutManga   = "manga"
)

// webtoonMarker is carried in the first page URI of continuous-layout
// chapters by the catalog service.
const webtoonMarker = "?top"

type Manga struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Thumbnail   string `json:"thumbnail"`
	LastChapter string `json:"last_chapter,omitempty"`
}

// Chapter is an immutable snapshot fetched from the catalog. Number
// may be fractional ("12.5") and is kept as the catalog sent it.
type Chapter struct {
	Number      string `json:"number"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Manga       Manga  `json:"manga"`
}

// Key returns the download key for this chapter, "{mangaId}-{number}".
func (c Chapter) Key() string {
	return ChapterKey(c.Manga.ID, c.Number)
}

// ChapterKey builds the manifest key for a (manga, chapter) pair. The
// number is normalized numerically so "05" and "5" name the same
// chapter, matching the keys written by earlier app versions.
func ChapterKey(mangaID, number string) string {
	return fmt.Sprintf("%s-%s", mangaID, NormalizeNumber(number))
}

// NormalizeNumber strips leading zeros and trailing decimal zeros from
// a chapter number ("05" -> "5", "12.50" -> "12.5"). Non-numeric
// numbers pass through unchanged.
func NormalizeNumber(number string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return number
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Page is one image resource of a chapter; slice order is reading
// order.
type Page struct {
	URI string `json:"uri"`
}

// LayoutFor classifies a chapter's layout from its page list. The
// catalog tags continuous chapters on the first page only, so the
// classification is derived once and stored with the record.
func LayoutFor(pages []Page) string {
	if len(pages) > 0 && strings.Contains(pages[0].URI, webtoonMarker) {
		return LayoutWebtoon
	}
	return LayoutManga
}

// DownloadRecord is the manifest entry for a fully downloaded chapter:
// the chapter snapshot, the ordered local file paths of its pages and
// the layout type. It exists iff every page was written successfully.
type DownloadRecord struct {
	Chapter
	Pages []string `json:"pages"`
	Type  string   `json:"type"`
}
