// Package catalog is the client for the remote catalog service: manga
// and chapter listings, chapter page lists and follow-set sync. It is
// the only network boundary of the core.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/scanfr/readercore/pkg/data"
)

// ErrAuth is returned when the service rejects the static credential.
// Fatal to the call; never retried.
var ErrAuth = errors.New("catalog: credential rejected")

// DefaultTimeout bounds every catalog and page request. There is no
// per-call override; a page transfer hitting it surfaces as a transfer
// failure in the download engine.
const DefaultTimeout = 30 * time.Second

type Client struct {
	api   *resty.Client
	pages *resty.Client
}

// NewClient builds a catalog client for baseURL carrying token as a
// static bearer credential. Page images are served from CDN hosts that
// take no credential, so they go through a separate bare client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	api := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	pages := resty.New().SetTimeout(timeout)
	return &Client{api: api, pages: pages}
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	}
	if resp.IsError() {
		return fmt.Errorf("catalog: %s %s: %s", resp.Request.Method, resp.Request.URL, resp.Status())
	}
	return nil
}

// Mangas lists the catalog's titles.
func (c *Client) Mangas(ctx context.Context) ([]data.Manga, error) {
	var mangas []data.Manga
	resp, err := c.api.R().SetContext(ctx).SetResult(&mangas).Get("/mangas/")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return mangas, nil
}

// RecentChapters lists the latest released chapters, most recent
// first, across all titles.
func (c *Client) RecentChapters(ctx context.Context, limit int) ([]data.Chapter, error) {
	var chapters []data.Chapter
	resp, err := c.api.R().SetContext(ctx).SetResult(&chapters).
		Get(fmt.Sprintf("/chapters/%d", limit))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return chapters, nil
}

// ChapterPages returns the ordered page list of one chapter.
func (c *Client) ChapterPages(ctx context.Context, mangaID, number string) ([]data.Page, error) {
	var out struct {
		Pages []data.Page `json:"pages"`
	}
	resp, err := c.api.R().SetContext(ctx).SetResult(&out).
		Get(fmt.Sprintf("/chapters/%s/%s", mangaID, number))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out.Pages, nil
}

// followsRequest is the body of both modes of POST /users/follows: the
// "get" mode retrieves the followed ids registered for this device,
// the push mode replaces them with a JSON-encoded array.
type followsRequest struct {
	Token   string `json:"token"`
	Request string `json:"request,omitempty"`
	Follows string `json:"follows,omitempty"`
}

// RemoteFollows retrieves the follow set the service holds for the
// device identified by deviceToken.
func (c *Client) RemoteFollows(ctx context.Context, deviceToken string) ([]string, error) {
	var follows []string
	resp, err := c.api.R().SetContext(ctx).
		SetBody(followsRequest{Token: deviceToken, Request: "get"}).
		SetResult(&follows).
		Post("/users/follows")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return follows, nil
}

// PushFollows replaces the remote follow set for the device identified
// by deviceToken with follows.
func (c *Client) PushFollows(ctx context.Context, deviceToken string, follows []string) error {
	if follows == nil {
		follows = []string{}
	}
	encoded, err := json.Marshal(follows)
	if err != nil {
		return err
	}
	resp, err := c.api.R().SetContext(ctx).
		SetBody(followsRequest{Token: deviceToken, Follows: string(encoded)}).
		Post("/users/follows")
	return check(resp, err)
}

// FetchPage downloads one page image.
func (c *Client) FetchPage(ctx context.Context, uri string) ([]byte, error) {
	resp, err := c.pages.R().SetContext(ctx).Get(uri)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
