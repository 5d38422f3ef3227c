package store

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/kiesman99/mosaic/pkg/tile"
)

// HTTP fetches tiles from a web server. The URL template may contain the
// placeholders {address}, {region}, {lat}, {lon} and {ext}; a template
// without {address} gets "/{address}{ext}" appended.
type HTTP struct {
	template  string
	ext       string
	username  string
	password  string
	userAgent string
	client    *http.Client
}

// NewHTTP returns a store fetching tiles from the URL template.
func NewHTTP(template string, opts ...Option) (*HTTP, error) {
	if template == "" {
		return nil, errors.New("dataset url is required")
	}
	if !strings.HasPrefix(template, "http://") && !strings.HasPrefix(template, "https://") {
		return nil, fmt.Errorf("dataset url must be http or https: %s", template)
	}
	if !strings.Contains(template, "{address}") {
		template = strings.TrimSuffix(template, "/") + "/{address}{ext}"
	}

	o := newOptions(opts)
	return &HTTP{
		template:  template,
		ext:       o.ext,
		username:  o.username,
		password:  o.password,
		userAgent: o.userAgent,
		client: &http.Client{
			Timeout: o.timeout,
		},
	}, nil
}

// URL returns the URL of the tile at addr.
func (h *HTTP) URL(addr tile.Address) string {
	url := h.template
	url = strings.ReplaceAll(url, "{address}", addr.String())
	url = strings.ReplaceAll(url, "{ext}", h.ext)
	if rect, err := addr.Rect(); err == nil {
		url = strings.ReplaceAll(url, "{region}", tile.RegionOf(rect.Lat1, rect.Lon1, tile.DefaultRegionSize).String())
		url = strings.ReplaceAll(url, "{lat}", strconv.Itoa(int(rect.Lat1)))
		url = strings.ReplaceAll(url, "{lon}", strconv.Itoa(int(rect.Lon1)))
	}
	return url
}

func (h *HTTP) Fetch(ctx context.Context, addr tile.Address) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL(addr), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.userAgent)
	if h.username != "" {
		req.SetBasicAuth(h.username, h.password)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound(addr)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: HTTP %d: %s", addr, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", addr, err)
	}
	return decodeBytes(addr, data)
}
