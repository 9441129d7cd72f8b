package boticord

import (
	"context"
	"net/http"

	"gopkg.in/guregu/null.v3"
)

// ShortedLink is a link created through the bcord.cc shortener.
type ShortedLink struct {
	ID      uint64      `json:"id"`
	Code    string      `json:"code"`
	OwnerID UserID      `json:"ownerID"`
	Domain  string      `json:"domain"`
	Views   uint64      `json:"views"`
	Date    uint64      `json:"date"`
	Link    null.String `json:"link"`
}

// ShortenerBody creates a new shortened link. An empty Domain lets the API pick its default.
type ShortenerBody struct {
	Code   string `json:"code"`
	Link   string `json:"link"`
	Domain string `json:"domain,omitempty"`
}

// ShortedLinkQuery selects links by code for search and delete.
type ShortedLinkQuery struct {
	Code   string `json:"code,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// GetMyShortedLinks lists every link owned by the token holder.
func (c *Client) GetMyShortedLinks(ctx context.Context) ([]ShortedLink, error) {
	return do[[]ShortedLink](ctx, c, "GetMyShortedLinks", http.MethodPost, "/links/get", struct{}{})
}

// SearchShortedLink lists the caller's links matching query.
func (c *Client) SearchShortedLink(ctx context.Context, query ShortedLinkQuery) ([]ShortedLink, error) {
	return do[[]ShortedLink](ctx, c, "SearchShortedLink", http.MethodPost, "/links/get", query)
}

// CreateShortedLink creates a link and returns it as stored by the API.
func (c *Client) CreateShortedLink(ctx context.Context, body ShortenerBody) (ShortedLink, error) {
	return do[ShortedLink](ctx, c, "CreateShortedLink", http.MethodPost, "/links/create", body)
}

// DeleteShortedLink removes the link selected by query.
func (c *Client) DeleteShortedLink(ctx context.Context, query ShortedLinkQuery) error {
	return c.call(ctx, "DeleteShortedLink", http.MethodPost, "/links/delete", query, nil)
}
