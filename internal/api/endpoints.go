package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/Makepad-fr/itemdash/internal/model"
)

const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathItems    = "/items"
)

// ItemPath returns /items/{id} with id escaped.
func ItemPath(id model.ItemID) string {
	return PathItems + "/" + url.PathEscape(string(id))
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	resp, err := c.Post(ctx, PathLogin, creds)
	if err != nil {
		return "", err
	}
	malformed := func(err error) error {
		return &TransportError{Method: http.MethodPost, Path: PathLogin, Kind: KindMalformed, Status: resp.Status, Err: err}
	}
	if !gjson.ValidBytes(resp.Data) {
		return "", malformed(errors.New("body is not JSON"))
	}
	tok := gjson.GetBytes(resp.Data, "token")
	if tok.Type != gjson.String || tok.Str == "" {
		return "", malformed(errors.New("no token in response"))
	}
	return tok.Str, nil
}

// Register creates an account. The response body is ignored.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	_, err := c.Post(ctx, PathRegister, reg)
	return err
}

// ListItems fetches the whole ordered item list.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	resp, err := c.Get(ctx, PathItems)
	if err != nil {
		return nil, err
	}
	var items []model.Item
	if err := decode(http.MethodGet, PathItems, resp, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// CreateItem posts a new item and returns the server's copy.
func (c *Client) CreateItem(ctx context.Context, in model.ItemInput) (*model.Item, error) {
	resp, err := c.Post(ctx, PathItems, in)
	if err != nil {
		return nil, err
	}
	return itemFrom(http.MethodPost, PathItems, resp)
}

// UpdateItem replaces title and description of id.
func (c *Client) UpdateItem(ctx context.Context, id model.ItemID, in model.ItemInput) (*model.Item, error) {
	path := ItemPath(id)
	resp, err := c.Put(ctx, path, in)
	if err != nil {
		return nil, err
	}
	return itemFrom(http.MethodPut, path, resp)
}

// DeleteItem removes id.
func (c *Client) DeleteItem(ctx context.Context, id model.ItemID) error {
	_, err := c.Delete(ctx, ItemPath(id))
	return err
}

// itemFrom decodes an item body. Servers that answer 201/204 with no
// body are accepted and yield nil.
func itemFrom(method, path string, resp *Response) (*model.Item, error) {
	if len(bytes.TrimSpace(resp.Data)) == 0 {
		return nil, nil
	}
	var it model.Item
	if err := decode(method, path, resp, &it); err != nil {
		return nil, err
	}
	return &it, nil
}
