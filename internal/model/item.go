package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ItemID is the server-assigned identifier of an Item.
// The service may send it as a JSON number or a string; we keep it opaque.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// Item is the domain model for a dashboard entry.
type Item struct {
	ID          ItemID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ItemInput is the body sent when creating or replacing an item.
type ItemInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Blank reports whether any required field is empty.
func (in ItemInput) Blank() bool {
	return strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == ""
}

// Input returns the writable fields of it.
func (it Item) Input() ItemInput {
	return ItemInput{Title: it.Title, Description: it.Description}
}

// IDs returns the identifiers of items in order.
func IDs(items []Item) []ItemID {
	out := make([]ItemID, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
