package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/session"
)

// recorded is one request seen by the test server.
type recorded struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *[]recorded) {
	t.Helper()
	var seen []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = append(seen, recorded{r.Method, r.URL.Path, r.Header.Get("Authorization"), string(b)})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestClient_AttachesBearerAtCallTime(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	store := session.NewMemStore()
	c := New(srv.URL, store)

	if _, err := c.Get(context.Background(), "/items"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := store.SetToken("t1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), "/items"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if len(*seen) != 2 {
		t.Fatalf("got %d requests, want 2", len(*seen))
	}
	if got := (*seen)[0].Auth; got != "" {
		t.Errorf("first request Authorization = %q, want none", got)
	}
	if got := (*seen)[1].Auth; got != "Bearer t1" {
		t.Errorf("second request Authorization = %q, want %q", got, "Bearer t1")
	}
}

func TestClient_StatusErrors(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	})
	c := New(srv.URL, nil)

	_, err := c.Get(context.Background(), "/items")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.Kind != KindStatus || te.Status != http.StatusUnauthorized {
		t.Errorf("got kind=%v status=%d, want status 401", te.Kind, te.Status)
	}
	if StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("StatusCode() = %d", StatusCode(err))
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Get(context.Background(), "/items")
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindNetwork {
		t.Fatalf("err = %v, want network TransportError", err)
	}
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		want     string
		wantKind ErrorKind
		wantErr  bool
	}{
		{"token", 200, `{"token":"t1"}`, "t1", 0, false},
		{"missing token", 200, `{"ok":true}`, "", KindMalformed, true},
		{"empty token", 200, `{"token":""}`, "", KindMalformed, true},
		{"numeric token", 200, `{"token":5}`, "", KindMalformed, true},
		{"not json", 200, `<html>`, "", KindMalformed, true},
		{"rejected", 401, `{"error":"bad credentials"}`, "", KindStatus, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			got, err := New(srv.URL, nil).Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "x"})

			if (*seen)[0].Method != http.MethodPost || (*seen)[0].Path != PathLogin {
				t.Errorf("request = %s %s, want POST %s", (*seen)[0].Method, (*seen)[0].Path, PathLogin)
			}
			var body model.Credentials
			if err := json.Unmarshal([]byte((*seen)[0].Body), &body); err != nil || body.Email != "a@b.com" || body.Password != "x" {
				t.Errorf("request body = %s", (*seen)[0].Body)
			}

			if tt.wantErr {
				var te *TransportError
				if !errors.As(err, &te) {
					t.Fatalf("err = %v, want TransportError", err)
				}
				if te.Kind != tt.wantKind {
					t.Errorf("kind = %v, want %v", te.Kind, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_ItemEndpoints(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`[{"id":1,"title":"A","description":"B"}]`))
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":1,"title":"A","description":"B"}`))
		case r.Method == http.MethodPut:
			w.Write([]byte(`{"id":"1","title":"A2","description":"B2"}`))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	store := session.NewMemStore()
	_ = store.SetToken("t1")
	c := New(srv.URL, store)
	ctx := context.Background()

	items, err := c.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != "1" || items[0].Title != "A" {
		t.Errorf("ListItems() = %+v", items)
	}

	created, err := c.CreateItem(ctx, model.ItemInput{Title: "A", Description: "B"})
	if err != nil || created == nil || created.ID != "1" {
		t.Errorf("CreateItem() = %+v, %v", created, err)
	}

	updated, err := c.UpdateItem(ctx, "1", model.ItemInput{Title: "A2", Description: "B2"})
	if err != nil || updated == nil || updated.Title != "A2" {
		t.Errorf("UpdateItem() = %+v, %v", updated, err)
	}

	if err := c.DeleteItem(ctx, "1"); err != nil {
		t.Errorf("DeleteItem: %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodGet, "/items"},
		{http.MethodPost, "/items"},
		{http.MethodPut, "/items/1"},
		{http.MethodDelete, "/items/1"},
	}
	if len(*seen) != len(want) {
		t.Fatalf("got %d requests, want %d", len(*seen), len(want))
	}
	for i, w := range want {
		r := (*seen)[i]
		if r.Method != w.method || r.Path != w.path {
			t.Errorf("request %d = %s %s, want %s %s", i, r.Method, r.Path, w.method, w.path)
		}
		if r.Auth != "Bearer t1" {
			t.Errorf("request %d Authorization = %q", i, r.Auth)
		}
	}
}

func TestClient_ListItemsMalformed(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":"nope"}`))
	})
	_, err := New(srv.URL, nil).ListItems(context.Background())
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindMalformed {
		t.Fatalf("err = %v, want malformed TransportError", err)
	}
}

func TestClient_ListItemsNullIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})
	items, err := New(srv.URL, nil).ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("ListItems() = %#v, want empty non-nil slice", items)
	}
}

func TestItemPath(t *testing.T) {
	if got := ItemPath("a/b"); got != "/items/a%2Fb" {
		t.Errorf("ItemPath(a/b) = %q", got)
	}
}
