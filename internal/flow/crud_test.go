package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Makepad-fr/itemdash/internal/api"
	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/notify"
)

// fakeItems is an in-memory ItemGateway that counts every call.
type fakeItems struct {
	items  []model.Item
	nextID int

	listErr, createErr, updateErr, deleteErr error

	lists, creates, updates, deletes int
	lastInput                       model.ItemInput
	lastTarget                      model.ItemID

	// hook runs inside the next mutating call, then clears itself.
	hook func()
	// listHook runs inside the next ListItems after its snapshot is taken,
	// standing in for a mutation that lands while the GET is in flight.
	listHook func()
}

func (f *fakeItems) runHook() {
	if h := f.hook; h != nil {
		f.hook = nil
		h()
	}
}

func (f *fakeItems) ListItems(context.Context) ([]model.Item, error) {
	f.lists++
	err := f.listErr
	out := make([]model.Item, len(f.items))
	copy(out, f.items)
	if h := f.listHook; h != nil {
		f.listHook = nil
		h()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeItems) CreateItem(_ context.Context, in model.ItemInput) (*model.Item, error) {
	f.creates++
	f.lastInput = in
	f.runHook()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	it := model.Item{ID: model.ItemID(fmt.Sprint(f.nextID)), Title: in.Title, Description: in.Description}
	f.items = append(f.items, it)
	return &it, nil
}

func (f *fakeItems) UpdateItem(_ context.Context, id model.ItemID, in model.ItemInput) (*model.Item, error) {
	f.updates++
	f.lastInput, f.lastTarget = in, id
	f.runHook()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Title, f.items[i].Description = in.Title, in.Description
			it := f.items[i]
			return &it, nil
		}
	}
	return nil, &api.TransportError{Kind: api.KindStatus, Status: 404}
}

func (f *fakeItems) DeleteItem(_ context.Context, id model.ItemID) error {
	f.deletes++
	f.lastTarget = id
	f.runHook()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return &api.TransportError{Kind: api.KindStatus, Status: 404}
}

func seeded(n int) *fakeItems {
	f := &fakeItems{}
	for i := 1; i <= n; i++ {
		f.items = append(f.items, model.Item{
			ID:          model.ItemID(fmt.Sprint(i)),
			Title:       fmt.Sprintf("title %d", i),
			Description: fmt.Sprintf("desc %d", i),
		})
	}
	f.nextID = n
	return f
}

func loaded(t *testing.T, gw *fakeItems, rec *notify.Recorder) *Dashboard {
	t.Helper()
	d := NewDashboard(gw, rec, nil)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	gw.lists = 0
	if rec != nil {
		rec.Reset()
	}
	return d
}

func TestDashboard_Load(t *testing.T) {
	gw := seeded(2)
	d := NewDashboard(gw, nil, nil)
	if d.ListState() != ListIdle {
		t.Fatalf("initial state = %v", d.ListState())
	}
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.ListState() != ListReady {
		t.Errorf("state = %v, want ready", d.ListState())
	}
	if got := d.Items(); len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("Items() = %+v", got)
	}
}

func TestDashboard_LoadFailureKeepsCache(t *testing.T) {
	gw := seeded(2)
	rec := &notify.Recorder{}
	d := loaded(t, gw, rec)

	gw.listErr = &api.TransportError{Kind: api.KindStatus, Status: 500}
	if err := d.Load(context.Background()); err == nil {
		t.Fatal("Load succeeded, want error")
	}
	if d.ListState() != ListLoadFailed {
		t.Errorf("state = %v, want load-failed", d.ListState())
	}
	if len(d.Items()) != 2 {
		t.Errorf("cache changed to %+v", d.Items())
	}
	if rec.Count(notify.Error) != 1 {
		t.Errorf("error notices = %d, want 1", rec.Count(notify.Error))
	}
}

func TestDashboard_FirstLoadFailureIsEmpty(t *testing.T) {
	gw := &fakeItems{listErr: errors.New("down")}
	d := NewDashboard(gw, nil, nil)
	_ = d.Load(context.Background())
	if got := d.Items(); got == nil || len(got) != 0 {
		t.Errorf("Items() = %#v, want empty", got)
	}
}

func TestDashboard_CreateRefreshesOnce(t *testing.T) {
	gw := &fakeItems{}
	rec := &notify.Recorder{}
	d := loaded(t, gw, rec)

	if err := d.OpenNew(); err != nil {
		t.Fatal(err)
	}
	if !d.ModalOpen() {
		t.Fatal("modal not open after OpenNew")
	}
	if err := d.UpdateDraft("A", "B"); err != nil {
		t.Fatal(err)
	}
	if err := d.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if gw.creates != 1 || gw.updates != 0 {
		t.Errorf("creates=%d updates=%d, want 1/0", gw.creates, gw.updates)
	}
	if gw.lists != 1 {
		t.Errorf("list refreshes = %d, want exactly 1", gw.lists)
	}
	if d.ModalOpen() {
		t.Error("modal still open after successful save")
	}
	if _, ok := d.Draft(); ok {
		t.Error("draft kept after successful save")
	}
	if d.SaveState() != Saved {
		t.Errorf("save state = %v", d.SaveState())
	}
	n, _ := rec.Last()
	if n.Severity != notify.Success || n.Message != msgItemAdded {
		t.Errorf("notice = %+v", n)
	}
	items := d.Items()
	if len(items) != 1 || items[0].Title != "A" || items[0].Description != "B" {
		t.Errorf("Items() = %+v, want one row A/B", items)
	}
}

func TestDashboard_SaveValidation(t *testing.T) {
	tests := []struct {
		name        string
		title, desc string
	}{
		{"empty title", "", "B"},
		{"empty description", "A", ""},
		{"whitespace only", "  ", "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeItems{}
			rec := &notify.Recorder{}
			d := loaded(t, gw, rec)
			_ = d.OpenNew()
			_ = d.UpdateDraft(tt.title, tt.desc)

			err := d.Save(context.Background())
			if !IsValidation(err) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if gw.creates+gw.lists != 0 {
				t.Errorf("network calls made: creates=%d lists=%d", gw.creates, gw.lists)
			}
			if !d.ModalOpen() {
				t.Error("modal closed on validation failure")
			}
			if n, _ := rec.Last(); n.Severity != notify.Warning {
				t.Errorf("notice = %+v, want warning", n)
			}
		})
	}
}

func TestDashboard_SaveFailureKeepsDraft(t *testing.T) {
	gw := &fakeItems{createErr: &api.TransportError{Kind: api.KindStatus, Status: 500}}
	rec := &notify.Recorder{}
	d := loaded(t, gw, rec)
	_ = d.OpenNew()
	_ = d.UpdateDraft("A", "B")

	if err := d.Save(context.Background()); err == nil {
		t.Fatal("Save succeeded, want error")
	}
	dr, ok := d.Draft()
	if !ok || dr.Title != "A" || dr.Description != "B" {
		t.Errorf("Draft() = %+v, %v; want A/B kept", dr, ok)
	}
	if d.SaveState() != SaveFailed {
		t.Errorf("save state = %v", d.SaveState())
	}
	if gw.lists != 0 {
		t.Errorf("refreshed %d times after failed save", gw.lists)
	}
	if n, _ := rec.Last(); n.Severity != notify.Error {
		t.Errorf("notice = %+v, want error", n)
	}
}

func TestDashboard_EditUnchangedRoundTrips(t *testing.T) {
	gw := seeded(3)
	rec := &notify.Recorder{}
	d := loaded(t, gw, rec)
	before := d.Items()

	it, ok := d.Find("2")
	if !ok {
		t.Fatal("item 2 not cached")
	}
	if err := d.Edit(it); err != nil {
		t.Fatal(err)
	}
	dr, _ := d.Draft()
	if !dr.Editing() || dr.Target != "2" || dr.Title != it.Title || dr.Description != it.Description {
		t.Fatalf("Draft() = %+v", dr)
	}
	if err := d.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if gw.updates != 1 || gw.creates != 0 || gw.lastTarget != "2" {
		t.Errorf("updates=%d creates=%d target=%q", gw.updates, gw.creates, gw.lastTarget)
	}
	if gw.lastInput != it.Input() {
		t.Errorf("PUT body = %+v, want %+v", gw.lastInput, it.Input())
	}
	after := d.Items()
	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("row %d = %+v, want %+v", i, after[i], before[i])
		}
	}
	if n, _ := rec.Last(); n.Message != msgItemUpdated {
		t.Errorf("notice = %+v", n)
	}
}

func TestDashboard_CancelDiscardsDraft(t *testing.T) {
	d := loaded(t, &fakeItems{}, nil)
	_ = d.OpenNew()
	_ = d.UpdateDraft("A", "B")
	if err := d.Cancel(); err != nil {
		t.Fatal(err)
	}
	if d.ModalOpen() {
		t.Error("modal open after Cancel")
	}
	if err := d.Save(context.Background()); !errors.Is(err, ErrNoDraft) {
		t.Errorf("Save after Cancel = %v, want ErrNoDraft", err)
	}
	if err := d.UpdateDraft("x", "y"); !errors.Is(err, ErrNoDraft) {
		t.Errorf("UpdateDraft after Cancel = %v, want ErrNoDraft", err)
	}
}

func TestDashboard_SaveReentryIsRefused(t *testing.T) {
	gw := &fakeItems{}
	d := loaded(t, gw, nil)
	_ = d.OpenNew()
	_ = d.UpdateDraft("A", "B")

	var nested, edit error
	gw.hook = func() {
		nested = d.Save(context.Background())
		edit = d.OpenNew()
	}
	if err := d.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !errors.Is(nested, ErrBusy) || !errors.Is(edit, ErrBusy) {
		t.Errorf("nested Save = %v, OpenNew = %v; want ErrBusy", nested, edit)
	}
	if gw.creates != 1 {
		t.Errorf("creates = %d, want 1", gw.creates)
	}
}

func TestDashboard_Delete(t *testing.T) {
	gw := seeded(2)
	rec := &notify.Recorder{}
	d := loaded(t, gw, rec)

	var asked string
	confirm := ConfirmFunc(func(p string) bool { asked = p; return true })
	if err := d.Delete(context.Background(), "1", confirm); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if asked != `Delete "title 1"?` {
		t.Errorf("prompt = %q", asked)
	}
	if gw.deletes != 1 || gw.lists != 1 {
		t.Errorf("deletes=%d lists=%d, want 1/1", gw.deletes, gw.lists)
	}
	if items := d.Items(); len(items) != 1 || items[0].ID != "2" {
		t.Errorf("Items() = %+v", items)
	}
	if d.DeleteState() != Deleted {
		t.Errorf("state = %v", d.DeleteState())
	}
	if n, _ := rec.Last(); n.Severity != notify.Success {
		t.Errorf("notice = %+v", n)
	}
}

func TestDashboard_DeleteDeclined(t *testing.T) {
	gw := seeded(2)
	d := loaded(t, gw, nil)

	err := d.Delete(context.Background(), "1", ConfirmFunc(func(string) bool { return false }))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if gw.deletes != 0 {
		t.Errorf("deletes = %d, want 0", gw.deletes)
	}
	if d.DeleteState() != DeleteCancelled {
		t.Errorf("state = %v, want cancelled", d.DeleteState())
	}
}

func TestDashboard_DeleteFailureKeepsCache(t *testing.T) {
	gw := seeded(3)
	rec := &notify.Recorder{}
	d := loaded(t, gw, rec)
	before := model.IDs(d.Items())

	gw.deleteErr = &api.TransportError{Kind: api.KindStatus, Status: 500}
	if err := d.Delete(context.Background(), "2", AlwaysConfirm); err == nil {
		t.Fatal("Delete succeeded, want error")
	}
	after := model.IDs(d.Items())
	if fmt.Sprint(after) != fmt.Sprint(before) {
		t.Errorf("ids = %v, want %v", after, before)
	}
	if gw.lists != 0 {
		t.Errorf("refreshed after failed delete")
	}
	if d.DeleteState() != DeleteFailed {
		t.Errorf("state = %v", d.DeleteState())
	}
	if n, _ := rec.Last(); n.Severity != notify.Error {
		t.Errorf("notice = %+v", n)
	}
}

func TestDashboard_TwoStepDelete(t *testing.T) {
	gw := seeded(2)
	d := loaded(t, gw, nil)

	if err := d.ResolveDelete(context.Background(), true); !errors.Is(err, ErrNoPendingDelete) {
		t.Errorf("ResolveDelete without request = %v", err)
	}

	prompt, err := d.RequestDelete("2")
	if err != nil || prompt == "" {
		t.Fatalf("RequestDelete = %q, %v", prompt, err)
	}
	if id, ok := d.PendingDelete(); !ok || id != "2" {
		t.Errorf("PendingDelete() = %q, %v", id, ok)
	}
	if gw.deletes != 0 {
		t.Fatal("deleted before confirmation")
	}
	if err := d.ResolveDelete(context.Background(), true); err != nil {
		t.Fatalf("ResolveDelete: %v", err)
	}
	if gw.lastTarget != "2" || len(d.Items()) != 1 {
		t.Errorf("target=%q items=%+v", gw.lastTarget, d.Items())
	}
	if _, ok := d.PendingDelete(); ok {
		t.Error("still pending after resolve")
	}
}

func TestDashboard_DeleteReentryIsRefused(t *testing.T) {
	gw := seeded(2)
	d := loaded(t, gw, nil)

	var nested error
	gw.hook = func() { nested = d.Delete(context.Background(), "2", AlwaysConfirm) }
	if err := d.Delete(context.Background(), "1", AlwaysConfirm); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !errors.Is(nested, ErrBusy) {
		t.Errorf("nested Delete = %v, want ErrBusy", nested)
	}
	if gw.deletes != 1 {
		t.Errorf("deletes = %d, want 1", gw.deletes)
	}
}

func TestDashboard_LoadReentryIsRefused(t *testing.T) {
	gw := &fakeItems{}
	d := NewDashboard(gw, nil, nil)
	d.list = ListLoading
	if err := d.Load(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Load while loading = %v, want ErrBusy", err)
	}
	if gw.lists != 0 {
		t.Errorf("lists = %d, want 0", gw.lists)
	}
}

func TestDashboard_MutationDuringLoadRefetches(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, d *Dashboard)
		want   []model.ItemID
	}{
		{
			name: "create",
			mutate: func(t *testing.T, d *Dashboard) {
				_ = d.OpenNew()
				_ = d.UpdateDraft("A", "B")
				if err := d.Save(context.Background()); err != nil {
					t.Errorf("Save: %v", err)
				}
			},
			want: []model.ItemID{"1", "2"},
		},
		{
			name: "delete",
			mutate: func(t *testing.T, d *Dashboard) {
				if err := d.Delete(context.Background(), "1", AlwaysConfirm); err != nil {
					t.Errorf("Delete: %v", err)
				}
			},
			want: []model.ItemID{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := seeded(1)
			d := loaded(t, gw, nil)
			gw.listHook = func() { tt.mutate(t, d) }

			if err := d.Load(context.Background()); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if gw.lists != 2 {
				t.Errorf("lists = %d, want 2", gw.lists)
			}
			got := []model.ItemID{}
			for _, it := range d.Items() {
				got = append(got, it.ID)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("cached ids = %v, want %v", got, tt.want)
			}
			if d.ListState() != ListReady {
				t.Errorf("ListState = %v, want ready", d.ListState())
			}
		})
	}
}

func TestDashboard_StaleFailedFetchIsRetried(t *testing.T) {
	gw := seeded(1)
	d := loaded(t, gw, nil)
	gw.listErr = errors.New("boom")
	gw.listHook = func() {
		gw.listErr = nil
		_ = d.OpenNew()
		_ = d.UpdateDraft("A", "B")
		_ = d.Save(context.Background())
	}
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(d.Items()); n != 2 {
		t.Errorf("cached %d items, want 2", n)
	}
}

func TestDashboard_ResetForgetsSession(t *testing.T) {
	gw := seeded(2)
	d := loaded(t, gw, nil)
	_ = d.OpenNew()
	if _, err := d.RequestDelete("1"); err != nil {
		t.Fatal(err)
	}

	d.Reset()
	if n := len(d.Items()); n != 0 {
		t.Errorf("cached %d items after Reset", n)
	}
	if d.ModalOpen() {
		t.Error("draft kept after Reset")
	}
	if _, ok := d.PendingDelete(); ok {
		t.Error("pending delete kept after Reset")
	}
	if d.ListState() != ListIdle {
		t.Errorf("ListState = %v, want idle", d.ListState())
	}

	gw.listErr = errors.New("boom")
	_ = d.Load(context.Background())
	if n := len(d.Items()); n != 0 {
		t.Errorf("failed first load after Reset shows %d items", n)
	}
}

func TestDashboard_ResetDuringLoadRefetches(t *testing.T) {
	gw := seeded(2)
	d := loaded(t, gw, nil)
	gw.listHook = func() {
		d.Reset()
		gw.items = gw.items[:0]
	}
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(d.Items()); n != 0 {
		t.Errorf("cached %d items from before Reset", n)
	}
}
