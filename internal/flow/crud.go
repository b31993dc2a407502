package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Makepad-fr/itemdash/internal/logging"
	"github.com/Makepad-fr/itemdash/internal/model"
	"github.com/Makepad-fr/itemdash/internal/notify"
)

const (
	msgLoadFailed     = "Could not load items"
	msgItemRequired   = "Title and description are required"
	msgItemAdded      = "Item added"
	msgItemUpdated    = "Item updated"
	msgSaveFailed     = "Could not save the item"
	msgItemDeleted    = "Item deleted"
	msgDeleteFailed   = "Could not delete the item"
	msgDeleteDeclined = "Deletion cancelled"
)

// ErrNoPendingDelete is returned by ResolveDelete when no deletion is
// waiting for an answer.
var ErrNoPendingDelete = errors.New("no deletion awaiting confirmation")

// ItemGateway is the part of the API the dashboard needs.
type ItemGateway interface {
	ListItems(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, in model.ItemInput) (*model.Item, error)
	UpdateItem(ctx context.Context, id model.ItemID, in model.ItemInput) (*model.Item, error)
	DeleteItem(ctx context.Context, id model.ItemID) error
}

// Draft is the content of the add/edit form. Target is empty for a new item.
type Draft struct {
	Title       string
	Description string
	Target      model.ItemID
}

// Editing reports whether the draft updates an existing item.
func (d Draft) Editing() bool { return d.Target != "" }

func (d Draft) input() model.ItemInput {
	return model.ItemInput{Title: d.Title, Description: d.Description}
}

// Dashboard holds the cached item list and drives the list, form and
// delete state machines. The cache is only ever replaced by a full
// re-fetch.
type Dashboard struct {
	gw    ItemGateway
	notes notify.Notifier
	log   *logging.Logger

	mu      sync.Mutex
	items   []model.Item
	list    ListState
	save    SaveState
	del     DeleteState
	draft   *Draft
	pending model.ItemID
	// stale is set when a mutation lands while a fetch is in flight; that
	// fetch is then repeated before its result is used.
	stale bool
}

// NewDashboard wires the CRUD flow. notes and log may be nil.
func NewDashboard(gw ItemGateway, notes notify.Notifier, log *logging.Logger) *Dashboard {
	if notes == nil {
		notes = notify.Discard
	}
	return &Dashboard{
		gw:    gw,
		notes: notes,
		log:   logging.OrNop(log).WithFlow("crud"),
		items: []model.Item{},
	}
}

// Items returns a copy of the cached list.
func (d *Dashboard) Items() []model.Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Item, len(d.items))
	copy(out, d.items)
	return out
}

// Find looks id up in the cached list.
func (d *Dashboard) Find(id model.ItemID) (model.Item, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, it := range d.items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}

func (d *Dashboard) ListState() ListState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.list
}

func (d *Dashboard) SaveState() SaveState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save
}

func (d *Dashboard) DeleteState() DeleteState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.del
}

// Load fetches the full list and replaces the cache. On failure the
// previous cache is kept.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.list == ListLoading {
		d.mu.Unlock()
		return ErrBusy
	}
	d.list = ListLoading
	d.mu.Unlock()
	return d.fetch(ctx)
}

// fetch runs the GET for a load already marked ListLoading.
func (d *Dashboard) fetch(ctx context.Context) error {
	for {
		items, err := d.gw.ListItems(ctx)

		d.mu.Lock()
		if d.stale {
			d.stale = false
			d.mu.Unlock()
			d.log.Debug("list changed during fetch, fetching again")
			continue
		}
		if err != nil {
			d.list = ListLoadFailed
			d.mu.Unlock()
			d.log.Warn("load items", "error", err)
			notify.Send(d.notes, notify.Error, msgLoadFailed)
			return err
		}
		if items == nil {
			items = []model.Item{}
		}
		d.items = items
		d.list = ListReady
		d.mu.Unlock()
		d.log.Debug("items loaded", "count", len(items))
		return nil
	}
}

// Reset forgets everything tied to the current session: the cached list,
// the draft and any pending deletion. Requests still in flight keep their
// state; a running fetch is repeated so its result cannot refill the cache
// with the previous session's items.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = []model.Item{}
	d.draft = nil
	d.pending = ""
	if d.list == ListLoading {
		d.stale = true
	} else {
		d.list = ListIdle
	}
	if d.save != Saving {
		d.save = SaveIdle
	}
	if d.del != Deleting {
		d.del = DeleteIdle
	}
}

// ModalOpen reports whether the add/edit form is open.
func (d *Dashboard) ModalOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft != nil
}

// Draft returns the open draft.
func (d *Dashboard) Draft() (Draft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.draft == nil {
		return Draft{}, false
	}
	return *d.draft, true
}

func (d *Dashboard) openDraft(dr Draft) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.save == Saving {
		return ErrBusy
	}
	d.draft = &dr
	d.save = SaveIdle
	return nil
}

// OpenNew opens an empty form for a new item.
func (d *Dashboard) OpenNew() error {
	return d.openDraft(Draft{})
}

// Edit opens the form prefilled with it. Whoever saves last wins.
func (d *Dashboard) Edit(it model.Item) error {
	return d.openDraft(Draft{Title: it.Title, Description: it.Description, Target: it.ID})
}

// UpdateDraft replaces the form fields, keeping the edit target.
func (d *Dashboard) UpdateDraft(title, description string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.draft == nil {
		return ErrNoDraft
	}
	if d.save == Saving {
		return ErrBusy
	}
	d.draft.Title = title
	d.draft.Description = description
	return nil
}

// Cancel discards the draft and closes the form.
func (d *Dashboard) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.save == Saving {
		return ErrBusy
	}
	d.draft = nil
	d.save = SaveIdle
	return nil
}

// Save submits the draft: PUT when editing, POST otherwise. On success the
// form closes and the list is fetched again. On failure the form stays
// open with the draft untouched.
func (d *Dashboard) Save(ctx context.Context) error {
	d.mu.Lock()
	if d.save == Saving {
		d.mu.Unlock()
		return ErrBusy
	}
	if d.draft == nil {
		d.mu.Unlock()
		return ErrNoDraft
	}
	dr := *d.draft
	if blank(dr.Title) || blank(dr.Description) {
		d.save = SaveFailed
		d.mu.Unlock()
		notify.Send(d.notes, notify.Warning, msgItemRequired)
		return &ValidationError{Fields: []string{"title", "description"}, Message: msgItemRequired}
	}
	d.save = Saving
	d.mu.Unlock()

	var err error
	if dr.Editing() {
		_, err = d.gw.UpdateItem(ctx, dr.Target, dr.input())
	} else {
		_, err = d.gw.CreateItem(ctx, dr.input())
	}
	if err != nil {
		d.mu.Lock()
		d.save = SaveFailed
		d.mu.Unlock()
		d.log.Warn("save item", "target", string(dr.Target), "error", err)
		notify.Send(d.notes, notify.Error, msgSaveFailed)
		return err
	}

	d.mu.Lock()
	d.draft = nil
	d.save = Saved
	d.mu.Unlock()

	msg := msgItemAdded
	if dr.Editing() {
		msg = msgItemUpdated
	}
	d.log.Info("item saved", "target", string(dr.Target))
	notify.Send(d.notes, notify.Success, msg)
	d.refresh(ctx)
	return nil
}

// refresh fetches the list once after a mutation. When a fetch is
// already running it was sent before the mutation, so it is told to
// fetch again instead. Failures are reported by fetch.
func (d *Dashboard) refresh(ctx context.Context) {
	d.mu.Lock()
	if d.list == ListLoading {
		d.stale = true
		d.mu.Unlock()
		return
	}
	d.list = ListLoading
	d.mu.Unlock()
	if err := d.fetch(ctx); err != nil {
		d.log.Debug("refresh after mutation failed", "error", err)
	}
}

func (d *Dashboard) prompt(id model.ItemID) string {
	if it, ok := d.Find(id); ok && it.Title != "" {
		return fmt.Sprintf("Delete %q?", it.Title)
	}
	return fmt.Sprintf("Delete item %s?", id)
}

// Delete asks c for confirmation and removes id when the answer is yes.
// A declined confirmation returns ErrCancelled without a network call.
func (d *Dashboard) Delete(ctx context.Context, id model.ItemID, c Confirmer) error {
	d.mu.Lock()
	if d.del == Deleting || d.del == DeleteConfirming {
		d.mu.Unlock()
		return ErrBusy
	}
	d.del = DeleteConfirming
	d.pending = id
	d.mu.Unlock()

	return d.ResolveDelete(ctx, c.Confirm(d.prompt(id)))
}

// RequestDelete starts a confirmation for id and returns the question to
// show. The answer is given later with ResolveDelete. A newer request
// replaces one still waiting.
func (d *Dashboard) RequestDelete(id model.ItemID) (string, error) {
	d.mu.Lock()
	if d.del == Deleting {
		d.mu.Unlock()
		return "", ErrBusy
	}
	d.del = DeleteConfirming
	d.pending = id
	d.mu.Unlock()
	return d.prompt(id), nil
}

// PendingDelete returns the id awaiting confirmation.
func (d *Dashboard) PendingDelete() (model.ItemID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.del == DeleteConfirming
}

// ResolveDelete answers the pending confirmation. On yes the item is
// deleted and the list fetched again; a failed delete leaves the cache
// as it was.
func (d *Dashboard) ResolveDelete(ctx context.Context, yes bool) error {
	d.mu.Lock()
	if d.del != DeleteConfirming {
		d.mu.Unlock()
		return ErrNoPendingDelete
	}
	id := d.pending
	d.pending = ""
	if !yes {
		d.del = DeleteCancelled
		d.mu.Unlock()
		notify.Send(d.notes, notify.Info, msgDeleteDeclined)
		return ErrCancelled
	}
	d.del = Deleting
	d.mu.Unlock()

	if err := d.gw.DeleteItem(ctx, id); err != nil {
		d.mu.Lock()
		d.del = DeleteFailed
		d.mu.Unlock()
		d.log.Warn("delete item", "id", string(id), "error", err)
		notify.Send(d.notes, notify.Error, msgDeleteFailed)
		return err
	}

	d.mu.Lock()
	d.del = Deleted
	d.mu.Unlock()
	d.log.Info("item deleted", "id", string(id))
	notify.Send(d.notes, notify.Success, msgItemDeleted)
	d.refresh(ctx)
	return nil
}
