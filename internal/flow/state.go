package flow

// AuthState is the progress of a login or registration:
// idle → submitting → {succeeded, failed}.
type AuthState int

const (
	AuthIdle AuthState = iota
	AuthSubmitting
	AuthSucceeded
	AuthFailed
)

func (s AuthState) String() string {
	switch s {
	case AuthIdle:
		return "idle"
	case AuthSubmitting:
		return "submitting"
	case AuthSucceeded:
		return "success"
	case AuthFailed:
		return "failed"
	}
	return "unknown"
}

// ListState is the progress of fetching the item list:
// idle → loading → {ready, load-failed}.
type ListState int

const (
	ListIdle ListState = iota
	ListLoading
	ListReady
	ListLoadFailed
)

func (s ListState) String() string {
	switch s {
	case ListIdle:
		return "idle"
	case ListLoading:
		return "loading"
	case ListReady:
		return "ready"
	case ListLoadFailed:
		return "load-failed"
	}
	return "unknown"
}

// SaveState is the progress of submitting the add/edit form:
// idle → saving → {saved, save-failed}.
type SaveState int

const (
	SaveIdle SaveState = iota
	Saving
	Saved
	SaveFailed
)

func (s SaveState) String() string {
	switch s {
	case SaveIdle:
		return "idle"
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case SaveFailed:
		return "save-failed"
	}
	return "unknown"
}

// DeleteState is the progress of removing an item:
// idle → confirming → {deleting → {deleted, delete-failed}, cancelled}.
type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeleteConfirming
	Deleting
	Deleted
	DeleteFailed
	DeleteCancelled
)

func (s DeleteState) String() string {
	switch s {
	case DeleteIdle:
		return "idle"
	case DeleteConfirming:
		return "confirming"
	case Deleting:
		return "deleting"
	case Deleted:
		return "deleted"
	case DeleteFailed:
		return "delete-failed"
	case DeleteCancelled:
		return "cancelled"
	}
	return "unknown"
}
