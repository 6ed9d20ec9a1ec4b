// Package session drives one interactive editing session over a
// document's table part: row-level commit/revert tracking, product
// selection, quantity capping and document totals.
package session

import (
	"posline/internal/core/id"
	"posline/internal/domain/document"
)

// Revert carries the last-known-good values for a row that must be
// rolled back.
type Revert struct {
	RowID    id.ID
	Snapshot *document.LineItem
}

// Tracker guards a single in-progress row edit. At most one row is
// tracked at a time; leaving it without a commit restores the snapshot.
//
// Users routinely half-edit a row while exploring and then click away.
// Without this boundary the abandoned keystrokes would stand as the
// row's values.
type Tracker struct {
	tracking bool
	rowID    id.ID
	snapshot *document.LineItem
}

// Tracking reports whether a row is currently tracked.
func (t *Tracker) Tracking() bool { return t.tracking }

// TrackedRow returns the tracked row id, or the nil id when idle.
func (t *Tracker) TrackedRow() id.ID {
	if !t.tracking {
		return id.Nil()
	}
	return t.rowID
}

// Enter is called when the cursor lands on a row. Entering the tracked
// row again, or a row that has no product yet, changes nothing.
// Entering a different filled row abandons the current edit: the
// returned Revert (if any) must be applied by the caller, and the new
// row is snapshotted.
func (t *Tracker) Enter(row *document.LineItem) *Revert {
	if t.tracking && t.rowID == row.ID {
		return nil
	}

	rv := t.abandon()

	if row.HasProduct() {
		t.tracking = true
		t.rowID = row.ID
		t.snapshot = row.Clone()
	}
	return rv
}

// Commit marks the tracked row's current values as final and discards
// the snapshot. A commit for a row that is not tracked is a no-op.
func (t *Tracker) Commit(rowID id.ID) {
	if t.tracking && t.rowID == rowID {
		t.reset()
	}
}

// Abandon reverts the tracked row, if any. Called when focus leaves the
// grid for anything that is not a transient overlay.
func (t *Tracker) Abandon() *Revert {
	return t.abandon()
}

func (t *Tracker) abandon() *Revert {
	if !t.tracking {
		return nil
	}
	rv := &Revert{RowID: t.rowID, Snapshot: t.snapshot}
	t.reset()
	return rv
}

func (t *Tracker) reset() {
	t.tracking = false
	t.rowID = id.Nil()
	t.snapshot = nil
}
