package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/tabshelf/internal/collection"
	"github.com/five82/tabshelf/internal/drag"
	"github.com/five82/tabshelf/internal/host"
	"github.com/five82/tabshelf/internal/logging"
	"pkt.systems/pslog"
)

// Reconciler applies drops. It never reads or clears the drag tracker: the
// caller ends the session when the drop is decided and hands it over in
// Drop.Session, so a slow host call cannot clobber a newer drag.
type Reconciler struct {
	store *collection.Store
	host  host.Provider
	log   pslog.Logger
}

// New builds a Reconciler over the shared store and host.
func New(store *collection.Store, provider host.Provider, logger pslog.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		host:  provider,
		log:   logging.OrDiscard(logger).With("component", "reconcile"),
	}
}

// Drop reconciles d against the session it carries.
func (r *Reconciler) Drop(ctx context.Context, d Drop) Result {
	s := d.Session
	res := r.dispatch(ctx, s, d)
	res.Session = s
	res.ScrollOffset = s.ScrollOffset

	log := r.log.With("rule", res.Rule, "kind", s.Kind.String(), "target", d.Target.Kind.String(), "source", string(sourceOf(s, d)))
	switch {
	case res.Err != nil && res.Mutated:
		log.Warn("drop partially applied", "err", res.Err, "render", res.Render.String())
	case res.Err != nil:
		log.Warn("drop rejected", "err", res.Err)
	case res.Mutated:
		log.Info("drop applied", "render", res.Render.String())
	default:
		log.Debug("drop was a no-op")
	}
	return res
}

func sourceOf(s drag.Session, d Drop) drag.Source {
	if d.Source != drag.SourceNone {
		return d.Source
	}
	return s.Source
}

func (r *Reconciler) dispatch(ctx context.Context, s drag.Session, d Drop) Result {
	t := d.Target
	if t.Kind == drag.TargetNone {
		return Result{Err: ErrNoTarget}
	}
	if !s.Active() || (s.Element == "" && s.Kind != drag.KindWindowGroup) {
		return Result{Err: ErrNoDrag}
	}
	src := sourceOf(s, d)

	switch {
	case s.Kind == drag.KindCollection && src == drag.SourceCollectionsPanel &&
		(t.Kind == drag.TargetCollection || t.Kind == drag.TargetCollectionGroup || t.Kind == drag.TargetCollectionsList):
		return r.moveCollection(ctx, s, t)
	case s.Kind == drag.KindTabCard && t.Kind == drag.TargetCollection && src == drag.SourceLiveTab:
		return r.storeLiveTab(ctx, s, t, d.Shift)
	case s.Kind == drag.KindTabCard && t.Kind == drag.TargetCollection && src == drag.SourceContentTab:
		return r.moveStoredTab(ctx, s, t)
	case s.Kind == drag.KindTabCard && t.Kind == drag.TargetWindowGroup && src == drag.SourceContentTab:
		return r.openStoredTab(ctx, s, t)
	case s.Kind == drag.KindTabCard && t.Kind == drag.TargetWindowGroup && src == drag.SourceLiveTab:
		return r.moveLiveTab(ctx, s, t)
	case s.Kind == drag.KindTabCard && t.Kind == drag.TargetContentPanel && src == drag.SourceLiveTab:
		return r.storeLiveTabInSelection(ctx, s)
	case s.Kind == drag.KindTabCard && t.Kind == drag.TargetContentPanel && src == drag.SourceContentTab:
		return r.reorderStoredTab(ctx, s, t)
	case s.Kind == drag.KindWindowGroup && (t.Kind == drag.TargetCollection || t.Kind == drag.TargetContentPanel):
		return r.copyWindow(ctx, s, t)
	default:
		return Result{Rule: 9, Err: ErrInvalidCombination}
	}
}

// contentIf adds RenderContent when any of ids is the selected collection.
func (r *Reconciler) contentIf(render Render, ids ...int) Render {
	sel, ok := r.store.Selected()
	if !ok {
		return render
	}
	for _, id := range ids {
		if id == sel {
			return render | RenderContent
		}
	}
	return render
}

// moveCollection moves the dragged collection into the target group, before
// the sibling the pointer is over, or to the end of the group.
func (r *Reconciler) moveCollection(ctx context.Context, s drag.Session, t Target) Result {
	res := Result{Rule: 1}
	if t.Kind == drag.TargetCollection && t.CollectionID == s.CollectionID {
		return res
	}
	srcGroup, _, ok := r.store.Find(s.CollectionID)
	if !ok {
		res.Err = fmt.Errorf("collection %d: %w", s.CollectionID, collection.ErrNotFound)
		return res
	}
	dest := t.GroupIdx
	if dest < 0 {
		dest = srcGroup
	}

	moved, err := r.store.MoveCollection(ctx, s.CollectionID, dest, t.InsertBefore(s.CollectionID))
	res.Mutated = moved
	res.Err = err
	if moved {
		res.Render = r.contentIf(RenderCollections, s.CollectionID)
	}
	return res
}

// storeLiveTab appends the dragged live tab to the target collection. With
// Shift the live tab is closed afterwards, and its window too once empty.
func (r *Reconciler) storeLiveTab(ctx context.Context, s drag.Session, t Target, shift bool) Result {
	res := Result{Rule: 2}
	if s.TabData == nil || s.TabData.Live == nil {
		res.Err = ErrNoTabData
		return res
	}
	err := r.store.AppendTabs(ctx, t.CollectionID, s.TabData.Stored)
	if err != nil && !errors.Is(err, collection.ErrPersist) {
		res.Err = err
		return res
	}
	res.Mutated = true
	res.Render = r.contentIf(RenderCollections, t.CollectionID)
	if err != nil || !shift {
		res.Err = err
		return res
	}

	live := s.TabData.Live
	res.Render |= RenderLive | RenderRestoreScroll
	if err := r.host.RemoveTab(ctx, live.ID); err != nil {
		res.Err = err
		return res
	}
	closed, err := host.CloseIfEmpty(ctx, r.host, live.WindowID)
	if closed {
		r.log.Info("closed emptied window", "window", live.WindowID)
	}
	res.Err = err
	return res
}

// moveStoredTab moves a stored tab from the selected collection into another
// collection.
func (r *Reconciler) moveStoredTab(ctx context.Context, s drag.Session, t Target) Result {
	res := Result{Rule: 3}
	if s.TabData == nil {
		res.Err = ErrNoTabData
		return res
	}
	if s.CollectionID == t.CollectionID {
		return res
	}
	moved, err := r.store.MoveTab(ctx, s.CollectionID, s.CardIndex, t.CollectionID)
	res.Mutated = moved
	res.Err = err
	if moved {
		res.Render = r.contentIf(RenderCollections, s.CollectionID, t.CollectionID)
	}
	return res
}

// openStoredTab opens a stored tab as a new live tab in the target window.
func (r *Reconciler) openStoredTab(ctx context.Context, s drag.Session, t Target) Result {
	res := Result{Rule: 4}
	if s.TabData == nil || s.TabData.Stored.URL == "" {
		res.Err = ErrNoTabData
		return res
	}
	if _, err := r.host.CreateTab(ctx, host.Create{WindowID: t.WindowID, URL: s.TabData.Stored.URL}); err != nil {
		res.Err = err
		return res
	}
	res.Render = RenderLive | RenderRestoreScroll
	return res
}

// moveLiveTab reorders a live tab inside its window, or appends it to
// another window.
func (r *Reconciler) moveLiveTab(ctx context.Context, s drag.Session, t Target) Result {
	res := Result{Rule: 5}
	if s.TabData == nil || s.TabData.Live == nil {
		res.Err = ErrNoTabData
		return res
	}
	live := s.TabData.Live

	if live.WindowID != t.WindowID {
		if err := r.host.MoveTab(ctx, live.ID, host.Move{WindowID: t.WindowID, Index: host.AppendIndex}); err != nil {
			res.Err = err
			return res
		}
		res.Render = RenderLive | RenderRestoreScroll
		return res
	}

	tabs, err := r.host.QueryTabs(ctx, host.Query{WindowID: t.WindowID})
	if err != nil {
		res.Err = err
		return res
	}
	from := live.Index
	for _, tab := range tabs {
		if tab.ID == live.ID {
			from = tab.Index
		}
	}

	to := -1
	switch {
	case t.CardIndex >= 0:
		to = t.CardIndex
		for _, tab := range tabs {
			if tab.ID == t.CardTabID {
				to = tab.Index
				break
			}
		}
	case t.Grid != nil:
		to = drag.GridIndex(t.Grid.Container, t.Grid.X, t.Grid.Y, t.Grid.Cell, t.Grid.Count)
	default:
		return res
	}
	if from == to {
		return res
	}
	if err := r.host.MoveTab(ctx, live.ID, host.Move{WindowID: t.WindowID, Index: to}); err != nil {
		res.Err = err
		return res
	}
	res.Render = RenderLive | RenderRestoreScroll
	return res
}

// storeLiveTabInSelection appends the dragged live tab to the selected
// collection.
func (r *Reconciler) storeLiveTabInSelection(ctx context.Context, s drag.Session) Result {
	res := Result{Rule: 6}
	if s.TabData == nil {
		res.Err = ErrNoTabData
		return res
	}
	sel, ok := r.store.Selected()
	if !ok {
		res.Err = &collection.ValidationError{Reason: "drop on content panel", Err: collection.ErrNoSelection}
		return res
	}
	err := r.store.AppendTabs(ctx, sel, s.TabData.Stored)
	res.Err = err
	if err != nil && !errors.Is(err, collection.ErrPersist) {
		return res
	}
	res.Mutated = true
	res.Render = RenderCollections | RenderContent
	return res
}

// reorderStoredTab moves a stored tab to the card index it was dropped on
// inside the same collection.
func (r *Reconciler) reorderStoredTab(ctx context.Context, s drag.Session, t Target) Result {
	res := Result{Rule: 7}
	if s.TabData == nil {
		res.Err = ErrNoTabData
		return res
	}
	if t.CardIndex < 0 {
		return res
	}
	moved, err := r.store.ReorderTab(ctx, s.CollectionID, s.CardIndex, t.CardIndex)
	res.Mutated = moved
	res.Err = err
	if moved {
		res.Render = r.contentIf(RenderCollections, s.CollectionID)
	}
	return res
}

// copyWindow stores every tab of the dragged window in the target collection,
// or in the selected one for a content panel drop.
func (r *Reconciler) copyWindow(ctx context.Context, s drag.Session, t Target) Result {
	res := Result{Rule: 8}
	dest := t.CollectionID
	if t.Kind == drag.TargetContentPanel {
		sel, ok := r.store.Selected()
		if !ok {
			res.Err = &collection.ValidationError{Reason: "drop window on content panel", Err: collection.ErrNoSelection}
			return res
		}
		dest = sel
	}

	tabs, err := r.host.QueryTabs(ctx, host.Query{WindowID: s.WindowID})
	if err != nil {
		res.Err = err
		return res
	}
	stored := make([]collection.StoredTab, 0, len(tabs))
	for _, tab := range tabs {
		stored = append(stored, tab.Stored())
	}
	// The window query suspended; dest is resolved by id again here.
	err = r.store.AppendTabs(ctx, dest, stored...)
	res.Err = err
	if err != nil && !errors.Is(err, collection.ErrPersist) {
		return res
	}
	res.Mutated = len(stored) > 0
	res.Render = r.contentIf(RenderCollections|RenderLive|RenderRestoreScroll, dest)
	return res
}
