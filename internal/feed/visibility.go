package feed

// VisibilityTracker turns a stream of visibility observations of the
// trigger item into discrete load-more events. An event fires once per
// transition of the observed item from not visible to visible. Moving the
// trigger to a different item counts as a new transition.
type VisibilityTracker struct {
	id      string
	visible bool
}

// Observe records whether the item with targetID is currently visible and
// reports whether that is a fresh appearance. An empty targetID clears the
// tracker and never fires.
func (v *VisibilityTracker) Observe(targetID string, visible bool) bool {
	if targetID == "" {
		v.Reset()
		return false
	}
	if targetID != v.id {
		v.id = targetID
		v.visible = false
	}
	fired := visible && !v.visible
	v.visible = visible
	return fired
}

// Reset forgets the tracked item so its next visible observation fires.
func (v *VisibilityTracker) Reset() {
	v.id = ""
	v.visible = false
}
