package queue

// Index translation between the two orderings of the same queue: the
// player timeline always contains the current item at a fixed position,
// while the reorderable list shown to the user only contains upcoming
// items. Both functions are pure; they take the derived State so callers
// can translate against a snapshot without holding any lock.

// VisibleToCombined maps a zero-based position in the upcoming list to
// the absolute combined position.
func VisibleToCombined(visible int, st State) (int, error) {
	upcoming := st.TotalItems
	if st.HasCurrent() {
		upcoming--
	}
	if visible < 0 || visible >= upcoming {
		return 0, &OutOfRangeError{Index: visible, Max: upcoming - 1}
	}
	if st.HasCurrent() {
		return visible + 1, nil
	}
	return visible, nil
}

// CombinedToVisible maps an absolute combined position back to the
// upcoming list. The current item has no visible position and yields an
// OutOfRangeError.
func CombinedToVisible(combined int, st State) (int, error) {
	if combined < 0 || combined >= st.TotalItems {
		return 0, &OutOfRangeError{Index: combined, Max: st.TotalItems - 1}
	}
	if st.HasCurrent() {
		if combined == st.CurrentIndex {
			return 0, &OutOfRangeError{Index: combined, Max: st.TotalItems - 1}
		}
		return combined - 1, nil
	}
	return combined, nil
}
