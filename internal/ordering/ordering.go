package ordering

// Reorder moves the element at from to position to (clamped to the list
// bounds) and renumbers every element with its final index via setOrder.
// The input slice is never modified. When nothing moves (from == to, an
// empty or single element list, or from out of range) the input is
// returned as is and moved is false.
func Reorder[T any](items []T, from, to int, setOrder func(*T, int)) (out []T, moved bool) {
	n := len(items)
	if n < 2 || from < 0 || from >= n {
		return items, false
	}
	if to < 0 {
		to = 0
	}
	if to > n-1 {
		to = n - 1
	}
	if from == to {
		return items, false
	}

	out = make([]T, 0, n)
	item := items[from]
	for i := range items {
		if i == from {
			continue
		}
		out = append(out, items[i])
	}
	out = append(out[:to], append([]T{item}, out[to:]...)...)

	Renumber(out, setOrder)
	return out, true
}

// Renumber assigns order = index to every element in place, closing any gaps
// or duplicates.
func Renumber[T any](items []T, setOrder func(*T, int)) {
	for i := range items {
		setOrder(&items[i], i)
	}
}
