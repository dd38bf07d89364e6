package lsh

import (
	"github.com/hupe1980/dknn/model"
)

// topK is a bounded max-heap of neighbors keyed by (Distance, Position).
// The root is the worst kept candidate. Keying on the position as well makes
// the result identical to a stable ascending sort of all candidates.
type topK struct {
	capacity int
	items    []model.Neighbor
}

func newTopK(capacity int) *topK {
	return &topK{
		capacity: capacity,
		items:    make([]model.Neighbor, 0, capacity),
	}
}

// worse reports whether a ranks after b.
func worse(a, b model.Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Position > b.Position
}

// push inserts n, evicting the current worst candidate when full.
func (h *topK) push(n model.Neighbor) {
	if len(h.items) < h.capacity {
		h.items = append(h.items, n)
		h.siftUp(len(h.items) - 1)
		return
	}
	if worse(h.items[0], n) {
		h.items[0] = n
		h.siftDown(0)
	}
}

// sorted drains the heap and returns the neighbors best first.
func (h *topK) sorted() []model.Neighbor {
	out := make([]model.Neighbor, len(h.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = h.items[0]
		last := len(h.items) - 1
		h.items[0] = h.items[last]
		h.items = h.items[:last]
		if last > 0 {
			h.siftDown(0)
		}
	}
	return out
}

func (h *topK) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(h.items[i], h.items[parent]) {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *topK) siftDown(i int) {
	n := len(h.items)
	for {
		largest := i
		left := 2*i + 1
		right := left + 1
		if left < n && worse(h.items[left], h.items[largest]) {
			largest = left
		}
		if right < n && worse(h.items[right], h.items[largest]) {
			largest = right
		}
		if largest == i {
			return
		}
		h.items[i], h.items[largest] = h.items[largest], h.items[i]
		i = largest
	}
}
