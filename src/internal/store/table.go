package store

// table is an insertion-ordered map. It is not safe for concurrent use; each
// store guards its tables with its own lock.
type table[K comparable, V any] struct {
	items map[K]V
	order []K
}

func newTable[K comparable, V any]() *table[K, V] {
	return &table[K, V]{items: make(map[K]V)}
}

// put inserts or replaces v. A replaced entry keeps its position.
func (t *table[K, V]) put(k K, v V) (old V, replaced bool) {
	old, replaced = t.items[k]
	if !replaced {
		t.order = append(t.order, k)
	}
	t.items[k] = v
	return old, replaced
}

func (t *table[K, V]) get(k K) (V, bool) {
	v, ok := t.items[k]
	return v, ok
}

func (t *table[K, V]) remove(k K) (V, bool) {
	v, ok := t.items[k]
	if !ok {
		return v, false
	}
	delete(t.items, k)
	for i, key := range t.order {
		if key == k {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return v, true
}

// each visits entries in insertion order until fn returns false.
func (t *table[K, V]) each(fn func(K, V) bool) {
	for _, k := range t.order {
		if !fn(k, t.items[k]) {
			return
		}
	}
}

func (t *table[K, V]) len() int {
	return len(t.items)
}

func (t *table[K, V]) clear() []V {
	removed := make([]V, 0, len(t.order))
	for _, k := range t.order {
		removed = append(removed, t.items[k])
	}
	t.items = make(map[K]V)
	t.order = nil
	return removed
}
