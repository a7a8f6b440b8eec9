package etl

// orderedMap is a map that remembers first-insertion order of its keys.
// The fold that groups join rows into documents relies on this: output
// order must follow source row order so repeated runs produce identical
// collections.
type orderedMap[K comparable, V any] struct {
	keys  []K
	index map[K]int
	vals  []V
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{index: make(map[K]int)}
}

func (m *orderedMap[K, V]) Get(key K) (V, bool) {
	if i, ok := m.index[key]; ok {
		return m.vals[i], true
	}
	var zero V
	return zero, false
}

// Set inserts key at the end of the order, or overwrites the value in
// place when the key is already present.
func (m *orderedMap[K, V]) Set(key K, val V) {
	if i, ok := m.index[key]; ok {
		m.vals[i] = val
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
}

func (m *orderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Values returns the values in insertion order. The slice is never nil.
func (m *orderedMap[K, V]) Values() []V {
	out := make([]V, len(m.vals))
	copy(out, m.vals)
	return out
}
