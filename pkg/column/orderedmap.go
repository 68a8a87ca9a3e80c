package column

// OrderedMap is a map that preserves the order of insertion. Group partitions
// depend on iteration order equaling first-occurrence order, so grouping never
// relies on Go's randomized map iteration.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap creates an empty ordered map.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		values: make(map[K]V),
	}
}

// Set adds or updates a key-value pair. Updating an existing key keeps its
// original insertion position.
func (om *OrderedMap[K, V]) Set(key K, value V) {
	if _, exists := om.values[key]; !exists {
		om.keys = append(om.keys, key)
	}
	om.values[key] = value
}

// Get returns the value stored under key and whether the key is present.
func (om *OrderedMap[K, V]) Get(key K) (V, bool) {
	val, exists := om.values[key]
	return val, exists
}

// Keys returns a copy of the keys in insertion order.
func (om *OrderedMap[K, V]) Keys() []K {
	result := make([]K, len(om.keys))
	copy(result, om.keys)
	return result
}

// Values returns the values in insertion order.
func (om *OrderedMap[K, V]) Values() []V {
	result := make([]V, len(om.keys))
	for i, k := range om.keys {
		result[i] = om.values[k]
	}
	return result
}

// Len returns the number of stored key-value pairs.
func (om *OrderedMap[K, V]) Len() int {
	return len(om.keys)
}

// Range calls f for each pair in insertion order, stopping early when f
// returns false.
func (om *OrderedMap[K, V]) Range(f func(key K, value V) bool) {
	for _, k := range om.keys {
		if !f(k, om.values[k]) {
			break
		}
	}
}
