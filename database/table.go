package database

// table is one typed collection of the store. Rows keep insertion order and
// IDs come from a counter that only moves forward.
type table[T any] struct {
	rows   map[int]T
	order  []int
	nextID int
	clone  func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	return &table[T]{
		rows:   make(map[int]T),
		nextID: 1,
		clone:  clone,
	}
}

func (t *table[T]) allocate() int {
	id := t.nextID
	t.nextID++
	return id
}

func (t *table[T]) insert(id int, row T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) get(id int) (T, bool) {
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(row), true
}

func (t *table[T]) remove(id int) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.clone(t.rows[id]))
	}
	return out
}

func (t *table[T]) len() int {
	return len(t.order)
}

// restore replaces the contents with rows loaded from a snapshot. The counter
// never goes below max(id)+1 so a stale counter cannot hand out a used ID.
func (t *table[T]) restore(rows []T, idOf func(T) int, nextID int) {
	t.rows = make(map[int]T, len(rows))
	t.order = t.order[:0]
	t.nextID = 1
	for _, row := range rows {
		id := idOf(row)
		t.insert(id, t.clone(row))
		if id >= t.nextID {
			t.nextID = id + 1
		}
	}
	if nextID > t.nextID {
		t.nextID = nextID
	}
}
