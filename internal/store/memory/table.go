package memory

import "fleet-backend/internal/store"

// table is an insertion-ordered collection. Callers hold the DB lock.
type table[T any] struct {
	rows  []*T
	id    func(*T) string
	clone func(*T) *T
}

func (t *table[T]) index(id string) int {
	for i, r := range t.rows {
		if t.id(r) == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) get(id string) (*T, error) {
	i := t.index(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	return t.clone(t.rows[i]), nil
}

func (t *table[T]) list() []*T {
	out := make([]*T, len(t.rows))
	for i, r := range t.rows {
		out[i] = t.clone(r)
	}
	return out
}

func (t *table[T]) insert(v *T) error {
	if t.index(t.id(v)) >= 0 {
		return store.ErrDuplicate
	}
	t.rows = append(t.rows, t.clone(v))
	return nil
}

func (t *table[T]) replace(v *T) error {
	i := t.index(t.id(v))
	if i < 0 {
		return store.ErrNotFound
	}
	t.rows[i] = t.clone(v)
	return nil
}

func (t *table[T]) remove(id string) error {
	i := t.index(id)
	if i < 0 {
		return store.ErrNotFound
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

func (t *table[T]) load(rows []*T) {
	t.rows = make([]*T, 0, len(rows))
	for _, r := range rows {
		t.rows = append(t.rows, t.clone(r))
	}
}

func shallow[T any](v *T) *T {
	c := *v
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
