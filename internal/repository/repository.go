// Package repository provides a generic, typed CRUD facade over one entity
// collection of the stored document.
package repository

import (
	"github.com/atinyakov/TodoSync/internal/models"
	"github.com/atinyakov/TodoSync/internal/storage"
)

// Repository manages a single collection within the document. It is bound to the
// store, a selector that picks the collection out of a document, and an id
// extractor. It holds no state between calls; every operation round-trips
// through the store.
type Repository[T any] struct {
	store      *storage.Store
	collection func(*models.Document) *[]T
	id         func(T) string
}

// New constructs a repository for one collection.
func New[T any](store *storage.Store, collection func(*models.Document) *[]T, id func(T) string) *Repository[T] {
	return &Repository[T]{store: store, collection: collection, id: id}
}

// GetAll returns a snapshot copy of the collection. Mutating the returned slice
// has no effect on storage.
func (r *Repository[T]) GetAll() []T {
	doc := r.store.Read()
	coll := *r.collection(&doc)
	out := make([]T, len(coll))
	copy(out, coll)
	return out
}

// GetByID returns the entity with the given id, or ok=false if absent.
func (r *Repository[T]) GetByID(id string) (entity T, ok bool) {
	doc := r.store.Read()
	for _, e := range *r.collection(&doc) {
		if r.id(e) == id {
			return e, true
		}
	}
	return entity, false
}

// Add appends the entity to the collection. No uniqueness is enforced here;
// business uniqueness checks belong to the caller, inside a single Mutate
// region when they must be race-free.
func (r *Repository[T]) Add(entity T) error {
	_, err := r.store.Mutate(func(doc models.Document) (models.Document, error) {
		coll := r.collection(&doc)
		*coll = append(*coll, entity)
		return doc, nil
	})
	return err
}

// Update applies update in place to every entity satisfying predicate (all
// entities when predicate is nil), within one atomic mutation.
func (r *Repository[T]) Update(update func(*T), predicate func(T) bool) error {
	_, err := r.store.Mutate(func(doc models.Document) (models.Document, error) {
		coll := *r.collection(&doc)
		for i := range coll {
			if predicate == nil || predicate(coll[i]) {
				update(&coll[i])
			}
		}
		return doc, nil
	})
	return err
}

// RemoveByID deletes the entity with the given id within one atomic mutation.
// It reports whether an entity was found and removed.
func (r *Repository[T]) RemoveByID(id string) (bool, error) {
	removed := false
	_, err := r.store.Mutate(func(doc models.Document) (models.Document, error) {
		coll := r.collection(&doc)
		for i, e := range *coll {
			if r.id(e) == id {
				*coll = append((*coll)[:i], (*coll)[i+1:]...)
				removed = true
				break
			}
		}
		return doc, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
