package repositories

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"reflect"
	"sync"
)

// MemoryCollection keeps entities in process memory. It backs tests and the
// "memory" store driver; values are deep copied in and out.
type MemoryCollection[T Entity] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
}

// NewMemoryCollection creates an empty MemoryCollection
func NewMemoryCollection[T Entity]() *MemoryCollection[T] {
	return &MemoryCollection[T]{items: make(map[string]T)}
}

func clone[T any](v T) (T, error) {
	var buf bytes.Buffer
	var out T
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return out, fmt.Errorf("clone %T: %w", v, err)
	}
	if err := gob.NewDecoder(&buf).Decode(&out); err != nil {
		return out, fmt.Errorf("clone %T: %w", v, err)
	}
	emptySlices(reflect.ValueOf(&out).Elem())
	return out, nil
}

// emptySlices replaces nil slice fields with empty ones. gob drops empty
// slices, and Mongo hands stored empty arrays back as [] rather than null.
func emptySlices(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		switch {
		case f.Kind() == reflect.Slice && f.IsNil():
			f.Set(reflect.MakeSlice(f.Type(), 0, 0))
		case f.Kind() == reflect.Struct && v.Type().Field(i).Anonymous:
			emptySlices(f)
		}
	}
}

func (c *MemoryCollection[T]) Get(_ context.Context, id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out, err := clone(v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns entities in insertion order.
func (c *MemoryCollection[T]) List(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		v, err := clone(c.items[id])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *MemoryCollection[T]) Create(_ context.Context, entity *T) error {
	id := (*entity).EntityID()
	if id == "" {
		return fmt.Errorf("create %T: empty id", *entity)
	}
	v, err := clone(*entity)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[id]; exists {
		return fmt.Errorf("create %T: duplicate id %s", *entity, id)
	}
	c.items[id] = v
	c.order = append(c.order, id)
	return nil
}

func (c *MemoryCollection[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	return c.Mutate(ctx, id, func(v *T) error {
		return applyPatch(v, fields)
	})
}

func (c *MemoryCollection[T]) Mutate(_ context.Context, id string, fn func(*T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.items[id]
	if !ok {
		return ErrNotFound
	}
	v, err := clone(current)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	c.items[id] = v
	return nil
}

func (c *MemoryCollection[T]) Delete(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(id), nil
}

func (c *MemoryCollection[T]) DeleteMany(_ context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.remove(id)
	}
	return nil
}

func (c *MemoryCollection[T]) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}
