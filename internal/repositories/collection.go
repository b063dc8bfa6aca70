package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNotFound is returned when no entity exists for an id
var ErrNotFound = errors.New("entity not found")

// Entity is anything stored in a Collection
type Entity interface {
	EntityID() string
}

// Collection is the per-entity-type store. Each call is atomic for a single
// entity; there are no cross-entity transactions.
type Collection[T Entity] interface {
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, entity *T) error
	// Patch sets the given fields, keyed by their json names.
	Patch(ctx context.Context, id string, fields map[string]any) error
	// Mutate applies fn to the current value and stores the result.
	Mutate(ctx context.Context, id string, fn func(*T) error) error
	// Delete reports whether an entity was removed.
	Delete(ctx context.Context, id string) (bool, error)
	DeleteMany(ctx context.Context, ids []string) error
}

// CheckPatch reports whether every field in fields exists on T and decodes
// into that field's type. MongoCollection.Patch stores values as given, so
// run it before Patch.
func CheckPatch[T Entity](fields map[string]any) error {
	var zero T
	return applyPatch(&zero, fields)
}

// applyPatch writes each json-named field of fields into the struct at dst.
func applyPatch(dst any, fields map[string]any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("patch target must be a struct pointer, got %T", dst)
	}
	for key, value := range fields {
		field, ok := fieldByJSONName(v.Elem(), key)
		if !ok {
			return fmt.Errorf("unknown field %q", key)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %q: %w", key, err)
		}
		ptr := reflect.New(field.Type())
		if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		field.Set(ptr.Elem())
	}
	return nil
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if f, ok := fieldByJSONName(v.Field(i), name); ok {
				return f, true
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = sf.Name
		}
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
