// Package repository maps the calendar's records onto JSON values in a kv.Store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/models"
)

// readJSON decodes the value at key into v. It reports false when the key is absent.
// Backend failures are tagged ErrStoreUnavailable and undecodable values ErrCorruptData.
func readJSON(ctx context.Context, store kv.Store, key string, v any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, errors.Join(models.ErrStoreUnavailable, fmt.Errorf("get %s: %w", key, err))
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, errors.Join(models.ErrCorruptData, fmt.Errorf("decode %s: %w", key, err))
	}
	return true, nil
}

// writeJSON replaces the value at key with the JSON encoding of v.
func writeJSON(ctx context.Context, store kv.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return errors.Join(models.ErrStoreUnavailable, fmt.Errorf("set %s: %w", key, err))
	}
	return nil
}
