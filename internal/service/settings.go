package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"jtimer/backend/internal/repository"
)

// Store is the durable key-value port. Get reports repository.ErrNotFound for
// absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// loadInt reads key and falls back to def when it is absent or unreadable.
func loadInt(ctx context.Context, store Store, key string, def int) int {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("load %s: %v", key, err)
		}
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("load %s: invalid integer %q", key, raw)
		return def
	}
	return v
}

func loadBool(ctx context.Context, store Store, key string, def bool) bool {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("load %s: %v", key, err)
		}
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("load %s: invalid boolean %q", key, raw)
		return def
	}
	return v
}

// loadJSON decodes key into dst and reports whether it did.
func loadJSON(ctx context.Context, store Store, key string, dst interface{}) bool {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("load %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Printf("load %s: %v", key, err)
		return false
	}
	return true
}

func saveInt(ctx context.Context, store Store, key string, v int) error {
	return store.Set(ctx, key, strconv.Itoa(v))
}

func saveBool(ctx context.Context, store Store, key string, v bool) error {
	return store.Set(ctx, key, strconv.FormatBool(v))
}

func saveJSON(ctx context.Context, store Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, string(raw))
}
