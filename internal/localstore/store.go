// Package localstore keeps each user's collections as JSON arrays on disk, one file per
// collection key. It mirrors the relational repositories for offline use and transfers.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"menu-planner/internal/model"
)

// Collection keys.
const (
	KeyDishes     = "dishes"
	KeyMenus      = "menus"
	KeyDailyMenus = "dailyMenus"
)

// Store is a directory of per-user JSON collections.
type Store struct {
	dir string
	log *zap.Logger
	mu  sync.Mutex
}

func New(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %q: %w", dir, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, log: log.Named("localstore")}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(userID, key string) (string, error) {
	if userID == "" || userID != filepath.Base(userID) || strings.HasPrefix(userID, ".") {
		return "", fmt.Errorf("invalid user id %q", userID)
	}
	return filepath.Join(s.dir, userID, key+".json"), nil
}

// read loads a whole collection. A missing file is an empty collection; a malformed one
// is logged, moved aside and treated as empty.
func read[T any](s *Store, userID, key string) ([]T, error) {
	path, err := s.path(userID, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Error("malformed collection",
			zap.String("user", userID),
			zap.String("key", key),
			zap.Error(err))
		if rerr := os.Rename(path, path+".corrupt"); rerr != nil {
			s.log.Warn("move malformed collection aside", zap.String("path", path), zap.Error(rerr))
		}
		return nil, nil
	}
	return items, nil
}

// write replaces a whole collection atomically.
func write[T any](s *Store, userID, key string, items []T) error {
	path, err := s.path(userID, key)
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// collection implements list/find/create/update/delete over one key.
type collection[T any] struct {
	store *Store
	key   string
	noun  string
	id    func(*T) string
	user  func(*T) string
	less  func(a, b *T) bool
}

func (c *collection[T]) list(ctx context.Context, userID string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	items, err := read[T](c.store, userID, c.key)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.key, err)
	}
	sortStable(items, c.less)
	return items, nil
}

func (c *collection[T]) find(ctx context.Context, userID, id string) (*T, error) {
	items, err := c.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.id(&items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("find %s: %w", c.noun, model.ErrNotFound)
}

func (c *collection[T]) create(ctx context.Context, item *T) error {
	return c.mutate(ctx, c.user(item), func(items []T) ([]T, error) {
		for i := range items {
			if c.id(&items[i]) == c.id(item) {
				return nil, fmt.Errorf("create %s: id %s already exists", c.noun, c.id(item))
			}
		}
		return append(items, *item), nil
	})
}

func (c *collection[T]) update(ctx context.Context, item *T) error {
	return c.mutate(ctx, c.user(item), func(items []T) ([]T, error) {
		for i := range items {
			if c.id(&items[i]) == c.id(item) {
				items[i] = *item
				return items, nil
			}
		}
		return nil, fmt.Errorf("update %s: %w", c.noun, model.ErrNotFound)
	})
}

func (c *collection[T]) remove(ctx context.Context, userID, id string) error {
	return c.mutate(ctx, userID, func(items []T) ([]T, error) {
		for i := range items {
			if c.id(&items[i]) == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("delete %s: %w", c.noun, model.ErrNotFound)
	})
}

func (c *collection[T]) mutate(ctx context.Context, userID string, fn func([]T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	items, err := read[T](c.store, userID, c.key)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return write(c.store, userID, c.key, items)
}
