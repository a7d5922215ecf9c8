package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/log"
)

// ResultCache memoizes driver results per program. Keys have the form
// "<kind>|<program hash>|<params>", values are JSON.
type ResultCache struct {
	store *PersistenceStore
}

func NewResultCache(store *PersistenceStore) *ResultCache {
	return &ResultCache{store: store}
}

// OpenResultCache opens a LevelDB backed cache at path ("" for in-memory).
func OpenResultCache(path string) (*ResultCache, error) {
	store, err := NewPersistenceStore(path)
	if err != nil {
		return nil, err
	}
	return NewResultCache(store), nil
}

func cacheKey(kind string, prog []int64, params []int64) []byte {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprint(p)
	}
	return []byte(fmt.Sprintf("%s|%s|%s", kind, common.ProgramHash(prog).Hex(), strings.Join(parts, ",")))
}

// Lookup decodes the cached result for (kind, prog, params) into v and reports whether one existed.
func (c *ResultCache) Lookup(kind string, prog []int64, params []int64, v interface{}) (bool, error) {
	key := cacheKey(kind, prog, params)
	data, found, err := c.store.Get(key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	log.Debug(log.StorageMonitoring, "cache hit", "key", string(key))
	return true, nil
}

// Store records v as the result for (kind, prog, params).
func (c *ResultCache) Store(kind string, prog []int64, params []int64, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	key := cacheKey(kind, prog, params)
	log.Debug(log.StorageMonitoring, "cache store", "key", string(key))
	return c.store.Put(key, data)
}

// Entries lists every cached key of the given kind.
func (c *ResultCache) Entries(kind string) ([]string, error) {
	pairs, err := c.store.GetWithPrefix([]byte(kind + "|"))
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(pairs))
	for i, kv := range pairs {
		keys[i] = string(kv[0])
	}
	return keys, nil
}

func (c *ResultCache) Close() error {
	return c.store.Close()
}
