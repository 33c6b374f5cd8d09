// Package cache stores prepared maps as msgpack blobs so the client can
// load a map by pid without parsing its text description again.
package cache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/1siamBot/hex-engine/engine/maplib"
)

// ErrNotFound is returned when the cache has no entry for a key
var ErrNotFound = errors.New("cache: not found")

// formatVersion is bumped whenever the blob layout changes
const formatVersion = 1

// Storage is a flat key/blob store
type Storage interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Delete(key string) error
}

// MemStorage keeps blobs in memory
type MemStorage struct {
	blobs map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{blobs: make(map[string][]byte)}
}

func (m *MemStorage) Get(key string) ([]byte, error) {
	b, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return b, nil
}

func (m *MemStorage) Put(key string, data []byte) error {
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemStorage) Delete(key string) error {
	delete(m.blobs, key)
	return nil
}

// DirStorage keeps one file per key in a directory
type DirStorage struct {
	Dir string
}

func (d DirStorage) path(key string) string {
	return filepath.Join(d.Dir, key+".cache")
}

func (d DirStorage) Get(key string) ([]byte, error) {
	b, err := os.ReadFile(d.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return b, err
}

func (d DirStorage) Put(key string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(d.path(key), data, 0644)
}

func (d DirStorage) Delete(key string) error {
	err := os.Remove(d.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MapKey is the storage key of a map pid
func MapKey(pid uint32) string {
	return "map_" + strconv.FormatUint(uint64(pid), 10)
}

type mapBlob struct {
	Version int              `json:"v"`
	Map     *maplib.ProtoMap `json:"map"`
}

// SaveMap encodes pm under its pid
func SaveMap(s Storage, pm *maplib.ProtoMap) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(&mapBlob{Version: formatVersion, Map: pm}); err != nil {
		return fmt.Errorf("encode map %d: %w", pm.Pid, err)
	}
	return s.Put(MapKey(pm.Pid), buf.Bytes())
}

// LoadMap decodes the map stored under pid and validates it
func LoadMap(s Storage, pid uint32) (*maplib.ProtoMap, error) {
	data, err := s.Get(MapKey(pid))
	if err != nil {
		return nil, err
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var blob mapBlob
	if err := dec.Decode(&blob); err != nil {
		return nil, fmt.Errorf("decode map %d: %w", pid, err)
	}
	if blob.Version != formatVersion || blob.Map == nil {
		return nil, fmt.Errorf("map %d: cache format %d: %w", pid, blob.Version, ErrNotFound)
	}
	if blob.Map.Pid != pid {
		return nil, fmt.Errorf("map %d: cached pid %d: %w", pid, blob.Map.Pid, maplib.ErrBadMap)
	}
	if err := blob.Map.Validate(); err != nil {
		return nil, err
	}
	return blob.Map, nil
}
