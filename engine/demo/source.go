package demo

import (
	"fmt"

	"github.com/1siamBot/hex-engine/engine/cache"
	"github.com/1siamBot/hex-engine/engine/hexmap"
	"github.com/1siamBot/hex-engine/engine/logger"
	"github.com/1siamBot/hex-engine/engine/maplib"
	"github.com/1siamBot/hex-engine/engine/proto"
	"github.com/sirupsen/logrus"
)

// Sources names the data a runner starts from. Empty fields fall back to
// the demo content.
type Sources struct {
	Protos   string // prototype registry JSON
	Map      string // map JSON
	CacheDir string // map cache directory
	MapPid   uint32 // map pid looked up in CacheDir
	Size     int    // demo map size
}

// Registry loads the prototype registry or returns the demo one
func (s Sources) Registry() (proto.Registry, error) {
	if s.Protos == "" {
		return Registry(), nil
	}
	r, err := proto.LoadJSON(s.Protos)
	if err != nil {
		return nil, fmt.Errorf("load prototypes: %w", err)
	}
	return r, nil
}

// Storage returns the map cache, nil when no cache directory is set
func (s Sources) Storage() cache.Storage {
	if s.CacheDir == "" {
		return nil
	}
	return cache.DirStorage{Dir: s.CacheDir}
}

// Load puts the selected map into m: the cache entry when a pid is given,
// else the map file, else the demo map. A map read from a file or built
// here is written back to the cache.
func (s Sources) Load(m *hexmap.Manager) error {
	log := logger.Log.WithFields(logrus.Fields{"component": "demo"})
	if st := s.Storage(); st != nil && s.MapPid != 0 {
		err := m.LoadMapFromCache(st, s.MapPid)
		if err == nil {
			return nil
		}
		log.WithError(err).Warn("map not in cache")
	}
	var pm *maplib.ProtoMap
	if s.Map != "" {
		var err error
		if pm, err = maplib.LoadJSON(s.Map); err != nil {
			return fmt.Errorf("load map: %w", err)
		}
	} else {
		pm = Map(s.Size)
	}
	if err := m.LoadMap(pm); err != nil {
		return err
	}
	if st := s.Storage(); st != nil {
		if err := cache.SaveMap(st, pm); err != nil {
			log.WithError(err).Warn("map not cached")
		}
	}
	return nil
}
