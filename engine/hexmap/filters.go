package hexmap

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Fast pids are picked by hex before pixel tests in mapper mode, ignored
// pids are neither drawn nor picked there. Both sets are mapper-only.

// AddFastPid marks pid for fast picking
func (m *Manager) AddFastPid(pid uint32) { m.fastPids.Put(pid) }

// RemoveFastPid unmarks pid
func (m *Manager) RemoveFastPid(pid uint32) { m.fastPids.Remove(pid) }

// IsFastPid reports whether pid is picked by hex
func (m *Manager) IsFastPid(pid uint32) bool { return m.fastPids.Has(pid) }

// ClearFastPids empties the fast pid set
func (m *Manager) ClearFastPids() { m.fastPids.Clear() }

// FastPids lists the fast pids in ascending order
func (m *Manager) FastPids() []uint32 { return sortedSet(m.fastPids) }

// AddIgnorePid hides pid in mapper mode
func (m *Manager) AddIgnorePid(pid uint32) {
	if !m.ignorePids.Has(pid) {
		m.ignorePids.Put(pid)
		m.mapDirty = true
	}
}

// RemoveIgnorePid shows pid again
func (m *Manager) RemoveIgnorePid(pid uint32) {
	if m.ignorePids.Has(pid) {
		m.ignorePids.Remove(pid)
		m.mapDirty = true
	}
}

// SwitchIgnorePid toggles pid and reports whether it is now ignored
func (m *Manager) SwitchIgnorePid(pid uint32) bool {
	if m.ignorePids.Has(pid) {
		m.RemoveIgnorePid(pid)
		return false
	}
	m.AddIgnorePid(pid)
	return true
}

// IsIgnorePid reports whether pid is hidden
func (m *Manager) IsIgnorePid(pid uint32) bool { return m.ignorePids.Has(pid) }

// ClearIgnorePids shows every pid again
func (m *Manager) ClearIgnorePids() {
	if m.ignorePids.Size() > 0 {
		m.ignorePids.Clear()
		m.mapDirty = true
	}
}

// IgnorePids lists the ignored pids in ascending order
func (m *Manager) IgnorePids() []uint32 { return sortedSet(m.ignorePids) }

func (m *Manager) isIgnored(pid uint32) bool {
	return m.mapper && m.ignorePids.Has(pid)
}

func sortedSet(s mapset.Set[uint32]) []uint32 {
	out := make([]uint32, 0, s.Size())
	s.Each(func(pid uint32) { out = append(out, pid) })
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
