package main

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

const maxSectors = 32

var ErrSectorLimit = errors.New("too many active sectors")

// SectorManager handles creation and lookup of running sectors
type SectorManager struct {
	mu      sync.RWMutex
	sectors map[string]*Sector
	events  EventSink
	ctx     context.Context
	wg      sync.WaitGroup
}

// NewSectorManager creates a manager; sectors stop when ctx is done
func NewSectorManager(ctx context.Context, events EventSink) *SectorManager {
	return &SectorManager{
		sectors: make(map[string]*Sector),
		events:  events,
		ctx:     ctx,
	}
}

// CreateSector creates a sector without starting its tick loop
func (sm *SectorManager) CreateSector(name string, seed int64) (*Sector, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sectors) >= maxSectors {
		return nil, ErrSectorLimit
	}
	if name == "" {
		name = "Sector"
	}
	sec := NewSector(uuid.NewString(), name, seed, sm.events)
	sm.sectors[sec.ID] = sec
	return sec, nil
}

// Start launches the tick loop of a sector created by this manager
func (sm *SectorManager) Start(sec *Sector) {
	sm.wg.Add(1)
	go func() {
		defer sm.wg.Done()
		sec.Run(sm.ctx)
	}()
}

// GetSector returns a sector by ID
func (sm *SectorManager) GetSector(id string) *Sector {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sectors[id]
}

// RemoveSector stops and forgets a sector
func (sm *SectorManager) RemoveSector(id string) bool {
	sm.mu.Lock()
	sec, ok := sm.sectors[id]
	delete(sm.sectors, id)
	sm.mu.Unlock()
	if ok {
		sec.Stop()
	}
	return ok
}

// ListSectors returns info about all sectors, sorted by name
func (sm *SectorManager) ListSectors() []SectorInfo {
	sm.mu.RLock()
	list := make([]SectorInfo, 0, len(sm.sectors))
	for _, sec := range sm.sectors {
		list = append(list, sec.Info())
	}
	sm.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// StopAll stops every sector and waits for the tick loops to exit
func (sm *SectorManager) StopAll() {
	sm.mu.RLock()
	for _, sec := range sm.sectors {
		sec.Stop()
	}
	sm.mu.RUnlock()
	sm.wg.Wait()
}
