package repository

import (
	"context"
	"sync"

	"ecobazaarx/internal/models"
)

//go:generate mockgen -destination=mocks/persister_mock.go -package=mocks ecobazaarx/internal/repository Persister

// Persister es la frontera de persistencia del marketplace: carga el último
// snapshot al iniciar y guarda uno nuevo después de cada mutación.
type Persister interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
}

// MemoryPersister guarda el snapshot en memoria
type MemoryPersister struct {
	mu    sync.RWMutex
	snap  *models.Snapshot
	saves int
}

// NewMemoryPersister crea un persister vacío
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load devuelve una copia del último snapshot, o nil si nunca se guardó
func (m *MemoryPersister) Load(ctx context.Context) (*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return CopySnapshot(m.snap), nil
}

// Save reemplaza el snapshot guardado
func (m *MemoryPersister) Save(ctx context.Context, snap *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = CopySnapshot(snap)
	m.saves++
	return nil
}

// Saves cuenta cuántas veces se guardó
func (m *MemoryPersister) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// CopySnapshot copia profunda de snap
func CopySnapshot(snap *models.Snapshot) *models.Snapshot {
	if snap == nil {
		return nil
	}
	out := &models.Snapshot{
		Users:     append([]models.User(nil), snap.Users...),
		Orders:    append([]models.Order(nil), snap.Orders...),
		Sequences: snap.Sequences,
	}
	for _, p := range snap.Products {
		out.Products = append(out.Products, p.Clone())
	}
	return out
}
