package database

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryPersister keeps the last saved snapshot in memory. Nothing survives a
// restart; it backs STORE_BACKEND=memory and tests.
type MemoryPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
	err   error
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load(_ context.Context) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, ErrNoSnapshot
	}
	return decodeSnapshot(p.data)
}

func (p *MemoryPersister) Save(_ context.Context, snapshot *Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	p.data = data
	p.saves++
	return nil
}

// Saves reports how many snapshots were written.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

// FailWith makes every following Save return err. Pass nil to recover.
func (p *MemoryPersister) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}
