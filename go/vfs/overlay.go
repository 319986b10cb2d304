package vfs

import (
	"sync"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// Overlay asks each layer in order and returns the first opinion.
type Overlay struct {
	sync.RWMutex
	layers []Resolver
}

func NewOverlay(layers ...Resolver) *Overlay {
	return &Overlay{layers: layers}
}

// Add puts r below the existing layers.
func (o *Overlay) Add(r Resolver) {
	o.Lock()
	o.layers = append(o.layers, r)
	o.Unlock()
}

// Push puts r above the existing layers.
func (o *Overlay) Push(r Resolver) {
	o.Lock()
	o.layers = append([]Resolver{r}, o.layers...)
	o.Unlock()
}

func (o *Overlay) Resolve(path string, flags enum.OpenFlag) (Result, bool) {
	o.RLock()
	defer o.RUnlock()
	for _, l := range o.layers {
		if res, ok := l.Resolve(path, flags); ok {
			return res, true
		}
	}
	return Result{}, false
}
