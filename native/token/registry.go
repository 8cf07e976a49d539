package token

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry resolves asset addresses to their ledgers.
type Registry struct {
	mu     sync.RWMutex
	assets map[common.Address]Asset
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{assets: make(map[common.Address]Asset)}
}

// Register makes asset reachable under its address.
func (r *Registry) Register(asset Asset) error {
	if asset == nil {
		return fmt.Errorf("token: nil asset")
	}
	addr := asset.Address()
	if addr == (common.Address{}) {
		return ErrZeroAddress
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.assets[addr]; exists {
		return fmt.Errorf("%w: %s", ErrAssetAlreadyRegistered, addr.Hex())
	}
	r.assets[addr] = asset
	return nil
}

// Lookup returns the asset registered at addr.
func (r *Registry) Lookup(addr common.Address) (Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset, ok := r.assets[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, addr.Hex())
	}
	return asset, nil
}

// Addresses lists registered asset addresses in ascending byte order.
func (r *Registry) Addresses() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]common.Address, 0, len(r.assets))
	for addr := range r.assets {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(out[j]) < 0
	})
	return out
}
