package messaging

import (
	"sync"

	"github.com/GriffinCanCode/PhishGuard/backend/internal/shared/types"
)

// TabRegistry tracks the last known URL of each tab and which tab is active,
// so the popup can ask about "the current tab" without naming it.
type TabRegistry struct {
	mu     sync.RWMutex
	urls   map[types.TabID]string
	active *types.TabID
}

// NewTabRegistry creates an empty registry.
func NewTabRegistry() *TabRegistry {
	return &TabRegistry{urls: make(map[types.TabID]string)}
}

// Activate marks tab as the active one, recording url when known.
func (r *TabRegistry) Activate(tab types.TabID, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = &tab
	if url != "" {
		r.urls[tab] = url
	}
}

// SetURL records the URL a tab navigated to.
func (r *TabRegistry) SetURL(tab types.TabID, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls[tab] = url
}

// Remove forgets a closed tab.
func (r *TabRegistry) Remove(tab types.TabID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.urls, tab)
	if r.active != nil && *r.active == tab {
		r.active = nil
	}
}

// URL returns the last known URL of tab.
func (r *TabRegistry) URL(tab types.TabID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.urls[tab]
	return u, ok
}

// Active returns the active tab and its URL.
func (r *TabRegistry) Active() (types.TabID, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.active == nil {
		return 0, "", false
	}
	u, ok := r.urls[*r.active]
	return *r.active, u, ok && u != ""
}

// Len returns the number of tracked tabs.
func (r *TabRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.urls)
}
