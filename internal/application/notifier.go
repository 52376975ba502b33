package app

import (
	"context"
	"sync"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
)

// NotifierGroup fans guidance updates out to every registered notifier.
type NotifierGroup struct {
	mu        sync.RWMutex
	notifiers []port.GuidanceNotifier
}

// NewNotifierGroup creates an empty group.
func NewNotifierGroup() *NotifierGroup {
	return &NotifierGroup{}
}

// Add registers a notifier.
func (g *NotifierGroup) Add(n port.GuidanceNotifier) {
	g.mu.Lock()
	g.notifiers = append(g.notifiers, n)
	g.mu.Unlock()
}

// NotifyGuidance forwards state to all notifiers in registration order.
func (g *NotifierGroup) NotifyGuidance(ctx context.Context, state entity.GuidanceState) {
	g.mu.RLock()
	notifiers := append([]port.GuidanceNotifier(nil), g.notifiers...)
	g.mu.RUnlock()

	for _, n := range notifiers {
		n.NotifyGuidance(ctx, state)
	}
}

var _ port.GuidanceNotifier = (*NotifierGroup)(nil)
