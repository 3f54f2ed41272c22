//go:build !linux

package storage

import "context"

// Monitor is a no-op outside of Linux where no udev exists. The storage
// cache then only refreshes on explicit Invalidate calls.
type Monitor struct{}

// NewMonitor returns a monitor keeping storage current.
func NewMonitor(storage *Storage) *Monitor {
	return &Monitor{}
}

// Start does nothing on this platform.
func (m *Monitor) Start(ctx context.Context) {}

// Stop does nothing on this platform.
func (m *Monitor) Stop() {}
