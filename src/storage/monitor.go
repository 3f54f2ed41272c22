//go:build linux

package storage

import (
	"context"
	"log"

	"github.com/pilebones/go-udev/netlink"
)

// Monitor listens for udev netlink events about block devices and
// invalidates the storage cache when one appears or disappears. Without
// it the cache only refreshes on explicit Invalidate calls.
type Monitor struct {
	storage *Storage
	conn    *netlink.UEventConn
}

// NewMonitor returns a monitor keeping storage current.
func NewMonitor(storage *Storage) *Monitor {
	return &Monitor{storage: storage}
}

// Start connects to the kernel and begins watching. A failure to connect
// is not fatal, hotplug awareness is simply lost, so it is only logged.
func (m *Monitor) Start(ctx context.Context) {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		log.Printf("connecting to the udev netlink socket: %s", err)
		return
	}
	m.conn = conn

	go m.loop(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	matcher := &netlink.RuleDefinitions{}
	matcher.AddRule(netlink.RuleDefinition{
		Env: map[string]string{"SUBSYSTEM": "block"},
	})

	quit := m.conn.Monitor(queue, errs, matcher)

	for {
		select {
		case <-ctx.Done():
			close(quit)
			return
		case <-queue:
			m.storage.Invalidate()
		case err := <-errs:
			log.Printf("udev monitor error: %s", err)
		}
	}
}

// Stop closes the netlink connection.
func (m *Monitor) Stop() {
	if m.conn != nil {
		_ = m.conn.Close()
	}
}
