package art

import (
	"context"
	"errors"
	"log"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
)

const (
	albumArtService   = "com.nokia.albumart"
	albumArtPath      = "/com/nokia/albumart/Requester"
	albumArtQueueName = "com.nokia.albumart.Requester.Queue"

	// dbusServiceUnknown is the error name the bus replies with when no
	// service implements the downloader interface.
	dbusServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
)

// BusRequester hands download requests to an external downloader service
// over the session bus. The calls are fire and forget: nothing is
// returned and every failure is only logged.
//
// When the bus reports that no downloader service exists at all the
// requester disables itself for the rest of the process lifetime, so a
// system without one pays for a single round trip total instead of one
// per album.
type BusRequester struct {
	conn     *dbus.Conn
	disabled atomic.Bool
}

// NewBusRequester connects to the session bus. The returned requester
// must be closed when no longer used.
func NewBusRequester() (*BusRequester, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	return &BusRequester{conn: conn}, nil
}

// RequestDownload implements the processor's download collaborator.
func (r *BusRequester) RequestDownload(ctx context.Context, kind, artist, album string) {
	if r.disabled.Load() {
		return
	}

	obj := r.conn.Object(albumArtService, albumArtPath)
	call := obj.CallWithContext(ctx, albumArtQueueName, 0,
		artist, album, kind, uint32(0))
	if call.Err == nil {
		return
	}

	var busErr dbus.Error
	if errors.As(call.Err, &busErr) && busErr.Name == dbusServiceUnknown {
		log.Printf("no album art downloader service on the bus, disabling requests")
		r.disabled.Store(true)
		return
	}

	log.Printf("album art download request for %s/%s failed: %s", artist, album, call.Err)
}

// Close releases the bus connection.
func (r *BusRequester) Close() error {
	return r.conn.Close()
}
