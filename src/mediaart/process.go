package mediaart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate . Converter

// Converter is the image codec collaborator. Implementations must flatten
// any alpha channel onto an opaque background before encoding, since JPEG
// has none, and may downscale to a configured maximum width.
type Converter interface {
	// FileToJPEG re-encodes the image file at source into a JPEG at target.
	FileToJPEG(ctx context.Context, source, target string) error

	// BufferToJPEG stores the image data as a JPEG at target, converting
	// when the data is not already JPEG. The mime value is a hint and may
	// be empty.
	BufferToJPEG(ctx context.Context, data []byte, mime, target string) error
}

//counterfeiter:generate . Requester

// Requester asks an external downloader service for art which could not
// be found locally. The call is fire and forget: implementations log and
// swallow failures.
type Requester interface {
	RequestDownload(ctx context.Context, kind, artist, album string)
}

//counterfeiter:generate . RemovableRoots

// RemovableRoots lists the filesystem roots of currently mounted
// removable storage devices.
type RemovableRoots interface {
	Roots() ([]string, error)
}

// Request describes one media art reconciliation.
type Request struct {
	// Buffer optionally holds image data already extracted from the
	// media file, e.g. an embedded tag picture. When empty the media
	// file's directory is searched instead.
	Buffer []byte

	// MIME is the media type hint for Buffer. May be empty.
	MIME string

	// Type of the media the art belongs to.
	Type Type

	// Artist the media belongs to. Nil when unknown.
	Artist *string

	// Title is the album name for music and the title for videos. Nil
	// when unknown.
	Title *string

	// Path of the media file the art belongs to.
	Path string

	// Force runs the reconciliation even when the cached artifact is
	// newer than the media file.
	Force bool
}

// Options configures a Processor.
type Options struct {
	// Fs is the filesystem everything operates on. Defaults to the
	// operating system one.
	Fs afero.Fs

	// CacheDir overrides the artifact directory. Defaults to the
	// standard user-level cache location.
	CacheDir string

	// Converter is the image codec collaborator. Required.
	Converter Converter

	// Requester is asked to download art the local search could not
	// provide. Optional.
	Requester Requester

	// Storage enumerates removable device roots for deciding whether a
	// sidecar copy should be made. Optional; without it no sidecar
	// copies are attempted.
	Storage RemovableRoots

	// Workers is the number of concurrently served requests. Defaults
	// to the number of CPUs.
	Workers int
}

// Processor reconciles the media art cache with the outside world. It is
// safe for concurrent use. Process is the synchronous core, Queue the
// asynchronous wrapper dispatching onto the worker pool.
type Processor struct {
	fs        afero.Fs
	paths     *Paths
	store     *Store
	converter Converter
	requester Requester
	storage   RemovableRoots

	// attempted memoizes directory searches per (type, artist, title,
	// directory) so repeated calls for the same directory short-circuit
	// without rescanning. Entries are never evicted for the lifetime of
	// the Processor.
	attemptedMu sync.Mutex
	attempted   map[string]bool

	cancelContext context.CancelFunc

	// stopMu guards stopped and the closing of work, so Queue can never
	// send on the channel after it has been closed.
	stopMu  sync.Mutex
	stopped bool
	work    chan task
}

type task struct {
	ctx    context.Context
	req    Request
	result chan error
}

// NewProcessor returns a Processor ready for use. It runs until either
// ctx is done or Cancel is called.
func NewProcessor(ctx context.Context, opts Options) *Processor {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Processor{
		fs:            fsys,
		paths:         NewPaths(fsys, opts.CacheDir),
		store:         NewStore(fsys),
		converter:     opts.Converter,
		requester:     opts.Requester,
		storage:       opts.Storage,
		attempted:     make(map[string]bool),
		cancelContext: cancel,
		work:          make(chan task),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(p.watchCtx(gctx))
	for i := 0; i < workers; i++ {
		g.Go(p.worker)
	}

	return p
}

func (p *Processor) worker() error {
	for t := range p.work {
		t.result <- p.Process(t.ctx, t.req)
	}

	return nil
}

func (p *Processor) watchCtx(ctx context.Context) func() error {
	// Closing the work channel once the context is done causes all
	// worker go routines to drain and stop.
	return func() error {
		<-ctx.Done()

		p.stopMu.Lock()
		p.stopped = true
		close(p.work)
		p.stopMu.Unlock()

		return nil
	}
}

// Queue schedules a reconciliation on the worker pool and returns a
// channel on which its single result will be delivered.
func (p *Processor) Queue(ctx context.Context, req Request) <-chan error {
	result := make(chan error, 1)

	p.stopMu.Lock()
	defer p.stopMu.Unlock()

	if p.stopped {
		result <- ErrCancelled
		return result
	}

	// The lock is held across the send. The workers keep draining until
	// the channel is closed and closing takes the same lock, so the send
	// always completes.
	select {
	case p.work <- task{ctx: ctx, req: req, result: result}:
	case <-ctx.Done():
		result <- fmt.Errorf("ctx done while waiting to queue request: %w", ctx.Err())
	}

	return result
}

// Cancel stops the processor and all of its workers. Users may not call
// any further methods on a cancelled processor.
func (p *Processor) Cancel() {
	p.stopMu.Lock()
	p.stopped = true
	p.stopMu.Unlock()

	p.cancelContext()
}

// Process runs one reconciliation to completion. When req.Buffer holds
// image data it is converted and stored. Otherwise the media file's
// directory is searched for likely artwork and, failing that, a download
// is requested from the external collaborator.
//
// The whole reconciliation is skipped while the cached artifact is at
// least as new as the media file, unless req.Force is set. After any
// attempt the artifact's modification time is stamped to the media
// file's so the staleness check holds on the next call.
func (p *Processor) Process(ctx context.Context, req Request) error {
	if !req.Type.Valid() {
		return fmt.Errorf("media art type %d is not processable", req.Type)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mtime, err := p.store.Mtime(req.Path)
	if err != nil {
		return err
	}

	artPath, err := p.paths.ArtPath(req.Artist, req.Title, req.Type)
	if err != nil {
		return err
	}
	localPath := p.paths.LocalPath(req.Artist, req.Title, req.Type, req.Path)

	var (
		artMtime time.Time
		exists   bool
	)
	if t, err := p.store.Mtime(artPath); err == nil {
		exists = true
		artMtime = t
	}

	stale := !exists || mtime.After(artMtime) || req.Force

	var created bool
	if len(req.Buffer) > 0 && stale {
		if err := p.setArt(ctx, req, artPath); err != nil {
			return err
		}
		if err := p.store.SetMtime(artPath, mtime); err != nil {
			log.Printf("stamping mtime on %s: %s", artPath, err)
		}
		created = true
	}

	switch {
	case !created && stale:
		if err := p.reconcileFromDirectory(ctx, req, artPath, localPath, mtime); err != nil {
			return err
		}
	case !created:
		log.Printf("media art already exists for %s as %s", req.Path, artPath)
	}

	if localPath != "" && !p.store.Exists(localPath) && p.store.Exists(artPath) {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.copyToLocal(artPath, localPath, req.Path)
	}

	return nil
}

// reconcileFromDirectory runs the heuristic search unless it has already
// been attempted for this directory and metadata during the process
// lifetime. A heuristic miss falls back to requesting a download.
func (p *Processor) reconcileFromDirectory(
	ctx context.Context,
	req Request,
	artPath, localPath string,
	mtime time.Time,
) error {
	memoKey := fmt.Sprintf("%d-%s-%s-%s",
		req.Type,
		deref(req.Artist),
		deref(req.Title),
		filepath.Dir(req.Path),
	)

	p.attemptedMu.Lock()
	seen := p.attempted[memoKey]
	p.attemptedMu.Unlock()

	if seen {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.heuristic(ctx, req, artPath, localPath); err != nil {
		if errors.Is(err, ErrNoTitle) {
			return err
		}

		log.Printf("no artwork found next to %s: %s", req.Path, err)
		p.requestDownload(ctx, req)
	}

	if err := p.store.SetMtime(artPath, mtime); err != nil {
		log.Printf("stamping mtime on %s: %s", artPath, err)
	}

	p.attemptedMu.Lock()
	p.attempted[memoKey] = true
	p.attemptedMu.Unlock()

	return nil
}

// requestDownload notifies the external downloader that art for an album
// is wanted. Only album art downloads are supported by the collaborator.
func (p *Processor) requestDownload(ctx context.Context, req Request) {
	if p.requester == nil || req.Type != TypeAlbum {
		return
	}

	p.requester.RequestDownload(
		ctx,
		req.Type.String(),
		deref(req.Artist),
		deref(req.Title),
	)
}

// copyToLocal places a sidecar copy of the cache artifact next to the
// media file when the file lives on removable storage. This is best
// effort in every way: the device may be read-only or gone, and the
// cache write has already succeeded.
func (p *Processor) copyToLocal(artPath, localPath, mediaPath string) {
	if p.storage == nil {
		return
	}

	roots, err := p.storage.Roots()
	if err != nil {
		log.Printf("removable storage enumeration failed: %s", err)
		return
	}

	removable := false
	for _, root := range roots {
		if underRoot(mediaPath, root) {
			removable = true
			break
		}
	}
	if !removable {
		return
	}

	if err := p.fs.MkdirAll(filepath.Dir(localPath), 0770); err != nil {
		log.Printf("creating sidecar directory for %s: %s", localPath, err)
		return
	}

	log.Printf("copying media art from %s to %s", artPath, localPath)
	if err := p.store.Copy(artPath, localPath); err != nil {
		log.Printf("copying media art to %s: %s", localPath, err)
	}
}

// blankArtist reports whether the artist is unknown for the purposes of
// album art sharing: absent or normalizing to nothing.
func blankArtist(artist *string) bool {
	return artist == nil || StripInvalidEntities(*artist) == ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// underRoot reports whether path lies under root, on path component
// boundaries.
func underRoot(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
