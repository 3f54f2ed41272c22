package mediaart

import (
	"context"
	"sync"

	"github.com/spf13/afero"
)

// fakeConverter writes buffers out verbatim. Data which is not already
// JPEG gets the start-of-image marker prepended so the checksum logic
// sees something that passes for one.
type fakeConverter struct {
	fs afero.Fs

	mu          sync.Mutex
	bufferCalls int
	fileCalls   int
}

func (c *fakeConverter) BufferToJPEG(
	ctx context.Context, data []byte, mime, target string,
) error {
	c.mu.Lock()
	c.bufferCalls++
	c.mu.Unlock()

	return afero.WriteFile(c.fs, target, asJPEG(data), 0644)
}

func (c *fakeConverter) FileToJPEG(ctx context.Context, source, target string) error {
	c.mu.Lock()
	c.fileCalls++
	c.mu.Unlock()

	data, err := afero.ReadFile(c.fs, source)
	if err != nil {
		return err
	}

	return afero.WriteFile(c.fs, target, asJPEG(data), 0644)
}

func (c *fakeConverter) buffers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bufferCalls
}

func asJPEG(data []byte) []byte {
	if isBufferJPEG("", data) {
		return data
	}

	return append([]byte{0xff, 0xd8, 0xff}, data...)
}

type downloadRequest struct {
	kind   string
	artist string
	album  string
}

type fakeRequester struct {
	mu       sync.Mutex
	requests []downloadRequest
}

func (r *fakeRequester) RequestDownload(
	ctx context.Context, kind, artist, album string,
) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, downloadRequest{kind, artist, album})
}

func (r *fakeRequester) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

type fakeRoots struct {
	roots []string
}

func (f *fakeRoots) Roots() ([]string, error) {
	return f.roots, nil
}
