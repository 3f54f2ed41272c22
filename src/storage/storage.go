// Package storage keeps track of mounted removable and optical devices.
// The media art processor uses it to decide whether a media file lives
// on storage which should receive a sidecar copy of its artwork.
package storage

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Type is a bitmask describing what kind of device a mount is on.
type Type int

const (
	// Removable marks mounts of removable devices such as USB sticks
	// and memory cards.
	Removable Type = 1 << iota

	// Optical marks mounts of optical discs.
	Optical
)

// mountsPath is where the kernel lists active mounts.
const mountsPath = "/proc/self/mounts"

// opticalFilesystems are the filesystem types only optical media use.
var opticalFilesystems = map[string]bool{
	"iso9660": true,
	"udf":     true,
}

// removableMountPrefixes are where udisks and friends mount removable
// devices. A mount under one of these is treated as removable storage.
var removableMountPrefixes = []string{
	"/media/",
	"/run/media/",
	"/mnt/",
}

type mount struct {
	root string
	typ  Type
}

// Storage enumerates mounted devices by their kind. The mount table is
// parsed lazily and cached until Invalidate is called, which the device
// monitor does on every hotplug event.
type Storage struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	cache  []mount
	cached bool
}

// New returns a Storage reading the mount table through fsys.
func New(fsys afero.Fs) *Storage {
	return &Storage{fs: fsys, path: mountsPath}
}

// SetMountsPath overrides the mount table location. Only useful for
// tests.
func (s *Storage) SetMountsPath(path string) {
	s.path = path
}

// Invalidate drops the cached mount table so the next query reparses it.
func (s *Storage) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
	s.cached = false
}

// DeviceRoots returns the mount points of all devices matching any of
// the kinds in the mask.
func (s *Storage) DeviceRoots(mask Type) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cached {
		mounts, err := s.parseMounts()
		if err != nil {
			return nil, err
		}
		s.cache = mounts
		s.cached = true
	}

	var roots []string
	for _, m := range s.cache {
		if m.typ&mask != 0 {
			roots = append(roots, m.root)
		}
	}

	return roots, nil
}

// Roots returns the mount points of all removable devices, optical ones
// included. It satisfies the processor's removable storage collaborator.
func (s *Storage) Roots() ([]string, error) {
	return s.DeviceRoots(Removable | Optical)
}

func (s *Storage) parseMounts() ([]mount, error) {
	fh, err := s.fs.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening mount table %s: %w", s.path, err)
	}
	defer fh.Close()

	var mounts []mount

	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}

		root := unescapeMountPoint(fields[1])
		fstype := fields[2]

		typ := classify(root, fstype)
		if typ == 0 {
			continue
		}

		mounts = append(mounts, mount{root: root, typ: typ})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mount table %s: %w", s.path, err)
	}

	return mounts, nil
}

func classify(root, fstype string) Type {
	if opticalFilesystems[fstype] {
		return Optical | Removable
	}

	for _, prefix := range removableMountPrefixes {
		if strings.HasPrefix(root, prefix) {
			return Removable
		}
	}

	return 0
}

// unescapeMountPoint decodes the octal escapes the kernel uses for
// whitespace in mount points, e.g. "/media/usb\040stick".
func unescapeMountPoint(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if code, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				out.WriteByte(byte(code))
				i += 3
				continue
			}
		}
		out.WriteByte(s[i])
	}

	return out.String()
}
