package mediaart

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"

	"github.com/spf13/afero"
)

// jpegMagic is the JPEG start-of-image marker.
var jpegMagic = []byte{0xff, 0xd8, 0xff}

// fileChecksum computes the MD5 digest over the whole contents of path.
// Returns ErrNotFound when the file does not exist or cannot be read.
//
// When checkJPEG is set the first three bytes are compared against the
// JPEG start-of-image marker before committing to reading the rest. A
// file without the marker (including one shorter than three bytes) is
// reported with isJPEG false and an empty digest, but no error: the file
// was readable, it just is not a JPEG.
func fileChecksum(
	fsys afero.Fs,
	path string,
	checkJPEG bool,
) (digest string, isJPEG bool, err error) {
	file, err := fsys.Open(path)
	if err != nil {
		log.Printf("%s isn't readable while calculating its checksum: %s", path, err)
		return "", false, ErrNotFound
	}
	defer file.Close()

	sum := md5.New()

	if checkJPEG {
		header := make([]byte, 3)
		if _, err := io.ReadFull(file, header); err != nil {
			// Shorter than three bytes. Whatever it is, not a JPEG.
			return "", false, nil
		}
		if !bytes.Equal(header, jpegMagic) {
			return "", false, nil
		}

		isJPEG = true
		sum.Write(header)
	}

	if _, err := io.Copy(sum, file); err != nil {
		return "", isJPEG, &FSError{Op: "read", Path: path, Err: err}
	}

	return hex.EncodeToString(sum.Sum(nil)), isJPEG, nil
}

// isBufferJPEG reports whether the buffer holds JPEG data, judged by the
// MIME hint or by the start-of-image marker.
func isBufferJPEG(mime string, buffer []byte) bool {
	if len(buffer) < 3 {
		return false
	}

	if mime == "image/jpeg" || mime == "JPG" {
		return true
	}

	return bytes.HasPrefix(buffer, jpegMagic)
}
