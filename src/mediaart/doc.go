/*
Package mediaart maintains the user-level media art cache. It derives a
stable identity from artist and title metadata, maps that identity to a
JPEG artifact in the cache directory and reconciles the artifact with
image data extracted from media files or with likely artwork found next
to them.

Artifacts are named `<prefix>-<artist md5>-<title md5>.jpeg` inside the
cache directory. The naming is a cross-process contract: any compliant
implementation produces byte-identical file names for identical inputs,
so files written here can be read by other consumers of the cache and
vice versa.

Art shared between all tracks of one album is stored once, in an
artifact keyed by the title alone. Per-track artifacts with identical
content become symbolic links to it.

The entry point is the Processor. Give it image bytes you have already
extracted from a media file and it converts and stores them. Give it no
bytes and it searches the media file's directory for something that
looks like artwork, falling back to requesting a download from an
external collaborator.
*/
package mediaart
