/*
Package art deals with album artwork which could not be found on disk.

Downloads can be delegated to an external downloader service over the
session bus, fire and forget, or performed in process by querying the
MusicBrainz web service for a release ID and then the Cover Art Archive
for the corresponding front image.

The following APIs are used to achieve this packages' objective:

  - MusicBrainz API: https://musicbrainz.org/doc/Development/XML_Web_Service/Version_2
  - Cover Art Archive: https://musicbrainz.org/doc/Cover_Art_Archive/
*/
package art
