// Contains few helpers functions which are used througout the project
package helpers

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// audioExtensions are the media file extensions treated as music.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".m4a":  true,
	".aac":  true,
	".wav":  true,
	".wma":  true,
}

// videoExtensions are the media file extensions treated as videos.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".webm": true,
	".mpg":  true,
	".mpeg": true,
	".wmv":  true,
}

// SetLogsFile sets the logfile of the program
func SetLogsFile(logFilePath string) {
	logFile, err := os.Create(logFilePath)
	if err != nil {
		log.Println("Could not open logfile")
		os.Exit(1)
	}
	log.SetOutput(logFile)
}

// IsAudioPath reports whether path looks like a music file by its
// extension.
func IsAudioPath(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsVideoPath reports whether path looks like a video file by its
// extension.
func IsVideoPath(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}
