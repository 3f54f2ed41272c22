// The Main function of the media art manager. It should set everything
// up, create a processor and run the requested operation against the
// media art cache.
//
// At the moment it is in package src because I import it from the project's root
// folder.
package src

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/ironsmile/mediaart/src/art"
	"github.com/ironsmile/mediaart/src/config"
	"github.com/ironsmile/mediaart/src/convert"
	"github.com/ironsmile/mediaart/src/helpers"
	"github.com/ironsmile/mediaart/src/mediaart"
	"github.com/ironsmile/mediaart/src/storage"
	"github.com/ironsmile/mediaart/src/version"
)

var (
	showVersion bool
	artistFlag  string
	titleFlag   string
	typeFlag    string
	printPath   bool
	removeArt   bool
	forceFlag   bool
)

func init() {
	flag.BoolVar(&showVersion, "v", false, "Print version information.")
	flag.StringVar(&artistFlag, "artist", "", "Artist the processed media belongs to.")
	flag.StringVar(&titleFlag, "title", "",
		"Album name for music, title for videos.")
	flag.StringVar(&typeFlag, "type", "album",
		"Media art type for the operation. One of 'album' or 'video'.")
	flag.BoolVar(&printPath, "print-path", false,
		"Print the cache path for the given artist and title, then exit.")
	flag.BoolVar(&removeArt, "remove", false,
		"Remove the cached art for the given artist and title, then exit.")
	flag.BoolVar(&forceFlag, "force", false,
		"Process media files even when their cached art looks fresh.")
}

func parseType() (mediaart.Type, error) {
	switch typeFlag {
	case "album":
		return mediaart.TypeAlbum, nil
	case "video":
		return mediaart.TypeVideo, nil
	}

	return mediaart.TypeNone, fmt.Errorf("unknown media art type %q", typeFlag)
}

// optional turns a flag value into the optional string the processor
// operates on. A flag left empty means the value is unknown.
func optional(val string) *string {
	if val == "" {
		return nil
	}
	return mediaart.String(val)
}

// typeForPath guesses the media art type of one command line argument.
func typeForPath(path string, fallback mediaart.Type) mediaart.Type {
	if helpers.IsAudioPath(path) {
		return mediaart.TypeAlbum
	}
	if helpers.IsVideoPath(path) {
		return mediaart.TypeVideo
	}
	return fallback
}

// This function is the only thing run in the project's root main.go file.
// For all intent and purposes this is the main function.
func Main() {
	flag.Parse()

	if showVersion {
		version.Print(os.Stdout)
		return
	}

	cfg, err := config.FindAndParse()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}

	if cfg.LogFile != "" {
		helpers.SetLogsFile(cfg.LogFile)
	}

	typ, err := parseType()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}

	artist := optional(artistFlag)
	title := optional(titleFlag)

	if printPath {
		key, ok := mediaart.DeriveKey(artist, title)
		if !ok {
			log.Println("an artist or a title is needed for deriving the cache path")
			os.Exit(1)
		}
		fmt.Println(key.Filename(typ.String()))
		return
	}

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	osFs := afero.NewOsFs()

	stor := storage.New(osFs)
	monitor := storage.NewMonitor(stor)
	monitor.Start(ctx)
	defer monitor.Stop()

	var processor *mediaart.Processor

	var requester mediaart.Requester
	if cfg.DownloadInProcess {
		finder := art.NewClient(cfg.UserAgent, time.Second)
		requester = art.NewDownloader(finder, func(
			ctx context.Context, kind, artistName, album string, image []byte,
		) {
			err := processor.SetFromBuffer(
				ctx,
				optional(artistName), optional(album),
				mediaart.TypeAlbum,
				image, "image/jpeg",
			)
			if err != nil {
				log.Printf("storing downloaded art for %s/%s: %s",
					artistName, album, err)
			}
		})
	} else if cfg.DownloadRequests {
		busRequester, err := art.NewBusRequester()
		if err != nil {
			log.Printf("connecting to the session bus: %s", err)
		} else {
			defer busRequester.Close()
			requester = busRequester
		}
	}

	processor = mediaart.NewProcessor(ctx, mediaart.Options{
		Fs:        osFs,
		CacheDir:  cfg.CacheDir,
		Converter: convert.New(osFs, cfg.MaxArtWidth),
		Requester: requester,
		Storage:   stor,
		Workers:   cfg.Workers,
	})
	defer processor.Cancel()

	if removeArt {
		if err := processor.Remove(artist, title, typ); err != nil {
			log.Println(err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() < 1 {
		log.Println("no media files given")
		os.Exit(1)
	}

	var failed bool
	for _, arg := range flag.Args() {
		if err := processOne(ctx, processor, arg, typ); err != nil {
			log.Println(err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// processOne reconciles artwork for one command line argument, walking
// it when it is a directory.
func processOne(
	ctx context.Context,
	processor *mediaart.Processor,
	path string,
	typ mediaart.Type,
) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !st.IsDir() {
		return processor.ProcessMediaFile(ctx, path, typeForPath(path, typ), forceFlag)
	}

	var results []<-chan error
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !(helpers.IsAudioPath(p) || helpers.IsVideoPath(p)) {
			return nil
		}

		results = append(results, processor.QueueMediaFile(
			ctx, p, typeForPath(p, typ), forceFlag,
		))
		return nil
	})
	if err != nil {
		return err
	}

	for _, result := range results {
		if perr := <-result; perr != nil {
			log.Println(perr)
			err = perr
		}
	}

	return err
}
