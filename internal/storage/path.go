package storage

import (
	"math/rand"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	DirArtworks   = "artworks"
	DirVideos     = "videos"
	DirThumbnails = "thumbnails"

	maxNameLength = 100
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

func newULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

// ObjectPath returns "<dir>/<ulid>-<name>". Two calls never return the same path,
// even for identical names within the same millisecond.
func ObjectPath(dir, fileName string) string {
	return dir + "/" + newULID() + "-" + SanitizeName(fileName)
}

// SanitizeName reduces a client-supplied file name to a safe object key segment.
func SanitizeName(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		return "file"
	}
	if len(name) > maxNameLength {
		ext := path.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:maxNameLength-len(ext)] + ext
	}
	return name
}
