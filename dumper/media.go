package dumper

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/mqy/chatdump/chatstore"
	"github.com/mqy/chatdump/source"
)

// ErrNoFileName is returned for a document without a usable filename attribute.
var ErrNoFileName = errors.New("document has no filename attribute")

// MediaFileName derives the media filename of the message from its attachment kind.
func MediaFileName(msg *chatstore.Message) (string, error) {
	kind := chatstore.MediaNone
	if msg.Media != nil {
		kind = msg.Media.Kind
	}

	switch kind {
	case chatstore.MediaPhoto:
		return fmt.Sprintf("photo_%d.jpg", msg.ID), nil
	case chatstore.MediaDocument:
		names := msg.Media.FileNames
		if len(names) == 0 {
			return "", ErrNoFileName
		}
		// The last attribute wins; only the base name is kept.
		name := filepath.Base(filepath.Clean("/" + names[len(names)-1]))
		if name == "/" || name == "." || name == string(filepath.Separator) {
			return "", errors.Wrapf(ErrNoFileName, "bad filename %q", names[len(names)-1])
		}
		return name, nil
	case chatstore.MediaVideo:
		return fmt.Sprintf("video_%d.mp4", msg.ID), nil
	case chatstore.MediaWebPage:
		return fmt.Sprintf("webpage_%d.html", msg.ID), nil
	}
	// none or unknown.
	return fmt.Sprintf("unknown_%d", msg.ID), nil
}

// MediaFetcher downloads message attachments into the media dir.
type MediaFetcher struct {
	src source.ISource
}

func NewMediaFetcher(src source.ISource) *MediaFetcher {
	return &MediaFetcher{src: src}
}

// Fetch downloads the media of `msg` into `<baseDir>/media/`. It never panics; a failure is logged
// with the message id and returned as *MediaError for the caller to count.
func (f *MediaFetcher) Fetch(ctx context.Context, msg *chatstore.Message, baseDir string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &MediaError{MessageID: msg.ID, Err: errors.Errorf("panic: %v", r)}
		}
		if err != nil {
			glog.Errorf("Failed to download media of message %d: %v", msg.ID, err)
		}
	}()

	name, err := MediaFileName(msg)
	if err != nil {
		return &MediaError{MessageID: msg.ID, Err: err}
	}

	path := Layout{Base: baseDir}.MediaFile(name)
	if err := f.src.DownloadMedia(ctx, msg, path); err != nil {
		return &MediaError{MessageID: msg.ID, Err: err}
	}

	glog.Infof("Downloaded %s", name)
	return nil
}
