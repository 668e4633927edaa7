package dumper

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/mqy/chatdump/chatstore"
)

// Transcript appends one `date,text` row per message to messages.csv.
// Rows accumulate across runs; a resumed run continues at the end of the file.
type Transcript struct {
	f *os.File
	w *csv.Writer
}

func OpenTranscript(path string) (*Transcript, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
	if err != nil {
		return nil, errors.Wrapf(err, "open transcript `%s`", path)
	}
	return &Transcript{f: f, w: csv.NewWriter(f)}, nil
}

// Append writes and flushes the row of msg.
func (t *Transcript) Append(msg *chatstore.Message) error {
	var date string
	if !msg.Date.IsZero() {
		date = msg.Date.UTC().Format(time.RFC3339)
	}
	if err := t.w.Write([]string{date, msg.Text}); err != nil {
		return errors.Wrapf(err, "append message %d to transcript", msg.ID)
	}
	t.w.Flush()
	if err := t.w.Error(); err != nil {
		return errors.Wrapf(err, "append message %d to transcript", msg.ID)
	}
	return nil
}

func (t *Transcript) Close() error {
	return t.f.Close()
}
