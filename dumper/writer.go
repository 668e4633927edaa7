package dumper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mqy/chatdump/chatstore"
)

const (
	DefaultRootDir = "dumps"

	participantsDir = "participants"
	messagesDir     = "messages"
	mediaDir        = "media"

	dialogFile     = "dialog.json"
	summaryFile    = "summary.json"
	transcriptFile = "messages.csv"
)

// Layout is the on-disk layout of one dialog dump.
type Layout struct {
	Base string
}

// NewLayout places the dialog under root. Path separators in the name are replaced,
// so a dialog named "a/b" can not escape root.
func NewLayout(root, dialogName string) Layout {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, dialogName)
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return Layout{Base: filepath.Join(root, name)}
}

// Create creates the base dir and its subdirs. Existing dirs are fine.
func (l Layout) Create() error {
	for _, dir := range []string{
		l.Base,
		filepath.Join(l.Base, participantsDir),
		filepath.Join(l.Base, messagesDir),
		filepath.Join(l.Base, mediaDir),
	} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.Wrapf(err, "create dir `%s`", dir)
		}
	}
	return nil
}

func (l Layout) DialogFile() string {
	return filepath.Join(l.Base, dialogFile)
}

func (l Layout) SummaryFile() string {
	return filepath.Join(l.Base, summaryFile)
}

func (l Layout) TranscriptFile() string {
	return filepath.Join(l.Base, transcriptFile)
}

func (l Layout) ParticipantFile(id int64) string {
	return filepath.Join(l.Base, participantsDir, fmt.Sprintf("%d.json", id))
}

// MessageFile names the message file by id, zero padded to 4 digits.
func (l Layout) MessageFile(id int64) string {
	return filepath.Join(l.Base, messagesDir, fmt.Sprintf("%04d.json", id))
}

func (l Layout) MediaFile(name string) string {
	return filepath.Join(l.Base, mediaDir, name)
}

// Serialize the Go object to human-readable content.
type structSerializer func(interface{}) ([]byte, error)

// Writer writes records as whole files. It does not retry and does not create dirs.
type Writer struct {
	serializer structSerializer
}

func NewWriter() *Writer {
	return &Writer{serializer: indentJSONSerializer}
}

// WriteJSON truncates `path` and writes `v` to it.
func (w *Writer) WriteJSON(v interface{}, path string) error {
	data, err := w.serializer(v)
	if err != nil {
		return errors.Wrapf(err, "serialize `%s`", path)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return errors.Wrapf(err, "write `%s`", path)
	}
	return nil
}

func (w *Writer) WriteDialog(l Layout, d *chatstore.Dialog) error {
	return w.WriteJSON(d, l.DialogFile())
}

func (w *Writer) WriteParticipant(l Layout, p *chatstore.Participant) error {
	return w.WriteJSON(p, l.ParticipantFile(p.ID))
}

func (w *Writer) WriteMessage(l Layout, m *chatstore.Message) error {
	return w.WriteJSON(m, l.MessageFile(m.ID))
}

func indentJSONSerializer(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
