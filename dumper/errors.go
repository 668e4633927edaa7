package dumper

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoDialog is returned when no dialog name contains the query.
var ErrNoDialog = errors.New("no dialog matches")

// AmbiguousDialogError is returned when several dialog names contain the query and none equals it.
type AmbiguousDialogError struct {
	Query string
	Names []string
}

func (e *AmbiguousDialogError) Error() string {
	quoted := make([]string, 0, len(e.Names))
	for _, n := range e.Names {
		quoted = append(quoted, fmt.Sprintf("%q", n))
	}
	return fmt.Sprintf("dialog name %q is ambiguous, matches: %s", e.Query, strings.Join(quoted, ", "))
}

// ParticipantsError wraps a failed participant listing. It is absorbed by the engine.
type ParticipantsError struct {
	DialogID int64
	Err      error
}

func (e *ParticipantsError) Error() string {
	return fmt.Sprintf("participants of dialog %d: %v", e.DialogID, e.Err)
}

func (e *ParticipantsError) Unwrap() error { return e.Err }

// MediaError wraps a failed media download. It is absorbed by the engine.
type MediaError struct {
	MessageID int64
	Err       error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media of message %d: %v", e.MessageID, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }

// MessageWriteError ends the message loop: skipping the message would leave a gap behind the cursor.
type MessageWriteError struct {
	MessageID int64
	Err       error
}

func (e *MessageWriteError) Error() string {
	return fmt.Sprintf("write message %d: %v", e.MessageID, e.Err)
}

func (e *MessageWriteError) Unwrap() error { return e.Err }
