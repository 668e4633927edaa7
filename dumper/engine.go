package dumper

import (
	"context"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/mqy/chatdump/chatstore"
	"github.com/mqy/chatdump/metrics"
	"github.com/mqy/chatdump/shutdown"
	"github.com/mqy/chatdump/source"
	"github.com/mqy/chatdump/store"
)

type Config struct {
	RootDir  string
	PageSize int

	// FirstMatch picks the first of several matching dialogs instead of failing.
	FirstMatch bool
	// Transcript also appends every message to messages.csv.
	Transcript bool
}

// Engine dumps one dialog: metadata, participants, then messages in ascending id order,
// resuming after the stored cursor and stopping early when the coordinator says so.
type Engine struct {
	conf    *Config
	src     source.ISource
	resume  store.IResumeStore
	coord   *shutdown.Coordinator
	writer  *Writer
	media   *MediaFetcher
	metrics *metrics.Dump
}

// NewEngine creates an engine. The coordinator's flush func is expected to save into `resume`.
func NewEngine(conf *Config, src source.ISource, resume store.IResumeStore, coord *shutdown.Coordinator,
	m *metrics.Dump) *Engine {
	if conf.RootDir == "" {
		conf.RootDir = DefaultRootDir
	}
	if m == nil {
		m = metrics.NewDump()
	}
	return &Engine{
		conf:    conf,
		src:     src,
		resume:  resume,
		coord:   coord,
		writer:  NewWriter(),
		media:   NewMediaFetcher(src),
		metrics: m,
	}
}

// Run dumps the dialog whose name contains `query`. It returns error only on setup failures
// (no or ambiguous dialog, dir creation, dialog metadata), on a message that can not be written,
// or when the message stream fails for good. Per-item failures are logged and counted.
func (e *Engine) Run(ctx context.Context, query string) (*Summary, error) {
	ctx = e.coord.Context(ctx)
	summary := newSummary(query)
	glog.Infof("run %s: dumping dialog matching %q", summary.RunID, query)

	defer func() {
		summary.EndTime = time.Now().UTC()
		e.metrics.Finish(summary.StartTime, summary.EndTime, summary.Interrupted)
	}()

	dialog, err := e.resolveDialog(ctx, query)
	if err != nil {
		summary.addStep(stepDialog, err)
		return summary, err
	}
	summary.DialogID = dialog.ID
	summary.DialogName = dialog.Name

	layout := NewLayout(e.conf.RootDir, dialog.Name)
	summary.BaseDir = layout.Base
	if err := layout.Create(); err != nil {
		summary.addStep(stepDialog, err)
		return summary, err
	}
	defer e.saveSummary(layout, summary)

	if err := e.writer.WriteDialog(layout, dialog); err != nil {
		summary.addStep(stepDialog, err)
		return summary, err
	}
	summary.addStep(stepDialog, nil)

	e.dumpParticipants(ctx, layout, dialog, summary)

	startID := e.resume.Load().Get(dialog.ID)
	summary.StartCursor = startID
	summary.EndCursor = startID
	if startID > 0 {
		glog.Infof("resuming dialog %d after message %d", dialog.ID, startID)
	}

	var transcript *Transcript
	if e.conf.Transcript {
		if transcript, err = OpenTranscript(layout.TranscriptFile()); err != nil {
			summary.addStep(stepMessages, err)
			return summary, err
		}
		defer func() {
			if err := transcript.Close(); err != nil {
				glog.Errorf("error close transcript: %v", err)
			}
		}()
	}

	loopErr := e.dumpMessages(ctx, layout, dialog, startID, transcript, summary)
	summary.addStep(stepMessages, loopErr)

	flushErr := e.coord.Flush()
	if summary.EndCursor == startID && flushErr == nil {
		summary.skipStep(stepResume, "no progress")
	} else {
		summary.addStep(stepResume, flushErr)
	}

	if summary.Interrupted {
		glog.Infof("run %s: interrupted after message %d", summary.RunID, summary.EndCursor)
	} else {
		glog.Infof("run %s: done, %d messages, %d media (%d failed)", summary.RunID,
			summary.MessagesWritten, summary.MediaDownloaded, summary.MediaFailed)
	}

	if loopErr != nil {
		return summary, loopErr
	}
	if flushErr != nil {
		return summary, errors.Wrap(flushErr, "save resume cursors")
	}
	return summary, nil
}

// resolveDialog selects the dialog whose name contains `query` (case-sensitive).
// Among several matches an exact name wins; otherwise it is an error unless FirstMatch is set.
func (e *Engine) resolveDialog(ctx context.Context, query string) (*chatstore.Dialog, error) {
	dialogs, err := e.src.ListDialogs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list dialogs")
	}

	var matches []*chatstore.Dialog
	for _, d := range dialogs {
		if d != nil && strings.Contains(d.Name, query) {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 0:
		return nil, errors.Wrapf(ErrNoDialog, "query %q", query)
	case 1:
		return matches[0], nil
	}

	for _, d := range matches {
		if d.Name == query {
			return d, nil
		}
	}

	names := make([]string, 0, len(matches))
	for _, d := range matches {
		names = append(names, d.Name)
	}
	if e.conf.FirstMatch {
		glog.Warningf("dialog name %q matches %d dialogs %q, using the first", query, len(matches), names)
		return matches[0], nil
	}
	return nil, &AmbiguousDialogError{Query: query, Names: names}
}

// dumpParticipants is best effort: a failure is logged and the run goes on.
func (e *Engine) dumpParticipants(ctx context.Context, layout Layout, dialog *chatstore.Dialog, summary *Summary) {
	participants, err := e.src.ListParticipants(ctx, dialog.ID)
	if err != nil {
		perr := &ParticipantsError{DialogID: dialog.ID, Err: err}
		glog.Errorf("skip participants: %v", perr)
		e.metrics.ParticipantsErrors.Inc()
		summary.addStep(stepParticipants, perr)
		return
	}

	var failed int
	for _, p := range participants {
		if err := e.writer.WriteParticipant(layout, p); err != nil {
			glog.Errorf("error write participant %d: %v", p.ID, err)
			e.metrics.ParticipantsErrors.Inc()
			failed++
			continue
		}
		e.metrics.ParticipantsWritten.Inc()
		summary.ParticipantsWritten++
	}
	glog.Infof("saved %d participants", summary.ParticipantsWritten)

	if failed > 0 {
		summary.addStep(stepParticipants, errors.Errorf("%d participants not written", failed))
	} else {
		summary.addStep(stepParticipants, nil)
	}
}

// dumpMessages is the resumable loop. For each message: write it, publish it as the cursor,
// fetch its media, then poll for a stop. The cursor never points past a message that is not on disk.
// A stop cancels page fetches only; the media of the current message is still completed.
func (e *Engine) dumpMessages(ctx context.Context, layout Layout, dialog *chatstore.Dialog, startID int64,
	transcript *Transcript, summary *Summary) error {
	it := source.NewIterator(e.src, dialog, startID, e.conf.PageSize)
	mediaCtx := context.WithoutCancel(ctx)

	for it.Next(ctx) {
		msg := it.Message()

		if err := e.writer.WriteMessage(layout, msg); err != nil {
			e.metrics.MessageWriteErrors.Inc()
			werr := &MessageWriteError{MessageID: msg.ID, Err: err}
			glog.Errorf("abort: %v", werr)
			return werr
		}
		if transcript != nil {
			if err := transcript.Append(msg); err != nil {
				e.metrics.MessageWriteErrors.Inc()
				werr := &MessageWriteError{MessageID: msg.ID, Err: err}
				glog.Errorf("abort: %v", werr)
				return werr
			}
		}
		e.coord.Publish(dialog.ID, msg.ID)
		e.metrics.MessagesWritten.Inc()
		e.metrics.SetCursor(dialog.ID, msg.ID)
		summary.MessagesWritten++
		summary.EndCursor = msg.ID
		glog.V(2).Infof("Saved message %d", msg.ID)

		if msg.HasMedia() {
			if err := e.media.Fetch(mediaCtx, msg, layout.Base); err != nil {
				e.metrics.MediaFailed.Inc()
				summary.MediaFailed++
			} else {
				e.metrics.MediaDownloaded.Inc()
				summary.MediaDownloaded++
			}
		}

		if e.coord.Stopped() {
			glog.Infof("stop requested, leaving after message %d", msg.ID)
			summary.Interrupted = true
			return nil
		}
	}

	if e.coord.Stopped() {
		// a stop during a page fetch surfaces as a cancelled fetch.
		summary.Interrupted = true
		return nil
	}
	if err := it.Err(); err != nil {
		return errors.Wrapf(err, "iterate messages of dialog %d", dialog.ID)
	}
	return nil
}

func (e *Engine) saveSummary(layout Layout, summary *Summary) {
	summary.EndTime = time.Now().UTC()
	if err := e.writer.WriteJSON(summary, layout.SummaryFile()); err != nil {
		glog.Errorf("error save run summary: %v", err)
	}
}
