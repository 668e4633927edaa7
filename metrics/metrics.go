package metrics

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chatdump"

// Dump holds the counters of one dump run, on a private registry.
// The process is short lived, so the metrics are written to a node-exporter textfile instead of served.
type Dump struct {
	registry *prometheus.Registry

	MessagesWritten     prometheus.Counter
	MessageWriteErrors  prometheus.Counter
	ParticipantsWritten prometheus.Counter
	ParticipantsErrors  prometheus.Counter
	MediaDownloaded     prometheus.Counter
	MediaFailed         prometheus.Counter
	Cursor              *prometheus.GaugeVec
	Interrupted         prometheus.Gauge
	LastRunTimestamp    prometheus.Gauge
	RunDuration         prometheus.Gauge
}

func NewDump() *Dump {
	d := &Dump{
		registry: prometheus.NewRegistry(),
		MessagesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_written_total",
			Help:      "Number of message files written.",
		}),
		MessageWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_write_errors_total",
			Help:      "Number of message files that could not be written.",
		}),
		ParticipantsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_written_total",
			Help:      "Number of participant files written.",
		}),
		ParticipantsErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_errors_total",
			Help:      "Number of failed participant listings or writes.",
		}),
		MediaDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_downloaded_total",
			Help:      "Number of media files downloaded.",
		}),
		MediaFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_failed_total",
			Help:      "Number of media downloads that failed.",
		}),
		Cursor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resume_cursor",
			Help:      "Last fully processed message id per dialog.",
		}, []string{"dialog_id"}),
		Interrupted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "interrupted",
			Help:      "1 if the last run was interrupted by a signal.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
	}

	d.registry.MustRegister(
		d.MessagesWritten,
		d.MessageWriteErrors,
		d.ParticipantsWritten,
		d.ParticipantsErrors,
		d.MediaDownloaded,
		d.MediaFailed,
		d.Cursor,
		d.Interrupted,
		d.LastRunTimestamp,
		d.RunDuration,
	)
	return d
}

func (d *Dump) SetCursor(dialogID, messageID int64) {
	d.Cursor.WithLabelValues(strconv.FormatInt(dialogID, 10)).Set(float64(messageID))
}

// Finish records the end of a run.
func (d *Dump) Finish(start, end time.Time, interrupted bool) {
	d.LastRunTimestamp.Set(float64(end.Unix()))
	d.RunDuration.Set(end.Sub(start).Seconds())
	if interrupted {
		d.Interrupted.Set(1)
	} else {
		d.Interrupted.Set(0)
	}
}

// WriteTextfile writes all metrics in text exposition format, atomically.
func (d *Dump) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, d.registry); err != nil {
		return errors.Wrapf(err, "metrics: write `%s`", path)
	}
	return nil
}
