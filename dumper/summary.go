package dumper

import (
	"time"

	"github.com/pborman/uuid"
)

type StepStatus string

const (
	StepSuccess StepStatus = "SUCCESS"
	StepFail    StepStatus = "FAIL"
	StepSkipped StepStatus = "SKIPPED"
)

const (
	stepDialog       = "dialog"
	stepParticipants = "participants"
	stepMessages     = "messages"
	stepResume       = "resume"
)

// Step is a phase of a run and its outcome.
type Step struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Summary of one run, saved as summary.json in the dialog dir.
type Summary struct {
	RunID      string    `json:"run_id"`
	Query      string    `json:"query"`
	DialogID   int64     `json:"dialog_id,omitempty"`
	DialogName string    `json:"dialog_name,omitempty"`
	BaseDir    string    `json:"base_dir,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`

	StartCursor int64 `json:"start_cursor"`
	EndCursor   int64 `json:"end_cursor"`

	ParticipantsWritten int  `json:"participants_written"`
	MessagesWritten     int  `json:"messages_written"`
	MediaDownloaded     int  `json:"media_downloaded"`
	MediaFailed         int  `json:"media_failed"`
	Interrupted         bool `json:"interrupted"`

	Steps []*Step `json:"steps"`
}

func newSummary(query string) *Summary {
	return &Summary{
		RunID:     uuid.New(),
		Query:     query,
		StartTime: time.Now().UTC(),
	}
}

// addStep records the step as SUCCESS if err is nil, FAIL otherwise.
func (s *Summary) addStep(name string, err error) {
	step := &Step{Name: name, Status: StepSuccess}
	if err != nil {
		step.Status = StepFail
		step.Error = err.Error()
	}
	s.Steps = append(s.Steps, step)
}

func (s *Summary) skipStep(name, reason string) {
	s.Steps = append(s.Steps, &Step{Name: name, Status: StepSkipped, Error: reason})
}

// Step returns the named step, nil if it did not run.
func (s *Summary) Step(name string) *Step {
	for _, step := range s.Steps {
		if step.Name == name {
			return step
		}
	}
	return nil
}
