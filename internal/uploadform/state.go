package uploadform

import (
	"errors"
	"math"

	"github.com/mansoorceksport/fileupload/internal/domain"
)

// Banner messages
const (
	SuccessMessage        = "File uploaded successfully!"
	GenericFailureMessage = "Upload failed"
)

// Phase of the current submission
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseInvalid
	PhaseUploading
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseInvalid:
		return "invalid"
	case PhaseUploading:
		return "uploading"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result banner of a finished submission
type Outcome struct {
	Success         bool
	Message         string
	ProgressPercent int
	Upload          *domain.UploadResponse
}

// State is one immutable snapshot of the form
type State struct {
	Phase       Phase
	Progress    int
	FieldErrors FieldErrors
	Outcome     *Outcome
}

// Busy reports whether the submit control must be disabled
func (s State) Busy() bool {
	return s.Phase == PhaseValidating || s.Phase == PhaseUploading
}

// Terminal reports whether the submission has finished one way or another
func (s State) Terminal() bool {
	return s.Phase == PhaseInvalid || s.Phase == PhaseSucceeded || s.Phase == PhaseFailed
}

// Percent is round(sent*100/total) clamped to 0..100
func Percent(sent, total int64) int {
	if total <= 0 || sent <= 0 {
		return 0
	}
	p := int(math.Round(float64(sent) * 100 / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}

// FailureMessage picks the banner text for a failed submission:
// the server's error field when it sent one, otherwise a generic message.
func FailureMessage(err error) string {
	var respErr *domain.ResponseError
	if errors.As(err, &respErr) && respErr.Message != "" {
		return respErr.Message
	}
	return GenericFailureMessage
}
