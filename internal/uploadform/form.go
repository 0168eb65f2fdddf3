package uploadform

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mansoorceksport/fileupload/internal/domain"
)

// Submission is the (name, file) pair sent to the upload endpoint
type Submission struct {
	Name string
	File File
}

// Uploader performs one multipart upload, calling onProgress as request bytes are sent
type Uploader interface {
	Upload(ctx context.Context, sub Submission, onProgress func(sent, total int64)) (*domain.UploadResponse, error)
}

// Form holds one name/file pair and drives its submission
type Form struct {
	uploader Uploader
	urls     ObjectURLs
	render   func(State)

	mu      sync.Mutex
	name    string
	file    *File
	preview Preview
	state   State

	inFlight atomic.Bool
}

// NewForm creates an idle form. render receives every new State and may be nil.
func NewForm(uploader Uploader, urls ObjectURLs, render func(State)) *Form {
	return &Form{
		uploader: uploader,
		urls:     urls,
		render:   render,
	}
}

// State returns the current snapshot
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Preview returns the preview of the active file
func (f *Form) Preview() Preview {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview
}

// SetName updates the name field
func (f *Form) SetName(name string) {
	f.mu.Lock()
	f.name = name
	errs := f.state.FieldErrors.clone()
	if strings.TrimSpace(name) != "" {
		delete(errs, FieldName)
	}
	next := f.touchedLocked(errs)
	f.mu.Unlock()

	f.emit(next)
}

// Select makes file the active file. A rejected file clears the selection and
// is reported under FieldFile. Any previous image preview is revoked.
func (f *Form) Select(file File) (FieldErrors, error) {
	var (
		next    Preview
		active  *File
		fileErr error
	)

	if fileErr = ValidateFile(&file); fileErr == nil {
		active = &file
		switch {
		case strings.HasPrefix(file.MIMEType, "image/"):
			u, err := f.urls.Create(file)
			if err != nil {
				return nil, err
			}
			next = Preview{Kind: PreviewImage, URL: u, Name: file.Name, MIMEType: file.MIMEType}
		case file.MIMEType == domain.MIMEPDF:
			next = Preview{Kind: PreviewDocument, Name: file.Name, MIMEType: file.MIMEType}
		}
	}

	f.mu.Lock()
	previous := f.preview
	f.file = active
	f.preview = next
	errs := f.state.FieldErrors.clone()
	if fileErr != nil {
		if errs == nil {
			errs = FieldErrors{}
		}
		errs[FieldFile] = fileErr.Error()
	} else {
		delete(errs, FieldFile)
	}
	state := f.touchedLocked(errs)
	f.mu.Unlock()

	if err := f.release(previous); err != nil {
		return nil, err
	}
	f.emit(state)

	if fileErr != nil {
		return FieldErrors{FieldFile: fileErr.Error()}, nil
	}
	return nil, nil
}

// Submit validates the form and uploads it. Validation and upload failures are
// reported through the returned State; the error is only set when another
// submission is still outstanding.
func (f *Form) Submit(ctx context.Context) (State, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		return f.State(), domain.ErrSubmissionInFlight
	}
	defer f.inFlight.Store(false)

	f.mu.Lock()
	name := strings.TrimSpace(f.name)
	var file *File
	if f.file != nil {
		copied := *f.file
		file = &copied
	}
	f.mu.Unlock()

	f.emit(State{Phase: PhaseValidating})
	if errs := Validate(name, file); len(errs) > 0 {
		return f.emit(State{Phase: PhaseInvalid, FieldErrors: errs}), nil
	}

	f.emit(State{Phase: PhaseUploading})
	progress := &progressTracker{emit: f.emit}

	resp, err := f.uploader.Upload(ctx, Submission{Name: name, File: *file}, progress.report)
	last := progress.finish()
	if err != nil {
		return f.emit(State{
			Phase:    PhaseFailed,
			Progress: last,
			Outcome: &Outcome{
				Success:         false,
				Message:         FailureMessage(err),
				ProgressPercent: last,
			},
		}), nil
	}

	if last < 100 {
		f.emit(State{Phase: PhaseUploading, Progress: 100})
	}
	return f.emit(State{
		Phase:    PhaseSucceeded,
		Progress: 100,
		Outcome: &Outcome{
			Success:         true,
			Message:         SuccessMessage,
			ProgressPercent: 100,
			Upload:          resp,
		},
	}), nil
}

// Close releases the active preview
func (f *Form) Close() error {
	f.mu.Lock()
	previous := f.preview
	f.preview = Preview{}
	f.file = nil
	f.mu.Unlock()
	return f.release(previous)
}

func (f *Form) release(p Preview) error {
	if p.Kind != PreviewImage || p.URL == "" {
		return nil
	}
	return f.urls.Revoke(p.URL)
}

// touchedLocked returns the state after user interaction: a finished submission
// goes back to idle while the banner stays until the next submit.
func (f *Form) touchedLocked(errs FieldErrors) State {
	next := f.state
	if next.Terminal() {
		next.Phase = PhaseIdle
	}
	if len(errs) == 0 {
		errs = nil
	}
	next.FieldErrors = errs
	return next
}

func (f *Form) emit(s State) State {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()

	if f.render != nil {
		f.render(s)
	}
	return s
}

// progressTracker turns byte counts into monotonic percentages. Reports that
// arrive after the upload returned are dropped.
type progressTracker struct {
	emit func(State) State

	mu   sync.Mutex
	last int
	done bool
}

func (p *progressTracker) report(sent, total int64) {
	pct := Percent(sent, total)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done || pct <= p.last {
		return
	}
	p.last = pct
	p.emit(State{Phase: PhaseUploading, Progress: pct})
}

func (p *progressTracker) finish() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	return p.last
}
