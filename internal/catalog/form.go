package catalog

import (
	"context"
	"io"
	"sync"

	"catalogconsole/internal/errs"
	"catalogconsole/internal/models"

	"go.uber.org/zap"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Submission is what a form submit sends: a CreateSubmission or an UpdateSubmission.
type Submission interface {
	submission()
}

// CreateSubmission carries every draft field.
type CreateSubmission struct {
	Draft models.Draft
}

// UpdateSubmission carries only the fields written since the dialog opened.
type UpdateSubmission struct {
	ID    int64
	Patch models.Patch
}

func (CreateSubmission) submission() {}
func (UpdateSubmission) submission() {}

// ProductWriter is the part of the catalog API the form mutates through.
type ProductWriter interface {
	CreateProduct(ctx context.Context, d models.Draft) error
	UpdateProduct(ctx context.Context, id int64, p models.Patch) error
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Refresher re-syncs the product collection after a mutation.
type Refresher interface {
	FetchAll(ctx context.Context) ([]models.Product, error)
}

// FormState is a point-in-time copy of the dialog for rendering.
type FormState struct {
	Open      bool
	Mode      Mode
	Target    models.Product
	Draft     models.Draft
	Changed   []models.Field
	// LastError is the last submit or upload failure of this dialog.
	LastError error
}

// Form is the shared add/update dialog. Every open starts a new lifetime;
// requests started under a lifetime are cancelled when it ends and their
// results are dropped.
type Form struct {
	writer ProductWriter
	store  Refresher
	log    *zap.Logger

	mu       sync.Mutex
	open     bool
	mode     Mode
	target   models.Product
	draft    models.Draft
	changed  map[models.Field]struct{}
	lastErr  error
	epoch    uint64
	lifetime context.Context
	cancel   context.CancelFunc
}

func NewForm(writer ProductWriter, store Refresher, log *zap.Logger) *Form {
	if log == nil {
		log = zap.NewNop()
	}
	return &Form{
		writer:  writer,
		store:   store,
		log:     log,
		changed: map[models.Field]struct{}{},
	}
}

// OpenCreate shows the dialog with an empty draft.
func (f *Form) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openLocked(ModeCreate, models.Product{})
}

// OpenUpdate shows the dialog seeded from target.
func (f *Form) OpenUpdate(target models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openLocked(ModeUpdate, target)
}

// Close hides the dialog and cancels anything still in flight for it.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
}

// SetField writes raw into the draft. In update mode the field is marked
// changed on every write, whether or not the value differs from the seed.
func (f *Form) SetField(field models.Field, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return errs.ErrDialogClosed
	}
	if err := f.draft.Set(field, raw); err != nil {
		return err
	}
	if f.mode == ModeUpdate {
		f.changed[field] = struct{}{}
	}
	return nil
}

// SetImage stores an uploaded image URI, replacing any previous one.
func (f *Form) SetImage(uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return errs.ErrDialogClosed
	}
	f.setImageLocked(uri)
	return nil
}

// UploadImage uploads r and, if the dialog that started it is still open,
// applies the returned URI. Other field edits made meanwhile are kept.
func (f *Form) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return "", errs.ErrDialogClosed
	}
	epoch := f.epoch
	callCtx, stop := f.joinLocked(ctx)
	f.mu.Unlock()
	defer stop()

	uri, err := f.writer.UploadImage(callCtx, filename, r)
	if err != nil {
		f.log.Error("error uploading file", zap.String("filename", filename), zap.Error(err))
		return "", f.fail(epoch, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open || f.epoch != epoch {
		f.log.Info("dropping upload for closed dialog", zap.String("uri", uri))
		return "", errs.ErrDialogClosed
	}
	f.setImageLocked(uri)
	f.lastErr = nil
	return uri, nil
}

// Submit sends the current submission. On success the store is re-fetched
// and the dialog closed; on failure the dialog and draft are kept for a retry.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return errs.ErrDialogClosed
	}
	sub := f.submissionLocked()
	epoch := f.epoch
	callCtx, stop := f.joinLocked(ctx)
	f.mu.Unlock()
	defer stop()

	if err := f.send(callCtx, sub); err != nil {
		f.log.Error("error adding/updating product", zap.Error(err))
		return f.fail(epoch, err)
	}
	if f.stale(epoch) {
		f.log.Info("dropping submit result for closed dialog")
		return errs.ErrDialogClosed
	}

	// the refresh failing is not a submit failure; the store logs it
	_, _ = f.store.FetchAll(ctx)

	f.mu.Lock()
	if f.epoch == epoch {
		f.closeLocked()
	}
	f.mu.Unlock()
	return nil
}

// Submission returns what Submit would send right now.
func (f *Form) Submission() Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submissionLocked()
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := FormState{
		Open:      f.open,
		Mode:      f.mode,
		Target:    f.target,
		Draft:     f.draft,
		LastError: f.lastErr,
	}
	for _, field := range models.Fields {
		if _, ok := f.changed[field]; ok {
			st.Changed = append(st.Changed, field)
		}
	}
	return st
}

func (f *Form) send(ctx context.Context, sub Submission) error {
	switch s := sub.(type) {
	case CreateSubmission:
		return f.writer.CreateProduct(ctx, s.Draft)
	case UpdateSubmission:
		return f.writer.UpdateProduct(ctx, s.ID, s.Patch)
	}
	return errs.New(errs.KindValidation, "submit", "unknown submission")
}

func (f *Form) submissionLocked() Submission {
	if f.mode == ModeUpdate {
		patch := make(models.Patch, len(f.changed))
		for field := range f.changed {
			patch[field] = f.draft.Value(field)
		}
		return UpdateSubmission{ID: f.target.ID, Patch: patch}
	}
	return CreateSubmission{Draft: f.draft}
}

func (f *Form) setImageLocked(uri string) {
	f.draft.Image = uri
	f.changed[models.FieldImage] = struct{}{}
}

func (f *Form) openLocked(mode Mode, target models.Product) {
	f.endLifetimeLocked()
	f.mode = mode
	f.target = target
	if mode == ModeUpdate {
		f.draft = target.Draft()
	} else {
		f.draft = models.Draft{}
	}
	f.changed = map[models.Field]struct{}{}
	f.lastErr = nil
	f.epoch++
	f.lifetime, f.cancel = context.WithCancel(context.Background())
	f.open = true
}

func (f *Form) closeLocked() {
	f.endLifetimeLocked()
	f.open = false
	f.changed = map[models.Field]struct{}{}
	f.lastErr = nil
}

func (f *Form) endLifetimeLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// joinLocked derives a context that ends with either ctx or the current dialog lifetime.
func (f *Form) joinLocked(ctx context.Context) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(f.lifetime, cancel)
	return callCtx, func() {
		stopAfter()
		cancel()
	}
}

// fail records err against the dialog that started the request, or reports
// the dialog gone if it has since closed.
func (f *Form) fail(epoch uint64, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open || f.epoch != epoch {
		return errs.ErrDialogClosed
	}
	f.lastErr = err
	return err
}

func (f *Form) stale(epoch uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.open || f.epoch != epoch
}
