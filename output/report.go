package output

import (
	"errors"
	"io"
	"sync"

	"github.com/Alia5/padmapper/device/keyboard"
	"github.com/Alia5/padmapper/device/mouse"
	"github.com/Alia5/padmapper/input"
)

// ReportSink folds sink calls into HID keyboard and mouse reports and writes
// one frame per changed device on every Sync. Codes neither report can carry
// (gamepad buttons, exotic axes) are dropped.
type ReportSink struct {
	mu     sync.Mutex
	kbdW   io.Writer
	mouseW io.Writer
	kbd    keyboard.InputState
	mouse  mouse.InputState

	kbdDirty, mouseDirty bool
	closed               bool
}

// NewReportSink writes keyboard frames to kbd and mouse frames to m. Either
// writer may be nil to discard that device.
func NewReportSink(kbd, m io.Writer) *ReportSink {
	return &ReportSink{kbdW: kbd, mouseW: m}
}

func (r *ReportSink) KeyDown(code input.KeyCode) error { return r.setKey(code, true) }
func (r *ReportSink) KeyUp(code input.KeyCode) error   { return r.setKey(code, false) }

func (r *ReportSink) setKey(code input.KeyCode, down bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.mouse.SetButton(code, down) {
		r.mouseDirty = true
		return nil
	}
	if r.kbd.Apply(code, down) {
		r.kbdDirty = true
	}
	return nil
}

func (r *ReportSink) MoveRel(axis input.RelAxis, value int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.mouse.AddMotion(axis, value) {
		r.mouseDirty = true
	}
	return nil
}

func (r *ReportSink) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	var errs []error
	if r.kbdDirty {
		r.kbdDirty = false
		errs = append(errs, writeFrame(r.kbdW, &r.kbd))
	}
	if r.mouseDirty {
		r.mouseDirty = false
		errs = append(errs, writeFrame(r.mouseW, &r.mouse))
		r.mouse.ClearMotion()
	}
	return errors.Join(errs...)
}

// Close closes both writers when they are io.Closers.
func (r *ReportSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	var errs []error
	for _, w := range []io.Writer{r.kbdW, r.mouseW} {
		if c, ok := w.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

type frame interface{ MarshalBinary() ([]byte, error) }

func writeFrame(w io.Writer, f frame) error {
	if w == nil {
		return nil
	}
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
