package cusparse

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Descriptor owns exactly one native descriptor handle, paired with the
// destroy routine that releases it. The release operation is a function value
// captured at construction, so one holder type serves every handle kind.
//
// A Descriptor must not be copied: both copies would own the same handle.
// Free releases the handle exactly once and is safe to call on an
// already-freed (or never-constructed) Descriptor. A failing destroy routine
// indicates a library or driver contract violation and panics rather than
// returning an error.
type Descriptor struct {
	raw     DescriptorHandle
	destroy func(DescriptorHandle) Status
	kind    string
}

// newDescriptor wraps a successfully created raw handle with its destroy routine.
func newDescriptor(kind string, raw DescriptorHandle, destroy func(DescriptorHandle) Status) Descriptor {
	return Descriptor{raw: raw, destroy: destroy, kind: kind}
}

// Raw returns the native handle, for passing into external library routines.
// It panics if the descriptor was already freed.
func (d *Descriptor) Raw() DescriptorHandle {
	if d.raw == 0 {
		exceptions.Panicf("cusparse: %s descriptor used after Free (or never constructed)", d.kind)
	}
	return d.raw
}

// IsValid reports whether the descriptor still owns a live handle.
func (d *Descriptor) IsValid() bool { return d.raw != 0 }

// Free releases the native handle. Only the first call destroys; later calls
// are no-ops. It panics if the native destroy routine fails.
func (d *Descriptor) Free() {
	if d.raw == 0 || d.destroy == nil {
		return
	}
	raw := d.raw
	destroy := d.destroy
	d.raw = 0
	d.destroy = nil
	if status := destroy(raw); !status.Ok() {
		exceptions.Panicf("cusparse: destroying %s descriptor failed: %s", d.kind, status)
	}
}

// checkStatus converts a non-success Status from a native call into an error
// carrying the library's own status text.
func checkStatus(status Status, call string) error {
	if status.Ok() {
		return nil
	}
	return errors.Errorf("cusparse: %s failed: %s", call, status)
}
