// Package simsparse implements an in-process, pure-Go simulation of the
// cusparse.Library call surface.
//
// It performs no sparse algebra: it hands out synthetic descriptor handles,
// records the parameters behind them, and reproduces the native library's
// status-code behavior -- including CUSPARSE_STATUS_ARCH_MISMATCH for element
// types the simulated device does not support, and
// CUSPARSE_STATUS_NOT_SUPPORTED for API surfaces missing at the simulated
// library version. That makes it the test and benchmark double for the
// descriptor wrappers: device compute capability and library version are
// plain configuration.
//
// The configuration string is a comma-separated key=value list:
//
//	cc=<major>.<minor>    simulated compute capability (default 8.0)
//	cuda=<version>        simulated CUDA toolkit version, e.g. 11.3.1 (default 12.2.0)
//	name=<device name>    simulated device name
//	mem=<size>            simulated device memory, e.g. 40GB
package simsparse

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/google/uuid"
	"github.com/mpalrocks/pytorch/backends/cusparse"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// BackendName to be used in PYTORCH_SPARSE_BACKEND to specify this implementation.
const BackendName = "sim"

// Registers New() as the constructor for the "sim" library.
func init() {
	cusparse.Register(BackendName, func(config string) (cusparse.Library, error) {
		return New(config)
	})
}

// Library simulates the native sparse library for one virtual device.
//
// Handle bookkeeping is internally locked, so concurrent creation/destruction
// of different descriptors is safe; concurrent mutation of a single
// descriptor is the caller's problem, as with the real library.
type Library struct {
	props   cusparse.DeviceProperties
	version cusparse.Version
	caps    cusparse.Capabilities

	handles handleTable
}

// Compile-time check that simsparse.Library implements cusparse.Library.
var _ cusparse.Library = (*Library)(nil)

// New constructs a simulated Library from the given configuration string.
// An empty configuration simulates a current device and toolkit, with every
// capability available.
func New(config string) (*Library, error) {
	lib := &Library{
		props: cusparse.DeviceProperties{
			Name:           "SimSparse Virtual GPU",
			UUID:           uuid.New(),
			Major:          8,
			Minor:          0,
			TotalGlobalMem: 40 * 1024 * 1024 * 1024,
		},
		version: cusparse.Version{Major: 12, Minor: 2, Patch: 0},
	}
	lib.handles.init()

	if config != "" {
		for _, part := range strings.Split(config, ",") {
			key, value, found := strings.Cut(part, "=")
			if !found {
				return nil, errors.Errorf("simsparse: configuration entry %q is not key=value (full config: %q)", part, config)
			}
			switch key {
			case "cc":
				major, minor, err := parseDottedPair(value)
				if err != nil {
					return nil, errors.WithMessagef(err, "simsparse: bad compute capability %q", value)
				}
				lib.props.Major, lib.props.Minor = major, minor
			case "cuda":
				version, err := parseVersion(value)
				if err != nil {
					return nil, errors.WithMessagef(err, "simsparse: bad CUDA version %q", value)
				}
				lib.version = version
			case "name":
				lib.props.Name = value
			case "mem":
				mem, err := humanize.ParseBytes(value)
				if err != nil {
					return nil, errors.Wrapf(err, "simsparse: bad device memory %q", value)
				}
				lib.props.TotalGlobalMem = mem
			default:
				return nil, errors.Errorf("simsparse: unknown configuration key %q (full config: %q)", key, config)
			}
		}
	}
	lib.caps = cusparse.CapabilitiesForVersion(lib.version)
	klog.V(1).Infof("simsparse: new library, device %q (cc %s), CUDA %s",
		lib.props.Name, lib.props.ComputeCapability(), lib.version)
	return lib, nil
}

// Name returns the short name the implementation was registered under.
func (l *Library) Name() string { return BackendName }

// String implements fmt.Stringer.
func (l *Library) String() string { return BackendName }

// Description is a longer description of the library implementation that can be used to pretty-print.
func (l *Library) Description() string {
	return "Simulated cuSPARSE " + l.version.String() + " on " + l.props.Name +
		" (compute capability " + l.props.ComputeCapability() + ")"
}

// Version of the simulated CUDA toolkit.
func (l *Library) Version() cusparse.Version { return l.version }

// Capabilities derived from the simulated CUDA version.
func (l *Library) Capabilities() cusparse.Capabilities { return l.caps }

// DeviceProperties describes the simulated device.
func (l *Library) DeviceProperties() cusparse.DeviceProperties { return l.props }

// NumLiveHandles returns how many descriptor handles are currently alive.
// Useful for leak assertions in tests.
func (l *Library) NumLiveHandles() int { return l.handles.count() }

// Finalize releases all the associated resources immediately, and makes the library invalid.
// Live handles at finalization are reported as leaks.
func (l *Library) Finalize() {
	if leaked := l.handles.count(); leaked > 0 {
		klog.Warningf("simsparse: finalizing library with %d live descriptor handle(s) -- descriptor leak?", leaked)
	}
	l.handles.clear()
}

// archSupports mirrors the device gating of the real routines: reduced
// precision types need a recent enough compute capability, everything else is
// unrestricted.
func (l *Library) archSupports(valueType dtypes.DType) bool {
	cc := 10*l.props.Major + l.props.Minor
	switch valueType {
	case dtypes.Float16:
		return l.props.Major >= 5 && cc >= 53
	case dtypes.BFloat16:
		return cc >= 80
	}
	return true
}

func parseDottedPair(value string) (major, minor int, err error) {
	majorStr, minorStr, found := strings.Cut(value, ".")
	if !found {
		return 0, 0, errors.Errorf("want <major>.<minor>")
	}
	major, err = strconv.Atoi(majorStr)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "bad major %q", majorStr)
	}
	minor, err = strconv.Atoi(minorStr)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "bad minor %q", minorStr)
	}
	return
}

func parseVersion(value string) (cusparse.Version, error) {
	var numbers [3]int
	parts := strings.Split(value, ".")
	if len(parts) > 3 {
		return cusparse.Version{}, errors.Errorf("want <major>[.<minor>[.<patch>]]")
	}
	for i, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil {
			return cusparse.Version{}, errors.Wrapf(err, "bad version component %q", part)
		}
		numbers[i] = number
	}
	return cusparse.Version{Major: numbers[0], Minor: numbers[1], Patch: numbers[2]}, nil
}
