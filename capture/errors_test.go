package capture

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindsDistinct(t *testing.T) {
	t.Parallel()

	kinds := []error{
		ErrDeviceEnumeration,
		ErrDeviceNotFound,
		ErrDeviceConfigUnavailable,
		ErrUnsupportedSampleFormat,
		ErrStreamBuild,
		ErrStreamPlayback,
	}

	for i, a := range kinds {
		for j, b := range kinds {
			if i != j && errors.Is(a, b) {
				t.Fatalf("error kinds %d and %d are not distinguishable: %v / %v", i, j, a, b)
			}
		}
	}
}

func TestErrorWrappingPreservesKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: no input device named %q", ErrDeviceNotFound, "ZOOM F3 Driver")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatal("wrapped error lost its kind")
	}
	if errors.Is(err, ErrDeviceEnumeration) {
		t.Fatal("wrapped error matches the wrong kind")
	}
}
