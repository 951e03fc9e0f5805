package flash

import "errors"

// Sentinel errors surfaced by Device implementations, matching the
// sentinel-error style of ota/ota.go (ErrFlashWriteFailed,
// ErrFlashEraseFailed) rather than ad-hoc fmt.Errorf strings.
var (
	ErrReadFailed  = errors.New("flash: read failed")
	ErrWriteFailed = errors.New("flash: write failed")
	ErrEraseFailed = errors.New("flash: erase failed")
)

var errFakeFailure = errors.New("flash: fake device configured to fail")
