// Package flash defines the page-oriented flash device contract the engine
// and the FlashLargeToSmall adapter depend on, plus a host-testable fake and
// (under the tinygo tag) a ROM-call-backed implementation.
package flash

// Client receives the asynchronous completion callbacks for a Device. Each
// Device operation issues at most one outstanding callback; the engine (or
// an adapter sitting between the engine and the device) is the unique
// owner of the buffer passed into ReadComplete/WriteComplete until it
// returns, hands it to another async call, or replaces it into a slot.
type Client interface {
	ReadComplete(page []byte, err error)
	WriteComplete(page []byte, err error)
	EraseComplete(err error)
}

// Device is a page-oriented flash service with asynchronous completion.
// Implementations issue the requested operation and, from some later
// callback context, invoke the corresponding Client method exactly once.
// At most one operation may be outstanding at a time (§5).
type Device interface {
	SetClient(c Client)
	// PageSize is the device's native hardware page size in bytes.
	PageSize() int
	// ReadPage reads page pageNumber (of PageSize bytes) into buf and
	// later calls Client.ReadComplete(buf, err).
	ReadPage(pageNumber int, buf []byte) error
	// WritePage writes buf (PageSize bytes) to page pageNumber and later
	// calls Client.WriteComplete(buf, err).
	WritePage(pageNumber int, buf []byte) error
	// ErasePage erases page pageNumber and later calls
	// Client.EraseComplete(err).
	ErasePage(pageNumber int) error
}
