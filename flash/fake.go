//go:build !tinygo

package flash

// Fake is an in-memory Device used by the host tests of the engine and the
// flash adapter. Completions are synchronous (invoked
// directly from the triggering call), which is a legal special case of the
// asynchronous Device contract: the callback still fires exactly once, just
// without a real scheduling delay. Mirrors the host-testable-stub pattern
// used throughout the teacher's codebase (e.g. bindicator_stub.go).
type Fake struct {
	pageSize int
	pages    [][]byte
	client   Client

	FailReads  bool
	FailWrites bool
	FailErases bool
}

// NewFake returns a Fake with the given page size and page count, all pages
// initialized to 0xFF (the typical erased-flash value).
func NewFake(pageSize, pageCount int) *Fake {
	f := &Fake{pageSize: pageSize, pages: make([][]byte, pageCount)}
	for i := range f.pages {
		p := make([]byte, pageSize)
		for j := range p {
			p[j] = 0xFF
		}
		f.pages[i] = p
	}
	return f
}

func (f *Fake) SetClient(c Client) { f.client = c }
func (f *Fake) PageSize() int      { return f.pageSize }

func (f *Fake) ReadPage(pageNumber int, buf []byte) error {
	if f.FailReads {
		f.client.ReadComplete(buf, errFakeFailure)
		return nil
	}
	copy(buf, f.pages[pageNumber])
	f.client.ReadComplete(buf, nil)
	return nil
}

func (f *Fake) WritePage(pageNumber int, buf []byte) error {
	if f.FailWrites {
		f.client.WriteComplete(buf, errFakeFailure)
		return nil
	}
	copy(f.pages[pageNumber], buf)
	f.client.WriteComplete(buf, nil)
	return nil
}

func (f *Fake) ErasePage(pageNumber int) error {
	if f.FailErases {
		f.client.EraseComplete(errFakeFailure)
		return nil
	}
	for i := range f.pages[pageNumber] {
		f.pages[pageNumber][i] = 0xFF
	}
	f.client.EraseComplete(nil)
	return nil
}

// RawPage exposes a page's backing bytes for test assertions.
func (f *Fake) RawPage(pageNumber int) []byte {
	return f.pages[pageNumber]
}
