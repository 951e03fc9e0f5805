//go:build !tinygo

package entry

// FakeJumper records the address it was asked to jump to, for host tests
// that must observe the jump decision without actually branching away.
type FakeJumper struct {
	Address uint32
	Jumped  bool
}

func (f *FakeJumper) Jump(address uint32) {
	f.Address = address
	f.Jumped = true
}
