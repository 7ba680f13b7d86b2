package frame

import "runtime/cgo"

// SessionID is the opaque token a session is identified by across the cgo
// ABI boundary: the uintptr-sized value of a runtime/cgo.Handle, never a
// raw pointer the host could dereference. The host only ever sees this
// value round-tripped through its own PtDspyImageHandle slot; it is
// meaningless to anything but internal/driver's registry.
type SessionID uintptr

// FromHandle converts a newly minted cgo.Handle into the SessionID it
// backs.
func FromHandle(h cgo.Handle) SessionID { return SessionID(h) }

// Handle recovers the cgo.Handle a SessionID was minted from, so it can be
// deleted once the session it names is destroyed.
func (id SessionID) Handle() cgo.Handle { return cgo.Handle(id) }
