package connectivity

import "sync"

// FakeRadio is a test double whose link state is set by the test.
type FakeRadio struct {
	mu sync.Mutex

	// Connected controls the return value of IsConnected.
	Connected bool
	// ConnectOnRequest makes Connect bring the link up immediately.
	ConnectOnRequest bool
	// ConnectError, if set, will be returned by Connect.
	ConnectError error

	Activated    bool
	ConnectCalls int
	LastSSID     string
}

// NewFakeRadio creates a disconnected FakeRadio.
func NewFakeRadio() *FakeRadio {
	return &FakeRadio{}
}

// Activate records the call.
func (f *FakeRadio) Activate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Activated = true
	return nil
}

// Connect records the request.
func (f *FakeRadio) Connect(ssid, passphrase string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCalls++
	f.LastSSID = ssid
	if f.ConnectError != nil {
		return f.ConnectError
	}
	if f.ConnectOnRequest {
		f.Connected = true
	}
	return nil
}

// IsConnected returns Connected.
func (f *FakeRadio) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// SetConnected changes the link state.
func (f *FakeRadio) SetConnected(c bool) {
	f.mu.Lock()
	f.Connected = c
	f.mu.Unlock()
}

// Calls returns the number of Connect requests.
func (f *FakeRadio) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ConnectCalls
}
