package dome

import (
	"sync"

	domeserial "domed/serial"
)

// fakeLink is an in-memory ByteLink used to inject controller/heartbeat
// byte streams under test, without opening a real tty.
type fakeLink struct {
	mu      sync.Mutex
	pending []byte
	written []byte
}

func (f *fakeLink) push(b ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, b...)
}

func (f *fakeLink) ReadByte() (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return 0, domeserial.ErrReadTimeout
	}
	b := f.pending[0]
	f.pending = f.pending[1:]
	return b, nil
}

func (f *fakeLink) WriteByte(b byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, b)
	return nil
}

func (f *fakeLink) writtenBytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.written))
	copy(out, f.written)
	return out
}

type nopSink struct{}

func (nopSink) Info(string, string, ...any)  {}
func (nopSink) Warn(string, string, ...any)  {}
func (nopSink) Error(string, string, ...any) {}
