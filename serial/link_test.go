package serial

import "testing"

type nopSink struct{}

func (nopSink) Info(string, string, ...any)  {}
func (nopSink) Warn(string, string, ...any)  {}
func (nopSink) Error(string, string, ...any) {}

func TestLinkReportsNotConnectedBeforeOpen(t *testing.T) {
	l := &Link{cfg: Config{Port: "/dev/does-not-exist", Baud: 9600}, tag: "test", log: nopSink{}}

	if _, err := l.ReadByte(); err == nil {
		t.Fatal("expected error reading from an unopened link")
	}
	if err := l.WriteByte('a'); err == nil {
		t.Fatal("expected error writing to an unopened link")
	}
}

func TestOpenOnMissingDeviceReturnsUsableLink(t *testing.T) {
	l := Open("test", Config{Port: "/dev/does-not-exist-domed-test", Baud: 9600}, nopSink{})
	if l == nil {
		t.Fatal("Open returned nil")
	}
	if _, err := l.ReadByte(); err == nil {
		t.Fatal("expected read error against a nonexistent device")
	}
}
