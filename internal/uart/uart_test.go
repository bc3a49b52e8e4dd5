package uart

import "testing"

type fakeBridge struct {
	pending []byte
	written []byte
	now     uint64
}

func (f *fakeBridge) KBHit() bool { return len(f.pending) > 0 }

func (f *fakeBridge) ReadByte() (byte, bool) {
	if len(f.pending) == 0 {
		return 0, false
	}
	b := f.pending[0]
	f.pending = f.pending[1:]
	return b, true
}

func (f *fakeBridge) WriteByte(b byte) { f.written = append(f.written, b) }

func (f *fakeBridge) NowMicros() uint64 { return f.now }

func TestLoadDataConsumesPendingByte(t *testing.T) {
	b := &fakeBridge{pending: []byte{'A'}}
	u := New(b, nil)

	if got := u.Load(RegData); got != uint32('A') {
		t.Fatalf("got %#x, want 'A'", got)
	}
	if got := u.Load(RegData); got != 0 {
		t.Fatalf("second load = %#x, want 0 once drained", got)
	}
}

func TestLineStatusReflectsKeyWaiting(t *testing.T) {
	b := &fakeBridge{}
	u := New(b, nil)

	if got := u.Load(RegLineStatus); got != 0x60 {
		t.Fatalf("line status = %#x, want 0x60 with no key waiting", got)
	}

	b.pending = []byte{'x'}
	if got := u.Load(RegLineStatus); got != 0x61 {
		t.Fatalf("line status = %#x, want 0x61 with a key waiting", got)
	}
}

func TestStoreWritesLowByteToHost(t *testing.T) {
	b := &fakeBridge{}
	u := New(b, nil)

	u.Store(RegData, 0x1_48) // high bits must be discarded
	if len(b.written) != 1 || b.written[0] != 0x48 {
		t.Fatalf("written = %v, want [0x48]", b.written)
	}
}

func TestStoreToOtherAddressIgnored(t *testing.T) {
	b := &fakeBridge{}
	u := New(b, nil)

	u.Store(0x1000_0004, 0xff)
	if len(b.written) != 0 {
		t.Fatalf("expected no write, got %v", b.written)
	}
}
