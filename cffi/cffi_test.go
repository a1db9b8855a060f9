package cffi

import (
	"errors"
	"runtime"
	"strings"
	"testing"
	"unsafe"
)

func TestNewCString(t *testing.T) {
	c, err := NewCString("hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Release()
	if got := GoString(c.Ptr()); got != "hello" {
		t.Errorf("round trip = %q, want hello", got)
	}
	if b := unsafe.Slice(c.Ptr(), 6); b[5] != 0 {
		t.Error("copy is not NUL-terminated")
	}
}

func TestNewCString_Empty(t *testing.T) {
	c, err := NewCString("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *c.Ptr() != 0 {
		t.Error("empty string must still be NUL-terminated")
	}
}

func TestNewCString_InteriorNUL(t *testing.T) {
	if _, err := NewCString("a\x00b"); !errors.Is(err, ErrInteriorNUL) {
		t.Errorf("expected ErrInteriorNUL, got %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustCString must panic on interior NUL")
		}
	}()
	MustCString("a\x00b")
}

func TestLeakCString(t *testing.T) {
	before := Leaked()
	p, err := LeakCString("kept")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runtime.GC()
	if got := GoString(p); got != "kept" {
		t.Errorf("leaked string = %q", got)
	}
	if Leaked() != before+1 {
		t.Errorf("expected leak count %d, got %d", before+1, Leaked())
	}
	if _, err := LeakCString("x\x00"); err == nil {
		t.Error("expected error for interior NUL")
	}
}

func TestBuffer(t *testing.T) {
	src := []uint16{1, 2, 3}
	b := NewBuffer(src)
	defer b.Release()
	src[0] = 9
	if got := unsafe.Slice(b.Ptr(), 3); got[0] != 1 || got[2] != 3 {
		t.Errorf("buffer must hold its own copy, got %v", got)
	}
	if NewBuffer([]int32(nil)).Ptr() != nil {
		t.Error("empty buffer must yield nil")
	}
}

func TestSlicePtr(t *testing.T) {
	s := []float64{1.5, 2.5}
	if p := SlicePtr(s); p != &s[0] {
		t.Error("expected pointer to first element")
	}
	if SlicePtr([]float64{}) != nil {
		t.Error("expected nil for empty slice")
	}
}

func TestGoString_Nil(t *testing.T) {
	if GoString(nil) != "" {
		t.Error("expected empty string for nil pointer")
	}
}

func TestCallError(t *testing.T) {
	tests := []struct {
		err  *CallError
		is   error
		want string
	}{
		{&CallError{Func: "ProcessMessage", Result: int32(-1)}, nil, "Error in ProcessMessage"},
		{&CallError{Func: "DxLib_Init", Result: int32(-1), Err: ErrInitialize}, ErrInitialize, "initialize error"},
		{&CallError{Func: "DxLib_End", Result: int32(-1), Err: ErrFinalize}, ErrFinalize, "finalize error"},
		{&CallError{Func: "Lookup", Err: ErrNullPointer}, ErrNullPointer, "null pointer"},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("%s: message %q does not contain %q", tt.err.Func, tt.err.Error(), tt.want)
		}
		if tt.is != nil && !errors.Is(tt.err, tt.is) {
			t.Errorf("%s: expected errors.Is(%v)", tt.err.Func, tt.is)
		}
	}
}

func TestLibraryFile(t *testing.T) {
	got := LibraryFile("DxLib_x64")
	var want string
	switch runtime.GOOS {
	case "windows":
		want = "DxLib_x64.dll"
	case "darwin", "ios":
		want = "libDxLib_x64.dylib"
	default:
		want = "libDxLib_x64.so"
	}
	if got != want {
		t.Errorf("LibraryFile = %q, want %q", got, want)
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(t.TempDir(), "cffigen_no_such_library"); err == nil {
		t.Error("expected error opening a missing library")
	}
}

func TestLibrary_Closed(t *testing.T) {
	l := &Library{Name: "gone"}
	if _, err := l.Lookup("f"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("closing an unloaded library: %v", err)
	}
}
