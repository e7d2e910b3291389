package sequence

import "testing"

func TestSequencerWriteCycle(t *testing.T) {
	s := New(0)
	if s.Load() != 0 || !Stable(s.Load()) {
		t.Fatalf("expected stable 0, got %d", s.Load())
	}

	if v := s.BeginWrite(); v != 1 || Stable(v) {
		t.Fatalf("expected odd 1 after BeginWrite, got %d", v)
	}
	if s.Next() != 2 {
		t.Errorf("expected Next=2 mid-write, got %d", s.Next())
	}
	if v := s.EndWrite(); v != 2 || !Stable(v) {
		t.Fatalf("expected even 2 after EndWrite, got %d", v)
	}
	if s.Next() != 4 {
		t.Errorf("expected Next=4, got %d", s.Next())
	}
}

func TestNewRoundsOddStartUp(t *testing.T) {
	if v := New(7).Load(); v != 8 {
		t.Fatalf("expected 8, got %d", v)
	}
	if v := New(10).Load(); v != 10 {
		t.Fatalf("expected 10, got %d", v)
	}
}

func TestBeginWriteTwicePanics(t *testing.T) {
	s := New(0)
	s.BeginWrite()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on nested BeginWrite")
		}
	}()
	s.BeginWrite()
}

func TestEndWriteWithoutBeginPanics(t *testing.T) {
	s := New(0)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on EndWrite outside write")
		}
	}()
	s.EndWrite()
}
