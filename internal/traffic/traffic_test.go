package traffic

import (
	"testing"
	"time"
)

func TestTracker_ErrorRate(t *testing.T) {
	var tr Tracker

	tr.RecordSuccess()
	tr.RecordSuccess()
	tr.RecordSuccess()
	tr.RecordError()

	errors, total := tr.ErrorRate(time.Minute)
	if errors != 1 {
		t.Errorf("ErrorRate() errors = %d, want 1", errors)
	}
	if total != 4 {
		t.Errorf("ErrorRate() total = %d, want 4", total)
	}
}

func TestTracker_ErrorRate_EmptyWindow(t *testing.T) {
	var tr Tracker

	errors, total := tr.ErrorRate(time.Minute)
	if errors != 0 || total != 0 {
		t.Errorf("ErrorRate() = (%d, %d), want (0, 0)", errors, total)
	}
}

func TestTracker_ErrorRate_ExcludesOutsideWindow(t *testing.T) {
	var tr Tracker
	tr.RecordError()

	// A zero-length window excludes everything recorded before now.
	time.Sleep(5 * time.Millisecond)
	errors, total := tr.ErrorRate(time.Nanosecond)
	if errors != 0 || total != 0 {
		t.Errorf("ErrorRate(tiny window) = (%d, %d), want (0, 0)", errors, total)
	}
}

func TestTracker_Reset(t *testing.T) {
	var tr Tracker
	tr.RecordSuccess()
	tr.RecordError()
	tr.Reset()

	errors, total := tr.ErrorRate(time.Minute)
	if errors != 0 || total != 0 {
		t.Errorf("after Reset() ErrorRate = (%d, %d), want (0, 0)", errors, total)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	Reset()
	defer Reset()

	RecordSuccess()
	RecordError()

	errors, total := ErrorRate(time.Minute)
	if errors != 1 {
		t.Errorf("ErrorRate() errors = %d, want 1", errors)
	}
	if total != 2 {
		t.Errorf("ErrorRate() total = %d, want 2", total)
	}
}

func TestTracker_ConcurrentRecording(t *testing.T) {
	var tr Tracker
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				tr.RecordSuccess()
				tr.RecordError()
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	errors, total := tr.ErrorRate(time.Minute)
	if errors != 1000 {
		t.Errorf("ErrorRate() errors = %d, want 1000", errors)
	}
	if total != 2000 {
		t.Errorf("ErrorRate() total = %d, want 2000", total)
	}
}
