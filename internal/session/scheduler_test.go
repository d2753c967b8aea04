package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRefreshScheduler_FiresOnce(t *testing.T) {
	fired := make(chan string, 1)
	s := NewRefreshScheduler(func(refreshToken string) {
		fired <- refreshToken
	})
	defer s.Disarm()

	s.Arm(10*time.Millisecond, "rt-1")

	select {
	case got := <-fired:
		if got != "rt-1" {
			t.Errorf("fired with %q, expected rt-1", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timer never fired")
	}
	if s.Armed() {
		t.Error("expected scheduler to disarm after firing")
	}
}

func TestRefreshScheduler_ArmIsSingleFlight(t *testing.T) {
	var fires atomic.Int32
	fired := make(chan string, 2)
	s := NewRefreshScheduler(func(refreshToken string) {
		fires.Add(1)
		fired <- refreshToken
	})
	defer s.Disarm()

	s.Arm(20*time.Millisecond, "rt-first")
	// While armed, further Arm calls are ignored.
	s.Arm(time.Millisecond, "rt-second")

	select {
	case got := <-fired:
		if got != "rt-first" {
			t.Errorf("fired with %q, expected the first arm to win", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timer never fired")
	}

	time.Sleep(50 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Errorf("fired %d times, expected exactly once", got)
	}
}

func TestRefreshScheduler_NegativeDelayFiresImmediately(t *testing.T) {
	fired := make(chan string, 1)
	s := NewRefreshScheduler(func(refreshToken string) {
		fired <- refreshToken
	})
	defer s.Disarm()

	s.Arm(-time.Hour, "rt-overdue")

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected an overdue timer to fire immediately")
	}
}

func TestRefreshScheduler_Disarm(t *testing.T) {
	fired := make(chan string, 1)
	s := NewRefreshScheduler(func(refreshToken string) {
		fired <- refreshToken
	})

	s.Arm(20*time.Millisecond, "rt-1")
	s.Disarm()
	// Disarm is idempotent, also on a never-armed scheduler.
	s.Disarm()

	if s.Armed() {
		t.Error("expected scheduler to be disarmed")
	}
	select {
	case <-fired:
		t.Error("timer fired after disarm")
	case <-time.After(100 * time.Millisecond):
	}

	// Disarm frees the slot for the next arm.
	s.Arm(time.Millisecond, "rt-2")
	select {
	case got := <-fired:
		if got != "rt-2" {
			t.Errorf("fired with %q, expected rt-2", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("re-armed timer never fired")
	}
}
