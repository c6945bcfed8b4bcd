package regexp2

import (
	"testing"
	"time"
)

func init() {
	// a 1ms tick keeps the timeout tests quick; benchmarks pay for it
	SetTimeoutCheckPeriod(time.Millisecond)
}

func TestDeadlineExpiry(t *testing.T) {
	// deadlines are only as fine as the clock, so every delay spans several ticks
	delays := []time.Duration{clockPeriod * 10, clockPeriod * 20, clockPeriod * 50}
	for _, delay := range delays {
		delay := delay
		t.Run(delay.String(), func(t *testing.T) {
			t.Parallel()
			start := time.Now()
			d := makeDeadline(delay)
			if d.reached() {
				t.Fatalf("deadline (%v) reached immediately", delay)
			}

			time.Sleep(delay / 2)
			if d.reached() {
				// a slow scheduler may have slept us past the deadline
				if took := time.Since(start); took < delay-2*clockPeriod {
					t.Fatalf("deadline (%v) reached early, after %v", delay, took)
				}
			}

			time.Sleep(delay/2 + 3*clockPeriod)
			if !d.reached() {
				t.Fatalf("deadline (%v) not reached after %v", delay, time.Since(start))
			}
		})
	}
}

func TestDurationToTicksDoesNotOverflow(t *testing.T) {
	if got := durationToTicks(time.Duration(1<<63 - 1)); got <= 0 {
		t.Fatalf("Wanted a positive tick count\nGot '%v'", got)
	}
	if want, got := fasttime(0), durationToTicks(0); want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
}

func TestStopTimeoutClock(t *testing.T) {
	r := MustCompile(".", 0)
	r.MatchTimeout = 10 * time.Second
	if _, err := r.MatchString("a"); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	StopTimeoutClock()
	if limit, took := 2*clockPeriod, time.Since(start); took > limit {
		t.Errorf("stopping the clock took %v, wanted under %v", took, limit)
	}

	fast.mu.Lock()
	running := fast.running
	fast.mu.Unlock()
	if running {
		t.Error("clock still running after StopTimeoutClock")
	}
}

// a clock that stopped long ago must not hand out deadlines based on the
// time it stopped at
func TestDeadlineAfterClockStopped(t *testing.T) {
	extendClock(0)
	StopTimeoutClock()

	time.Sleep(10 * clockPeriod)
	now := durationToTicks(time.Since(fast.start))

	timeout := 5 * clockPeriod
	d := makeDeadline(timeout)
	if cur := fast.current.read(); cur < now {
		t.Errorf("clock not caught up: current %v, wanted at least %v", cur, now)
	}
	if least := now + durationToTicks(timeout); d < least {
		t.Errorf("deadline %v is earlier than %v", d, least)
	}
}

func TestClockIdlesBetweenTimedMatches(t *testing.T) {
	const input = "[10000] [Dec 15, 2012 1:42:43 AM] com.dev.log.LoggingExample main"
	re := MustCompile(`\[(\d+)\]\s+\[([\s\S]+)\]\s+([\s\S]+).*`, RE2)
	// timeouts are checked loosely, anything under ~5 ticks is flaky
	re.MatchTimeout = 5 * clockPeriod

	if _, err := re.FindStringMatch(input); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// long enough for the background goroutine to wind down
	time.Sleep(time.Second + 2*re.MatchTimeout)
	if left := fast.clockEnd.read() - fast.current.read(); left > 0 {
		t.Fatalf("clock still running, %v ticks left", left)
	}

	// a restarted clock must not time out quick matches
	for i := 0; i < 1000; i++ {
		if _, err := re.FindStringMatch(input); err != nil {
			t.Fatalf("iteration %v: unexpected error %v", i, err)
		}
	}
}
