package timing

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is matched by every *TimeoutError.
var ErrTimeout = errors.New("timeout")

// TimeoutError reports a poll that ran out of time.
type TimeoutError struct {
	Timeout   time.Duration
	Predicate string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout=%v waiting for %s", e.Timeout, e.Predicate)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Until calls pred once per Tick until it reports ok and returns its value.
// The timestamp compared against the deadline is taken before each call, so
// the call scheduled at the deadline still gets evaluated. An error from
// pred ends the poll immediately.
func Until[T any](s *Scheduler, y Yield, timeout time.Duration, name string, pred func() (T, bool, error)) (T, error) {
	if timeout <= 0 {
		panic(fmt.Sprintf("timing: non-positive timeout %v for %s", timeout, name))
	}
	var zero T
	limit := s.Clock.Now().Add(timeout)
	for {
		stamp := s.Clock.Now()
		v, ok, err := pred()
		if err != nil {
			return zero, err
		}
		if ok {
			return v, nil
		}
		if stamp.After(limit) {
			return zero, &TimeoutError{Timeout: timeout, Predicate: name}
		}
		if err := s.Sleep(y, Tick); err != nil {
			return zero, err
		}
	}
}

// UntilTrue waits for pred to return true.
func UntilTrue(s *Scheduler, y Yield, timeout time.Duration, name string, pred func() (bool, error)) error {
	_, err := Until(s, y, timeout, name, func() (struct{}, bool, error) {
		ok, err := pred()
		return struct{}{}, ok, err
	})
	return err
}

// While waits for pred to return false.
func While(s *Scheduler, y Yield, timeout time.Duration, name string, pred func() (bool, error)) error {
	return UntilTrue(s, y, timeout, name, func() (bool, error) {
		ok, err := pred()
		return !ok, err
	})
}
