package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ErrReadinessTimeout reports that the kernel never opened its port within
// the probe deadline.
var ErrReadinessTimeout = errors.New("kernel readiness timeout")

type probeFunc func(ctx context.Context, host string, port int, interval, timeout time.Duration) error

// waitUntilReady polls a TCP connect at the given interval until the listener
// accepts, the deadline elapses, or ctx is cancelled. This is the only
// suspension point of the startup path.
func waitUntilReady(ctx context.Context, host string, port int, interval, timeout time.Duration) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("tcp", addr, interval)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s not accepting after %s", ErrReadinessTimeout, addr, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
