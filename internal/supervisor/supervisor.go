package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"kernelgate/internal/settings"
)

// Jupyter emits a polling notice every few seconds per kernel; keeping it out
// of the log is deliberate.
const pollingNoise = "Polling kernel"

const (
	eventStarted     = "started"
	eventReady       = "ready"
	eventSpawnFailed = "spawn_failed"
	eventExited      = "exited"
	eventClosed      = "closed"
)

// EventSink receives lifecycle events. Implemented by the journal store.
type EventSink interface {
	Record(kind string, port int, detail string) error
}

// OutputFunc receives one captured kernel output line, tagged with the
// kernel port. isErr marks stderr lines.
type OutputFunc func(port int, line string, isErr bool)

// Endpoint is the address the kernel accepts connections on.
type Endpoint struct {
	Host string
	Port int
}

type Options struct {
	Settings settings.Settings
	Logger   *slog.Logger
	Launcher Launcher  // defaults to ExecLauncher
	Events   EventSink // optional
	Output   OutputFunc
}

// Supervisor owns the single kernel instance: it coalesces concurrent start
// requests into one spawn, probes readiness, watches for exit, and exposes
// the active endpoint to the gateway.
type Supervisor struct {
	cfg      settings.Settings
	log      *slog.Logger
	launcher Launcher
	events   EventSink
	output   OutputFunc
	probe    probeFunc

	mu      sync.Mutex
	state   *serverState
	pending []func(error)
	gen     uint64
}

// serverState binds the active port to the process handle. At most one
// instance exists; nil while no kernel is running.
type serverState struct {
	port    int
	handle  Handle
	gen     uint64
	readyAt time.Time
}

func New(opts Options) *Supervisor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	launcher := opts.Launcher
	if launcher == nil {
		launcher = ExecLauncher{}
	}
	out := opts.Output
	if out == nil {
		out = func(port int, line string, isErr bool) {
			if isErr {
				log.Error("kernel output", "port", port, "line", line)
				return
			}
			log.Info("kernel output", "port", port, "line", line)
		}
	}
	return &Supervisor{
		cfg:      opts.Settings,
		log:      log,
		launcher: launcher,
		events:   opts.Events,
		output:   out,
		probe:    waitUntilReady,
	}
}

// RequestStart coalesces concurrent start requests. When a kernel is already
// running the callback fires asynchronously with nil. When a start is in
// flight the callback joins the pending registry. Otherwise it registers
// first and initiates the single spawn. Every registered callback fires
// exactly once, in registration order, with the shared outcome.
func (s *Supervisor) RequestStart(cb func(error)) {
	if cb == nil {
		cb = func(error) {}
	}
	s.mu.Lock()
	if s.state != nil {
		s.mu.Unlock()
		go cb(nil)
		return
	}
	s.pending = append(s.pending, cb)
	first := len(s.pending) == 1
	s.mu.Unlock()
	if first {
		go s.startInstance()
	}
}

// Port returns the active kernel port, or 0 when no kernel is running.
func (s *Supervisor) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0
	}
	return s.state.port
}

// Uptime reports how long the kernel has been ready, zero when not running.
func (s *Supervisor) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0
	}
	return time.Since(s.state.readyAt)
}

// Active reports the endpoint of the running kernel.
func (s *Supervisor) Active() (Endpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return Endpoint{}, false
	}
	return Endpoint{Host: bindHost(s.cfg.LaunchArgs), Port: s.state.port}, true
}

// Close terminates the kernel and resets state; safe to call when nothing is
// running. Termination errors are swallowed, the kernel may already be gone.
func (s *Supervisor) Close() {
	s.mu.Lock()
	st := s.state
	s.state = nil
	s.mu.Unlock()
	if st == nil {
		return
	}
	if err := st.handle.Terminate(); err != nil {
		s.log.Debug("terminate kernel", "port", st.port, "err", err)
	}
	s.recordEvent(eventClosed, st.port, "")
	s.log.Info("kernel closed", "port", st.port)
}

func (s *Supervisor) startInstance() {
	port := s.cfg.KernelPort
	host := bindHost(s.cfg.LaunchArgs)
	args := launchArgs(s.cfg, port)
	gen := s.nextGen()

	s.log.Info("starting kernel", "binary", s.cfg.KernelBinary, "host", host, "port", port)

	handle, err := s.launcher.Launch(s.cfg.KernelBinary, args, func(line string, isErr bool) {
		if strings.Contains(line, pollingNoise) {
			return
		}
		s.output(port, line, isErr)
	})
	if err != nil {
		err = fmt.Errorf("spawn kernel: %w", err)
		s.log.Error("kernel spawn failed", "port", port, "err", err)
		s.recordEvent(eventSpawnFailed, port, err.Error())
		s.finish(err)
		return
	}
	s.recordEvent(eventStarted, port, fmt.Sprintf("pid %d", handle.Pid()))
	go s.watchExit(handle, gen, port)

	if err := s.probe(context.Background(), host, port, s.cfg.Probe.Interval(), s.cfg.Probe.Timeout()); err != nil {
		s.log.Error("kernel never became ready", "port", port, "err", err)
		if termErr := handle.Terminate(); termErr != nil {
			s.log.Debug("terminate after failed readiness", "port", port, "err", termErr)
		}
		s.recordEvent(eventSpawnFailed, port, err.Error())
		s.finish(err)
		return
	}

	s.mu.Lock()
	s.state = &serverState{port: port, handle: handle, gen: gen, readyAt: time.Now()}
	cbs := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.log.Info("kernel ready", "pid", handle.Pid(), "port", port)
	s.recordEvent(eventReady, port, "")
	for _, cb := range cbs {
		cb(nil)
	}
}

// watchExit is the exit observer: an unexpected exit after ready resets the
// shared state so the next start spawns fresh. Exits during startup or after
// Close are expected and only logged at debug.
func (s *Supervisor) watchExit(handle Handle, gen uint64, port int) {
	err := handle.Wait()
	detail := "exit status 0"
	if err != nil {
		detail = err.Error()
	}

	s.mu.Lock()
	active := s.state != nil && s.state.gen == gen
	if active {
		s.state = nil
	}
	s.mu.Unlock()

	if active {
		s.log.Error("kernel exited unexpectedly", "port", port, "detail", detail)
		s.recordEvent(eventExited, port, detail)
		return
	}
	s.log.Debug("kernel process reaped", "port", port, "detail", detail)
}

// finish fails every pending callback with the shared startup error.
func (s *Supervisor) finish(err error) {
	s.mu.Lock()
	cbs := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, cb := range cbs {
		cb(err)
	}
}

func (s *Supervisor) nextGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

func (s *Supervisor) recordEvent(kind string, port int, detail string) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(kind, port, detail); err != nil {
		s.log.Debug("journal record failed", "kind", kind, "err", err)
	}
}
