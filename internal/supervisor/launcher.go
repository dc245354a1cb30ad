package supervisor

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// Handle is an opaque reference to a launched kernel process. Owned
// exclusively by the supervisor.
type Handle interface {
	Pid() int
	// Terminate sends a graceful termination signal. Best-effort: the
	// process may already be gone.
	Terminate() error
	// Wait blocks until the process exits. Must be called exactly once.
	Wait() error
}

// Launcher abstracts process creation so the supervisor's coalescing and
// lifecycle logic is testable without spawning real kernels.
type Launcher interface {
	Launch(binary string, args []string, onLine func(line string, isErr bool)) (Handle, error)
}

// ExecLauncher spawns the kernel with os/exec, inheriting the current
// environment, and feeds stdout/stderr line-by-line into onLine.
type ExecLauncher struct{}

func (ExecLauncher) Launch(binary string, args []string, onLine func(line string, isErr bool)) (Handle, error) {
	cmd := exec.Command(binary, args...)
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go scanLines(stdout, false, onLine)
	go scanLines(stderr, true, onLine)
	return &execHandle{cmd: cmd}, nil
}

func scanLines(r io.Reader, isErr bool, onLine func(line string, isErr bool)) {
	if onLine == nil {
		_, _ = io.Copy(io.Discard, r)
		return
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		onLine(sc.Text(), isErr)
	}
}

type execHandle struct {
	cmd *exec.Cmd
}

func (h *execHandle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

func (h *execHandle) Terminate() error {
	if h.cmd.Process == nil {
		return errors.New("process not started")
	}
	return h.cmd.Process.Signal(syscall.SIGTERM)
}

func (h *execHandle) Wait() error {
	return h.cmd.Wait()
}
