package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	readerSize = 64 * 1024
	lineBuffer = 256

	// MaxLineBytes caps a delivered line. The remainder of a longer line is
	// discarded and reading continues with the next line.
	MaxLineBytes = 1024 * 1024

	// DefaultGrace bounds each termination phase.
	DefaultGrace = 3 * time.Second
)

// ErrTerminationTimeout is returned by Terminate when the producer outlives
// both the polite and the forced termination phases.
var ErrTerminationTimeout = errors.New("producer did not exit after termination")

// Command describes the producer to launch.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Env   []string  // appended to the current environment
	Stdin io.Reader // nil reads from the null device
}

func (c Command) String() string {
	return fmt.Sprint(append([]string{c.Name}, c.Args...))
}

// ExitStatus is how the producer ended. Code follows the shell convention
// of 128+N for a process killed by signal N.
type ExitStatus struct {
	Code   int
	Signal string
	Err    error // set when waiting failed for a reason other than a non-zero exit
}

// Option customizes Spawn.
type Option func(*Process)

// WithGrace sets the duration of each termination phase.
func WithGrace(d time.Duration) Option {
	return func(p *Process) {
		if d > 0 {
			p.grace = d
		}
	}
}

// WithLogger routes supervisor diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Process) {
		if logger != nil {
			p.log = logger
		}
	}
}

// Process is a running producer. Its output is delivered as lines on the
// Stdout and Stderr channels, each closed at end of stream.
type Process struct {
	cmd   *exec.Cmd
	grace time.Duration
	log   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	stdout chan string
	stderr chan string
	exit   chan ExitStatus
	done   chan struct{}

	mu     sync.Mutex
	status ExitStatus

	termOnce sync.Once
	termErr  error

	// Pid of the producer.
	Pid int
}

// Spawn starts the producer and begins pumping its output. An error means
// the producer never ran.
func Spawn(c Command, opts ...Option) (*Process, error) {
	if c.Name == "" {
		return nil, errors.New("empty producer command")
	}

	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	// The pipes are owned here rather than through cmd.StdoutPipe so the
	// producer can be reaped while its output is still being read.
	stdout, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdout, stdoutW)
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	err = cmd.Start()
	closeAll(stdoutW, stderrW)
	if err != nil {
		closeAll(stdout, stderr)
		return nil, fmt.Errorf("start %s: %w", c.Name, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Process{
		cmd:    cmd,
		grace:  DefaultGrace,
		log:    slog.New(slog.DiscardHandler),
		ctx:    ctx,
		cancel: cancel,
		stdout: make(chan string, lineBuffer),
		stderr: make(chan string, lineBuffer),
		exit:   make(chan ExitStatus, 1),
		done:   make(chan struct{}),
		Pid:    cmd.Process.Pid,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log.Info("producer started", "pid", p.Pid, "argv", c.String(), "dir", c.Dir)

	go p.supervise(stdout, stderr)
	return p, nil
}

// Stdout yields primary-stream lines in order.
func (p *Process) Stdout() <-chan string { return p.stdout }

// Stderr yields secondary-stream lines in order.
func (p *Process) Stderr() <-chan string { return p.stderr }

// Exit delivers the exit status exactly once, after both line channels are
// closed, and is then closed.
func (p *Process) Exit() <-chan ExitStatus { return p.exit }

// Done is closed once the producer has been reaped.
func (p *Process) Done() <-chan struct{} { return p.done }

// Status returns the exit status. It is only meaningful after Done.
func (p *Process) Status() ExitStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Process) supervise(stdout, stderr *os.File) {
	defer closeAll(stdout, stderr)

	pumped := make(chan error, 1)
	go func() {
		var g errgroup.Group
		g.Go(func() error { return p.pump("stdout", p.exitAware(stdout), p.stdout) })
		g.Go(func() error { return p.pump("stderr", p.exitAware(stderr), p.stderr) })
		pumped <- g.Wait()
	}()

	status := exitStatus(p.cmd.Wait())
	p.log.Info("producer exited", "pid", p.Pid, "code", status.Code, "signal", status.Signal)

	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	close(p.done)

	// Wake reads that were already blocked when the producer exited.
	deadline := time.Now().Add(p.grace)
	_ = stdout.SetReadDeadline(deadline)
	_ = stderr.SetReadDeadline(deadline)

	if err := <-pumped; err != nil {
		p.log.Warn("producer output truncated", "pid", p.Pid, "error", err)
	}

	p.exit <- status
	close(p.exit)
	p.cancel()
}

// exitAwareReader reads a producer pipe. Once the producer has exited, a
// read that waits longer than idle fails with os.ErrDeadlineExceeded. This
// bounds the wait when a descendant inherited the pipe and keeps it open.
type exitAwareReader struct {
	f    *os.File
	done <-chan struct{}
	idle time.Duration
}

func (p *Process) exitAware(f *os.File) io.Reader {
	return exitAwareReader{f: f, done: p.done, idle: p.grace}
}

func (r exitAwareReader) Read(b []byte) (int, error) {
	select {
	case <-r.done:
		_ = r.f.SetReadDeadline(time.Now().Add(r.idle))
	default:
	}
	return r.f.Read(b)
}

// pump forwards lines until EOF. Lines longer than MaxLineBytes are cut.
// Once the process is being terminated lines are discarded, but the pipe is
// still drained so the producer never blocks on a full pipe.
func (p *Process) pump(name string, r io.Reader, out chan<- string) error {
	defer close(out)

	br := bufio.NewReaderSize(r, readerSize)
	var (
		line      []byte
		truncated bool
	)
	emit := func() {
		text := strings.TrimSuffix(string(line), "\r")
		if truncated {
			text = strings.ToValidUTF8(text, "")
			p.log.Warn("producer line truncated", "pid", p.Pid, "stream", name, "limit", MaxLineBytes)
		}
		line, truncated = line[:0], false

		select {
		case out <- text:
		case <-p.ctx.Done():
		}
	}

	for {
		chunk, more, err := br.ReadLine()
		if err != nil {
			if len(line) > 0 || truncated {
				emit()
			}
			switch {
			case errors.Is(err, io.EOF):
				return nil
			case errors.Is(err, os.ErrDeadlineExceeded):
				p.log.Warn("producer output still open after exit, closing", "pid", p.Pid, "stream", name)
				return nil
			}
			_, _ = io.Copy(io.Discard, r)
			return fmt.Errorf("read %s: %w", name, err)
		}

		if room := MaxLineBytes - len(line); len(chunk) > room {
			line = append(line, chunk[:room]...)
			truncated = true
		} else {
			line = append(line, chunk...)
		}
		if !more {
			emit()
		}
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func exitStatus(err error) ExitStatus {
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return ExitStatus{Code: 1, Err: err}
	}
	var state *os.ProcessState
	if exitErr != nil {
		state = exitErr.ProcessState
	}
	if state == nil {
		return ExitStatus{}
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ExitStatus{Code: 128 + int(ws.Signal()), Signal: ws.Signal().String()}
	}
	return ExitStatus{Code: state.ExitCode()}
}

// Terminate stops the producer: SIGTERM, then SIGKILL after the grace
// period. It returns ErrTerminationTimeout if the process is still running
// after a second grace period. Calling it more than once, or after the
// producer exited on its own, is harmless.
func (p *Process) Terminate() error {
	p.termOnce.Do(func() { p.termErr = p.terminate() })
	return p.termErr
}

func (p *Process) terminate() error {
	p.cancel()

	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.log.Warn("signal producer", "pid", p.Pid, "error", err)
	}
	if p.wait(p.grace) {
		return nil
	}

	p.log.Warn("producer ignored SIGTERM, killing", "pid", p.Pid, "grace", p.grace)
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.log.Warn("kill producer", "pid", p.Pid, "error", err)
	}
	if p.wait(p.grace) {
		return nil
	}
	p.log.Error("producer still running after kill", "pid", p.Pid)
	return ErrTerminationTimeout
}

func (p *Process) wait(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}
