package plugin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"screenrecall/pkg/evidence"
	"screenrecall/pkg/evidence/ledger"
)

// DefaultTimeout is the per-call timeout when a manifest does not specify
// one (spec.md §4.4 "per-call timeout (default 30s)").
const DefaultTimeout = 30 * time.Second

// Process manages one running plugin subprocess: a restricted-environment
// os/exec launch plus the length-prefixed stdin/stdout RPC, grounded on the
// teacher's context.WithTimeout + goroutine-with-errChan idiom in
// pkg/server/server.go's Start (errChan/ctx.Done() select), here applied
// per-RPC-call instead of per-server-lifetime.
type Process struct {
	manifest *Manifest
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   io.ReadCloser
	logger   *slog.Logger
	ledger   *ledger.Ledger
}

// Start launches the plugin subprocess with an environment that holds only
// PATH=/usr/bin:/bin, so none of the daemon's environment variables (such as
// credentials) reach it. The working directory is not set and is inherited
// from the daemon.
func Start(m *Manifest, l *ledger.Ledger) (*Process, error) {
	cmd := exec.Command(m.Path)
	cmd.Env = []string{"PATH=/usr/bin:/bin"}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("plugin: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("plugin: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, evidence.NewPluginCrashError(m.PluginID, -1, err)
	}

	return &Process{
		manifest: m,
		cmd:      cmd,
		stdin:    stdin,
		stdout:   stdout,
		logger:   slog.Default().With("component", "plugin.host", "plugin_id", m.PluginID),
		ledger:   l,
	}, nil
}

// Call sends req to the plugin and waits for its Response, enforcing the
// manifest's (or DefaultTimeout's) per-call deadline. On timeout the
// process is killed and an audit.plugin_timeout ledger entry is written
// (spec.md §4.4).
func (p *Process) Call(ctx context.Context, req *Request) (*Response, error) {
	timeout := DefaultTimeout
	if p.manifest.TimeoutSec > 0 {
		timeout = time.Duration(p.manifest.TimeoutSec) * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		resp *Response
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		if err := writeFrame(p.stdin, req); err != nil {
			resultCh <- result{err: err}
			return
		}
		var resp Response
		if err := readFrame(p.stdout, &resp); err != nil {
			resultCh <- result{err: err}
			return
		}
		resultCh <- result{resp: &resp}
	}()

	select {
	case <-callCtx.Done():
		p.logger.Warn("plugin call timed out", "capability", req.Capability, "timeout", timeout)
		_ = p.cmd.Process.Kill()
		if p.ledger != nil {
			_, _ = p.ledger.AppendJSON(context.Background(), "audit.plugin_timeout", map[string]string{
				"plugin_id": p.manifest.PluginID, "capability": req.Capability,
			}, time.Now().UnixMicro())
		}
		return nil, evidence.NewPluginTimeoutError(p.manifest.PluginID, req.Capability, timeout.String(), callCtx.Err())
	case r := <-resultCh:
		if r.err != nil {
			return nil, r.err
		}
		return r.resp, nil
	}
}

// Stop terminates the plugin subprocess, recording its exit status.
func (p *Process) Stop() error {
	if err := p.cmd.Process.Kill(); err != nil {
		return err
	}
	err := p.cmd.Wait()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return evidence.NewPluginCrashError(p.manifest.PluginID, exitErr.ExitCode(), err)
		}
	}
	return nil
}
