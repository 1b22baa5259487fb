// Package anvil controls the shared Anvil (local Ethereum dev node)
// process that EVM-flavored suites declare as a shared service, so every
// language's benchmarks hit the same chain state instead of each spinning
// up their own.
//
// Grounded directly on original_source's anvil.rs: reserve an ephemeral
// TCP port, spawn the `anvil` binary bound to it, poll readiness with a
// raw JSON-RPC `eth_chainId` call every 100ms up to a 30s timeout, and
// tear the process down on Close. The panic-safe readiness poll goroutine
// uses github.com/sourcegraph/conc (already an indirect dependency of the
// teacher via viper) promoted to a direct import, the way Anvil's own
// readiness wait runs concurrently with the spawned child's lifecycle in
// the original.
package anvil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
)

// Config configures one Anvil instance.
type Config struct {
	// ForkURL optionally forks from a live RPC endpoint instead of
	// starting a fresh chain.
	ForkURL string
	// ForkBlock pins the fork to a specific block number; ignored if
	// ForkURL is empty.
	ForkBlock *uint64

	// ReadyTimeout bounds how long to wait for the RPC endpoint to
	// answer. Defaults to 30s.
	ReadyTimeout time.Duration
	// PollInterval is how often readiness is polled. Defaults to 100ms.
	PollInterval time.Duration
}

// Service is one running Anvil process and its resolved RPC endpoint.
type Service struct {
	cmd    *exec.Cmd
	rpcURL string
	port   int
}

// RPCURL returns the endpoint other processes should connect to.
func (s *Service) RPCURL() string { return s.rpcURL }

// Spawn reserves an ephemeral port, launches `anvil` bound to it, and
// blocks until the RPC endpoint answers eth_chainId or cfg.ReadyTimeout
// elapses.
func Spawn(ctx context.Context, cfg Config) (*Service, error) {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	port, err := findAvailablePort()
	if err != nil {
		return nil, fmt.Errorf("anvil: reserve port: %w", err)
	}

	args := []string{"--port", fmt.Sprintf("%d", port)}
	if cfg.ForkURL != "" {
		args = append(args, "--fork-url", cfg.ForkURL)
		if cfg.ForkBlock != nil {
			args = append(args, "--fork-block-number", fmt.Sprintf("%d", *cfg.ForkBlock))
		}
	}

	cmd := exec.CommandContext(ctx, "anvil", args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("anvil: spawn: %w", err)
	}

	svc := &Service{
		cmd:    cmd,
		rpcURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		port:   port,
	}

	if err := svc.waitReady(cfg.ReadyTimeout, cfg.PollInterval); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

// findAvailablePort binds an ephemeral port and immediately releases it,
// the same reserve-then-release approach anvil.rs uses since the OS will
// not reassign it to another process within the brief window before
// anvil itself binds it.
func findAvailablePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// waitReady polls isReady every interval, using a panic-safe goroutine
// via conc.NewWaitGroup so a transient HTTP client panic does not take
// down the caller, until either the child answers or timeout elapses.
// The ProcessState check only sees an exit that Wait has already reaped,
// and Wait is not called before Close, so a child that exits early is
// not detected here: it is reported as the timeout error, without its
// exit status, once the full timeout has elapsed.
func (s *Service) waitReady(timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	ready := make(chan struct{})
	done := make(chan struct{})

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if s.isReady() {
				close(ready)
				return
			}
			if s.cmd != nil && s.cmd.ProcessState != nil {
				return
			}
			if time.Now().After(deadline) {
				return
			}
			<-ticker.C
		}
	})

	select {
	case <-ready:
		wg.Wait()
		return nil
	case <-done:
		wg.Wait()
		return fmt.Errorf("anvil: did not become ready within %s", timeout)
	}
}

// isReady issues a raw eth_chainId JSON-RPC POST and checks for a
// "result" field in the response, mirroring anvil.rs's handwritten HTTP
// probe rather than pulling in a full JSON-RPC client for one call.
func (s *Service) isReady() bool {
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]}`)
	req, err := http.NewRequest(http.MethodPost, s.rpcURL, body)
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := http.Client{Timeout: 500 * time.Millisecond}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), `"result"`)
}

// Close terminates the Anvil process, idempotently: repeated calls after
// the first are no-ops.
func (s *Service) Close() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	if s.cmd.ProcessState != nil {
		return nil
	}
	if err := s.cmd.Process.Kill(); err != nil {
		return err
	}
	_ = s.cmd.Wait()
	return nil
}
