package server

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/nullbyte-labs/kvstored/internal/command"
	"github.com/nullbyte-labs/kvstored/internal/config"
	"github.com/nullbyte-labs/kvstored/internal/logging"
	"github.com/nullbyte-labs/kvstored/internal/store"
)

// runState values implement the Stopped -> Running -> Stopping -> Stopped
// lifecycle of §4.I.
const (
	stateStopped int32 = iota
	stateRunning
	stateStopping
)

// Controller owns the listener and the accept loop, and wires the process
// signals that drive graceful shutdown and log rotation (§4.I, §6).
// Grounded on the teacher's main(): listener setup, the signal goroutine,
// and the final-save-on-shutdown sequence, collapsed to a single TCP
// listener since TLS and multi-bind are outside this spec's surface.
type Controller struct {
	cfg  *config.Config
	disp *command.Dispatcher
	log  *logging.Logger

	listener net.Listener
	wg       sync.WaitGroup
	state    int32
}

func New(cfg *config.Config, disp *command.Dispatcher, log *logging.Logger) *Controller {
	ctl := &Controller{cfg: cfg, disp: disp, log: log}
	disp.SetStopHook(ctl.Stop)
	return ctl
}

// Run listens on cfg.Host:cfg.Port, writes the pid file, and serves
// connections until a shutdown signal arrives or listen itself fails. It
// blocks until shutdown completes.
func (ctl *Controller) Run() error {
	addr := fmt.Sprintf("%s:%d", ctl.cfg.Host, ctl.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	ctl.listener = ln
	atomic.StoreInt32(&ctl.state, stateRunning)

	if ctl.cfg.PidFile != "" {
		if err := os.WriteFile(ctl.cfg.PidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
			ctl.log.Warn("failed to write pid file %s: %v", ctl.cfg.PidFile, err)
		}
		defer os.Remove(ctl.cfg.PidFile)
	}

	ctl.log.Info("listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go ctl.handleSignals(sigCh)

	ctl.acceptLoop()
	ctl.wg.Wait()

	ctl.log.Warn("all connections closed, saving final snapshot")
	if err := store.Save(ctl.cfg.Dir, ctl.cfg.DBFilename, ctl.disp.DBs); err != nil {
		ctl.log.Error("final save failed: %v", err)
	}
	ctl.log.Warn("shutdown complete")
	return nil
}

func (ctl *Controller) handleSignals(sigCh <-chan os.Signal) {
	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			ctl.rotateLog()
		default:
			ctl.Stop()
			return
		}
	}
}

// rotateLog reopens the configured log file in place (§6-ext), letting an
// external log-rotation tool (logrotate and friends) move the old file
// aside without restarting the process.
func (ctl *Controller) rotateLog() {
	if ctl.cfg.LogFile == "" {
		return
	}
	f, err := os.OpenFile(ctl.cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		ctl.log.Error("log rotation failed to reopen %s: %v", ctl.cfg.LogFile, err)
		return
	}
	ctl.log.Reopen(f)
	ctl.log.Info("log reopened after SIGHUP")
}

// Stop transitions Running -> Stopping and closes the listener so the
// accept loop unwinds. It does not close connections that are already
// open: Run waits until each of them has ended (the client quit or
// disconnected) before it writes the final snapshot and returns.
func (ctl *Controller) Stop() {
	if !atomic.CompareAndSwapInt32(&ctl.state, stateRunning, stateStopping) {
		return
	}
	ctl.log.Warn("shutdown signal received, stopping listener")
	if ctl.listener != nil {
		ctl.listener.Close()
	}
}

func (ctl *Controller) acceptLoop() {
	for {
		nc, err := ctl.listener.Accept()
		if err != nil {
			atomic.StoreInt32(&ctl.state, stateStopped)
			return
		}
		ctl.wg.Add(1)
		go func() {
			defer ctl.wg.Done()
			conn := newConn(nc)
			conn.serve(ctl.disp, ctl.log)
		}()
	}
}
