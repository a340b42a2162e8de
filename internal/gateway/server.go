// SPDX-License-Identifier: MPL-2.0

package gateway

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Dark-Alex-17/meshexec/internal/chunk"
	"github.com/Dark-Alex-17/meshexec/internal/dispatch"
	"github.com/Dark-Alex-17/meshexec/internal/exec"
	"github.com/Dark-Alex-17/meshexec/internal/testutil"
	"github.com/Dark-Alex-17/meshexec/internal/transport"
	"github.com/Dark-Alex-17/meshexec/pkg/cmdtree"
)

// Server runs the event loop described in spec.md §5: a single
// cooperative loop that owns the transport and the command pipeline.
// One inbound message is dispatched, executed and fully replied —
// including pacing between all chunks — before the next is drawn.
type Server struct {
	*lifecycle

	cfg    *cmdtree.RootConfig
	tr     transport.Transport
	logger *log.Logger
	clock  testutil.Clock
}

// New constructs a Server. clock defaults to testutil.RealClock{} when nil.
func New(cfg *cmdtree.RootConfig, tr transport.Transport, logger *log.Logger, clock testutil.Clock) *Server {
	if clock == nil {
		clock = testutil.RealClock{}
	}
	return &Server{
		lifecycle: newLifecycle(),
		cfg:       cfg,
		tr:        tr,
		logger:    logger,
		clock:     clock,
	}
}

// Start begins the event loop and returns once it is running, or once
// it has failed to start. The loop runs until ctx is cancelled, at
// which point it stops drawing new messages and shuts down.
func (s *Server) Start(ctx context.Context) error {
	if err := s.transitionToStarting(ctx); err != nil {
		return err
	}

	s.addGoroutine()
	go s.run()

	select {
	case <-s.startedCh:
		return nil
	case err := <-s.errCh:
		return err
	}
}

// Wait blocks until the event loop has fully stopped, returning the
// failure error if it stopped abnormally.
func (s *Server) Wait() error {
	s.waitForShutdown()
	if s.State() == stateFailed {
		return s.LastError()
	}
	return nil
}

// Stop requests the event loop to stop accepting new messages and
// blocks until it has finished shutting down. Safe to call more than
// once, and safe to call before Start has reached Running.
func (s *Server) Stop() {
	if !s.transitionToStopping() {
		s.waitForShutdown()
		return
	}
	s.waitForShutdown()
}

// run is the body of the event loop goroutine. It draws one inbound
// message at a time and fully processes it before drawing the next
// (spec.md §5's "no per-sender queueing" scheduling model).
func (s *Server) run() {
	defer s.doneGoroutine()
	s.transitionToRunning()
	s.logger.Info("gateway running", "device", s.cfg.Device, "channel", s.cfg.Channel)

	inbound := s.tr.RecvText(s.ctx)

	for {
		select {
		case msg, ok := <-inbound:
			if !ok {
				s.shutdown()
				return
			}
			s.handle(msg)
		case <-s.ctx.Done():
			s.shutdown()
			return
		}
	}
}

// shutdown closes the transport and finalizes the lifecycle state,
// distinguishing a clean stop from a transport failure per spec.md §7's
// "Transport errors... (then shutdown)" disposition.
func (s *Server) shutdown() {
	closeErr := s.tr.Close()
	streamErr := s.tr.Err()

	switch {
	case streamErr != nil:
		s.logger.Error("transport stream closed with error", "error", streamErr)
		s.transitionToFailed(streamErr)
	case closeErr != nil:
		s.logger.Error("error closing transport", "error", closeErr)
		s.transitionToFailed(closeErr)
	default:
		s.logger.Info("gateway shutting down cleanly")
		s.transitionToStopped()
		s.closeErrChannel()
	}
}

// handle dispatches, executes and replies to one inbound message
// (spec.md §4's A-F pipeline, minus the loader which already ran at
// startup). Every step that can fail folds its failure into a reply
// string or a log line; handle itself never returns an error.
func (s *Server) handle(msg transport.Message) {
	// The transport may not filter by channel itself (internal/transport's
	// contract, spec.md §6); the consumer is responsible for it.
	if msg.Channel != s.cfg.Channel {
		return
	}

	corrID := uuid.NewString()
	logger := s.logger.With("correlation_id", corrID, "sender", msg.SenderID)

	result := dispatch.Dispatch(s.cfg, msg.Text)

	switch result.Kind {
	case dispatch.Ignore:
		return
	case dispatch.Reply:
		s.reply(logger, result.Text)
	case dispatch.Run:
		logger.Info("dispatched", "leaf", result.Invocation.Leaf.Name, "argv", result.Invocation.Argv)
		reply := exec.Run(s.ctx, s.cfg, result.Invocation, logger)
		s.reply(logger, reply)
	}
}

// reply chunks and sends text over the transport, pacing frames per
// spec.md §4.F.
func (s *Server) reply(logger *log.Logger, text string) {
	delay := time.Duration(s.cfg.ChunkDelayMillis) * time.Millisecond
	chunk.Send(s.ctx, s.tr, text, s.cfg.MaxContentBytes, s.cfg.MaxTextBytes, delay, s.clock, logger)
}
