package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"fileforge/internal/api"
	"fileforge/internal/daemon"
	"fileforge/internal/logging"
	"fileforge/internal/queue"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Fileforge", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.APIAddr = status.APIAddr
	resp.JobDBPath = status.JobDBPath
	resp.AuditDBPath = status.AuditDBPath
	resp.LockPath = status.LockFilePath
	resp.Queue = api.FromStats(status.Queue)
	if len(status.Dependencies) > 0 {
		resp.Dependencies = make([]DependencyStatus, 0, len(status.Dependencies))
		for _, dep := range status.Dependencies {
			resp.Dependencies = append(resp.Dependencies, DependencyStatus{
				Name:        dep.Name,
				Command:     dep.Command,
				Description: dep.Description,
				Optional:    dep.Optional,
				Available:   dep.Available,
				Detail:      dep.Detail,
			})
		}
	}
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via ipc")
	return nil
}

func (s *service) Jobs(req JobsRequest, resp *JobsResponse) error {
	statuses := make([]queue.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := queue.ParseStatus(status)
		if !ok {
			return fmt.Errorf("unknown status %q", status)
		}
		statuses = append(statuses, parsed)
	}
	jobs, err := s.daemon.Jobs().List(s.ctx, statuses...)
	if err != nil {
		return err
	}
	resp.Jobs = jobs
	return nil
}

func (s *service) Describe(req DescribeRequest, resp *DescribeResponse) error {
	if req.JobKey == "" {
		return errors.New("describe requires a job key")
	}
	job, err := s.daemon.Jobs().Describe(s.ctx, req.JobKey)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %s not found", req.JobKey)
	}
	resp.Job = *job
	return nil
}

func (s *service) Stats(_ StatsRequest, resp *StatsResponse) error {
	stats, err := s.daemon.Jobs().Stats(s.ctx)
	if err != nil {
		return err
	}
	resp.Stats = stats
	return nil
}

func (s *service) Audit(req AuditRequest, resp *AuditResponse) error {
	recorder := s.daemon.Recorder()
	if req.JobKey != "" {
		entries, err := recorder.ForJob(s.ctx, req.JobKey)
		if err != nil {
			return err
		}
		resp.Entries = api.FromAuditEntries(entries)
		resp.Total = int64(len(entries))
		return nil
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	entries, err := recorder.Query(s.ctx, page, pageSize)
	if err != nil {
		return err
	}
	total, err := recorder.Count(s.ctx)
	if err != nil {
		return err
	}
	resp.Entries = api.FromAuditEntries(entries)
	resp.Total = total
	return nil
}

func (s *service) Watch(req WatchRequest, resp *WatchResponse) error {
	limit := req.Limit
	if limit <= 0 {
		limit = 200
	}
	wait := req.WaitMillis > 0
	ctx := s.ctx
	if wait {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, time.Duration(req.WaitMillis)*time.Millisecond)
		defer cancel()
	}
	events, next, err := s.daemon.Bus().Fetch(ctx, req.Since, limit, wait)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	resp.Events = api.FromJobEvents(events)
	resp.Next = next
	return nil
}
