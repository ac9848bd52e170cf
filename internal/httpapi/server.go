package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chess-archive/internal/adapter/archivepresenter"
	"github.com/park285/chess-archive/internal/domain"
	"github.com/park285/chess-archive/internal/progress"
	"github.com/park285/chess-archive/internal/service/archive"
	"github.com/park285/chess-archive/pkg/archivedto"
)

const dateLayout = "2006-01-02"

var ErrNoJobStore = errors.New("import job store is required (REDIS_URL)")

type Options struct {
	MaxBodyBytes int
	WithOpenings bool
	Logger       *zap.Logger
}

// Server exposes imports and game queries over HTTP. Each submitted archive
// is imported in its own goroutine and tracked in the job store.
type Server struct {
	importer *archive.Importer
	repo     archive.Repository
	jobs     *progress.Store
	opts     Options
	logger   *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewServer(importer *archive.Importer, repo archive.Repository, jobs *progress.Store, opts Options) (*Server, error) {
	if importer == nil || repo == nil {
		return nil, archive.ErrNilRepository
	}
	if jobs == nil {
		return nil, ErrNoJobStore
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 20
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		importer: importer,
		repo:     repo,
		jobs:     jobs,
		opts:     opts,
		logger:   logger,
		baseCtx:  ctx,
		cancel:   cancel,
	}, nil
}

func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		switch {
		case path == "/healthz":
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.SetBodyString("ok")
		case path == "/games":
			if !ctx.IsGet() {
				methodNotAllowed(ctx)
				return
			}
			s.handleGames(ctx)
		case path == "/imports":
			switch {
			case ctx.IsPost():
				s.handleSubmit(ctx)
			case ctx.IsGet():
				s.handleListJobs(ctx)
			default:
				methodNotAllowed(ctx)
			}
		case strings.HasPrefix(path, "/imports/"):
			if !ctx.IsGet() {
				methodNotAllowed(ctx)
				return
			}
			s.handleJob(ctx, strings.TrimPrefix(path, "/imports/"))
		default:
			writeError(ctx, fasthttp.StatusNotFound, "not_found", "no such endpoint")
		}
	}
}

func (s *Server) handleSubmit(ctx *fasthttp.RequestCtx) {
	body := ctx.PostBody()
	if len(body) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "empty_body", "archive body is empty")
		return
	}
	if len(body) > s.opts.MaxBodyBytes {
		writeError(ctx, fasthttp.StatusRequestEntityTooLarge, "too_large", "archive exceeds size limit")
		return
	}
	source := strings.TrimSpace(string(ctx.QueryArgs().Peek("name")))
	if source == "" {
		source = strings.TrimSpace(string(ctx.Request.Header.Peek("X-Archive-Name")))
	}
	if source == "" {
		source = "upload"
	}
	job, err := s.jobs.Create(ctx, source)
	if err != nil {
		s.logger.Error("archive_job_create_error", zap.Error(err))
		writeError(ctx, fasthttp.StatusServiceUnavailable, "job_store", "cannot create import job")
		return
	}
	// fasthttp reuses the request buffer after the handler returns
	archiveText := append([]byte(nil), body...)
	s.wg.Add(1)
	go s.runImport(job.ID, source, archiveText)

	writeJSON(ctx, fasthttp.StatusAccepted, archivedto.ImportAccepted{JobID: job.ID})
}

func (s *Server) runImport(jobID, source string, archiveText []byte) {
	defer s.wg.Done()
	ctx := s.baseCtx
	sum, err := s.importer.ImportReader(ctx, source, bytes.NewReader(archiveText), s.jobs.Tracker(jobID))
	if err != nil {
		s.logger.Error("archive_job_failed", zap.String("job_id", jobID), zap.Error(err))
		if ferr := s.jobs.Fail(context.Background(), jobID, err); ferr != nil {
			s.logger.Warn("archive_job_state_error", zap.String("job_id", jobID), zap.Error(ferr))
		}
		return
	}
	if ferr := s.jobs.Finish(context.Background(), jobID, sum.Stored, sum.Duplicates, sum.Pending); ferr != nil {
		s.logger.Warn("archive_job_state_error", zap.String("job_id", jobID), zap.Error(ferr))
	}
}

func (s *Server) handleJob(ctx *fasthttp.RequestCtx, id string) {
	if strings.TrimSpace(id) == "" {
		writeError(ctx, fasthttp.StatusNotFound, "not_found", "missing job id")
		return
	}
	job, err := s.jobs.Load(ctx, id)
	if errors.Is(err, progress.ErrJobNotFound) {
		writeError(ctx, fasthttp.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		writeError(ctx, fasthttp.StatusServiceUnavailable, "job_store", err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, archivepresenter.ToDTOJob(job))
}

func (s *Server) handleListJobs(ctx *fasthttp.RequestCtx) {
	limit := ctx.QueryArgs().GetUintOrZero("limit")
	jobs, err := s.jobs.List(ctx, limit)
	if err != nil {
		writeError(ctx, fasthttp.StatusServiceUnavailable, "job_store", err.Error())
		return
	}
	out := make([]*archivedto.ImportJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, archivepresenter.ToDTOJob(j))
	}
	writeJSON(ctx, fasthttp.StatusOK, out)
}

func (s *Server) handleGames(ctx *fasthttp.RequestCtx) {
	filter, derr := parseFilter(ctx.QueryArgs())
	if derr != nil {
		writeError(ctx, fasthttp.StatusBadRequest, derr.Code, derr.Message)
		return
	}
	games, err := s.repo.QueryGames(ctx, filter)
	if err != nil {
		s.logger.Error("archive_query_error", zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "query_failed", "query failed")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, archivepresenter.ToDTOGames(games, s.opts.WithOpenings))
}

func parseFilter(args *fasthttp.Args) (domain.GameFilter, *archivedto.DomainError) {
	f := domain.GameFilter{
		White:   strings.TrimSpace(string(args.Peek("white"))),
		Black:   strings.TrimSpace(string(args.Peek("black"))),
		Opening: strings.TrimSpace(string(args.Peek("opening"))),
	}
	if w := strings.ToUpper(strings.TrimSpace(string(args.Peek("winner")))); w != "" {
		f.Winner = domain.Result(w)
		if !f.Winner.Valid() {
			return f, &archivedto.DomainError{Code: "bad_winner", Message: "winner must be W, B or D"}
		}
	}
	from := strings.TrimSpace(string(args.Peek("from")))
	to := strings.TrimSpace(string(args.Peek("to")))
	if from != "" || to != "" {
		start, err1 := time.Parse(dateLayout, from)
		end, err2 := time.Parse(dateLayout, to)
		if err1 != nil || err2 != nil {
			return f, &archivedto.DomainError{Code: "bad_date", Message: "from and to must both be YYYY-MM-DD"}
		}
		f.UseDate, f.Start, f.End = true, start, end
	}
	switch strings.ToLower(string(args.Peek("moves"))) {
	case "1", "true", "yes":
		f.ShowMoves = true
	}
	return f, nil
}

// ListenAndServe serves until ctx is cancelled, then waits for running imports.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "archive-loader",
		MaxRequestBodySize: s.opts.MaxBodyBytes,
		ReadTimeout:        60 * time.Second,
		WriteTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(addr) }()
	s.logger.Info("archive_http_listen", zap.String("addr", addr))

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}
	err := srv.Shutdown()
	s.Close()
	return err
}

// Close cancels running imports and waits for them to stop.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until all submitted imports have finished.
func (s *Server) Wait() { s.wg.Wait() }

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(raw)
}

func writeError(ctx *fasthttp.RequestCtx, status int, code, msg string) {
	writeJSON(ctx, status, archivedto.DomainError{Code: code, Message: msg})
}

func methodNotAllowed(ctx *fasthttp.RequestCtx) {
	writeError(ctx, fasthttp.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}
