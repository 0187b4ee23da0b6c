package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/hourplan/internal/logger"
	"github.com/julianstephens/hourplan/internal/models"
	"github.com/julianstephens/hourplan/internal/planner"
	"github.com/julianstephens/hourplan/internal/scheduler"
	"github.com/julianstephens/hourplan/internal/service"
	"github.com/julianstephens/hourplan/internal/storage"
	"github.com/julianstephens/hourplan/internal/utils"
)

const maxBodyBytes = 1 << 20

// Server exposes the planning operations as a JSON API.
type Server struct {
	addr     string
	token    string
	svc      *service.Service
	gatherer prometheus.Gatherer
	srv      *http.Server
}

// New builds a server. A nil gatherer serves the default Prometheus
// registry; an empty token disables authentication.
func New(svc *service.Service, addr, token string, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{addr: addr, token: token, svc: svc, gatherer: gatherer}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/workers", s.handleListWorkers)
	api.HandleFunc("POST /api/workers", s.handleAddWorker)
	api.HandleFunc("PATCH /api/workers/{worker}", s.handleRenameWorker)
	api.HandleFunc("PUT /api/workers/{worker}/hours", s.handleWorkerHours)
	api.HandleFunc("DELETE /api/workers/{worker}", s.handleDeleteWorker)
	api.HandleFunc("GET /api/workers/{worker}/days", s.handleDays)
	api.HandleFunc("GET /api/workers/{worker}/blocks", s.handleFindBlocks)
	api.HandleFunc("PATCH /api/workers/{worker}/blocks/{block}", s.handleResizeBlock)
	api.HandleFunc("DELETE /api/workers/{worker}/blocks/{block}", s.handleDeleteBlock)
	api.HandleFunc("POST /api/blocks", s.handleCreateBlock)
	api.HandleFunc("DELETE /api/slices/{slice}", s.handleDeleteSlice)
	api.HandleFunc("POST /api/slices/{slice}/move", s.handleMoveSlice)
	api.HandleFunc("POST /api/urgent", s.handleUrgent)
	api.HandleFunc("POST /api/actual", s.handleActual)
	api.HandleFunc("PUT /api/overrides", s.handleOverride)
	api.HandleFunc("POST /api/ranges", s.handleRange)
	api.HandleFunc("GET /api/descriptions", s.handleListDescriptions)
	api.HandleFunc("PUT /api/descriptions/{label}", s.handleSaveDescription)
	api.HandleFunc("DELETE /api/descriptions/{label}", s.handleDeleteDescription)
	api.HandleFunc("GET /api/validate", s.handleValidate)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.authenticate(api))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Debug("write healthz", "error", err)
		}
	})
	return mux
}

// Addr returns the listening address once Start has been called.
func (s *Server) Addr() string { return s.addr }

// Start serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server", "error", err)
		}
		cancel()
	}()
	logger.Info("API server listening", "addr", s.addr, "auth", s.token != "")
	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	if s.token == "" {
		return next
	}
	want := []byte("Bearer " + s.token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing or invalid bearer token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error    string  `json:"error"`
	Unplaced float64 `json:"unplaced,omitempty"`
}

// mutationBody is the response of every schedule mutation.
type mutationBody struct {
	Created      []models.TaskSlice            `json:"created,omitempty"`
	Slices       map[string][]models.TaskSlice `json:"slices"`
	Overrides    []models.DayOverride          `json:"overrides,omitempty"`
	Workers      []models.Worker               `json:"workers,omitempty"`
	Descriptions []models.Description          `json:"descriptions,omitempty"`
	Overassigned []models.DayLoad              `json:"overassigned"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrCapacityExhausted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var exhausted *scheduler.CapacityExhaustedError
	if errors.As(err, &exhausted) {
		body.Unplaced = exhausted.Unplaced
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func writeResult(w http.ResponseWriter, status int, res planner.Result, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	overassigned := res.Overassigned
	if overassigned == nil {
		overassigned = []models.DayLoad{}
	}
	slices := res.Changes.WorkerSlices
	if slices == nil {
		slices = map[string][]models.TaskSlice{}
	}
	writeJSON(w, status, mutationBody{
		Created:      res.Created,
		Slices:       slices,
		Overrides:    res.Changes.Overrides,
		Workers:      res.Changes.Workers,
		Descriptions: res.Changes.Descriptions,
		Overassigned: overassigned,
	})
}

// decode reads a JSON body, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := s.svc.Workers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if workers == nil {
		workers = []models.Worker{}
	}
	writeJSON(w, http.StatusOK, workers)
}

func (s *Server) handleAddWorker(w http.ResponseWriter, r *http.Request) {
	var in models.Worker
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.AddWorker(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.Changes.Workers[0])
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRenameWorker(w http.ResponseWriter, r *http.Request) {
	var in renameRequest
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.RenameWorker(r.Context(), r.PathValue("worker"), in.Name)
	writeResult(w, http.StatusOK, res, err)
}

type hoursRequest struct {
	WeekdayHours  [5]float64 `json:"weekday_hours"`
	EffectiveFrom string     `json:"effective_from"`
}

func (s *Server) handleWorkerHours(w http.ResponseWriter, r *http.Request) {
	var in hoursRequest
	if !decode(w, r, &in) {
		return
	}
	if in.EffectiveFrom == "" {
		in.EffectiveFrom = utils.Today()
	}
	res, err := s.svc.UpdateWorkerHours(r.Context(), r.PathValue("worker"), in.WeekdayHours, in.EffectiveFrom)
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleDeleteWorker(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteWorker(r.Context(), r.PathValue("worker")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" {
		from = utils.Today()
	}
	if to == "" {
		var err error
		if to, err = utils.AddDays(from, 13); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid from date"})
			return
		}
	}
	loads, err := s.svc.DaySummaries(r.Context(), r.PathValue("worker"), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loads)
}

func (s *Server) handleFindBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.svc.FindBlocks(r.Context(), r.PathValue("worker"), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	if blocks == nil {
		blocks = []models.BlockSummary{}
	}
	writeJSON(w, http.StatusOK, blocks)
}

type resizeRequest struct {
	Hours float64 `json:"hours"`
}

func (s *Server) handleResizeBlock(w http.ResponseWriter, r *http.Request) {
	var in resizeRequest
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.ResizeBlock(r.Context(), r.PathValue("worker"), r.PathValue("block"), in.Hours)
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteBlock(r.Context(), r.PathValue("worker"), r.PathValue("block"))
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	var in planner.CreateBlockInput
	if !decode(w, r, &in) {
		return
	}
	if in.Start == "" {
		in.Start = utils.Today()
	}
	res, err := s.svc.CreateBlock(r.Context(), in)
	writeResult(w, http.StatusCreated, res, err)
}

func (s *Server) handleDeleteSlice(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteSlice(r.Context(), r.PathValue("slice"))
	writeResult(w, http.StatusOK, res, err)
}

type moveRequest struct {
	WorkerID string `json:"worker_id,omitempty"`
	Date     string `json:"date"`
}

func (s *Server) handleMoveSlice(w http.ResponseWriter, r *http.Request) {
	var in moveRequest
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.MoveSlice(r.Context(), planner.MoveSliceInput{
		SliceID:  r.PathValue("slice"),
		WorkerID: in.WorkerID,
		Date:     in.Date,
	})
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleUrgent(w http.ResponseWriter, r *http.Request) {
	var in planner.UrgentInput
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.InsertUrgent(r.Context(), in)
	writeResult(w, http.StatusCreated, res, err)
}

func (s *Server) handleActual(w http.ResponseWriter, r *http.Request) {
	var in planner.ActualInput
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.SetActualHours(r.Context(), in)
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	var in models.DayOverride
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.EditDayOverride(r.Context(), in)
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	var in planner.RangeInput
	if !decode(w, r, &in) {
		return
	}
	in.Action = planner.RangeAction(strings.ToLower(string(in.Action)))
	res, err := s.svc.ApplyRange(r.Context(), in)
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleListDescriptions(w http.ResponseWriter, r *http.Request) {
	descs, err := s.svc.Descriptions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, descs)
}

type descriptionRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSaveDescription(w http.ResponseWriter, r *http.Request) {
	var in descriptionRequest
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.SaveDescription(r.Context(), r.PathValue("label"), in.Text)
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleDeleteDescription(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteDescription(r.Context(), r.PathValue("label"))
	writeResult(w, http.StatusOK, res, err)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Validate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
