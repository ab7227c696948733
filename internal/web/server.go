package web

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"daily-report/internal/model"
	"daily-report/internal/service"
)

const missingTableHint = "check that the employees and task_master tables have been imported (dailyreport import employees|categories --file ...)."

// Options carries the fixed dropdown choices and the zone used for the
// default report date.
type Options struct {
	Departments []string
	Channels    []string
	Priorities  []string
	Location    *time.Location
}

// Server serves the report page.
type Server struct {
	reports *service.ReportService
	opts    Options
	now     func() time.Time
}

func NewServer(reports *service.ReportService, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Server{reports: reports, opts: opts, now: time.Now}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/", s.handleReport)
	r.Post("/", s.handleReport)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// handleReport loads the dropdowns, stores a submission on POST, then renders
// the form with the latest entries. A failed read aborts with the error page.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lookups, err := s.reports.Lookups(ctx)
	if err != nil {
		s.renderFailure(w, err)
		return
	}

	data := PageData{
		FixedFields: s.reports.FixedFields(),
		Form:        service.ReportInput{LogDate: s.today()},
		Employees:   lookups.Employees,
		Categories:  lookups.Categories,
		Departments: s.opts.Departments,
		Channels:    s.opts.Channels,
		Priorities:  s.opts.Priorities,
		Statuses:    model.Statuses,
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status, data.Banner, data.Form = s.submit(r)
	}

	entries, err := s.reports.Latest(ctx)
	if err != nil {
		s.renderFailure(w, err)
		return
	}
	data.Entries = entries

	var buf bytes.Buffer
	if err := RenderPage(&buf, data); err != nil {
		log.Printf("[warn] render page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, &buf)
}

func (s *Server) submit(r *http.Request) (int, *Banner, service.ReportInput) {
	input := formInput(r)

	_, err := s.reports.Submit(r.Context(), input)
	var verr *service.ValidationError
	switch {
	case err == nil:
		log.Printf("[info] report saved: employee=%q date=%s", input.Employee, input.LogDate)
		return http.StatusOK, &Banner{Text: "Report saved."}, service.ReportInput{LogDate: input.LogDate}
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, &Banner{
			Text:  "Please fix the form: " + strings.Join(verr.Problems, "; ") + ".",
			Error: true,
		}, input
	default:
		log.Printf("[warn] %v", err)
		return http.StatusInternalServerError, &Banner{Text: "Failed to save the report.", Error: true}, input
	}
}

func (s *Server) renderFailure(w http.ResponseWriter, err error) {
	log.Printf("[warn] %v", err)

	data := ErrorData{Message: err.Error()}
	var dae *service.DataAccessError
	if errors.As(err, &dae) {
		data.Message = dae.Err.Error()
		if dae.MissingTable() {
			data.Hint = missingTableHint
		}
	}

	var buf bytes.Buffer
	if err := RenderError(&buf, data); err != nil {
		log.Printf("[warn] render error page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusInternalServerError, &buf)
}

func (s *Server) today() string {
	return s.now().In(s.opts.Location).Format("2006-01-02")
}

func formInput(r *http.Request) service.ReportInput {
	return service.ReportInput{
		LogDate:      r.PostFormValue("log_date"),
		Employee:     r.PostFormValue("employee"),
		Department:   r.PostFormValue("department"),
		TaskCategory: r.PostFormValue("task_category"),
		TaskName:     r.PostFormValue("task_name"),
		Minutes:      r.PostFormValue("minutes"),
		Channel:      r.PostFormValue("channel"),
		Priority:     r.PostFormValue("priority"),
		Status:       r.PostFormValue("status"),
		Note:         r.PostFormValue("note"),
	}
}

func writeHTML(w http.ResponseWriter, status int, body *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = body.WriteTo(w)
}

// Run serves handler on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[info] listening on http://localhost%s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
