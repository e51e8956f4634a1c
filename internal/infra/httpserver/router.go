package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	appanalysis "github.com/bryanwahyu/cyber-assistant/internal/application/analysis"
	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/mail"
	"github.com/bryanwahyu/cyber-assistant/internal/middleware"
)

const (
	serviceName     = "cyber-assistant"
	rootMessage     = "AI Cyber Assistant Backend running (enhanced)"
	reportFilename  = "scan_history.csv"
	reportURLHeader = "X-Report-URL"
	defaultMaxBody  = 32 << 20
	jsonBodyLimit   = 1 << 20
)

type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
	// SMSRegion is the default region for sender numbers without a country code.
	SMSRegion    string
	Limiter      *middleware.RateLimiter
	HealthChecks map[string]middleware.HealthChecker
	Logger       *slog.Logger
}

type Router struct {
	svc    *appanalysis.Service
	opts   Options
	logger *slog.Logger
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxBody
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	r := &Router{svc: svc, opts: opts, logger: opts.Logger}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logging(opts.Logger))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(r.recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", reportURLHeader, middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.Limiter != nil {
		mux.Use(middleware.RateLimitMiddleware(opts.Limiter))
	}

	mux.Get("/health", middleware.HealthHandler(serviceName, opts.HealthChecks))
	mux.Get("/ready", middleware.ReadinessHandler(opts.HealthChecks))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/", r.wrap(r.handleRoot))
	mux.Post("/ask", r.wrap(r.handleAsk))
	mux.Route("/analyze", func(rt chi.Router) {
		rt.Post("/url", r.wrap(r.handleURL))
		rt.Post("/sms", r.wrap(r.handleSMS))
		rt.Post("/email", r.wrap(r.handleEmail))
		rt.Post("/email/raw", r.wrap(r.handleRawEmail))
		rt.Post("/file", r.wrap(r.handleFile))
	})
	mux.Get("/threat-feed", r.wrap(r.handleThreatFeed))
	mux.Get("/check/ip/{ip}", r.wrap(r.handleIP))
	mux.Get("/darkweb/check", r.wrap(r.handleBreach))
	mux.Get("/history", r.wrap(r.handleHistory))
	mux.Get("/report/download", r.wrap(r.handleReport))

	return otelhttp.NewHandler(mux, serviceName)
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// recoverer turns a handler panic into the same JSON {"detail"} 500 the
// error mapping produces. http.ErrAbortHandler is re-raised for net/http.
func (r *Router) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			r.logger.Error("handler panic",
				slog.String("request_id", middleware.GetRequestID(req.Context())),
				slog.String("path", req.URL.Path),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, req)
	})
}

// wrap maps domain errors to HTTP status codes with a JSON {"detail"} body.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var maxErr *http.MaxBytesError
		switch {
		case domain.IsClientInput(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "No scan history found")
		case domain.IsUpstreamFailure(err):
			r.logger.Warn("upstream failure",
				slog.String("request_id", middleware.GetRequestID(req.Context())),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			r.logger.Error("request failed",
				slog.String("request_id", middleware.GetRequestID(req.Context())),
				slog.String("path", req.URL.Path),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	_ = writeJSON(w, status, map[string]string{"detail": detail})
}

// decodeJSON reads a bounded JSON body; malformed bodies are client errors.
func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	body := http.MaxBytesReader(w, req.Body, jsonBodyLimit)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return domain.InvalidInput("invalid JSON body: %v", err)
	}
	return nil
}

// GET /
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

// POST /ask
// Body: {"question": "..."}
func (r *Router) handleAsk(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Question string `json:"question"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	q, err := middleware.RequireText("question", body.Question)
	if err != nil {
		return err
	}

	v, err := r.svc.Ask(req.Context(), domain.Question{Text: q})
	middleware.RecordAnalysis(string(domain.KindQuestion), err != nil)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"answer": v.Summary, "signals": v.Signals})
}

// POST /analyze/url
// Body: {"url": "..."}
func (r *Router) handleURL(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	check, err := middleware.ValidateURL(body.URL)
	if err != nil {
		return err
	}

	v, err := r.svc.CheckURL(req.Context(), check)
	middleware.RecordAnalysis(string(domain.KindURL), err != nil)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"result":                   v.Summary,
		domain.SignalURLReputation: v.Signals[domain.SignalURLReputation],
	})
}

// POST /analyze/sms
// Body: {"message": "...", "sender": "+62..."}
func (r *Router) handleSMS(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Message string `json:"message"`
		Sender  string `json:"sender"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	msg, err := middleware.RequireText("message", body.Message)
	if err != nil {
		return err
	}
	sender, err := middleware.NormalizeSender(body.Sender, r.opts.SMSRegion)
	if err != nil {
		return err
	}

	v, err := r.svc.CheckSMS(req.Context(), domain.SMSCheck{Message: msg, Sender: sender})
	middleware.RecordAnalysis(string(domain.KindSMS), err != nil)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"result": v.Summary})
}

// POST /analyze/email
// Body: {"subject": "...", "body": "..."}
func (r *Router) handleEmail(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	check := domain.EmailCheck{
		Subject: middleware.SanitizeString(body.Subject),
		Body:    middleware.SanitizeString(body.Body),
	}
	if check.Subject == "" && check.Body == "" {
		return domain.InvalidInput("subject and body cannot both be empty")
	}
	return r.emailVerdict(w, req, check)
}

// POST /analyze/email/raw
// Body: an RFC 822 message, or multipart form field "file" holding one.
func (r *Router) handleRawEmail(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes)

	var src io.Reader = req.Body
	if mt, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type")); mt == "multipart/form-data" {
		f, _, err := r.formFile(req)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	check, err := mail.ParseEmail(src)
	if err != nil {
		return err
	}
	return r.emailVerdict(w, req, check)
}

func (r *Router) emailVerdict(w http.ResponseWriter, req *http.Request, check domain.EmailCheck) error {
	v, err := r.svc.CheckEmail(req.Context(), check)
	middleware.RecordAnalysis(string(domain.KindEmail), err != nil)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"subject": check.Subject, "result": v.Summary})
}

// POST /analyze/file
// Multipart form field "file".
func (r *Router) handleFile(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.opts.MaxUploadBytes)

	f, name, err := r.formFile(req)
	if err != nil {
		return err
	}
	defer f.Close()

	filename, err := middleware.ValidateFilename(name)
	if err != nil {
		return err
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	v, err := r.svc.CheckFile(req.Context(), domain.NewFileCheck(filename, content))
	middleware.RecordAnalysis(string(domain.KindFile), err != nil)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"filename":                  v.Filename,
		"hash":                      v.Hash,
		domain.SignalFileReputation: v.Signals[domain.SignalFileReputation],
		"analysis":                  v.Completion,
		"result":                    v.Summary,
	})
}

// formFile returns the multipart "file" field.
func (r *Router) formFile(req *http.Request) (io.ReadCloser, string, error) {
	if err := req.ParseMultipartForm(r.opts.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", err
		}
		return nil, "", domain.InvalidInput("invalid multipart form: %v", err)
	}
	f, hdr, err := req.FormFile("file")
	if err != nil {
		return nil, "", domain.InvalidInput("form field \"file\" is required")
	}
	return f, hdr.Filename, nil
}

// GET /threat-feed
func (r *Router) handleThreatFeed(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{"feed": r.svc.ThreatFeed(req.Context())})
}

// GET /check/ip/{ip}
func (r *Router) handleIP(w http.ResponseWriter, req *http.Request) error {
	ip, err := middleware.ValidateIP(chi.URLParam(req, "ip"))
	if err != nil {
		return err
	}
	v := r.svc.CheckIP(req.Context(), domain.IPCheck{IP: ip})
	middleware.RecordAnalysis(string(domain.KindIP), v.Error != "")
	return writeJSON(w, http.StatusOK, v)
}

// GET /darkweb/check?email=
func (r *Router) handleBreach(w http.ResponseWriter, req *http.Request) error {
	email, err := middleware.ValidateEmail(req.URL.Query().Get("email"))
	if err != nil {
		return err
	}
	v := r.svc.CheckBreach(req.Context(), domain.BreachCheck{Email: email})
	middleware.RecordAnalysis(string(domain.KindBreach), false)
	return writeJSON(w, http.StatusOK, v)
}

// GET /history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{"history": r.svc.HistoryRecords(req.Context())})
}

// GET /report/download
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	rep, err := r.svc.Report(req.Context())
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+reportFilename)
	if rep.URL != "" {
		w.Header().Set(reportURLHeader, rep.URL)
	}
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(rep.Data)
	return err
}
