package app

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Ashu12122005/ppp-management/internal/accounts"
	"github.com/Ashu12122005/ppp-management/internal/attendance"
	"github.com/Ashu12122005/ppp-management/internal/auth"
	"github.com/Ashu12122005/ppp-management/internal/config"
	"github.com/Ashu12122005/ppp-management/internal/dashboard"
	"github.com/Ashu12122005/ppp-management/internal/fees"
	"github.com/Ashu12122005/ppp-management/internal/httpx"
	"github.com/Ashu12122005/ppp-management/internal/importer"
	"github.com/Ashu12122005/ppp-management/internal/metrics"
	"github.com/Ashu12122005/ppp-management/internal/middleware"
	"github.com/Ashu12122005/ppp-management/internal/notices"
	"github.com/Ashu12122005/ppp-management/internal/notifier"
	"github.com/Ashu12122005/ppp-management/internal/ppp"
	"github.com/Ashu12122005/ppp-management/internal/students"
)

type App struct {
	cfg config.Config
	db  *sql.DB

	tokens           *auth.TokenManager
	authService      *auth.Service
	accountService   *accounts.Service
	studentService   *students.Service
	attendanceSvc    *attendance.Service
	feeService       *fees.Service
	pppService       *ppp.Service
	noticeService    *notices.Service
	dashboardService *dashboard.Service
	imports          *importer.Importer

	loginLimiter   *middleware.LoginLimiter
	redisClient    *redis.Client
	metricsHandler http.Handler
}

func New(cfg config.Config, db *sql.DB) (*App, error) {
	tokenManager := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	var notify notifier.Notifier = notifier.LogNotifier{}
	if smtp := notifier.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom); smtp.Enabled() {
		notify = smtp
	}

	accountService := accounts.NewService(db, notify, cfg.DefaultStudentPassword)
	studentService := students.NewService(db, accountService)
	attendanceSvc := attendance.NewService(db)
	feeService := fees.NewService(db)

	var redisClient *redis.Client
	var limiter *middleware.LoginLimiter
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		limiter = middleware.NewLoginLimiter(redisClient, cfg.LoginRatePerMin)
	}

	return &App{
		cfg:              cfg,
		db:               db,
		tokens:           tokenManager,
		authService:      auth.NewService(db, tokenManager),
		accountService:   accountService,
		studentService:   studentService,
		attendanceSvc:    attendanceSvc,
		feeService:       feeService,
		pppService:       ppp.NewService(db),
		noticeService:    notices.NewService(db),
		dashboardService: dashboard.NewService(db),
		imports:          importer.New(studentService, attendanceSvc, feeService, cfg.NumbersCLI),
		loginLimiter:     limiter,
		redisClient:      redisClient,
		metricsHandler:   promhttp.Handler(),
	}, nil
}

func (a *App) Close() error {
	if a.redisClient != nil {
		a.redisClient.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if a.cfg.RequireTLS && r.URL.Path != "/healthz" && !isTLSRequest(r) {
		httpx.WriteError(w, http.StatusUpgradeRequired, "tls is required")
		return
	}

	start := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	a.route(recorder, r)
	metrics.HTTPRequestDuration.
		WithLabelValues(routePattern(r.URL.Path), r.Method, strconv.Itoa(recorder.status)).
		Observe(time.Since(start).Seconds())
}

func (a *App) route(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/healthz":
		a.handleHealth(w)
		return
	case r.Method == http.MethodGet && r.URL.Path == "/metrics":
		a.metricsHandler.ServeHTTP(w, r)
		return

	case r.Method == http.MethodPost && r.URL.Path == "/v1/auth/login":
		a.handleLogin(w, r)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/v1/auth/refresh":
		a.handleRefresh(w, r)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/v1/auth/logout":
		a.handleLogout(w, r)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/v1/auth/change-password":
		a.handleChangePassword(w, r)
		return

	case r.Method == http.MethodPost && r.URL.Path == "/v1/students":
		a.handleCreateStudent(w, r)
		return
	case r.Method == http.MethodGet && r.URL.Path == "/v1/students":
		a.handleListStudents(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/v1/students/"):
		a.routeStudentScope(w, r)
		return

	case r.Method == http.MethodPost && r.URL.Path == "/v1/imports/students":
		a.handleImportStudents(w, r)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/v1/imports/attendance":
		a.handleImportAttendance(w, r)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/v1/imports/fees":
		a.handleImportFees(w, r)
		return

	case r.Method == http.MethodPost && r.URL.Path == "/v1/attendance":
		a.handleMarkAttendance(w, r)
		return
	case r.Method == http.MethodGet && r.URL.Path == "/v1/attendance":
		a.handleListAttendance(w, r)
		return

	case r.Method == http.MethodPost && r.URL.Path == "/v1/fees":
		a.handleCreateFee(w, r)
		return
	case r.Method == http.MethodGet && r.URL.Path == "/v1/fees":
		a.handleListFees(w, r)
		return

	case r.Method == http.MethodPost && r.URL.Path == "/v1/ppp":
		a.handleCreatePPP(w, r)
		return
	case r.Method == http.MethodGet && r.URL.Path == "/v1/ppp":
		a.handleListPPP(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/v1/ppp/"):
		a.routePPPScope(w, r)
		return

	case r.Method == http.MethodGet && r.URL.Path == "/v1/notices/ws":
		a.handleNoticesWS(w, r)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/v1/notices":
		a.handleCreateNotice(w, r)
		return
	case r.Method == http.MethodGet && r.URL.Path == "/v1/notices":
		a.handleListNotices(w, r)
		return
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/v1/notices/"):
		a.handleDeleteNotice(w, r, strings.TrimPrefix(r.URL.Path, "/v1/notices/"))
		return

	case r.Method == http.MethodGet && r.URL.Path == "/v1/dashboard":
		a.handleStaffDashboard(w, r)
		return
	case r.Method == http.MethodGet && r.URL.Path == "/v1/me/dashboard":
		a.handleStudentDashboard(w, r)
		return
	case r.Method == http.MethodGet && r.URL.Path == "/v1/me/profile":
		a.handleMyProfile(w, r)
		return

	case r.Method == http.MethodGet && r.URL.Path == "/v1/accounts":
		a.handleListAccounts(w, r)
		return
	case r.Method == http.MethodPost && r.URL.Path == "/v1/accounts":
		a.handleCreateStaffAccount(w, r)
		return
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/v1/accounts/") && strings.HasSuffix(r.URL.Path, "/reset-password"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/accounts/"), "/reset-password")
		a.handleResetAccountPassword(w, r, id)
		return
	}

	httpx.WriteError(w, http.StatusNotFound, "not found")
}

func (a *App) routeStudentScope(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/students/")
	if r.Method == http.MethodGet && strings.HasSuffix(id, "/profile") {
		a.handleStudentProfile(w, r, strings.TrimSuffix(id, "/profile"))
		return
	}
	if id == "" || strings.Contains(id, "/") {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.handleGetStudent(w, r, id)
	case http.MethodPut:
		a.handleUpdateStudent(w, r, id)
	case http.MethodDelete:
		a.handleDeleteStudent(w, r, id)
	default:
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *App) routePPPScope(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/ppp/")
	if r.Method == http.MethodPatch && strings.HasSuffix(rest, "/status") {
		a.handleUpdatePPPStatus(w, r, strings.TrimSuffix(rest, "/status"))
		return
	}
	httpx.WriteError(w, http.StatusNotFound, "not found")
}

func (a *App) authenticate(r *http.Request) (middleware.Principal, error) {
	return middleware.AuthenticateRequest(r, a.tokens)
}

func (a *App) requireStaff(w http.ResponseWriter, r *http.Request) (middleware.Principal, bool) {
	principal, err := a.authenticate(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return middleware.Principal{}, false
	}
	if !principal.IsStaff() {
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
		return middleware.Principal{}, false
	}
	return principal, true
}

func (a *App) requireUser(w http.ResponseWriter, r *http.Request) (middleware.Principal, bool) {
	principal, err := a.authenticate(r)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return middleware.Principal{}, false
	}
	return principal, true
}

func (a *App) handleHealth(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	}
}

func isTLSRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
		return true
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working through the metrics wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// routePattern collapses request paths to their first two API segments so
// the duration histogram stays low cardinality.
func routePattern(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "/" + strings.Join(parts, "/")
}

func clientAddr(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
