package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/client/models"
	"github.com/dmitrijs2005/societyhub/internal/common"
	"github.com/dmitrijs2005/societyhub/internal/logging"
	"github.com/gorilla/mux"
)

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// Options configures a Server. Zero values select the defaults.
type Options struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now is the clock used for token issue and expiry.
	Now        func() time.Time
	BcryptCost int

	// AdminUsername and AdminPassword seed an administrator when both are set.
	AdminUsername string
	AdminPassword string
	// SeedData adds a demo society and a handful of records.
	SeedData bool
}

type Server struct {
	router *mux.Router
	store  *Store
	tokens *Tokens
	log    logging.Logger
}

type ctxKey struct{}

func New(opts Options, log logging.Logger) (*Server, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("devserver: secret is required")
	}
	if opts.AccessTTL == 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.RefreshTTL == 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}

	s := &Server{
		router: mux.NewRouter(),
		store:  NewStore(opts.BcryptCost),
		tokens: NewTokens(opts.Secret, opts.AccessTTL, opts.RefreshTTL, opts.Now),
		log:    log,
	}

	if opts.AdminUsername != "" && opts.AdminPassword != "" {
		society := 1
		_, err := s.store.AddUser(models.User{
			Username:  opts.AdminUsername,
			FirstName: "Society",
			LastName:  "Admin",
			Role:      models.RoleAdmin,
			Society:   &society,
		}, opts.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}
	if opts.SeedData {
		seed(s.store)
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login/", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh/", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/register/", s.handleRegister).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/auth/profile/", s.handleProfile).Methods(http.MethodGet)
	authed.HandleFunc("/auth/profile/", s.handleUpdateProfile).Methods(http.MethodPut, http.MethodPatch)
	authed.HandleFunc("/auth/change-password/", s.handleChangePassword).Methods(http.MethodPost)
	authed.HandleFunc("/auth/users/", s.handleUsers).Methods(http.MethodGet)
	authed.HandleFunc("/auth/users/{id:[0-9]+}/", s.handleUpdateUser).Methods(http.MethodPut, http.MethodPatch)
	authed.PathPrefix("/").HandlerFunc(s.handleCollection)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "dev server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.log.Info(ctx, "dev server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		id, err := s.tokens.Parse(token, TokenAccess)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		if _, err := s.store.User(id); err != nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func userID(r *http.Request) int {
	id, _ := r.Context().Value(ctxKey{}).(int)
	return id
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	u, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, refresh, err := s.tokens.Pair(u.ID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access": access, "refresh": refresh, "user": u})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
		return
	}

	id, err := s.tokens.Parse(req.Refresh, TokenRefresh)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	access, err := s.tokens.Issue(id, TokenAccess)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FlatNumber      string `json:"flat_number"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		Email           string `json:"email"`
		Phone           string `json:"phone"`
		Society         int    `json:"society"`
	}
	if !decode(w, r, &req) {
		return
	}

	username := strings.ToLower(nonAlnum.ReplaceAllString(req.FlatNumber, ""))
	fieldErrs := map[string][]string{}
	if username == "" {
		fieldErrs["flat_number"] = []string{"This field is required."}
	}
	if req.Password == "" {
		fieldErrs["password"] = []string{"This field is required."}
	} else if req.Password != req.PasswordConfirm {
		fieldErrs["password_confirm"] = []string{"Passwords do not match."}
	}
	if req.FirstName == "" {
		fieldErrs["first_name"] = []string{"This field is required."}
	}
	if req.Society == 0 {
		fieldErrs["society"] = []string{"This field is required."}
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrs)
		return
	}

	society := req.Society
	u, err := s.store.AddUser(models.User{
		Username:  username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      models.RoleResident,
		Society:   &society,
	}, req.Password)
	if errors.Is(err, ErrUsernameTaken) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"flat_number": {"A resident is already registered for this flat."},
		})
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.User(userID(r))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
	}
	if !decode(w, r, &req) {
		return
	}

	u, err := s.store.UpdateUser(userID(r), func(u *models.User) {
		setIfPresent(&u.FirstName, req.FirstName)
		setIfPresent(&u.LastName, req.LastName)
		setIfPresent(&u.Email, req.Email)
		setIfPresent(&u.Phone, req.Phone)
	})
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword        string `json:"old_password"`
		NewPassword        string `json:"new_password"`
		NewPasswordConfirm string `json:"new_password_confirm"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.NewPassword == "" || req.NewPassword != req.NewPasswordConfirm {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"new_password_confirm": {"Passwords do not match."}})
		return
	}

	err := s.store.ChangePassword(userID(r), req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrBadCredentials):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"old_password": {"Wrong password."}})
	case err != nil:
		s.internalError(w, r, err)
	default:
		writeDetail(w, http.StatusOK, "Password changed successfully.")
	}
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	u, err := s.store.User(userID(r))
	if err != nil || !u.IsAdmin() {
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return false
	}
	return true
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	users := s.store.Users()
	writeJSON(w, http.StatusOK, map[string]any{"count": len(users), "results": users})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		FirstName *string      `json:"first_name"`
		LastName  *string      `json:"last_name"`
		Email     *string      `json:"email"`
		Phone     *string      `json:"phone"`
		Role      *models.Role `json:"role"`
		Society   *int         `json:"society"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Role != nil && !req.Role.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"role": {fmt.Sprintf("%q is not a valid choice.", *req.Role)},
		})
		return
	}

	u, err := s.store.UpdateUser(id, func(u *models.User) {
		setIfPresent(&u.FirstName, req.FirstName)
		setIfPresent(&u.LastName, req.LastName)
		setIfPresent(&u.Email, req.Email)
		setIfPresent(&u.Phone, req.Phone)
		if req.Role != nil {
			u.Role = *req.Role
		}
		if req.Society != nil {
			society := *req.Society
			u.Society = &society
		}
	})
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleCollection serves any other path as a collection ("/notices/") or
// an item of one ("/notices/3/"). A trailing action segment after an id
// ("/visitors/3/check_in/") updates the item with the request body.
func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	segs := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/"), "/")

	idx := -1
	for i, seg := range segs {
		if _, err := strconv.Atoi(seg); err == nil {
			idx = i
			break
		}
	}

	if idx < 0 {
		path := "/" + strings.Join(segs, "/") + "/"
		switch r.Method {
		case http.MethodGet:
			items := s.store.List(path, r.URL.Query())
			writeJSON(w, http.StatusOK, map[string]any{
				"count": len(items), "next": nil, "previous": nil, "results": items,
			})
		case http.MethodPost:
			var rec map[string]any
			if !decode(w, r, &rec) {
				return
			}
			writeJSON(w, http.StatusCreated, s.store.Create(path, rec))
		default:
			writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
		}
		return
	}

	path := "/" + strings.Join(segs[:idx], "/") + "/"
	id, _ := strconv.Atoi(segs[idx])
	action := idx < len(segs)-1

	var (
		rec map[string]any
		err error
	)
	switch {
	case r.Method == http.MethodGet && !action:
		rec, err = s.store.Get(path, id)
	case r.Method == http.MethodDelete && !action:
		if err = s.store.Delete(path, id); err == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	case r.Method == http.MethodPut || r.Method == http.MethodPatch || (r.Method == http.MethodPost && action):
		fields := map[string]any{}
		if r.ContentLength != 0 && !decode(w, r, &fields) {
			return
		}
		if action {
			fields["last_action"] = segs[len(segs)-1]
		}
		rec, err = s.store.Update(path, id, fields)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
		return
	}

	if errors.Is(err, common.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	writeDetail(w, http.StatusInternalServerError, "Internal server error.")
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return false
	}
	return true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
