package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"pdv/m/internal/apperr"
	"pdv/m/internal/auth"
	"pdv/m/internal/catalog"
	"pdv/m/internal/config"
	"pdv/m/internal/database"
	"pdv/m/internal/logger"
	"pdv/m/internal/sales"
)

const degradedHeader = "X-Degraded"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	cfg      config.Config
	users    *auth.Users
	issuer   *auth.Issuer
	catalog  *catalog.Store
	recorder *sales.Recorder
	history  *sales.History
	validate *validator.Validate
	now      func() time.Time
}

// New constructs a Handler over an open, migrated database.
func New(db *sqlx.DB, cfg config.Config) *Handler {
	return &Handler{
		db:       db,
		cfg:      cfg,
		users:    auth.NewUsers(db, cfg.OwnerEmail),
		issuer:   auth.NewIssuer(cfg.Secret, cfg.SessionTTL),
		catalog:  catalog.NewStore(db),
		recorder: sales.NewRecorder(db),
		history:  sales.NewHistory(db),
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition", degradedHeader},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if h.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(h.cfg.RequestTimeout))
	}

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.With(auth.Optional(h.issuer, h.cfg.SessionCookie)).Get("/me", h.me)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(h.issuer, h.cfg.SessionCookie))

		pr.Route("/customers", func(r chi.Router) {
			r.Get("/", h.listCustomers)
			r.Post("/", h.createCustomer)
			r.Put("/{id}", h.updateCustomer)
			r.Delete("/{id}", h.deleteCustomer)
		})

		pr.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Get("/", h.listSales)
			r.Post("/", h.createSale)
			r.Post("/quote", h.quoteSale)
			r.Get("/{id}", h.getSale)
			r.Get("/{id}/receipt", h.saleReceipt)
		})

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/sales/daily", h.dailySales)
			r.Get("/sales/monthly", h.monthlySales)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		logger.WarnCtx(r.Context(), "health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// accountID is the authenticated account; routes behind auth.Middleware
// always have one.
func accountID(r *http.Request) int64 {
	id, _ := auth.UserID(r.Context())
	return id
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("id", "must be a positive integer")
	}
	return id, nil
}

// Helpers

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into dest and runs its validate tags.
// Failures come back as *apperr.ValidationError named after the json field.
func (h *Handler) decodeRequest(r *http.Request, dest any) error {
	if err := decodeJSON(r, dest); err != nil {
		return apperr.Validationf("", "invalid request body: %v", err)
	}
	err := h.validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return apperr.Validation(field, describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + fe.Param()
	case "len":
		return "must have " + fe.Param() + " characters"
	case "numeric":
		return "must contain only digits"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps application errors onto status codes. Anything unexpected
// is logged and hidden behind a generic 500.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		body := map[string]string{"error": verr.Error()}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		respondJSON(w, http.StatusBadRequest, body)
	case apperr.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case apperr.IsStorageUnavailable(err):
		logger.ErrorCtx(r.Context(), "storage unavailable", "error", err)
		respondError(w, http.StatusServiceUnavailable, "storage unavailable")
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.ErrorCtx(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondList writes a list result. When storage is unreachable the list
// degrades to empty and the response is flagged instead of failing.
func respondList[T any](w http.ResponseWriter, r *http.Request, op string, items []T, err error) {
	if err != nil {
		if !apperr.IsStorageUnavailable(err) {
			respondErr(w, r, err)
			return
		}
		logger.WarnCtx(r.Context(), fmt.Sprintf("%s degraded to an empty list", op), "error", err)
		w.Header().Set(degradedHeader, "storage-unavailable")
		items = []T{}
	}
	if items == nil {
		items = []T{}
	}
	respondJSON(w, http.StatusOK, items)
}
