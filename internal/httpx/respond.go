package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes surfaced as client errors.
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// statusFor maps a store or domain error to an HTTP status and a message safe
// to return to the client.
func statusFor(err error) (int, string) {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, catalog.ErrInvalidQuantity):
		return http.StatusBadRequest, err.Error()
	case postgres.IsConnectionError(err):
		return http.StatusServiceUnavailable, "database unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return http.StatusBadRequest, "referenced record does not exist or is still in use"
		case pgNotNullViolation, pgCheckViolation:
			field := pgErr.ColumnName
			if field == "" {
				field = pgErr.ConstraintName
			}
			return http.StatusBadRequest, "invalid value for " + field
		case pgUniqueViolation:
			return http.StatusConflict, "record already exists"
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func writeStoreErr(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	ev := zerolog.Ctx(r.Context()).Warn()
	if code >= http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Int("status", code).Msg("request failed")
	writeErr(w, code, msg)
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeErr(w, http.StatusBadRequest, verrs[0].Field()+" failed "+verrs[0].Tag())
			return false
		}
		writeErr(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeErr(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// found writes v, or 404 when the lookup came back empty.
func found[T any](w http.ResponseWriter, v *T) {
	if v == nil {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// done answers update/delete calls: 204 when a row changed, 404 otherwise.
func done(w http.ResponseWriter, ok bool) {
	if !ok {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createdResp struct {
	ID int64 `json:"id"`
}

// list keeps empty results as [] rather than null.
func list[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}
