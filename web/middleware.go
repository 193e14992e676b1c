package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mediocregopher/radix/v3"
	"goji.io/pat"

	"github.com/guildhub-gg/guildhub/common"
	"github.com/guildhub-gg/guildhub/perms"
)

type contextKey int

const contextKeyUserID contextKey = iota

const sessionCookieName = "guildhub-session"

// machine readable error reasons, authentication and authorization failures
// are distinguishable by the caller
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonUnauthorized    = "unauthorized"
	ReasonValidation      = "validation"
	ReasonNotFound        = "not_found"
	ReasonInternal        = "internal"
)

type apiErrorBody struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func writeAPIError(w http.ResponseWriter, status int, reason, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": apiErrorBody{Reason: reason, Detail: detail}})
}

func writeJSON(w http.ResponseWriter, out interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		logger.WithError(err).Error("failed encoding api response")
	}
}

func RequestLogger(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		inner.ServeHTTP(w, r)
		logger.WithField("elapsed", time.Since(started).String()).Debug(r.Method, " ", r.URL.Path)
	})
}

// SessionMiddleware resolves the signed in user from the session cookie. The
// sign-in flow is external to this service and stores token -> user id in
// redis, here we only look it up. Requests without a valid session pass
// through unauthenticated.
func SessionMiddleware(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			inner.ServeHTTP(w, r)
			return
		}

		var rawUserID string
		err = common.RedisPool.Do(radix.Cmd(&rawUserID, "GET", "web_sessions:"+cookie.Value))
		if err != nil {
			logger.WithError(err).Error("failed looking up web session")
			inner.ServeHTTP(w, r)
			return
		}

		userID := common.ParseInt64(rawUserID)
		if userID == 0 {
			inner.ServeHTTP(w, r)
			return
		}

		inner.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeyUserID, userID)))
	})
}

// CurrentUserID returns the signed in user's id, 0 when unauthenticated
func CurrentUserID(r *http.Request) int64 {
	if v, ok := r.Context().Value(contextKeyUserID).(int64); ok {
		return v
	}

	return 0
}

func guildParam(r *http.Request) int64 {
	return common.ParseInt64(pat.Param(r, "guild"))
}

func requireSession(inner http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUserID(r) == 0 {
			writeAPIError(w, http.StatusUnauthorized, ReasonUnauthenticated, "sign in required")
			return
		}

		inner(w, r)
	}
}

// requireOfficer gates officer-only operations, implies requireSession
func requireOfficer(inner http.HandlerFunc) http.HandlerFunc {
	return requireSession(func(w http.ResponseWriter, r *http.Request) {
		guildID := guildParam(r)
		if guildID == 0 {
			writeAPIError(w, http.StatusBadRequest, ReasonValidation, "invalid guild id")
			return
		}

		if !perms.IsOfficer(r.Context(), guildID, CurrentUserID(r)) {
			writeAPIError(w, http.StatusForbidden, ReasonUnauthorized, "officer authority required")
			return
		}

		inner(w, r)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(dst)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, ReasonValidation, "malformed request body")
		return false
	}

	return true
}
