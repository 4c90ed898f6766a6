package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/ougajs-sys/easyflows-backend/api/responses"
	"github.com/ougajs-sys/easyflows-backend/api/validators"
	"github.com/ougajs-sys/easyflows-backend/internal/auth"
	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

// Login authenticates an operator and returns an access token.
func Login(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), req, clientIP(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
