// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request (request_id, method, path, status, bytes,
duration_ms), at error level for 5xx. Responses carry X-Request-ID.

# Authentication

RequireIdentity verifies the bearer token and puts the caller's
auth.Identity in the request context:

	authed := middleware.RequireIdentity(verifier)
	mux.HandleFunc("GET /auth/me", middleware.WithLogging(authed(h.Me)))

Missing, malformed, or expired tokens get 401.

# Rate Limiting

RateLimit keeps a token bucket per caller (token subject, or client IP
when unauthenticated) and answers 429 with Retry-After when the bucket is
empty:

	limiter := middleware.NewClientLimiter(cfg.RateLimit, cfg.RateBurst)
	mux.HandleFunc("POST /votes/matches", middleware.WithLogging(authed(
		middleware.RateLimit(limiter, h.SubmitMatch))))

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Reflects the request origin, allows GET, POST and OPTIONS with
Content-Type and Authorization, and answers preflights with 204.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse and validate JSON request bodies:

	var req models.SubmitMatchRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := middleware.Validate(req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

ParseJSONBody rejects unknown fields, trailing data and bodies over
MaxBodyBytes. Validate reports failing fields by their JSON names.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used to key rate limits for unauthenticated callers.
*/
package middleware
