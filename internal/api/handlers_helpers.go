// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package api

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eatwhat/internal/validation"
)

// DeviceIDHeader carries the client generated device id.
const DeviceIDHeader = "X-Device-ID"

// maxBodyBytes caps JSON request bodies; a full batch upload is far below it.
const maxBodyBytes = 1 << 20

// errEmptyBody is returned by decodeJSON for a request without a body.
var errEmptyBody = errors.New("empty request body")

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// validateRequest runs go-playground/validator over v and writes a 400
// when it fails. It reports whether the handler may continue.
func validateRequest(rw *ResponseWriter, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	rw.ValidationError(verr.Message(), verr.Details())
	return false
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// queryBool reports whether a query flag is literally "true".
func queryBool(r *http.Request, key string) bool {
	return r.URL.Query().Get(key) == "true"
}

// clamp bounds v to [1, maxV], substituting def for non-positive values.
func clamp(v, def, maxV int) int {
	if v <= 0 {
		v = def
	}
	if maxV > 0 && v > maxV {
		v = maxV
	}
	return v
}

// clientIP returns the remote address without its port. The router runs
// chi's RealIP first, so proxy headers are already applied.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// deviceID returns the client supplied X-Device-ID or, failing that, a
// fingerprint of the request.
func deviceID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(DeviceIDHeader)); id != "" {
		return id
	}
	return deviceFingerprint(r)
}

// deviceFingerprint hashes the request headers that are stable for one
// browser: the first 16 hex characters of
// sha256(userAgent|acceptLanguage|acceptEncoding|ip).
func deviceFingerprint(r *http.Request) string {
	raw := strings.Join([]string{
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
		clientIP(r),
	}, "|")
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}
