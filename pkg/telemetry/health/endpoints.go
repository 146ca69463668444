package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	BuildTime      string `json:"build_time"`
	GoVersion      string `json:"go_version"`
	GrammarVersion string `json:"grammar_version,omitempty"`
}

// NewVersionInfo fills in the Go version for the given build values.
func NewVersionInfo(version, commit, buildTime, grammarVersion string) VersionInfo {
	return VersionInfo{
		Version:        version,
		Commit:         commit,
		BuildTime:      buildTime,
		GoVersion:      runtime.Version(),
		GrammarVersion: grammarVersion,
	}
}

// LivenessHandler serves the liveness probe.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowRead(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler serves the readiness probe: 200 when every check passes
// and 503 otherwise.
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "grammar": {"status": "ok", "duration_ms": 0.01},
//	        "snippets": {"status": "unhealthy", "message": "database is locked", "duration_ms": 5}
//	    },
//	    "timestamp": "2026-10-18T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowRead(w, r) {
			return
		}
		status := c.CheckReadiness(r.Context())
		code := http.StatusOK
		if !status.Ready() {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status)
	}
}

// VersionHandler serves build information.
func VersionHandler(info VersionInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowRead(w, r) {
			return
		}
		writeJSON(w, r, http.StatusOK, info)
	}
}

// Mux is the part of *http.ServeMux that Register needs.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Register mounts the liveness, readiness and version endpoints on mux.
func Register(mux Mux, c *Checker, livenessPath, readinessPath string, info VersionInfo) {
	mux.Handle(livenessPath, c.LivenessHandler())
	mux.Handle(readinessPath, c.ReadinessHandler())
	mux.Handle("/version", VersionHandler(info))
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(v)
	}
}
