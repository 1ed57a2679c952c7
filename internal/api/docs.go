package api

import (
	"net/http"
	"os"
)

func openAPILoad() ([]byte, error) {
	return os.ReadFile("openapi/openapi.yaml")
}

// OpenAPIHandler serves the raw OpenAPI document.
func (s *Server) OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	data, err := openAPILoad()
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "OpenAPI unavailable", err.Error(), r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(data)
}

// DocsHandler serves a minimal ReDoc page referencing /openapi.yaml
func (s *Server) DocsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
  <head><title>routeopt API</title></head>
  <body>
    <redoc spec-url="/openapi.yaml"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>`))
}
