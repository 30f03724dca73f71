package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

const swaggerUITemplate = `<!DOCTYPE html>
<html lang="vi">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} · Tài liệu API</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
    <style>
        body { margin: 0; background: #f5f7fb; font-family: system-ui, sans-serif; }
        header { padding: 14px 24px; background: #1e3a8a; color: #fff; display: flex; gap: 16px; align-items: baseline; }
        header h1 { margin: 0; font-size: 18px; }
        header a { color: #bfdbfe; font-size: 13px; }
        .swagger-ui .topbar { display: none; }
    </style>
</head>
<body>
    <header>
        <h1>{{.Title}}{{if .Version}} v{{.Version}}{{end}}</h1>
        <a href="{{.YAMLURL}}">openapi.yaml</a>
        <a href="{{.JSONURL}}">openapi.json</a>
    </header>
    <noscript>Cần bật JavaScript để xem tài liệu API.</noscript>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "{{.YAMLURL}}",
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis],
                docExpansion: "list",
                filter: true,
                persistAuthorization: true,
                tryItOutEnabled: true
            });
        };
    </script>
</body>
</html>`

// SwaggerHandler serves Swagger UI and the OpenAPI document
type SwaggerHandler struct {
	title    string
	version  string
	prefix   string
	spec     []byte
	specJSON []byte
}

// NewSwaggerHandler creates a new Swagger handler. spec is the YAML document.
func NewSwaggerHandler(title, prefix string, spec []byte) (*SwaggerHandler, error) {
	var doc struct {
		Info struct {
			Version string `yaml:"version"`
		} `yaml:"info"`
	}
	if err := yaml.Unmarshal(spec, &doc); err != nil {
		return nil, fmt.Errorf("parsing openapi spec: %w", err)
	}

	specJSON, err := yamlToJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("converting openapi spec: %w", err)
	}
	return &SwaggerHandler{
		title:    title,
		version:  doc.Info.Version,
		prefix:   prefix,
		spec:     spec,
		specJSON: specJSON,
	}, nil
}

func yamlToJSON(spec []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(spec, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(stringKeys(doc))
}

// stringKeys rewrites maps with non-string keys, such as status codes, for encoding/json
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = stringKeys(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = stringKeys(item)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = stringKeys(item)
		}
		return t
	default:
		return v
	}
}

// RegisterRoutes registers Swagger routes
func (h *SwaggerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/docs", h.UI())
	r.Get("/docs/openapi.yaml", h.Spec())
	r.Get("/docs/openapi.json", h.SpecJSON())
}

// UI serves the Swagger UI HTML page
func (h *SwaggerHandler) UI() http.HandlerFunc {
	tmpl := template.Must(template.New("swagger").Parse(swaggerUITemplate))

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		data := struct {
			Title   string
			Version string
			YAMLURL string
			JSONURL string
		}{
			Title:   h.title,
			Version: h.version,
			YAMLURL: h.prefix + "/docs/openapi.yaml",
			JSONURL: h.prefix + "/docs/openapi.json",
		}

		if err := tmpl.Execute(w, data); err != nil {
			http.Error(w, "failed to render template", http.StatusInternalServerError)
			return
		}
	}
}

// Spec serves the OpenAPI specification in YAML format
func (h *SwaggerHandler) Spec() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(h.spec)
	}
}

// SpecJSON serves the OpenAPI specification in JSON format
func (h *SwaggerHandler) SpecJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(h.specJSON)
	}
}
