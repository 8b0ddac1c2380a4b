package api

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

// OpenAPISpecAsJSON returns the embedded OpenAPI document converted to JSON.
func OpenAPISpecAsJSON() ([]byte, error) {
	var spec interface{}
	if err := yaml.Unmarshal(openAPIYAML, &spec); err != nil {
		return nil, err
	}
	return json.Marshal(spec)
}

// OpenAPIHandler serves the OpenAPI document as YAML, or as JSON when the
// client asks for it.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "application/json" {
			jsonSpec, err := OpenAPISpecAsJSON()
			if err != nil {
				Error(w, http.StatusInternalServerError, "failed to convert openapi document to JSON")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(jsonSpec)
			return
		}

		w.Header().Set("Content-Type", "application/yaml")
		w.Write(openAPIYAML)
	}
}
