package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/document"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

const maxRequestSize = 10 << 20 // 10MB

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type exportRequest struct {
	Document *document.SketchDocument `json:"document"`
	Viewport *engine.Viewport         `json:"viewport,omitempty"`
	Name     string                   `json:"name,omitempty"`
}

// ExportSVG resolves a posted document and streams it back as an SVG
// attachment. The client supplies the document so unsaved work exports too.
func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Document == nil {
		http.Error(w, "document is required", http.StatusBadRequest)
		return
	}

	vp := engine.NewViewport(geom.Vec2(0, 0), geom.Vec2(20, 15), geom.Vec2(1280, 960))
	if req.Viewport != nil {
		if req.Viewport.VirtualSize.X <= 0 || req.Viewport.VirtualSize.Y <= 0 ||
			req.Viewport.ActualSize.X <= 0 || req.Viewport.ActualSize.Y <= 0 {
			http.Error(w, "viewport sizes must be positive", http.StatusBadRequest)
			return
		}
		vp = *req.Viewport
	}

	name := req.Name
	if name == "" {
		name = "sketch"
	}
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	svg, err := RenderSVG(req.Document, vp)
	if err != nil {
		slog.Error("export failed", "error", err)
		http.Error(w, "could not resolve document", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.svg"`, name))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg))

	slog.Info("export complete", "entities", len(req.Document.Order), "size", len(svg))
}
