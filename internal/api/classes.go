package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

// fieldResponse describes one configurable field.
type fieldResponse struct {
	Name       string                 `json:"name"`
	Type       configurable.FieldType `json:"type"`
	Label      resource.Key           `json:"label"`
	Required   bool                   `json:"required"`
	MaxLength  int                    `json:"max_length,omitempty"`
	Default    *bool                  `json:"default,omitempty"`
	Capability hardware.Capability    `json:"capability,omitempty"`
}

// classResponse describes a device class.
type classResponse struct {
	Class    string                  `json:"class"`
	Metadata configurable.Metadata   `json:"metadata"`
	Fields   []fieldResponse         `json:"fields"`
	States   []automation.State      `json:"states"`
	Labels   map[resource.Key]string `json:"labels"`
	IconURL  string                  `json:"icon_url"`
}

func classToResponse(d configurable.Descriptor) classResponse {
	meta := d.Metadata()
	labels := make(map[resource.Key]string)
	addLabel := func(k resource.Key) {
		if k != "" {
			labels[k] = resource.English(k)
		}
	}
	for _, k := range []resource.Key{meta.Title, meta.Description, meta.AddLabel, meta.EditLabel, meta.Parent.Title, meta.Parent.Description} {
		addLabel(k)
	}

	defs := d.Fields()
	fields := make([]fieldResponse, 0, len(defs))
	for _, f := range defs {
		fr := fieldResponse{
			Name:      f.Name(),
			Type:      f.Type(),
			Label:     f.Label(),
			Required:  f.Required(),
			MaxLength: f.MaxLength(),
		}
		switch f.Type() {
		case configurable.FieldTypeBoolean:
			def := f.DefaultBool()
			fr.Default = &def
		case configurable.FieldTypePortReference:
			fr.Capability = f.Capability()
		}
		addLabel(f.Label())
		fields = append(fields, fr)
	}

	states := d.States().States()
	for _, st := range states {
		addLabel(st.Label)
		addLabel(st.Action)
	}

	return classResponse{
		Class:    d.Class(),
		Metadata: meta,
		Fields:   fields,
		States:   states,
		Labels:   labels,
		IconURL:  "/api/v1/classes/" + d.Class() + "/icon.svg",
	}
}

// handleListCategories returns the parent categories of all classes.
func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	type categoryResponse struct {
		configurable.Category
		TitleText       string `json:"title_text"`
		DescriptionText string `json:"description_text"`
		Icon            string `json:"icon"`
	}
	cats := s.classes.Categories()
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{
			Category:        c,
			TitleText:       resource.English(c.Title),
			DescriptionText: resource.English(c.Description),
			Icon:            c.Icon,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out, "count": len(out)})
}

// handleListClasses returns every registered device class.
func (s *Server) handleListClasses(w http.ResponseWriter, _ *http.Request) {
	descs := s.classes.List()
	out := make([]classResponse, 0, len(descs))
	for _, d := range descs {
		out = append(out, classToResponse(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"classes": out, "count": len(out)})
}

// lookupClass resolves the {class} URL parameter or writes a 404.
func (s *Server) lookupClass(w http.ResponseWriter, r *http.Request) (configurable.Descriptor, bool) {
	d, err := s.classes.Get(chi.URLParam(r, "class"))
	if err != nil {
		writeNotFound(w, "device class not found")
		return nil, false
	}
	return d, true
}

// handleGetClass returns one device class.
func (s *Server) handleGetClass(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupClass(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, classToResponse(d))
}

// handleClassIcon serves the class icon as SVG.
func (s *Server) handleClassIcon(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupClass(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response
	w.Write([]byte(d.Metadata().Icon))
}

// handleClassSchema returns the JSON Schema of an instance payload.
func (s *Server) handleClassSchema(w http.ResponseWriter, r *http.Request) {
	d, ok := s.lookupClass(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	writeJSONBody(w, http.StatusOK, configurable.SchemaDocument(d))
}

// handleListPorts returns the hardware pool snapshot.
func (s *Server) handleListPorts(w http.ResponseWriter, _ *http.Request) {
	ports := s.ports.List()
	writeJSON(w, http.StatusOK, map[string]any{"ports": ports, "count": len(ports)})
}
