package web

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/meshprobe/export"
	"github.com/mogaika/meshprobe/importer"
	"github.com/mogaika/meshprobe/inspect"
	"github.com/mogaika/meshprobe/layout"
	"github.com/mogaika/meshprobe/meshbuf"
	"github.com/mogaika/meshprobe/status"
	"github.com/mogaika/meshprobe/webutils"
)

func (s *Server) HandlerReportText(w http.ResponseWriter, r *http.Request) {
	webutils.WriteText(w, s.Reports.Get().Text)
}

func (s *Server) HandlerReportJson(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.Reports.Get())
}

// HandlerModels lists bundle files that have importer
func (s *Server) HandlerModels(w http.ResponseWriter, r *http.Request) {
	files, err := s.Inspector.Dir.List()
	if err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	models := make([]string, 0, len(files))
	for _, name := range files {
		if importer.Supported(name) {
			models = append(models, name)
		}
	}
	webutils.WriteJson(w, models)
}

func (s *Server) HandlerLayout(w http.ResponseWriter, r *http.Request) {
	d := layout.Default()
	if s.Inspector.NewDescriptor != nil {
		d = s.Inspector.NewDescriptor()
	}

	type jAttribute struct {
		Name        string
		Format      string
		Offset      int
		Size        int
		BufferIndex int
	}
	type jLayout struct {
		Attributes []jAttribute
		Strides    []int
		Valid      bool
		Error      string `json:",omitempty"`
	}

	result := jLayout{Valid: true}
	for _, a := range d.Attributes {
		result.Attributes = append(result.Attributes, jAttribute{
			Name: a.Name, Format: a.Format.String(), Offset: a.Offset, Size: a.Format.Size(), BufferIndex: a.BufferIndex})
	}
	for _, l := range d.Layouts {
		result.Strides = append(result.Strides, l.Stride)
	}
	if err := d.Validate(); err != nil {
		result.Valid = false
		result.Error = err.Error()
	}
	webutils.WriteJson(w, result)
}

func (s *Server) HandlerInspectModel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var text strings.Builder
	res := s.Inspector.InspectModel(name, &text)

	webutils.WriteJson(w, struct {
		*inspect.Result
		Text string
	}{res, text.String()})
}

func (s *Server) loadMesh(w http.ResponseWriter, name string) *meshbuf.Mesh {
	mesh, err := s.Inspector.LoadMesh(name)
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, inspect.ErrNotFound) {
			code = http.StatusNotFound
		}
		webutils.WriteError(w, code, err)
		return nil
	}
	return mesh
}

// encodeMesh writes mesh of model into memory. Mesh buffers are released
// before response is sent.
func (s *Server) encodeMesh(w http.ResponseWriter, name string, encode func(mesh *meshbuf.Mesh, out io.Writer) error) *bytes.Buffer {
	mesh := s.loadMesh(w, name)
	if mesh == nil {
		return nil
	}
	defer s.Inspector.Release(mesh)

	var buf bytes.Buffer
	if err := encode(mesh, &buf); err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, errors.Wrapf(err, "Failed to export '%s'", name))
		return nil
	}
	return &buf
}

func (s *Server) HandlerDumpModel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	buf := s.encodeMesh(w, name, func(mesh *meshbuf.Mesh, out io.Writer) error {
		_, err := out.Write(mesh.VertexBuffers[0].Contents())
		return err
	})
	if buf != nil {
		webutils.WriteFile(w, buf, name+".vb")
	}
}

func (s *Server) HandlerExportModel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	buf := s.encodeMesh(w, name, func(mesh *meshbuf.Mesh, out io.Writer) error {
		doc, err := export.ExportGLTF(mesh)
		if err != nil {
			return err
		}
		return export.ExportBinary(out, doc)
	})
	if buf != nil {
		webutils.WriteFile(w, buf, name+".glb")
	}
}

func (s *Server) HandlerExportFbx(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	buf := s.encodeMesh(w, name, func(mesh *meshbuf.Mesh, out io.Writer) error {
		f, err := export.ExportFBX(mesh)
		if err != nil {
			return err
		}
		return export.WriteFBX(out, f)
	})
	if buf != nil {
		webutils.WriteFile(w, buf, name+".fbx")
	}
}

func (s *Server) HandlerStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
