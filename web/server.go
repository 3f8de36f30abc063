package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mogaika/meshprobe/inspect"
)

type Server struct {
	Inspector *inspect.Inspector
	Reports   *inspect.ReportHolder
	upgrader  websocket.Upgrader
}

func NewServer(ins *inspect.Inspector, reports *inspect.ReportHolder) *Server {
	return &Server{
		Inspector: ins,
		Reports:   reports,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.HandlerReportText).Methods("GET")
	r.HandleFunc("/json/report", s.HandlerReportJson).Methods("GET")
	r.HandleFunc("/json/layout", s.HandlerLayout).Methods("GET")
	r.HandleFunc("/json/models", s.HandlerModels).Methods("GET")
	r.HandleFunc("/json/model/{name}", s.HandlerInspectModel).Methods("GET")
	r.HandleFunc("/dump/model/{name}", s.HandlerDumpModel).Methods("GET")
	r.HandleFunc("/export/model/{name}", s.HandlerExportModel).Methods("GET")
	r.HandleFunc("/export/fbx/{name}", s.HandlerExportFbx).Methods("GET")
	r.HandleFunc("/ws/status", s.HandlerStatus)
	return r
}

func (s *Server) Handler() http.Handler {
	return handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler()(s.Router()))
}

func StartServer(addr string, s *Server) error {
	log.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}
