package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists one handler per operation of openapi.yaml.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	ListNegotiations(w http.ResponseWriter, r *http.Request)
	CreateNegotiation(w http.ResponseWriter, r *http.Request)
	GetNegotiation(w http.ResponseWriter, r *http.Request, id string)
	DeleteNegotiation(w http.ResponseWriter, r *http.Request, id string)
	GetHistory(w http.ResponseWriter, r *http.Request, id string)
	SubmitTurn(w http.ResponseWriter, r *http.Request, id string)
	SendSignal(w http.ResponseWriter, r *http.Request, id string, signal string)
	GuardReply(w http.ResponseWriter, r *http.Request, id string)
	ListTranscripts(w http.ResponseWriter, r *http.Request, params ListTranscriptsParams)
	GetTranscript(w http.ResponseWriter, r *http.Request, id string)
}

// ListTranscriptsParams holds the query parameters of listTranscripts.
type ListTranscriptsParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper binds path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return "", false
	}
	return value, true
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

func (siw *ServerInterfaceWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetInfo(w, r)
}

func (siw *ServerInterfaceWrapper) ListNegotiations(w http.ResponseWriter, r *http.Request) {
	siw.Handler.ListNegotiations(w, r)
}

func (siw *ServerInterfaceWrapper) CreateNegotiation(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateNegotiation(w, r)
}

func (siw *ServerInterfaceWrapper) GetNegotiation(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.GetNegotiation(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) DeleteNegotiation(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.DeleteNegotiation(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) GetHistory(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.GetHistory(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.SubmitTurn(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) SendSignal(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.pathParam(w, r, "id")
	if !ok {
		return
	}
	signal, ok := siw.pathParam(w, r, "signal")
	if !ok {
		return
	}
	siw.Handler.SendSignal(w, r, id, signal)
}

func (siw *ServerInterfaceWrapper) GuardReply(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.GuardReply(w, r, id)
	}
}

func (siw *ServerInterfaceWrapper) ListTranscripts(w http.ResponseWriter, r *http.Request) {
	var params ListTranscriptsParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	siw.Handler.ListTranscripts(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetTranscript(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.pathParam(w, r, "id"); ok {
		siw.Handler.GetTranscript(w, r, id)
	}
}

// HandlerFromMux registers every operation on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		},
	}

	r.Get("/health", wrapper.GetHealth)
	r.Get("/info", wrapper.GetInfo)
	r.Get("/negotiations", wrapper.ListNegotiations)
	r.Post("/negotiations", wrapper.CreateNegotiation)
	r.Get("/negotiations/{id}", wrapper.GetNegotiation)
	r.Delete("/negotiations/{id}", wrapper.DeleteNegotiation)
	r.Get("/negotiations/{id}/history", wrapper.GetHistory)
	r.Post("/negotiations/{id}/turns", wrapper.SubmitTurn)
	r.Post("/negotiations/{id}/signals/{signal}", wrapper.SendSignal)
	r.Post("/negotiations/{id}/guard", wrapper.GuardReply)
	r.Get("/transcripts", wrapper.ListTranscripts)
	r.Get("/transcripts/{id}", wrapper.GetTranscript)
	return r
}
