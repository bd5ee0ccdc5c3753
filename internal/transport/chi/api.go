package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// RunID is the path parameter of GET /intelligence/runs/{run_id}.
type RunID = int64

// GetRankingsParams defines parameters for GetRankings.
type GetRankingsParams struct {
	UseCase  *string `form:"use_case,omitempty" json:"use_case,omitempty"`
	Page     *int    `form:"page,omitempty" json:"page,omitempty"`
	PageSize *int    `form:"page_size,omitempty" json:"page_size,omitempty"`
}

// CompareParams defines parameters for Compare.
type CompareParams struct {
	Ids []int64 `form:"ids" json:"ids"`
}

// FinderParams defines parameters for Finder.
type FinderParams struct {
	Budget   *float64 `form:"budget,omitempty" json:"budget,omitempty"`
	UsbC     *bool    `form:"usb_c,omitempty" json:"usb_c,omitempty"`
	MinThrow *int64   `form:"min_throw,omitempty" json:"min_throw,omitempty"`
	Limit    *int     `form:"limit,omitempty" json:"limit,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Create a recommendation run
	// (POST /intelligence/runs)
	CreateRun(w http.ResponseWriter, r *http.Request)
	// Fetch a stored run
	// (GET /intelligence/runs/{run_id})
	GetRun(w http.ResponseWriter, r *http.Request, runID RunID)
	// Catalog ranked by profile score
	// (GET /rankings)
	GetRankings(w http.ResponseWriter, r *http.Request, params GetRankingsParams)
	// Side-by-side profile scores
	// (GET /compare)
	Compare(w http.ResponseWriter, r *http.Request, params CompareParams)
	// Filtered catalog ordered by the blended finder score
	// (GET /finder)
	Finder(w http.ResponseWriter, r *http.Request, params FinderParams)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	CreateMiddlewares  []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// CreateRun operation middleware
func (siw *ServerInterfaceWrapper) CreateRun(w http.ResponseWriter, r *http.Request) {
	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateRun(w, r)
	}))
	for _, middleware := range siw.CreateMiddlewares {
		handler = middleware(handler)
	}
	siw.serve(handler, w, r)
}

// GetRun operation middleware
func (siw *ServerInterfaceWrapper) GetRun(w http.ResponseWriter, r *http.Request) {
	var runID RunID
	err := runtime.BindStyledParameterWithOptions("simple", "run_id", chi.URLParam(r, "run_id"), &runID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "run_id", Err: err})
		return
	}
	if runID <= 0 {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "run_id", Err: fmt.Errorf("must be positive")})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetRun(w, r, runID)
	}))
	siw.serve(handler, w, r)
}

// GetRankings operation middleware
func (siw *ServerInterfaceWrapper) GetRankings(w http.ResponseWriter, r *http.Request) {
	var params GetRankingsParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "use_case", query, &params.UseCase); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "use_case", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page_size", query, &params.PageSize); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page_size", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetRankings(w, r, params)
	}))
	siw.serve(handler, w, r)
}

// Compare operation middleware
func (siw *ServerInterfaceWrapper) Compare(w http.ResponseWriter, r *http.Request) {
	var params CompareParams
	query := r.URL.Query()

	if _, ok := query["ids"]; !ok {
		siw.ErrorHandlerFunc(w, r, &RequiredParamError{ParamName: "ids"})
		return
	}
	if err := runtime.BindQueryParameter("form", false, true, "ids", query, &params.Ids); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "ids", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Compare(w, r, params)
	}))
	siw.serve(handler, w, r)
}

// Finder operation middleware
func (siw *ServerInterfaceWrapper) Finder(w http.ResponseWriter, r *http.Request) {
	var params FinderParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "budget", query, &params.Budget); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "budget", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "usb_c", query, &params.UsbC); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "usb_c", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "min_throw", query, &params.MinThrow); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "min_throw", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	handler := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Finder(w, r, params)
	}))
	siw.serve(handler, w, r)
}

// HealthCheck operation middleware
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(http.HandlerFunc(siw.Handler.HealthCheck), w, r)
}

// Metrics operation middleware
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(http.HandlerFunc(siw.Handler.Metrics), w, r)
}

func (siw *ServerInterfaceWrapper) serve(handler http.Handler, w http.ResponseWriter, r *http.Request) {
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// RequiredParamError reports a missing required parameter.
type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
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

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL           string
	BaseRouter        chi.Router
	Middlewares       []MiddlewareFunc
	CreateMiddlewares []MiddlewareFunc
	ErrorHandlerFunc  func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		CreateMiddlewares:  options.CreateMiddlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/intelligence/runs", wrapper.CreateRun)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/intelligence/runs/{run_id}", wrapper.GetRun)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/rankings", wrapper.GetRankings)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/compare", wrapper.Compare)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/finder", wrapper.Finder)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.Metrics)
	})

	return r
}
