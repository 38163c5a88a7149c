// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/z5labs/strata"
	"github.com/z5labs/strata/health"
	"github.com/z5labs/strata/resolve"
	"github.com/z5labs/strata/route"
	"github.com/z5labs/strata/schema"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/z5labs/sdk-go/ptr"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ApiOptions holds configuration values used when constructing an [Api].
type ApiOptions struct {
	serializer Serializer
	authz      Authorizer

	readiness health.Monitor
	liveness  health.Monitor

	notFoundHandler         http.Handler
	methodNotAllowedHandler http.Handler
}

// ApiOption is an interface for configuring an [Api].
type ApiOption interface {
	ApplyApiOption(*ApiOptions)
}

type apiOptionFunc func(*ApiOptions)

func (f apiOptionFunc) ApplyApiOption(ao *ApiOptions) {
	f(ao)
}

// WithSerializer overrides the default registry backed [Serializer].
func WithSerializer(s Serializer) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.serializer = s
	})
}

// WithAuthorizer installs the authorization collaborator. Without it
// every request is anonymous and only public privileges match.
func WithAuthorizer(a Authorizer) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.authz = a
	})
}

// Readiness configures the readiness probe reported at GET /health/readiness.
func Readiness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.readiness = m
	})
}

// Liveness configures the liveness probe reported at GET /health/liveness.
func Liveness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.liveness = m
	})
}

// NotFound overrides the handler for requests matching no synthesized route.
func NotFound(h http.Handler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.notFoundHandler = h
	})
}

// MethodNotAllowed overrides the handler for requests to a known route
// with an unroutable HTTP method.
func MethodNotAllowed(h http.Handler) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.methodNotAllowedHandler = h
	})
}

// Api is the generated [http.Handler]: one route per configured
// (provider, collection, action), an OpenAPI 3.0 document at
// GET /openapi.json and health probes under /health.
type Api struct {
	router *chi.Mux
	table  *route.Table
}

// NewApi resolves the raw configuration tree, synthesizes its route
// table and wires every route to the request pipeline. A configuration
// error aborts construction; the process must not serve an invalid tree.
func NewApi(title, version string, raw *schema.Tree, store Store, registry *Registry, opts ...ApiOption) (*Api, error) {
	log := strata.Logger("github.com/z5labs/strata/rest")

	var defaultHealth health.Binary
	defaultHealth.MarkHealthy()

	ao := &ApiOptions{
		authz:     Anonymous{},
		readiness: &defaultHealth,
		liveness:  &defaultHealth,
		notFoundHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeErrorEnvelope(w, http.StatusNotFound, "no route matches this request")
		}),
		methodNotAllowedHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeErrorEnvelope(w, http.StatusMethodNotAllowed, "method not allowed")
		}),
	}
	for _, opt := range opts {
		opt.ApplyApiOption(ao)
	}
	if ao.serializer == nil {
		ao.serializer = NewRegistrySerializer(registry)
	}

	tree, err := resolve.Resolve(raw)
	if err != nil {
		return nil, err
	}

	table := route.Synthesize(tree)
	pipeline := NewPipeline(tree, table, store, ao.serializer, registry, ao.authz)

	def, err := apiDefinition(title, version, table)
	if err != nil {
		return nil, err
	}

	m := chi.NewMux()
	m.NotFound(ao.notFoundHandler.ServeHTTP)
	m.MethodNotAllowed(ao.methodNotAllowedHandler.ServeHTTP)

	m.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		err := enc.Encode(def)
		if err == nil {
			return
		}
		log.ErrorContext(
			r.Context(),
			"failed to encode openapi schema to json",
			slog.Any("error", err),
		)
	})

	m.Get("/health/readiness", healthHandler(ao.readiness))
	m.Get("/health/liveness", healthHandler(ao.liveness))

	corsByProvider := make(map[string]func(http.Handler) http.Handler)
	preflighted := make(map[string]bool)

	for _, rt := range table.Routes() {
		var h http.Handler = pipeline.handler(rt)

		var rl schema.RateLimit
		if rt.Endpoint != nil {
			rl = rt.Endpoint.RateLimit
		} else {
			rl = rt.Provider.RateLimit
		}
		if limiter := rateLimiter(rl, ao.authz); limiter != nil {
			h = limiter(h)
		}

		cors, ok := corsByProvider[rt.Provider.Name]
		if !ok {
			cors = corsMiddleware(rt.Provider.CORS)
			corsByProvider[rt.Provider.Name] = cors
		}
		if cors != nil {
			h = cors(h)
			if !preflighted[rt.Pattern] {
				preflighted[rt.Pattern] = true
				m.Method(http.MethodOptions, rt.Pattern, cors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNoContent)
				})))
			}
		}

		h = otelhttp.WithRouteTag(rt.Pattern, h)
		for _, method := range rt.Methods {
			m.Method(method, rt.Pattern, h)
		}
	}

	return &Api{
		router: m,
		table:  table,
	}, nil
}

// Routes returns the synthesized route table.
func (api *Api) Routes() []*route.Route {
	return api.table.Routes()
}

// ServeHTTP implements the [http.Handler] interface.
func (api *Api) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	api.router.ServeHTTP(w, req)
}

func healthHandler(m health.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthy, err := m.Healthy(r.Context())
		if !healthy || err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func writeErrorEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{
		Error: &ErrorObject{
			Code:    status,
			Message: message,
		},
	})
}

// apiDefinition renders the synthesized route table as an OpenAPI 3.0
// document. Every operation responds with the common envelope shape.
func apiDefinition(title, version string, table *route.Table) (*openapi3.Spec, error) {
	def := &openapi3.Spec{
		Openapi: "3.0",
		Info: openapi3.Info{
			Title:   title,
			Version: version,
		},
	}

	var reflector jsonschema.Reflector
	envSchema, err := reflector.Reflect(Envelope{}, jsonschema.InlineRefs)
	if err != nil {
		return nil, err
	}
	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(envSchema.ToSchemaOrBool())

	for _, rt := range table.Routes() {
		var params []openapi3.ParameterOrRef
		for _, name := range pathParamNames(rt.Pattern) {
			strType := openapi3.SchemaTypeString
			params = append(params, openapi3.ParameterOrRef{
				Parameter: &openapi3.Parameter{
					Name:     name,
					In:       openapi3.ParameterInPath,
					Required: ptr.Ref(true),
					Schema: &openapi3.SchemaOrRef{
						Schema: &openapi3.Schema{Type: &strType},
					},
				},
			})
		}

		for _, method := range rt.Methods {
			op := openapi3.Operation{
				ID:         opID(rt, method),
				Parameters: params,
				Responses: openapi3.Responses{
					MapOfResponseOrRefValues: map[string]openapi3.ResponseOrRef{
						strconv.Itoa(successStatus(rt, method)): {
							Response: &openapi3.Response{
								Content: map[string]openapi3.MediaType{
									"application/json": {
										Schema: &schemaOrRef,
									},
								},
							},
						},
					},
				},
			}
			if rt.Collection != nil {
				op.Tags = []string{rt.Collection.Name}
			}

			err := def.AddOperation(method, rt.Pattern, op)
			if err != nil {
				return nil, err
			}
		}
	}
	return def, nil
}

// pathParamNames extracts the URL parameter names out of a chi route
// pattern, stripping any regex constraint, e.g. "{id:[0-9]+}" yields "id".
func pathParamNames(pattern string) []string {
	var names []string
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '{' {
			continue
		}

		depth := 1
		j := i + 1
		for ; j < len(pattern) && depth > 0; j++ {
			switch pattern[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}

		name := pattern[i+1 : j-1]
		if k := strings.IndexByte(name, ':'); k >= 0 {
			name = name[:k]
		}
		if name != "" {
			names = append(names, name)
		}
		i = j - 1
	}
	return names
}

func opID(rt *route.Route, method string) *string {
	id := rt.Name + ":" + method
	return &id
}

func successStatus(rt *route.Route, method string) int {
	switch {
	case method == http.MethodPost:
		return http.StatusCreated
	case method == http.MethodDelete:
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}
