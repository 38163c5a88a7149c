// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/z5labs/strata"
	"github.com/z5labs/strata/route"
	"github.com/z5labs/strata/schema"

	"github.com/go-chi/chi/v5"
	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Pipeline executes every generated operation: it validates a request
// against the resolved configuration, runs the generic CRUD operation
// against the storage collaborator and assembles the response envelope.
//
// A Pipeline holds only read-only state shared by all requests; all
// per-request state lives in [Context] and local values.
type Pipeline struct {
	tree       *schema.Tree
	table      *route.Table
	store      Store
	serializer Serializer
	registry   *Registry
	authz      Authorizer

	log    *slog.Logger
	tracer trace.Tracer
}

// NewPipeline initializes a [Pipeline] over a resolved tree and its
// synthesized route table.
func NewPipeline(tree *schema.Tree, table *route.Table, store Store, serializer Serializer, registry *Registry, authz Authorizer) *Pipeline {
	return &Pipeline{
		tree:       tree,
		table:      table,
		store:      store,
		serializer: serializer,
		registry:   registry,
		authz:      authz,
		log:        strata.Logger("github.com/z5labs/strata/rest"),
		tracer:     otel.Tracer("github.com/z5labs/strata/rest"),
	}
}

// result is a completed operation before envelope assembly.
type result struct {
	status     int
	data       any
	pagination *PageInfo
}

// handler returns the [http.Handler] serving one synthesized route.
func (p *Pipeline) handler(rt *route.Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var err error
		defer func() {
			if err == nil {
				return
			}
			p.writeError(ctx, w, rt, err)
		}()
		defer try.Recover(&err)

		rc, ok := resolveContext(p.tree, p.table, rt.Name)
		if !ok {
			err = NotFoundError{Detail: "no api context matches this request"}
			return
		}

		decorateHeaders(w, rc)

		spanCtx, span := p.tracer.Start(ctx, "pipeline.dispatch")
		r = r.WithContext(spanCtx)

		res, err := p.dispatch(r, rc)
		span.End()
		if err != nil {
			return
		}

		env := Envelope{
			Meta:       newMeta(r, *rc.Provider.Version.Number, rc.Provider.Name, "success"),
			Pagination: res.pagination,
			Data:       res.data,
		}
		writeEnvelope(ctx, p.log, w, res.status, env)
	})
}

// dispatch is the request state machine: privilege matching, method
// validation and finally operation selection strictly on HTTP method and
// identifier presence.
func (p *Pipeline) dispatch(r *http.Request, rc Context) (result, error) {
	ctx := r.Context()

	if rc.Search {
		return p.search(r, rc)
	}

	priv, ok := matchPrivilege(ctx, p.authz, rc.Collection.Privileges)
	if !ok {
		return result{}, ForbiddenError{Collection: rc.Collection.Name}
	}

	allowed := false
	for _, m := range priv.Methods {
		if m == r.Method {
			allowed = true
			break
		}
	}
	if !allowed {
		return result{}, MethodNotAllowedError{
			Method:  r.Method,
			Allowed: priv.Methods,
		}
	}

	id := chi.URLParam(r, "id")

	switch r.Method {
	case http.MethodGet:
		if id != "" {
			return p.read(r, rc, id)
		}
		return p.list(r, rc)
	case http.MethodPost:
		return p.create(r, rc)
	case http.MethodPut:
		if id != "" {
			return p.update(r, rc, id)
		}
		return p.create(r, rc)
	case http.MethodPatch:
		if id == "" {
			return result{}, BadRequestError{Cause: missingIdentifierError{}}
		}
		return p.update(r, rc, id)
	case http.MethodDelete:
		if id == "" {
			return result{}, BadRequestError{Cause: missingIdentifierError{}}
		}
		return p.delete(r, rc, id)
	default:
		return result{}, MethodNotAllowedError{
			Method:  r.Method,
			Allowed: priv.Methods,
		}
	}
}

type missingIdentifierError struct{}

func (missingIdentifierError) Error() string {
	return "a resource identifier is required"
}

// writeError converts a request-time failure into the error envelope.
// The pipeline short-circuits before any flush, so no partial operation
// state has been persisted by the time this runs.
func (p *Pipeline) writeError(ctx context.Context, w http.ResponseWriter, rt *route.Route, err error) {
	status, message := statusOf(err)
	if status == http.StatusInternalServerError {
		p.log.ErrorContext(ctx, "request failed",
			slog.String("route", rt.Name),
			slog.Any("error", err),
		)
	}

	writeEnvelope(ctx, p.log, w, status, Envelope{
		Error: &ErrorObject{
			Code:    status,
			Message: message,
		},
	})
}
