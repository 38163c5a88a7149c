// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/z5labs/sdk-go/try"
)

// create serves the create action: deserialize the body into a fresh
// entity, resolve and attach any relation fields, then persist and flush
// before responding.
func (p *Pipeline) create(r *http.Request, rc Context) (result, error) {
	ctx := r.Context()

	payload, err := decodeBody(r)
	if err != nil {
		return result{}, err
	}

	assocs := p.registry.Associations(rc.Collection.Entity)
	plain := make(map[string]any, len(payload))
	for field, value := range payload {
		if _, isRelation := assocs[field]; isRelation {
			continue
		}
		plain[field] = value
	}

	entity, err := p.serializer.Denormalize(ctx, plain, rc.Collection.Entity)
	if err != nil {
		return result{}, err
	}

	err = p.attachRelations(ctx, rc, entity, payload, assocs)
	if err != nil {
		return result{}, err
	}

	repo, err := p.store.Repository(rc.Collection.Entity)
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}
	if err := repo.Persist(ctx, entity); err != nil {
		return result{}, UpstreamError{Cause: err}
	}
	if err := p.flush(ctx, rc, repo); err != nil {
		return result{}, err
	}

	data, err := p.assembleEntity(ctx, r, rc, rc.Collection, entity)
	if err != nil {
		return result{}, err
	}
	return result{status: http.StatusCreated, data: data}, nil
}

// update serves the update action with partial semantics: only fields
// present in the payload are applied, whether invoked via PUT or PATCH.
func (p *Pipeline) update(r *http.Request, rc Context, id string) (result, error) {
	ctx := r.Context()

	repo, err := p.store.Repository(rc.Collection.Entity)
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	entity, err := repo.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return result{}, NotFoundError{
			Detail: fmt.Sprintf("no %s exists under identifier %s", *rc.Collection.Paths.Singular, id),
		}
	}
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	payload, err := decodeBody(r)
	if err != nil {
		return result{}, err
	}

	def, err := p.registry.Definition(rc.Collection.Entity)
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}
	assocs := p.registry.Associations(rc.Collection.Entity)

	for field, value := range payload {
		if _, isRelation := assocs[field]; isRelation {
			continue
		}
		f, ok := def.Fields[field]
		if !ok || f.Set == nil {
			continue
		}
		if err := f.Set(entity, value); err != nil {
			return result{}, BadRequestError{Cause: err}
		}
	}

	err = p.attachRelations(ctx, rc, entity, payload, assocs)
	if err != nil {
		return result{}, err
	}

	if err := repo.Persist(ctx, entity); err != nil {
		return result{}, UpstreamError{Cause: err}
	}
	if err := p.flush(ctx, rc, repo); err != nil {
		return result{}, err
	}

	data, err := p.assembleEntity(ctx, r, rc, rc.Collection, entity)
	if err != nil {
		return result{}, err
	}
	return result{status: http.StatusOK, data: data}, nil
}

// delete serves the delete action. Deleting a missing entity is a not
// found condition, a successful delete responds 204 with no body.
func (p *Pipeline) delete(r *http.Request, rc Context, id string) (result, error) {
	ctx := r.Context()

	repo, err := p.store.Repository(rc.Collection.Entity)
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	entity, err := repo.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return result{}, NotFoundError{
			Detail: fmt.Sprintf("no %s exists under identifier %s", *rc.Collection.Paths.Singular, id),
		}
	}
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	if err := repo.Remove(ctx, entity); err != nil {
		return result{}, UpstreamError{Cause: err}
	}
	if err := p.flush(ctx, rc, repo); err != nil {
		return result{}, err
	}

	return result{status: http.StatusNoContent}, nil
}

// attachRelations resolves every relation field present in the payload
// and attaches the referenced entity. A scalar value is treated as a bare
// identifier, a structured value is matched on its identifier field. In
// both cases the relation is attached only if the referenced entity is
// found; unresolvable references are dropped, never implicitly created
// and never an error.
func (p *Pipeline) attachRelations(ctx context.Context, rc Context, entity any, payload map[string]any, assocs map[string]string) error {
	if len(assocs) == 0 {
		return nil
	}

	def, err := p.registry.Definition(rc.Collection.Entity)
	if err != nil {
		return UpstreamError{Cause: err}
	}

	for field, target := range assocs {
		raw, present := payload[field]
		if !present {
			continue
		}

		id, ok := relationID(raw)
		if !ok {
			continue
		}

		repo, err := p.store.Repository(target)
		if err != nil {
			return UpstreamError{Cause: err}
		}

		related, err := repo.Find(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return UpstreamError{Cause: err}
		}

		f, ok := def.Fields[field]
		if !ok || f.Set == nil {
			continue
		}
		if err := f.Set(entity, related); err != nil {
			return BadRequestError{Cause: err}
		}
	}
	return nil
}

// relationID extracts the identifier out of a relation payload value.
func relationID(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case map[string]any:
		nested, ok := v["id"]
		if !ok {
			return "", false
		}
		return relationID(nested)
	default:
		return "", false
	}
}

// flush commits pending writes, translating unique violations to 409.
func (p *Pipeline) flush(ctx context.Context, rc Context, repo Repository) error {
	err := repo.Flush(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConflict) {
		return ConflictError{Entity: rc.Collection.Entity, Cause: err}
	}
	return UpstreamError{Cause: err}
}

func decodeBody(r *http.Request) (payload map[string]any, err error) {
	defer try.Close(&err, r.Body)

	dec := json.NewDecoder(r.Body)
	err = dec.Decode(&payload)
	if err != nil {
		return nil, BadRequestError{
			Cause: fmt.Errorf("request body is not a json object: %v", err),
		}
	}
	return payload, nil
}
