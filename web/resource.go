/*
 * Copyright 2026 romakot321.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	bunservice "github.com/romakot321/bun-service"
	"github.com/romakot321/bun-service/database"
	"github.com/romakot321/bun-service/types"
)

// Resource mounts a CRUD route set for entity T with create schema C and
// update schema U:
//
//	GET    /       list, optional ?page= and ?count= query parameters
//	POST   /       create from a JSON-decoded C, responds 201
//	GET    /{id}   fetch one, 404 when absent
//	PATCH  /{id}   partial update from a JSON-decoded U
//	DELETE /{id}   delete, responds 204, 404 when absent
//
// Intended for chi's Route: r.Route("/users", web.Resource[User, UserCreate, UserUpdate]()).
func Resource[T any, C any, U any](opts ...bunservice.Option) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", Scoped[T](listResource[T], opts...))
		r.Post("/", Scoped[T](createResource[T, C], opts...))
		r.Get("/{id}", Scoped[T](getResource[T], opts...))
		r.Patch("/{id}", Scoped[T](updateResource[T, U], opts...))
		r.Delete("/{id}", Scoped[T](deleteResource[T], opts...))
	}
}

func listResource[T any](w http.ResponseWriter, r *http.Request, svc *bunservice.Service[T]) error {
	page := &types.PageRequest{
		Page:  queryInt(r, "page"),
		Count: queryInt(r, "count"),
	}
	items, err := svc.List(r.Context(), page)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, items)
	return nil
}

func createResource[T any, C any](w http.ResponseWriter, r *http.Request, svc *bunservice.Service[T]) error {
	var schema C
	if err := json.NewDecoder(r.Body).Decode(&schema); err != nil {
		return fmt.Errorf("%w: %v", database.ErrValidation, err)
	}
	entity, err := svc.Create(r.Context(), schema)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusCreated, entity)
	return nil
}

func getResource[T any](w http.ResponseWriter, r *http.Request, svc *bunservice.Service[T]) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	entity, err := svc.Get(r.Context(), id)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, entity)
	return nil
}

func updateResource[T any, U any](w http.ResponseWriter, r *http.Request, svc *bunservice.Service[T]) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	var schema U
	if err := json.NewDecoder(r.Body).Decode(&schema); err != nil {
		return fmt.Errorf("%w: %v", database.ErrValidation, err)
	}
	entity, err := svc.Update(r.Context(), id, schema)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, entity)
	return nil
}

func deleteResource[T any](w http.ResponseWriter, r *http.Request, svc *bunservice.Service[T]) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := svc.Delete(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", database.ErrValidation, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, key string) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
