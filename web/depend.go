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

// Package web is a thin HTTP adapter: it constructs one service per inbound
// request, guarantees its teardown after the response, and translates the
// error taxonomy to HTTP status codes. It is optional and not part of the
// core contract.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	bunservice "github.com/romakot321/bun-service"
	"github.com/romakot321/bun-service/database"
)

// Handler is an HTTP handler that receives a request-scoped service.
type Handler[T any] func(w http.ResponseWriter, r *http.Request, svc *bunservice.Service[T]) error

// Scoped wraps a handler with per-request service lifecycle: the session is
// acquired before the handler runs, committed when it returns nil, and
// rolled back when it returns an error (which is also written as a JSON
// error response).
func Scoped[T any](h Handler[T], opts ...bunservice.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := bunservice.Do[T](r.Context(), func(ctx context.Context, svc *bunservice.Service[T]) error {
			return h(w, r.WithContext(ctx), svc)
		}, opts...)
		if err != nil {
			WriteError(w, err)
		}
	}
}

// StatusOf maps an operation error onto an HTTP status code.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, database.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// WriteError writes err as a JSON error body with the status from StatusOf.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusOf(err))
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
