// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
	"github.com/poiesic/crudstrategy/core"
	"github.com/poiesic/crudstrategy/storage"
)

// resource serves one record kind backed by one store.
type resource[T core.Record] struct {
	srv   *Server
	kind  core.Kind[T]
	store storage.Store[T]
}

func newResource[T core.Record](srv *Server, kind core.Kind[T], store storage.Store[T]) *resource[T] {
	return &resource[T]{srv: srv, kind: kind, store: store}
}

func (res *resource[T]) register(mux *http.ServeMux) {
	base := "/" + res.kind.Table
	mux.HandleFunc("GET "+base, res.handleList)
	mux.HandleFunc("POST "+base, res.handleCreate)
	mux.HandleFunc("PUT "+base+"/{id}", res.handleUpdate)
	mux.HandleFunc("DELETE "+base+"/{id}", res.handleDelete)
}

// recordPayload is the request body for create and update.
type recordPayload struct {
	ID       string `json:"id,omitempty"`
	Fullname string `json:"fullname"`
}

func (res *resource[T]) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := res.store.ReadAll(r.Context())
	if err != nil {
		res.srv.storeError(w, r, "read all "+res.kind.Table, err)
		return
	}

	if !wantsJSON(r) {
		res.srv.render(w, "list.html", pageData{
			Title:   strings.ToUpper(res.kind.Table[:1]) + res.kind.Table[1:],
			Version: res.srv.version,
			Backend: res.srv.backend,
			Kind:    res.kind.Table,
			Records: toRows(records),
		})
		return
	}

	body, err := json.Marshal(records)
	if err != nil {
		res.srv.logger.Error("error encoding JSON response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	etag, err := entityTag(body)
	if err != nil {
		res.srv.logger.Error("error computing entity tag", "err", err)
	} else {
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
	w.Write([]byte("\n"))
}

func (res *resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, ok := res.srv.decode(w, r)
	if !ok {
		return
	}

	id := uuid.New()
	if payload.ID != "" {
		parsed, err := uuid.Parse(payload.ID)
		if err != nil {
			res.srv.logger.Debug("rejecting invalid id", "id", payload.ID, "err", err)
			http.Error(w, "id must be a valid uuid", http.StatusBadRequest)
			return
		}
		id = parsed
	}

	item := res.kind.New(id, payload.Fullname)
	if err := core.ValidateRecord(item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := res.store.Create(r.Context(), item); err != nil {
		res.srv.storeError(w, r, "create "+res.kind.Name, err)
		return
	}
	res.srv.logger.Info("created record", "kind", res.kind.Name, "id", id)
	res.srv.writeJSON(w, http.StatusOK, item)
}

func (res *resource[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := res.srv.pathID(w, r)
	if !ok {
		return
	}
	payload, ok := res.srv.decode(w, r)
	if !ok {
		return
	}
	if payload.ID != "" {
		if parsed, err := uuid.Parse(payload.ID); err != nil || parsed != id {
			http.Error(w, "id in body does not match path", http.StatusBadRequest)
			return
		}
	}

	item := res.kind.New(id, payload.Fullname)
	if err := core.ValidateRecord(item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := res.store.Update(r.Context(), item); err != nil {
		res.srv.storeError(w, r, "update "+res.kind.Name, err)
		return
	}
	res.srv.writeJSON(w, http.StatusOK, item)
}

func (res *resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := res.srv.pathID(w, r)
	if !ok {
		return
	}

	if err := res.store.Delete(r.Context(), res.kind.New(id, "")); err != nil {
		res.srv.storeError(w, r, "delete "+res.kind.Name, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (recordPayload, bool) {
	var payload recordPayload
	d := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := d.Decode(&payload); err != nil {
		s.logger.Debug("error decoding JSON body", "err", err)
		http.Error(w, fmt.Sprintf("malformed request: %v", err), http.StatusBadRequest)
		return recordPayload{}, false
	}
	return payload, true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "id must be a valid uuid", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// storeError logs the cause and answers with a generic 500. Invalid records
// rejected by a backend are the caller's fault and get a 400 instead.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, storage.ErrInvalidRecord) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Error("storage operation failed", "op", op, "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("error encoding JSON response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// entityTag is a strong ETag: the quoted BLAKE2b-128 digest of body.
func entityTag(body []byte) (string, error) {
	h, err := blake2b.New(16, nil)
	if err != nil {
		return "", err
	}
	h.Write(body)
	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
