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
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/poiesic/crudstrategy/core"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageData struct {
	Title   string
	Version string
	Backend string
	Kind    string
	Kinds   []string
	Records []row
}

type row struct {
	ID       string
	Fullname string
}

func toRows[T core.Record](records []T) []row {
	rows := make([]row, len(records))
	for i, r := range records {
		rows[i] = row{ID: r.RecordID().String(), Fullname: r.RecordName()}
	}
	return rows
}

func loadTemplates(glob string) (*template.Template, error) {
	if glob == "" {
		return template.ParseFS(templateFS, "templates/*.html")
	}
	tmpl, err := template.ParseGlob(glob)
	if err != nil {
		return nil, fmt.Errorf("load templates %q: %w", glob, err)
	}
	return tmpl, nil
}

// render executes the named template into a buffer first so a template
// error never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("error rendering template", "template", name, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
