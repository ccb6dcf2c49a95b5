// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Render         – write rendered HTML to an http.ResponseWriter.
//   - RenderToString – return template.HTML (partials, tests).
//
// Lookup precedence (first hit wins):
//  1. an operator override directory (config `panel.template_dir`)
//  2. the component's embedded templates
//
// All templates in the same source are parsed as one set so sub-templates
// ({{ template "rows" . }}) work out-of-the-box.
//
// execName() chooses the template to execute: the template "<name>" when a
// file defines it via {{ define }}, else the file "<name>.html".
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/yanizio/playeradmin/internal/cache"
)

// Engine renders named templates from an ordered list of sources.
type Engine struct {
	sources []fs.FS
	funcs   template.FuncMap
	sets    *cache.LRU[string, *template.Template]
	noCache bool
}

// Option tweaks an Engine.
type Option func(*Engine)

// WithFuncs adds template helpers.  Later keys win.
func WithFuncs(fm template.FuncMap) Option {
	return func(e *Engine) {
		for k, v := range fm {
			e.funcs[k] = v
		}
	}
}

// WithoutCache re-parses on every render (development).
func WithoutCache() Option { return func(e *Engine) { e.noCache = true } }

// New returns an Engine that searches sources in order.  Nil sources are
// skipped, so an unset override directory can be passed as is.
func New(sources []fs.FS, opts ...Option) *Engine {
	e := &Engine{
		funcs: baseFuncMap(),
		sets:  cache.New[string, *template.Template](64),
	}
	for _, s := range sources {
		if s != nil {
			e.sources = append(e.sources, s)
		}
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

//
// public helpers
//

// Render executes the template and streams it to w.  Output is buffered so
// a template error never leaves a half-written page.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := e.execute(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString executes and returns HTML.
func (e *Engine) RenderToString(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.execute(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (e *Engine) execute(buf *bytes.Buffer, name string, data any) error {
	t, err := e.load(name)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(buf, execName(t, name), data)
}

//
// internal: load
//

// load finds and (if necessary) parses the template set that holds name.
func (e *Engine) load(name string) (*template.Template, error) {
	for i, src := range e.sources {
		if _, err := fs.Stat(src, name+".html"); err != nil {
			continue
		}

		key := strconv.Itoa(i) + "::" + name
		if !e.noCache {
			if t, ok := e.sets.Get(key); ok {
				return t, nil
			}
		}

		// Parse all *.html in the same source so sub-templates work.
		t, err := template.New("root").Funcs(e.funcs).ParseFS(src, "*.html")
		if err != nil {
			return nil, fmt.Errorf("parse templates for %q: %w", name, err)
		}
		if !e.noCache {
			e.sets.Add(key, t)
		}
		return t, nil
	}
	return nil, fmt.Errorf("template %q: %w", name, fs.ErrNotExist)
}

//
// func-map builders
//

func baseFuncMap() template.FuncMap {
	fm := template.FuncMap{
		"dict": dict,
		"add":  func(a, b int) int { return a + b },
	}
	for k, v := range uaFuncMap() { // UA helpers (browser/os parsing)
		fm[k] = v
	}
	return fm
}

//
// helpers
//

// execName picks the template name to execute.
//
// Priority:
//  1. A template defined as "<name>" ({{ define "rows" }}).
//  2. Otherwise the file "<name>.html" itself.
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name); tmpl != nil && tmpl.Tree != nil {
		return name
	}
	return name + ".html"
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
