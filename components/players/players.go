// components/players/players.go
//
// Players component: the admin panel's HTTP surface.
//
// Context
// -------
// The component maps form posts onto operations of the caller's panel and
// renders the panel as one HTML page.  Everything the browser does is a
// plain form post followed by a redirect back to “/” (post, redirect, get),
// so reloading the page never repeats a mutation.
//
// Row actions are bound once.  A single route, `POST /rows/{id}/{action}`,
// receives every edit and delete click on the table; the record id and the
// action name travel in the path.  Row edit controls sit in table cells and
// reach their row's <form> through the HTML5 `form` attribute.
//
// Templates and form definitions are embedded.  An operator directory
// (`panel.template_dir`) may override any template by file name.
//
// Notes
// -----
//   - Every POST must carry a valid CSRF token; see form.CSRF.
//   - Pagination state is saved after each action so an evicted or
//     restarted session comes back on the same page.
//   - Oxford commas, two spaces after periods.
package players

import (
	"embed"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/playeradmin/internal/component"
	"github.com/yanizio/playeradmin/internal/form"
	"github.com/yanizio/playeradmin/internal/player"
	"github.com/yanizio/playeradmin/internal/session"
	"github.com/yanizio/playeradmin/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed forms/*.yaml
var formFS embed.FS

// Form identifiers as declared in forms/*.yaml.
const (
	CreateFormID = "players/create"
	RowFormID    = "players/row"

	createFormElement = "create" // id of the create <form> element
)

// Compile-time assertions.
var (
	_ component.Component = (*Component)(nil)
	_ component.Pather    = (*Component)(nil)
)

// Deps are the collaborators a Component needs.
type Deps struct {
	Sessions  *session.Manager
	CSRF      *form.CSRF
	Templates fs.FS // optional override directory; nil uses the embedded set
	NoCache   bool  // re-parse templates on every request
}

// Component serves the players panel.
type Component struct {
	sessions *session.Manager
	csrf     *form.CSRF
	views    *view.Engine

	create *form.FormDef
	row    *form.FormDef
}

// New loads the embedded form definitions and builds the view engine.
func New(d Deps) (*Component, error) {
	if d.Sessions == nil || d.CSRF == nil {
		return nil, errors.New("players: Sessions and CSRF are required")
	}

	set, err := form.LoadDir(formFS, "forms")
	if err != nil {
		return nil, err
	}
	lists := map[string][]string{
		"races":       player.RaceNames(),
		"professions": player.ProfessionNames(),
	}
	c := &Component{sessions: d.Sessions, csrf: d.CSRF}
	for id, dst := range map[string]**form.FormDef{CreateFormID: &c.create, RowFormID: &c.row} {
		fd, ok := set[id]
		if !ok {
			return nil, fmt.Errorf("players: form %q not found", id)
		}
		if err := fd.ResolveOptions(lists); err != nil {
			return nil, err
		}
		*dst = fd
	}

	embedded, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	opts := []view.Option{view.WithFuncs(funcMap())}
	if d.NoCache {
		opts = append(opts, view.WithoutCache())
	}
	c.views = view.New([]fs.FS{d.Templates, embedded}, opts...)
	return c, nil
}

// Name returns the component key.
func (c *Component) Name() string { return "players" }

// MountPath puts the panel at the site root; templates post to absolute
// paths.
func (c *Component) MountPath() string { return "/" }

// Routes builds the router mounted at “/”.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(session.Middleware, c.csrf.Middleware)

	r.Get("/", c.handleIndex)
	r.Post("/refresh", c.handleRefresh)
	r.Post("/page-size", c.handlePageSize)
	r.Post("/pages/{n}", c.handlePage)
	r.Post("/players", c.handleCreate)
	r.Post("/rows/{id}/{action}", c.handleRow)
	return r
}

/*──────────────────────────── template helpers ─────────────────────────────*/

func funcMap() template.FuncMap {
	return template.FuncMap{
		// field renders a labelled control of the create form.
		"field": func(fd *form.FormDef, name, value, formID string) (template.HTML, error) {
			f, ok := fd.Field(name)
			if !ok {
				return "", fmt.Errorf("form %s has no field %q", fd.ID, name)
			}
			return form.Field(f, value, formID)
		},
		// control renders a bare row control bound to the row's form.
		"control": func(fd *form.FormDef, name string, value any, formID string) (template.HTML, error) {
			f, ok := fd.Field(name)
			if !ok {
				return "", fmt.Errorf("form %s has no field %q", fd.ID, name)
			}
			return form.Control(f, fmt.Sprint(value), formID)
		},
		"rowForm": rowFormID,
		"csrf": func(tok string) template.HTML {
			return template.HTML(`<input type="hidden" name="` + form.FieldCSRF + `" value="` + html.EscapeString(tok) + `">`)
		},
	}
}

// rowFormID is the id of the <form> element that row id's controls join.
func rowFormID(id int64) string { return "row-" + strconv.FormatInt(id, 10) }
