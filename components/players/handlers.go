// components/players/handlers.go
//
// HTTP handlers.  Each one resolves the caller's panel, runs one panel
// operation, saves the pagination state, and redirects home.  Operation
// errors are not handled here: the panel has already turned them into the
// notice the next page shows.
package players

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/playeradmin/internal/form"
	"github.com/yanizio/playeradmin/internal/logger"
	"github.com/yanizio/playeradmin/internal/panel"
	"github.com/yanizio/playeradmin/internal/player"
	"github.com/yanizio/playeradmin/internal/requestinfo"
	"github.com/yanizio/playeradmin/internal/session"
)

const home = "/"

// pageData feeds templates/page.html.
type pageData struct {
	Panel      panel.View
	CSRF       string
	Create     *form.FormDef
	CreateForm string
	Row        *form.FormDef
	Values     map[string]string // create form values to re-fill
	Client     *requestinfo.Info
}

/*──────────────────────────── handlers ─────────────────────────────────────*/

func (c *Component) handleIndex(w http.ResponseWriter, r *http.Request) {
	p, _, ok := c.panelFor(w, r)
	if !ok {
		return
	}
	_ = p.EnsureLoaded(r.Context())
	c.render(w, r, p, http.StatusOK, nil)
}

func (c *Component) handleRefresh(w http.ResponseWriter, r *http.Request) {
	p, sid, ok := c.panelFor(w, r)
	if !ok {
		return
	}
	_ = p.Refresh(r.Context())
	c.done(w, r, sid, p)
}

func (c *Component) handlePageSize(w http.ResponseWriter, r *http.Request) {
	p, sid, ok := c.panelFor(w, r)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(r.PostFormValue("page_size")); err != nil {
		p.Flash(panel.Notice(panel.ErrInvalidPageSize))
	} else {
		_ = p.SetPageSize(r.Context(), n)
	}
	c.done(w, r, sid, p)
}

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	p, sid, ok := c.panelFor(w, r)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(chi.URLParam(r, "n")); err != nil {
		p.Flash(panel.Notice(panel.ErrInvalidPage))
	} else {
		_ = p.SetPage(r.Context(), n)
	}
	c.done(w, r, sid, p)
}

// handleCreate re-renders the page with the posted values when a rule
// fails, so the user can correct the form.  Any other outcome redirects.
func (c *Component) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, sid, ok := c.panelFor(w, r)
	if !ok {
		return
	}
	f := player.CreateForm{
		Name:       r.PostFormValue("name"),
		Title:      r.PostFormValue("title"),
		Race:       r.PostFormValue("race"),
		Profession: r.PostFormValue("profession"),
		Level:      r.PostFormValue("level"),
		Birthday:   r.PostFormValue("birthday"),
		Banned:     checked(r.PostFormValue("banned")),
	}
	err := p.Create(r.Context(), f)
	if player.IsRuleError(err) {
		c.render(w, r, p, http.StatusUnprocessableEntity, map[string]string{
			"name":       f.Name,
			"title":      f.Title,
			"race":       f.Race,
			"profession": f.Profession,
			"level":      f.Level,
			"birthday":   f.Birthday,
			"banned":     strconv.FormatBool(f.Banned),
		})
		return
	}
	c.done(w, r, sid, p)
}

// handleRow dispatches every row control by action name and record id.
func (c *Component) handleRow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	action := chi.URLParam(r, "action")
	if action != "edit" && action != "delete" {
		http.NotFound(w, r)
		return
	}

	p, sid, ok := c.panelFor(w, r)
	if !ok {
		return
	}
	switch action {
	case "edit":
		_ = p.ToggleRow(r.Context(), id, player.UpdateForm{
			Name:       r.PostFormValue("name"),
			Title:      r.PostFormValue("title"),
			Race:       r.PostFormValue("race"),
			Profession: r.PostFormValue("profession"),
			Banned:     checked(r.PostFormValue("banned")),
		})
	case "delete":
		_ = p.DeleteRow(r.Context(), id)
	}
	c.done(w, r, sid, p)
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// panelFor resolves the caller's panel.  On failure it has already written
// the error response.
func (c *Component) panelFor(w http.ResponseWriter, r *http.Request) (*panel.Panel, string, bool) {
	sid, ok := session.ID(r.Context())
	if !ok {
		http.Error(w, "no session", http.StatusInternalServerError)
		return nil, "", false
	}
	p, err := c.sessions.Get(r.Context(), sid)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("panel unavailable", "session", sid, "err", err)
		http.Error(w, "panel unavailable", http.StatusInternalServerError)
		return nil, "", false
	}
	return p, sid, true
}

// done saves the pagination state and redirects home.
func (c *Component) done(w http.ResponseWriter, r *http.Request, sid string, p *panel.Panel) {
	if err := c.sessions.Save(r.Context(), sid, p); err != nil {
		logger.FromContext(r.Context()).Warnw("session save failed", "session", sid, "err", err)
	}
	http.Redirect(w, r, home, http.StatusSeeOther)
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, p *panel.Panel, status int, values map[string]string) {
	tok, err := c.csrf.Token()
	if err != nil {
		logger.FromContext(r.Context()).Errorw("csrf token", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if values == nil {
		values = map[string]string{}
	}
	data := pageData{
		Panel:      p.View(),
		CSRF:       tok,
		Create:     c.create,
		CreateForm: createFormElement,
		Row:        c.row,
		Values:     values,
		Client:     requestinfo.FromContext(r.Context()),
	}
	if err := c.views.Render(w, status, "page", data); err != nil {
		logger.FromContext(r.Context()).Errorw("render failed", "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// checked reports whether a posted checkbox value means on.
func checked(v string) bool { return v == "true" || v == "on" }
