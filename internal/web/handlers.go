package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hpungsan/easypass/internal/config"
	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/errors"
	"github.com/hpungsan/easypass/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /credentials: every credential under its group heading.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	group := credential.Normalize(r.URL.Query().Get("group"))

	result, err := ops.List(r.Context(), h.db, ops.ListInput{Group: group})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	groups, err := ops.Groups(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	shown := groups.Groups
	if group != "" {
		shown = nil
		for _, g := range groups.Groups {
			if g.Name == group {
				shown = append(shown, g)
			}
		}
	}

	data := ListPageData{
		PageData: h.renderer.page("Credentials", "credentials"),
		Sections: sections(shown, result.Items),
		Groups:   groups.Groups,
		Group:    group,
		Total:    result.Total,
	}
	if gen, err := ops.Generate(h.cfg, ops.GenerateInput{}); err == nil {
		data.Suggested = gen.Password
	}

	h.renderer.renderPage(w, r, "list", data)
}

// HandleDetail handles GET /credentials/{id}. The password stays masked
// unless reveal=true is passed.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	reveal := parseBoolParam(r, "reveal")
	out, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: id, IncludeSecret: reveal})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	groups, err := ops.Groups(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	masked := maskedSecret
	if reveal {
		masked = out.Secret
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData:     h.renderer.page(out.Name, "credentials"),
		Credential:   out,
		Groups:       groups.Groups,
		RenderedNote: h.renderer.renderMarkdown(out.Note),
		Masked:       masked,
	})
}

// HandleCreate handles POST /credentials from the add form.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	mode := ops.StoreModeError
	if r.FormValue("replace") == "true" {
		mode = ops.StoreModeReplace
	}

	result, err := ops.Store(r.Context(), h.db, ops.StoreInput{
		Group:       r.FormValue("group"),
		Name:        r.FormValue("name"),
		Username:    r.FormValue("username"),
		Secret:      r.FormValue("password"),
		Note:        r.FormValue("note"),
		Mode:        mode,
		CreateGroup: true,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, result, credentialPath(result.ID))
}

// HandleUpdate handles POST /credentials/{id} from the edit form. Empty
// password keeps the stored one.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.UpdateInput{
		ID:          id,
		NewGroup:    formField(r, "group"),
		NewName:     formField(r, "name"),
		Username:    formField(r, "username"),
		Note:        formField(r, "note"),
		CreateGroup: true,
	}
	if pw := r.FormValue("password"); pw != "" {
		input.Secret = &pw
	}

	result, err := ops.Update(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result, credentialPath(result.ID))
}

// HandleNote handles POST /credentials/{id}/note.
func (h *Handlers) HandleNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.SetNote(r.Context(), h.db, ops.SetNoteInput{ID: id, Note: r.FormValue("note")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result, credentialPath(result.ID))
}

// HandleDelete handles DELETE /credentials/{id} and its form fallback
// POST /credentials/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result, "/credentials")
}

// HandleGroups handles GET /groups.
func (h *Handlers) HandleGroups(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Groups(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "groups", GroupsPageData{
		PageData: h.renderer.page("Groups", "groups"),
		Groups:   result.Groups,
	})
}

// HandleGroupAdd handles POST /groups.
func (h *Handlers) HandleGroupAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.AddGroup(r.Context(), h.db, r.FormValue("name"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusCreated, result, "/groups")
}

// HandleGroupDelete handles DELETE /groups/{name} and its form fallback
// POST /groups/{name}/delete.
func (h *Handlers) HandleGroupDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.DeleteGroup(r.Context(), h.db, r.PathValue("name"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result, "/groups")
}

// HandleGenerate handles GET /generate and always answers JSON.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Generate(h.cfg, ops.GenerateInput{
		Length:  parseIntParam(r, "length", 0),
		Charset: r.URL.Query().Get("charset"),
	})
	if err != nil {
		renderJSONError(w, asEasyPassError(err))
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// respond finishes a mutating request: HX-Redirect for htmx, the result as
// JSON when asked for, a See Other redirect otherwise.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, status int, result any, location string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, status, result)
		return
	}

	http.Redirect(w, r, location, http.StatusSeeOther)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, errors.NewInvalidRequest("credential id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("invalid credential id %q", raw))
	}
	return id, nil
}

// formField returns a pointer to a submitted form value, nil when the
// field was not part of the form at all.
func formField(r *http.Request, name string) *string {
	if _, ok := r.PostForm[name]; !ok {
		return nil
	}
	v := r.PostForm.Get(name)
	return &v
}

func credentialPath(id int64) string {
	return "/credentials/" + strconv.FormatInt(id, 10)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
