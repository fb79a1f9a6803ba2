package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/errors"
	"github.com/hpungsan/easypass/internal/ops"
)

// maskedSecret stands in for a password on every page.
const maskedSecret = "••••••••"

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "credentials", "groups"
}

// GroupSection is one group heading and its credentials on the list page.
type GroupSection struct {
	Name      string
	Protected bool
	Items     []credential.Summary
}

// ListPageData is the template data for the credential list page.
type ListPageData struct {
	PageData
	Sections  []GroupSection
	Groups    []credential.Group
	Group     string // active group filter, empty for all
	Total     int
	Suggested string // generated password prefilled in the add form
}

// DetailPageData is the template data for the credential detail page.
type DetailPageData struct {
	PageData
	Credential   *ops.FetchOutput
	Groups       []credential.Group
	RenderedNote template.HTML
	Masked       string
}

// GroupsPageData is the template data for the groups page.
type GroupsPageData struct {
	PageData
	Groups []credential.Group
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
	log       *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"list":   "list.html",
		"detail": "detail.html",
		"groups": "groups.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	// Inline HTML in notes passes through goldmark and is cleaned by the
	// sanitizer afterwards.
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)

	return &Renderer{
		templates: templates,
		version:   version,
		markdown:  md,
		sanitizer: bluemonday.UGCPolicy(),
		log:       slog.With("component", "web"),
	}
}

// page fills the fields shared by every page.
func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.log.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.log.Error("template execution failed", "template", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	epErr := asEasyPassError(err)
	if epErr.Code == errors.ErrInternal {
		r.log.Error("request failed", "method", req.Method, "path", req.URL.Path, "err", err)
	}

	status := epErr.Status
	message := epErr.Message

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSONError(w, epErr)
		return
	}

	// Full error page
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", status), ""),
		StatusCode: status,
		Message:    message,
	})
}

// renderMarkdown converts a note to sanitized HTML.
func (r *Renderer) renderMarkdown(md string) template.HTML {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(r.sanitizer.Sanitize(buf.String()))
}

func asEasyPassError(err error) *errors.EasyPassError {
	var epErr *errors.EasyPassError
	if !stderrors.As(err, &epErr) {
		epErr = errors.NewInternal(err)
	}
	return epErr
}

// renderJSONError writes the error envelope shared with the MCP tools.
func renderJSONError(w http.ResponseWriter, epErr *errors.EasyPassError) {
	renderJSON(w, epErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(epErr.Code),
			"message": epErr.Message,
			"status":  epErr.Status,
		},
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" in local time.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}

// sections groups an ordered summary list under its group headings. Groups
// without credentials still get a heading.
func sections(groups []credential.Group, items []credential.Summary) []GroupSection {
	byGroup := make(map[string][]credential.Summary, len(groups))
	for _, item := range items {
		byGroup[item.Group] = append(byGroup[item.Group], item)
	}

	out := make([]GroupSection, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupSection{
			Name:      g.Name,
			Protected: g.Protected(),
			Items:     byGroup[g.Name],
		})
	}
	return out
}
