package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/easypass/internal/config"
	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/db"
	"github.com/hpungsan/easypass/internal/ops"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		db:       database,
		cfg:      cfg,
		renderer: renderer,
	}
}

// seedCredential stores a credential and returns its ID.
func seedCredential(t *testing.T, h *Handlers, group, name string) int64 {
	t.Helper()
	out, err := ops.Store(context.Background(), h.db, ops.StoreInput{
		Group:       group,
		Name:        name,
		Username:    name + "-user",
		Secret:      name + "-secret",
		Note:        "**bold** note",
		CreateGroup: true,
	})
	if err != nil {
		t.Fatalf("seed credential %q: %v", name, err)
	}
	return out.ID
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// --- HandleList ---

func TestHandleList_GroupsSections(t *testing.T) {
	h := setupTest(t)
	seedCredential(t, h, "bank", "chase")
	seedCredential(t, h, "", "github")

	req := httptest.NewRequest("GET", "/credentials", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<!DOCTYPE html>")
	require.Contains(t, body, "bank")
	require.Contains(t, body, credential.Unassigned)
	require.Contains(t, body, "github-user")
	require.NotContains(t, body, "github-secret")
	require.Less(t, strings.Index(body, "chase"), strings.Index(body, "github"), "groups render in name order")
}

func TestHandleList_GroupFilter(t *testing.T) {
	h := setupTest(t)
	seedCredential(t, h, "bank", "chase")
	seedCredential(t, h, "", "github")

	req := httptest.NewRequest("GET", "/credentials?group=bank", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "chase")
	require.NotContains(t, body, "github-user")
}

func TestHandleList_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/credentials", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "No credentials in this group.")
}

func TestHandleList_SuggestsPassword(t *testing.T) {
	h := setupTest(t)
	h.cfg.PasswordCharset = "x"
	h.cfg.PasswordLength = 12

	req := httptest.NewRequest("GET", "/credentials", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Contains(t, rec.Body.String(), `value="xxxxxxxxxxxx"`)
}

func TestHandleList_HtmxReturnsContentOnly(t *testing.T) {
	h := setupTest(t)
	seedCredential(t, h, "", "github")

	req := httptest.NewRequest("GET", "/credentials", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.NotContains(t, body, "<!DOCTYPE html>")
	require.Contains(t, body, "github")
}

func TestHandleList_JSON(t *testing.T) {
	h := setupTest(t)
	seedCredential(t, h, "", "github")

	req := httptest.NewRequest("GET", "/credentials", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out ops.ListOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Equal(t, 1, out.Total)
	require.Equal(t, "github", out.Items[0].Name)
}

// --- HandleDetail ---

func TestHandleDetail_Found(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "work", "jira")

	req := httptest.NewRequest("GET", "/credentials/"+idString(id), nil)
	req.SetPathValue("id", idString(id))
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "jira-user")
	require.Contains(t, body, "<strong>bold</strong>", "note rendered as markdown")
	require.Contains(t, body, maskedSecret)
	require.NotContains(t, body, "jira-secret")
}

func TestHandleDetail_Reveal(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "", "github")

	req := httptest.NewRequest("GET", "/credentials/"+idString(id)+"?reveal=true", nil)
	req.SetPathValue("id", idString(id))
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "github-secret")
}

func TestHandleDetail_NoteHTMLEscaped(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "", "github")
	_, err := ops.SetNote(context.Background(), h.db, ops.SetNoteInput{ID: id, Note: "<script>alert(1)</script>"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/credentials/"+idString(id), nil)
	req.SetPathValue("id", idString(id))
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
}

func TestRenderMarkdown(t *testing.T) {
	h := setupTest(t)

	require.Empty(t, h.renderer.renderMarkdown(""))

	out := string(h.renderer.renderMarkdown("**pin** 1234\n[portal](https://example.com)\n<b onclick=\"x()\">bold</b>"))
	require.Contains(t, out, "<strong>pin</strong>")
	require.Contains(t, out, `rel="nofollow"`)
	require.Contains(t, out, "<b>bold</b>")
	require.NotContains(t, out, "onclick")
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/credentials/99", nil)
	req.SetPathValue("id", "99")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDetail_BadID(t *testing.T) {
	h := setupTest(t)

	for _, raw := range []string{"", "abc", "-3", "0"} {
		req := httptest.NewRequest("GET", "/credentials/x", nil)
		req.SetPathValue("id", raw)
		rec := httptest.NewRecorder()
		h.HandleDetail(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code, "id %q", raw)
	}
}

// --- Mutations ---

func TestHandleCreate_Redirects(t *testing.T) {
	h := setupTest(t)

	req := formRequest("POST", "/credentials", url.Values{
		"group":    {"mail"},
		"name":     {"fastmail"},
		"username": {"me@fastmail.com"},
		"password": {"pw"},
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/credentials/1", rec.Header().Get("Location"))

	out, err := ops.Fetch(context.Background(), h.db, ops.FetchInput{Group: "mail", Name: "fastmail", IncludeSecret: true})
	require.NoError(t, err)
	require.Equal(t, "pw", out.Secret)
}

func TestHandleCreate_MissingPassword(t *testing.T) {
	h := setupTest(t)

	req := formRequest("POST", "/credentials", url.Values{
		"name":     {"fastmail"},
		"username": {"me"},
	})
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreate_Duplicate(t *testing.T) {
	h := setupTest(t)
	seedCredential(t, h, "", "github")

	req := formRequest("POST", "/credentials", url.Values{
		"name":     {"github"},
		"username": {"other"},
		"password": {"pw"},
	})
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "NAME_ALREADY_EXISTS", resp["error"].(map[string]any)["code"])
}

func TestHandleUpdate_KeepsPasswordWhenBlank(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "", "github")

	req := formRequest("POST", "/credentials/"+idString(id), url.Values{
		"group":    {"dev"},
		"name":     {"github"},
		"username": {"octocat"},
		"password": {""},
	})
	req.SetPathValue("id", idString(id))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	out, err := ops.Fetch(context.Background(), h.db, ops.FetchInput{ID: id, IncludeSecret: true})
	require.NoError(t, err)
	require.Equal(t, "dev", out.Group)
	require.Equal(t, "octocat", out.Username)
	require.Equal(t, "github-secret", out.Secret)
}

func TestHandleNote(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "", "github")

	req := formRequest("POST", "/credentials/"+idString(id)+"/note", url.Values{"note": {""}})
	req.SetPathValue("id", idString(id))
	rec := httptest.NewRecorder()
	h.HandleNote(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	out, err := ops.Fetch(context.Background(), h.db, ops.FetchInput{ID: id})
	require.NoError(t, err)
	require.Empty(t, out.Note)
}

func TestHandleDelete_HtmxRequest(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "", "github")

	req := httptest.NewRequest("DELETE", "/credentials/"+idString(id), nil)
	req.SetPathValue("id", idString(id))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/credentials", rec.Header().Get("HX-Redirect"))
}

func TestHandleDelete_JSONRequest(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "", "github")

	req := httptest.NewRequest("DELETE", "/credentials/"+idString(id), nil)
	req.SetPathValue("id", idString(id))
	req.Header.Set("Accept", "text/html, application/json")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, true, resp["deleted"])
	require.Equal(t, float64(id), resp["id"])
}

func TestHandleDelete_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("POST", "/credentials/7/delete", nil)
	req.SetPathValue("id", "7")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Groups ---

func TestHandleGroups(t *testing.T) {
	h := setupTest(t)
	seedCredential(t, h, "bank", "chase")
	_, err := ops.AddGroup(context.Background(), h.db, "empty")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/groups", nil)
	rec := httptest.NewRecorder()
	h.HandleGroups(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "bank")
	require.Contains(t, body, "in use")
	require.Contains(t, body, `action="/groups/empty/delete"`)
}

func TestHandleGroupAddAndDelete(t *testing.T) {
	h := setupTest(t)

	req := formRequest("POST", "/groups", url.Values{"name": {"travel"}})
	rec := httptest.NewRecorder()
	h.HandleGroupAdd(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/groups", rec.Header().Get("Location"))

	req = httptest.NewRequest("DELETE", "/groups/travel", nil)
	req.SetPathValue("name", "travel")
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	h.HandleGroupDelete(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleGroupDelete_Refused(t *testing.T) {
	h := setupTest(t)
	seedCredential(t, h, "bank", "chase")

	tests := []struct {
		group  string
		status int
	}{
		{"bank", http.StatusConflict},
		{credential.Unassigned, http.StatusForbidden},
		{"missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("DELETE", "/groups/x", nil)
		req.SetPathValue("name", tt.group)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		h.HandleGroupDelete(rec, req)
		require.Equal(t, tt.status, rec.Code, "group %q", tt.group)
	}
}

// --- Generate ---

func TestHandleGenerate(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/generate?length=16&charset=ab", nil)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out ops.GenerateOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out.Password, 16)
	require.Empty(t, strings.Trim(out.Password, "ab"))
}

func TestHandleGenerate_InvalidLength(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/generate?length=100000", nil)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

// --- Error rendering ---

func TestErrorRendering_HtmxFragment(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/credentials/99", nil)
	req.SetPathValue("id", "99")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "error-message")
	require.NotContains(t, body, "<!DOCTYPE html>")
}

func TestErrorRendering_JSONError(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/credentials/99", nil)
	req.SetPathValue("id", "99")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	errObj, ok := resp["error"].(map[string]any)
	require.True(t, ok, "expected error object in JSON response")
	require.Equal(t, float64(404), errObj["status"])
}

func TestErrorRendering_FullErrorPage(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/credentials/99", nil)
	req.SetPathValue("id", "99")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<!DOCTYPE html>")
	require.Contains(t, body, "404")
}

// --- Routing ---

func TestNewServer_Routes(t *testing.T) {
	h := setupTest(t)
	seedCredential(t, h, "", "github")

	cfg := config.DefaultConfig()
	cfg.WebPort = 0
	srv, err := NewServer(h.db, cfg, "test")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/credentials", resp.Header.Get("Location"))

	resp, err = client.Get(ts.URL + "/credentials/1")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	resp, err = client.Get(ts.URL + "/static/style.css")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Post(ts.URL+"/credentials/1/delete", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := setupTest(t)
	cfg := config.DefaultConfig()
	cfg.WebPort = 0
	srv, err := NewServer(h.db, cfg, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv) }()

	cancel()
	require.NoError(t, <-done)
}

// --- Helper functions ---

func TestSections(t *testing.T) {
	groups := []credential.Group{{Name: "bank", Count: 1}, {Name: "empty"}, {Name: credential.Unassigned, Count: 1}}
	items := []credential.Summary{{ID: 1, Group: "bank", Name: "chase"}, {ID: 2, Group: credential.Unassigned, Name: "github"}}

	got := sections(groups, items)
	require.Len(t, got, 3)
	require.Len(t, got[0].Items, 1)
	require.Empty(t, got[1].Items)
	require.True(t, got[2].Protected)
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query    string
		name     string
		def      int
		expected int
	}{
		{"", "length", 8, 8},
		{"length=50", "length", 8, 50},
		{"length=bad", "length", 8, 8},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/?"+tt.query, nil)
		require.Equal(t, tt.expected, parseIntParam(req, tt.name, tt.def), tt.query)
	}
}

func TestParseBoolParam(t *testing.T) {
	tests := []struct {
		query    string
		expected bool
	}{
		{"", false},
		{"reveal=true", true},
		{"reveal=1", true},
		{"reveal=false", false},
		{"reveal=yes", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/?"+tt.query, nil)
		require.Equal(t, tt.expected, parseBoolParam(req, "reveal"), tt.query)
	}
}

// guardedServer returns the full server handler on the default 127.0.0.1:8765.
func guardedServer(t *testing.T, h *Handlers) http.Handler {
	t.Helper()
	srv, err := NewServer(h.db, config.DefaultConfig(), "test")
	require.NoError(t, err)
	return srv.Handler
}

func storedSecret(t *testing.T, h *Handlers, id int64) string {
	t.Helper()
	out, err := ops.Fetch(context.Background(), h.db, ops.FetchInput{ID: id, IncludeSecret: true})
	require.NoError(t, err)
	return out.Secret
}

func TestServer_HostAllowlist(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "", "chase")
	handler := guardedServer(t, h)

	tests := []struct {
		host string
		want int
	}{
		{"127.0.0.1:8765", http.StatusOK},
		{"localhost:8765", http.StatusOK},
		{"LOCALHOST:8765", http.StatusOK},
		{"[::1]:8765", http.StatusOK},
		{"evil.example", http.StatusForbidden},
		{"evil.example:8765", http.StatusForbidden},
		{"127.0.0.1:9999", http.StatusForbidden},
		{"127.0.0.1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/credentials/"+idString(id)+"?reveal=true", nil)
			req.Host = tt.host
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				require.NotContains(t, rec.Body.String(), "chase-secret")
				var payload map[string]map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
				require.Equal(t, "FORBIDDEN", payload["error"]["code"])
			}
		})
	}
}

func TestServer_RefusesCrossOriginWrites(t *testing.T) {
	h := setupTest(t)
	id := seedCredential(t, h, "", "chase")
	handler := guardedServer(t, h)
	path := "/credentials/" + idString(id)

	t.Run("foreign origin overwriting a password", func(t *testing.T) {
		req := formRequest("POST", path, url.Values{"password": {"attacker-pw"}})
		req.Host = "127.0.0.1:8765"
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "chase-secret", storedSecret(t, h, id))
	})

	t.Run("cross-site form post", func(t *testing.T) {
		req := formRequest("POST", path, url.Values{"password": {"attacker-pw"}})
		req.Host = "127.0.0.1:8765"
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "chase-secret", storedSecret(t, h, id))
	})

	t.Run("cross-site delete", func(t *testing.T) {
		for _, method := range []string{"DELETE", "POST"} {
			target := path
			if method == "POST" {
				target += "/delete"
			}
			req := httptest.NewRequest(method, target, nil)
			req.Host = "127.0.0.1:8765"
			req.Header.Set("Sec-Fetch-Site", "cross-site")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusForbidden, rec.Code, method)
		}
		require.Equal(t, "chase-secret", storedSecret(t, h, id))
	})

	t.Run("same-origin form post", func(t *testing.T) {
		req := formRequest("POST", path, url.Values{"password": {"rotated-pw"}})
		req.Host = "127.0.0.1:8765"
		req.Header.Set("Origin", "http://127.0.0.1:8765")
		req.Header.Set("Sec-Fetch-Site", "same-origin")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "rotated-pw", storedSecret(t, h, id))
	})
}

func TestAllowedHosts(t *testing.T) {
	hosts := allowedHosts("192.168.1.20")
	require.True(t, hosts["192.168.1.20"])
	require.True(t, hosts["localhost"])
	require.False(t, hosts["evil.example"])

	wildcard := allowedHosts("0.0.0.0")
	require.True(t, wildcard["127.0.0.1"])
	require.False(t, wildcard["0.0.0.0"])
	require.False(t, wildcard["evil.example"])
}
