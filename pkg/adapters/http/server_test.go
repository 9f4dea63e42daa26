package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/editor"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...lattice.Option) http.Handler {
	t.Helper()
	n := 0
	opts = append([]lattice.Option{lattice.WithIDGenerator(func(typ string) string {
		n++
		return fmt.Sprintf("%s-%d", typ, n)
	})}, opts...)
	b, err := lattice.New(opts...)
	require.NoError(t, err)
	return NewHandler(b, WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "lattice_blocks_mutated_total 1\n")
	})))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func result(t *testing.T, w *httptest.ResponseRecorder) Result {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestServer_BlockLifecycle(t *testing.T) {
	h := newTestHandler(t)

	res := result(t, do(t, h, "POST", "/pages/home/blocks", map[string]string{"type": "headline"}))
	require.True(t, res.OK)
	headline := res.ID
	res = result(t, do(t, h, "POST", "/pages/home/blocks", map[string]string{"type": "cta"}))
	cta := res.ID

	res = result(t, do(t, h, "PATCH", "/pages/home/blocks/"+cta, map[string]any{
		"content": map[string]any{"buttonText": "Buy Now"},
	}))
	assert.True(t, res.OK)

	res = result(t, do(t, h, "POST", "/pages/home/reorder", map[string]int{"from": 1, "to": 0}))
	assert.True(t, res.OK)

	res = result(t, do(t, h, "POST", "/pages/home/blocks/"+headline+"/toggle", nil))
	assert.True(t, res.OK)

	res = result(t, do(t, h, "POST", "/pages/home/blocks/"+headline+"/duplicate", nil))
	assert.True(t, res.OK)
	assert.NotEmpty(t, res.ID)

	res = result(t, do(t, h, "POST", "/pages/home/blocks/"+headline+"/move", map[string]string{"direction": "up"}))
	assert.True(t, res.OK)

	res = result(t, do(t, h, "POST", "/pages/home/blocks/"+cta+"/preset", map[string]string{"name": "Urgency"}))
	assert.True(t, res.OK)

	w := do(t, h, "GET", "/pages/home", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page domain.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Blocks, 3)
	assert.Equal(t, headline, page.Blocks[0].ID)
	assert.False(t, page.Blocks[0].Visible)
	for i, b := range page.Blocks {
		assert.Equal(t, i, b.Order)
	}

	res = result(t, do(t, h, "DELETE", "/pages/home/blocks/"+headline, nil))
	assert.True(t, res.OK)
	res = result(t, do(t, h, "DELETE", "/pages/home/blocks/"+headline, nil))
	assert.False(t, res.OK, "deleting a missing block reports ok=false")

	w = do(t, h, "GET", "/pages", nil)
	assert.JSONEq(t, `["home"]`, w.Body.String())

	result(t, do(t, h, "DELETE", "/pages/home", nil))
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/pages/home", nil).Code)
}

func TestServer_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/pages/p/blocks", "{").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/pages/p/blocks", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/pages/p/reorder", map[string]int{"from": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/pages/p/blocks/x/move", map[string]string{"direction": "left"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/pages/p/render?mode=print", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "POST", "/pages/p/templates/nope", nil).Code)
}

func TestServer_Catalog(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var palette []registry.PaletteItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &palette))
	assert.Len(t, palette, len(registry.Builtins()))

	w = do(t, h, "GET", "/templates?q=SALES&category=all", nil)
	var templates []domain.Template
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &templates))
	require.NotEmpty(t, templates)

	res := result(t, do(t, h, "POST", "/pages/p/templates/"+templates[0].ID, nil))
	assert.True(t, res.OK)
	assert.Len(t, res.IDs, len(templates[0].Blocks))

	w = do(t, h, "GET", "/info", nil)
	assert.Contains(t, w.Body.String(), strings.TrimSpace(lattice.Version))
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/health", nil).Code)
	assert.Contains(t, do(t, h, "GET", "/metrics", nil).Body.String(), "lattice_blocks_mutated_total")
}

func TestServer_EditorAndWorkspace(t *testing.T) {
	h := newTestHandler(t)
	id := result(t, do(t, h, "POST", "/pages/p/blocks", map[string]string{"type": "pricing"})).ID

	w := do(t, h, "GET", "/pages/p/blocks/"+id+"/editor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var form editor.Form
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &form))
	assert.Equal(t, id, form.BlockID)
	assert.NotEmpty(t, form.Presets)

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/pages/p/blocks/missing/editor", nil).Code)

	w = do(t, h, "GET", "/pages/p/workspace?selected="+id+"&actions=add,toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view workspace.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotNil(t, view.Properties)
	assert.Equal(t, workspace.ActionSet{workspace.ActionAdd, workspace.ActionToggle}, view.Actions)
}

func TestServer_RenderAndCheckout(t *testing.T) {
	h := newTestHandler(t, lattice.WithCheckoutURL("https://pay.example.com/session"))
	cta := result(t, do(t, h, "POST", "/pages/p/blocks", map[string]string{"type": "cta"})).ID
	result(t, do(t, h, "POST", "/pages/p/blocks", map[string]string{"type": "unknown-widget"}))

	w := do(t, h, "GET", "/pages/p/render?mode=view", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "/pages/p/checkout/"+cta)
	assert.Contains(t, w.Body.String(), "unknown-widget")

	w = do(t, h, "POST", "/pages/p/checkout/"+cta, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://pay.example.com/session", w.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, do(t, h, "POST", "/pages/p/checkout/missing", nil).Code)
}

func TestServer_KeyboardReorder(t *testing.T) {
	h := newTestHandler(t)
	first := result(t, do(t, h, "POST", "/pages/p/blocks", map[string]string{"type": "headline"})).ID
	second := result(t, do(t, h, "POST", "/pages/p/blocks", map[string]string{"type": "cta"})).ID

	res := result(t, do(t, h, "POST", "/pages/p/blocks/"+second+"/keys", map[string][]string{
		"keys": {" ", "ArrowUp", "Enter"},
	}))
	assert.True(t, res.OK)
	assert.Equal(t, "Block moved from position 2 to position 1.", res.Message)

	w := do(t, h, "GET", "/pages/p", nil)
	var page domain.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Blocks, 2)
	assert.Equal(t, second, page.Blocks[0].ID)
	assert.Equal(t, first, page.Blocks[1].ID)

	w = do(t, h, "POST", "/pages/p/blocks/"+second+"/keys", map[string][]string{"keys": {"Tab"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_CheckoutPerVisitor(t *testing.T) {
	h := newTestHandler(t,
		lattice.WithCheckoutURL("https://pay.example.com/x"),
		lattice.WithCheckoutCooldown(5*time.Second),
	)
	cta := result(t, do(t, h, "POST", "/pages/p/blocks", map[string]string{"type": "cta"})).ID
	path := "/pages/p/checkout/" + cta

	first := do(t, h, "POST", path, nil)
	require.Equal(t, http.StatusSeeOther, first.Code)
	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, VisitorCookie, cookies[0].Name)

	other := do(t, h, "POST", path, nil)
	assert.Equal(t, http.StatusSeeOther, other.Code, "a second visitor is not blocked by the first")
	assert.Equal(t, "https://pay.example.com/x", other.Header().Get("Location"))

	req := httptest.NewRequest("POST", path, nil)
	req.AddCookie(cookies[0])
	again := httptest.NewRecorder()
	h.ServeHTTP(again, req)
	assert.Equal(t, http.StatusConflict, again.Code, "the same visitor is guarded during the cooldown")
	assert.Empty(t, again.Result().Cookies(), "a known visitor keeps its cookie")
}

func TestServer_ExportImport(t *testing.T) {
	h := newTestHandler(t)
	result(t, do(t, h, "POST", "/pages/src/templates/sales-page", nil))

	w := do(t, h, "GET", "/pages/src/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="src.json"`)
	exported := w.Body.String()

	res := result(t, do(t, h, "POST", "/pages/dst/import", exported))
	assert.True(t, res.OK)
	assert.Equal(t, exported, do(t, h, "GET", "/pages/dst/export", nil).Body.String())

	for _, body := range []string{"not json", `{"a": 1}`, `[{"type": "headline"}]`} {
		w := do(t, h, "POST", "/pages/dst/import", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
	assert.Equal(t, exported, do(t, h, "GET", "/pages/dst/export", nil).Body.String(), "failed imports leave the page unchanged")
}

func TestServer_SetTheme(t *testing.T) {
	h := newTestHandler(t)
	result(t, do(t, h, "PUT", "/pages/p/theme", map[string]string{"primaryColor": "#ff0000"}))

	w := do(t, h, "GET", "/pages/p", nil)
	var page domain.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "#ff0000", page.Theme.PrimaryColor)
}

func TestStreamManager_Broadcast(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("p")

	sm.Broadcast("p", "hello")
	sm.Broadcast("other", "ignored")
	assert.Equal(t, "hello", <-ch)

	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Empty(t, sm.subscribers)
}

func TestSubscribeEvents_ReceivesDiff(t *testing.T) {
	b, err := lattice.New()
	require.NoError(t, err)
	h := NewHandler(b)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/pages/live/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	require.Contains(t, string(buf[:n]), "connected")

	post, err := http.Post(srv.URL+"/pages/live/blocks", "application/json", strings.NewReader(`{"type":"headline"}`))
	require.NoError(t, err)
	post.Body.Close()

	var got strings.Builder
	for !strings.Contains(got.String(), `"added"`) {
		n, err := resp.Body.Read(buf)
		require.NoError(t, err)
		got.Write(buf[:n])
	}
	assert.Contains(t, got.String(), `"type":"headline"`)
}
