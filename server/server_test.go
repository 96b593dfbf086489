package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_blog_writer/config"
	"ai_blog_writer/export"
	"ai_blog_writer/generator"
	"ai_blog_writer/retry"
	"ai_blog_writer/server"
)

type fixedLLM struct {
	markdown string
}

func (f fixedLLM) Complete(context.Context, generator.Prompt) (string, error) {
	return f.markdown, nil
}

func newTestServer(t *testing.T, notion *export.Notion, wordpress *export.WordPress) http.Handler {
	t.Helper()
	llm := fixedLLM{markdown: "# Coffee\n\nDrink [INTERNAL_LINK: brewing] daily."}
	agent, err := generator.NewAgent(llm)
	require.NoError(t, err)
	agent.WithRetryPolicy(retry.Policy{MaxAttempts: 1})

	srv, err := server.New(agent, nil, notion, wordpress)
	require.NoError(t, err)
	return srv.Routes()
}

func createPost(t *testing.T, h http.Handler, body string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPostCreate(t *testing.T) {
	h := newTestServer(t, nil, nil)

	t.Run("generates markdown with normalized links", func(t *testing.T) {
		resp := createPost(t, h, `{"title":"Coffee","keywords":["brewing"],"tone":"casual","length":"short"}`)

		md := resp["markdown"].(string)
		assert.NotContains(t, md, "INTERNAL_LINK:")
		assert.Contains(t, md, "[brewing]")
		assert.NotEmpty(t, resp["id"])
		assert.Positive(t, resp["word_count"].(float64))
		assert.Nil(t, resp["html"])
	})

	t.Run("html format adds a rendering without touching markdown", func(t *testing.T) {
		resp := createPost(t, h, `{"title":"Coffee","keywords":["brewing"],"tone":"casual","length":"short","format":"html"}`)

		html := resp["html"].(string)
		assert.Contains(t, html, "<h1>Coffee</h1>")
		assert.NotContains(t, html, "#")
		assert.Contains(t, resp["markdown"].(string), "# Coffee")
	})

	t.Run("empty keywords are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"title":"Coffee"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("get returns the stored post", func(t *testing.T) {
		resp := createPost(t, h, `{"title":"Coffee","keywords":["brewing"],"tone":"casual","length":"short"}`)
		id := resp["id"].(string)

		req := httptest.NewRequest(http.MethodGet, "/api/posts/"+id, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "# Coffee")
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts/nope", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostExport(t *testing.T) {
	newPostResp := `<?xml version="1.0"?>
<methodResponse><params><param><value><string>321</string></value></param></params></methodResponse>`

	t.Run("exports the post to wordpress as html", func(t *testing.T) {
		var gotBody bytes.Buffer
		wpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = gotBody.ReadFrom(r.Body)
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, newPostResp)
		}))
		defer wpSrv.Close()

		resolver := config.NewResolver(config.Config{WordPress: config.WordPressConfig{
			URL: wpSrv.URL, Username: "admin", Password: "pw",
		}})
		wp := export.NewWordPress(resolver, wpSrv.Client()).
			WithUploadRetryPolicy(retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond})

		h := newTestServer(t, nil, wp)
		resp := createPost(t, h, `{"title":"Coffee","keywords":["brewing"],"tone":"casual","length":"short"}`)
		id := resp["id"].(string)

		req := httptest.NewRequest(http.MethodPost, "/api/posts/"+id+"/export", strings.NewReader(`{"destination":"wordpress"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result export.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, wpSrv.URL+"/?p=321", result.URL)
		assert.Contains(t, gotBody.String(), "&lt;h1&gt;Coffee&lt;/h1&gt;")
	})

	t.Run("export failure leaves the post readable", func(t *testing.T) {
		wpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}))
		defer wpSrv.Close()

		resolver := config.NewResolver(config.Config{WordPress: config.WordPressConfig{
			URL: wpSrv.URL, Username: "admin", Password: "pw",
		}})
		wp := export.NewWordPress(resolver, wpSrv.Client()).
			WithUploadRetryPolicy(retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond})

		h := newTestServer(t, nil, wp)
		resp := createPost(t, h, `{"title":"Coffee","keywords":["brewing"],"tone":"casual","length":"short"}`)
		id := resp["id"].(string)

		req := httptest.NewRequest(http.MethodPost, "/api/posts/"+id+"/export", strings.NewReader(`{"destination":"wordpress"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		getReq := httptest.NewRequest(http.MethodGet, "/api/posts/"+id, nil)
		getRec := httptest.NewRecorder()
		h.ServeHTTP(getRec, getReq)
		assert.Equal(t, http.StatusOK, getRec.Code)
	})

	t.Run("unknown destination is a 400", func(t *testing.T) {
		h := newTestServer(t, nil, nil)
		resp := createPost(t, h, `{"title":"Coffee","keywords":["brewing"],"tone":"casual","length":"short"}`)
		id := resp["id"].(string)

		req := httptest.NewRequest(http.MethodPost, "/api/posts/"+id+"/export", strings.NewReader(`{"destination":"medium"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
