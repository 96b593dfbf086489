package export_test

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_blog_writer/config"
	"ai_blog_writer/export"
	"ai_blog_writer/generator"
	"ai_blog_writer/retry"
)

var fastRetry = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}

const (
	uploadOKResp = `<?xml version="1.0"?>
<methodResponse><params><param><value><struct>
<member><name>id</name><value><string>55</string></value></member>
<member><name>url</name><value><string>https://blog.example.com/wp-content/img.png</string></value></member>
</struct></value></param></params></methodResponse>`

	newPostOKResp = `<?xml version="1.0"?>
<methodResponse><params><param><value><string>123</string></value></param></params></methodResponse>`

	uploadFaultResp = `<?xml version="1.0"?>
<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><int>500</int></value></member>
<member><name>faultString</name><value><string>media upload rejected</string></value></member>
</struct></value></fault></methodResponse>`
)

// xmlrpcRecorder fakes a WordPress XML-RPC endpoint, recording request
// bodies per method and failing uploads a scripted number of times.
type xmlrpcRecorder struct {
	mu             sync.Mutex
	uploadFailures int
	uploadCalls    int
	newPostCalls   int
	newPostBodies  []string
}

func (x *xmlrpcRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s := string(body)

		x.mu.Lock()
		defer x.mu.Unlock()
		w.Header().Set("Content-Type", "text/xml")
		switch {
		case strings.Contains(s, "<methodName>wp.uploadFile</methodName>"):
			x.uploadCalls++
			if x.uploadCalls <= x.uploadFailures {
				fmt.Fprint(w, uploadFaultResp)
				return
			}
			fmt.Fprint(w, uploadOKResp)
		case strings.Contains(s, "<methodName>wp.newPost</methodName>"):
			x.newPostCalls++
			x.newPostBodies = append(x.newPostBodies, s)
			fmt.Fprint(w, newPostOKResp)
		default:
			http.Error(w, "unknown method", http.StatusBadRequest)
		}
	}
}

func wordpressExporter(t *testing.T, siteURL string, client *http.Client) *export.WordPress {
	t.Helper()
	resolver := config.NewResolver(config.Config{WordPress: config.WordPressConfig{
		URL:      siteURL,
		Username: "admin",
		Password: "hunter2",
	}})
	return export.NewWordPress(resolver, client).WithUploadRetryPolicy(fastRetry)
}

func testImage(w, h int) *generator.FeaturedImage {
	return &generator.FeaturedImage{
		Image:  image.NewRGBA(image.Rect(0, 0, w, h)),
		Prompt: "a cup of coffee",
	}
}

func TestWordPressExport(t *testing.T) {
	t.Run("creates a draft post without an image", func(t *testing.T) {
		rec := &xmlrpcRecorder{}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		wp := wordpressExporter(t, srv.URL, srv.Client())
		res, err := wp.Export(context.Background(), "Best Coffee Brewing Methods", "<h1>Hello</h1>", nil)

		require.NoError(t, err)
		assert.Equal(t, export.DestinationWordPress, res.Destination)
		assert.Equal(t, srv.URL+"/?p=123", res.URL)
		assert.Zero(t, rec.uploadCalls)
		require.Equal(t, 1, rec.newPostCalls)
		body := rec.newPostBodies[0]
		assert.Contains(t, body, "Best Coffee Brewing Methods")
		assert.Contains(t, body, "draft")
		assert.NotContains(t, body, "post_thumbnail")
	})

	t.Run("attaches the image after two upload failures", func(t *testing.T) {
		rec := &xmlrpcRecorder{uploadFailures: 2}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		wp := wordpressExporter(t, srv.URL, srv.Client())
		res, err := wp.Export(context.Background(), "Post", "<p>body</p>", testImage(64, 64))

		require.NoError(t, err)
		assert.Equal(t, 3, rec.uploadCalls)
		require.Equal(t, 1, rec.newPostCalls)
		assert.Contains(t, rec.newPostBodies[0], "post_thumbnail")
		assert.Contains(t, rec.newPostBodies[0], "55")
		assert.Equal(t, srv.URL+"/?p=123", res.URL)
	})

	t.Run("persistent upload failure stops before post creation", func(t *testing.T) {
		rec := &xmlrpcRecorder{uploadFailures: 100}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		wp := wordpressExporter(t, srv.URL, srv.Client())
		_, err := wp.Export(context.Background(), "Post", "<p>body</p>", testImage(64, 64))

		require.ErrorIs(t, err, export.ErrExport)
		assert.Contains(t, err.Error(), "image upload")
		assert.Contains(t, err.Error(), "media upload rejected")
		assert.Equal(t, 3, rec.uploadCalls)
		assert.Zero(t, rec.newPostCalls)
	})

	t.Run("missing credentials fail fast without network calls", func(t *testing.T) {
		t.Setenv("WORDPRESS_URL", "")
		t.Setenv("WORDPRESS_USERNAME", "")
		t.Setenv("WORDPRESS_PASSWORD", "")

		wp := export.NewWordPress(config.NewResolver(config.Config{}), nil)
		_, err := wp.Export(context.Background(), "Post", "<p>body</p>", nil)

		require.ErrorIs(t, err, export.ErrExport)
		assert.ErrorIs(t, err, config.ErrNotConfigured)
	})

	t.Run("post creation fault surfaces as ErrExport", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, uploadFaultResp)
		}))
		defer srv.Close()

		wp := wordpressExporter(t, srv.URL, srv.Client())
		_, err := wp.Export(context.Background(), "Post", "<p>body</p>", nil)

		require.ErrorIs(t, err, export.ErrExport)
		assert.Contains(t, err.Error(), "media upload rejected")
	})
}
