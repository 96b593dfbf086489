package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"strings"
	"time"

	"ai_blog_writer/config"
	"ai_blog_writer/generator"
	"ai_blog_writer/retry"
)

// Image upload plus post creation against a slow site takes a while, so this
// exporter's transport gets an extended timeout.
const (
	wordpressTimeout = 180 * time.Second
	featuredImageMax = 1024
)

// WordPress exports a post as a draft via the site's XML-RPC endpoint.
// Credentials are resolved on every Export call, not cached.
type WordPress struct {
	resolver    *config.Resolver
	client      *http.Client
	uploadRetry retry.Policy
	verbose     bool
	logger      *log.Logger
}

func NewWordPress(resolver *config.Resolver, client *http.Client) *WordPress {
	if client == nil {
		client = &http.Client{Timeout: wordpressTimeout}
	}
	return &WordPress{
		resolver:    resolver,
		client:      client,
		uploadRetry: retry.DefaultPolicy(),
		logger:      log.Default(),
	}
}

// WithUploadRetryPolicy overrides the media upload retry policy, for tests.
func (w *WordPress) WithUploadRetryPolicy(p retry.Policy) *WordPress {
	w.uploadRetry = p
	return w
}

// WithVerbose enables info logs on the given logger.
func (w *WordPress) WithVerbose(logger *log.Logger) *WordPress {
	w.verbose = true
	if logger != nil {
		w.logger = logger
	}
	return w
}

func (w *WordPress) infof(format string, args ...interface{}) {
	if !w.verbose {
		return
	}
	w.logger.Printf("[INFO] "+format, args...)
}

// Export uploads the featured image (downsized to fit 1024x1024, retried up
// to 3 times), then creates a draft post with the given title and content.
// Content is expected to already be HTML. When the upload retry budget is
// exhausted no post is created. Returns the draft URL built from the site
// address and the new post id.
func (w *WordPress) Export(ctx context.Context, title, content string, img *generator.FeaturedImage) (Result, error) {
	creds, ok := w.resolver.WordPress()
	if !ok {
		return Result{}, fmt.Errorf("%w: wordpress: %w", ErrExport, config.ErrNotConfigured)
	}
	endpoint := creds.URL + "/xmlrpc.php"

	var thumbnailID string
	if img != nil && img.Image != nil {
		id, err := w.uploadFeaturedImage(ctx, endpoint, creds, title, img)
		if err != nil {
			return Result{}, fmt.Errorf("%w: wordpress: image upload: %v", ErrExport, err)
		}
		thumbnailID = id
		w.infof("Featured image uploaded, attachment id=%s", thumbnailID)
	}

	post := rpcStruct{
		{"post_type", "post"},
		{"post_status", "draft"},
		{"post_title", title},
		{"post_content", content},
	}
	if thumbnailID != "" {
		post = append(post, rpcMemberOut{"post_thumbnail", thumbnailID})
	}

	resp, err := xmlrpcCall(ctx, w.client, endpoint, "wp.newPost",
		0, creds.Username, creds.Password, post)
	if err != nil {
		return Result{}, fmt.Errorf("%w: wordpress: %v", ErrExport, err)
	}
	postID := resp.text()
	if postID == "" {
		return Result{}, fmt.Errorf("%w: wordpress: response missing post id", ErrExport)
	}

	url := fmt.Sprintf("%s/?p=%s", creds.URL, postID)
	w.infof("Draft post created: %s", url)
	return Result{Destination: DestinationWordPress, URL: url}, nil
}

func (w *WordPress) uploadFeaturedImage(ctx context.Context, endpoint string, creds config.WordPressCredentials, title string, img *generator.FeaturedImage) (string, error) {
	resized := FitWithin(img.Image, featuredImageMax, featuredImageMax)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return "", fmt.Errorf("encode image: %v", err)
	}

	name := fmt.Sprintf("%s_featured_image.png", strings.ReplaceAll(title, " ", "_"))
	file := rpcStruct{
		{"name", name},
		{"type", "image/png"},
		{"bits", buf.Bytes()},
		{"overwrite", true},
	}

	var attachmentID string
	err := w.uploadRetry.Do(ctx, func(ctx context.Context) error {
		resp, err := xmlrpcCall(ctx, w.client, endpoint, "wp.uploadFile",
			0, creds.Username, creds.Password, file)
		if err != nil {
			return err
		}
		attachmentID = resp.member("id").text()
		if attachmentID == "" {
			return fmt.Errorf("upload response missing attachment id")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return attachmentID, nil
}
