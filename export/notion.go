package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"ai_blog_writer/config"
	"ai_blog_writer/generator"
)

const (
	notionBaseURL    = "https://api.notion.com"
	notionAPIVersion = "2022-06-28"
	notionTimeout    = 60 * time.Second
)

// Notion exports a post as a draft page under the configured database.
// Credentials are resolved on every Export call, not cached.
type Notion struct {
	resolver *config.Resolver
	client   *http.Client
	baseURL  string
	verbose  bool
	logger   *log.Logger
}

func NewNotion(resolver *config.Resolver, client *http.Client) *Notion {
	if client == nil {
		client = &http.Client{Timeout: notionTimeout}
	}
	return &Notion{
		resolver: resolver,
		client:   client,
		baseURL:  notionBaseURL,
		logger:   log.Default(),
	}
}

// WithBaseURL points the exporter at a substitute endpoint, for tests.
func (n *Notion) WithBaseURL(url string) *Notion {
	n.baseURL = url
	return n
}

// WithVerbose enables info logs on the given logger.
func (n *Notion) WithVerbose(logger *log.Logger) *Notion {
	n.verbose = true
	if logger != nil {
		n.logger = logger
	}
	return n
}

func (n *Notion) infof(format string, args ...interface{}) {
	if !n.verbose {
		return
	}
	n.logger.Printf("[INFO] "+format, args...)
}

type notionText struct {
	Content string `json:"content"`
}

type notionRichText struct {
	Type string     `json:"type"`
	Text notionText `json:"text"`
}

type notionParent struct {
	DatabaseID string `json:"database_id"`
}

type notionSelect struct {
	Name string `json:"name"`
}

type notionProperties struct {
	Title  notionTitleProp  `json:"title"`
	Status notionStatusProp `json:"Status"`
}

type notionTitleProp struct {
	Title []notionRichText `json:"title"`
}

type notionStatusProp struct {
	Select notionSelect `json:"select"`
}

type notionParagraph struct {
	RichText []notionRichText `json:"rich_text"`
}

type notionExternal struct {
	URL string `json:"url"`
}

type notionImage struct {
	Type     string         `json:"type"`
	External notionExternal `json:"external"`
}

type notionBlock struct {
	Object    string           `json:"object"`
	Type      string           `json:"type"`
	Paragraph *notionParagraph `json:"paragraph,omitempty"`
	Image     *notionImage     `json:"image,omitempty"`
}

type notionPagePayload struct {
	Parent     notionParent     `json:"parent"`
	Properties notionProperties `json:"properties"`
	Children   []notionBlock    `json:"children"`
}

type notionPageResp struct {
	URL     string `json:"url"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Export creates a draft page: title property, Status=Draft select, and the
// content as a single paragraph block. When the image carries the hosted URL
// it came from, an external image block is prepended; an image without a
// source URL is skipped rather than given a fabricated address.
func (n *Notion) Export(ctx context.Context, title, content string, img *generator.FeaturedImage) (Result, error) {
	creds, ok := n.resolver.Notion()
	if !ok {
		return Result{}, fmt.Errorf("%w: notion: %w", ErrExport, config.ErrNotConfigured)
	}

	children := []notionBlock{{
		Object: "block",
		Type:   "paragraph",
		Paragraph: &notionParagraph{
			RichText: []notionRichText{{Type: "text", Text: notionText{Content: content}}},
		},
	}}
	if img != nil {
		if img.SourceURL == "" {
			n.infof("Featured image has no hosted URL, skipping image block")
		} else {
			children = append([]notionBlock{{
				Object: "block",
				Type:   "image",
				Image:  &notionImage{Type: "external", External: notionExternal{URL: img.SourceURL}},
			}}, children...)
		}
	}

	payload := notionPagePayload{
		Parent: notionParent{DatabaseID: creds.DatabaseID},
		Properties: notionProperties{
			Title:  notionTitleProp{Title: []notionRichText{{Type: "text", Text: notionText{Content: title}}}},
			Status: notionStatusProp{Select: notionSelect{Name: "Draft"}},
		},
		Children: children,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: notion: %v", ErrExport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/v1/pages", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("%w: notion: %v", ErrExport, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionAPIVersion)

	resp, err := n.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: notion: %v", ErrExport, err)
	}
	defer resp.Body.Close()

	var data notionPageResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Result{}, fmt.Errorf("%w: notion: decode response: %v", ErrExport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: notion: status %d: %s", ErrExport, resp.StatusCode, data.Message)
	}
	if data.URL == "" {
		return Result{}, fmt.Errorf("%w: notion: response missing page url", ErrExport)
	}

	n.infof("Notion page created: %s", data.URL)
	return Result{Destination: DestinationNotion, URL: data.URL}, nil
}
