// Package server exposes the generation pipeline as a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"ai_blog_writer/convert"
	"ai_blog_writer/export"
	"ai_blog_writer/generator"
)

const (
	generateTimeout = 120 * time.Second
	exportTimeout   = 240 * time.Second
)

// Server holds the pipeline pieces and an in-memory post store. Exporters
// resolve their own credentials per call, so the server never caches any.
type Server struct {
	agent      *generator.Agent
	imageAgent *generator.ImageAgent
	notion     *export.Notion
	wordpress  *export.WordPress
	store      *postStore
}

type post struct {
	Request generator.Request
	Content generator.Content
	Image   *generator.FeaturedImage
}

type postStore struct {
	mu    sync.Mutex
	posts map[string]*post
}

func newStore() *postStore {
	return &postStore{posts: make(map[string]*post)}
}

func (s *postStore) set(id string, p *post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[id] = p
}

func (s *postStore) get(id string) (*post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	return p, ok
}

func New(agent *generator.Agent, imageAgent *generator.ImageAgent, notion *export.Notion, wordpress *export.WordPress) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	return &Server{
		agent:      agent,
		imageAgent: imageAgent,
		notion:     notion,
		wordpress:  wordpress,
		store:      newStore(),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts", s.handlePostCreate)
	mux.HandleFunc("/api/posts/", s.handlePostByID)
	return logMiddleware(mux)
}

// --- Handlers ---

type postCreateReq struct {
	Title         string   `json:"title"`
	Keywords      []string `json:"keywords"`
	Tone          string   `json:"tone"`
	Length        string   `json:"length"`
	GenerateImage bool     `json:"generate_image"`
	ImagePrompt   string   `json:"image_prompt"`
	Format        string   `json:"format"`
}

type postResp struct {
	ID         string `json:"id"`
	Markdown   string `json:"markdown"`
	WordCount  int    `json:"word_count"`
	HTML       string `json:"html,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	ImageError string `json:"image_error,omitempty"`
}

type exportReq struct {
	Destination string `json:"destination"`
}

func (s *Server) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req postCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	genReq := generator.Request{
		Title:    req.Title,
		Keywords: req.Keywords,
		Tone:     req.Tone,
		Length:   req.Length,
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()
	content, err := s.agent.Generate(ctx, genReq)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	resp := postResp{
		Markdown:  content.Markdown,
		WordCount: content.WordCount,
	}

	p := &post{Request: genReq, Content: content}

	// Image failure is reported alongside the draft, never instead of it.
	if req.GenerateImage && s.imageAgent != nil {
		prompt := req.ImagePrompt
		if prompt == "" {
			prompt = generator.DefaultImagePrompt(req.Title, req.Keywords)
		}
		img, imgErr := s.imageAgent.Generate(ctx, prompt)
		if imgErr != nil {
			resp.ImageError = imgErr.Error()
		} else {
			p.Image = &img
			resp.ImageURL = img.SourceURL
		}
	}

	if strings.EqualFold(req.Format, "html") {
		html, err := convert.ToHTML(content.Markdown)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		p.Content.HTML = html
		resp.HTML = html
	}

	id := newPostID()
	resp.ID = id
	s.store.set(id, p)
	writeJSON(w, resp)
}

func (s *Server) handlePostByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}
	id, action, _ := strings.Cut(rest, "/")
	p, ok := s.store.get(id)
	if !ok {
		http.Error(w, "post not found", http.StatusNotFound)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		writeJSON(w, postResp{
			ID:        id,
			Markdown:  p.Content.Markdown,
			WordCount: p.Content.WordCount,
			HTML:      p.Content.HTML,
			ImageURL:  imageURL(p),
		})
	case action == "export" && r.Method == http.MethodPost:
		s.handleExport(w, r, p)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, p *post) {
	var req exportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
	defer cancel()

	var result export.Result
	var err error
	switch req.Destination {
	case export.DestinationNotion:
		if s.notion == nil {
			http.Error(w, "notion exporter not configured", http.StatusBadRequest)
			return
		}
		result, err = s.notion.Export(ctx, p.Request.Title, p.Content.Markdown, p.Image)
	case export.DestinationWordPress:
		if s.wordpress == nil {
			http.Error(w, "wordpress exporter not configured", http.StatusBadRequest)
			return
		}
		html := p.Content.HTML
		if html == "" {
			html, err = convert.ToHTML(p.Content.Markdown)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		result, err = s.wordpress.Export(ctx, p.Request.Title, html, p.Image)
	default:
		http.Error(w, "unknown destination", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, result)
}

// --- Helpers ---

func imageURL(p *post) string {
	if p.Image == nil {
		return ""
	}
	return p.Image.SourceURL
}

func newPostID() string {
	return strings.ReplaceAll(time.Now().Format("20060102T150405.000000000"), ".", "")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[http] %s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
