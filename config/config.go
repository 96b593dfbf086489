// Package config loads the JSON config file and resolves per-service
// credentials, layering the file over process environment variables.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrNotConfigured marks a missing or placeholder credential. It is a
// precondition failure, never retried.
var ErrNotConfigured = errors.New("service not configured")

// Config mirrors config.json. Every field is optional; anything absent falls
// back to environment variables at resolution time.
type Config struct {
	OpenAI     OpenAIConfig    `json:"openai"`
	Notion     NotionConfig    `json:"notion"`
	WordPress  WordPressConfig `json:"wordpress"`
	ServerAddr string          `json:"server_addr,omitempty"`
}

type OpenAIConfig struct {
	APIKey     string `json:"api_key,omitempty"`
	Model      string `json:"model,omitempty"`
	ImageModel string `json:"image_model,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
}

type NotionConfig struct {
	APIKey     string `json:"api_key,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

type WordPressConfig struct {
	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// OpenAICredentials is what the generator needs to reach the API.
type OpenAICredentials struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
}

// NotionCredentials addresses one database in one workspace.
type NotionCredentials struct {
	APIKey     string
	DatabaseID string
}

// WordPressCredentials is the XML-RPC endpoint triple.
type WordPressCredentials struct {
	URL      string
	Username string
	Password string
}

// Load reads JSON config from disk and loads a .env file if one exists.
// A missing config file is not an error; resolution then relies on the
// environment alone.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolver resolves credentials at call time: config file first, then the
// named environment variable. Values starting with "YOUR_" are template
// placeholders and count as absent.
type Resolver struct {
	cfg Config
}

func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// OpenAI returns the text/image provider credentials, or false when no API
// key is configured anywhere.
func (r *Resolver) OpenAI() (OpenAICredentials, bool) {
	key := layered(r.cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	if key == "" {
		return OpenAICredentials{}, false
	}
	creds := OpenAICredentials{
		APIKey:     key,
		Model:      r.cfg.OpenAI.Model,
		ImageModel: r.cfg.OpenAI.ImageModel,
		BaseURL:    r.cfg.OpenAI.BaseURL,
	}
	if creds.Model == "" {
		creds.Model = "gpt-4"
	}
	if creds.ImageModel == "" {
		creds.ImageModel = "dall-e-3"
	}
	return creds, true
}

// Notion returns the note-service credentials; both the key and the database
// id must resolve.
func (r *Resolver) Notion() (NotionCredentials, bool) {
	key := layered(r.cfg.Notion.APIKey, "NOTION_API_KEY")
	db := layered(r.cfg.Notion.DatabaseID, "NOTION_DATABASE_ID")
	if key == "" || db == "" {
		return NotionCredentials{}, false
	}
	return NotionCredentials{APIKey: key, DatabaseID: db}, true
}

// WordPress returns the blog-service credentials; URL, username, and password
// must all resolve.
func (r *Resolver) WordPress() (WordPressCredentials, bool) {
	url := layered(r.cfg.WordPress.URL, "WORDPRESS_URL")
	user := layered(r.cfg.WordPress.Username, "WORDPRESS_USERNAME")
	pass := layered(r.cfg.WordPress.Password, "WORDPRESS_PASSWORD")
	if url == "" || user == "" || pass == "" {
		return WordPressCredentials{}, false
	}
	return WordPressCredentials{URL: strings.TrimRight(url, "/"), Username: user, Password: pass}, true
}

func layered(fileValue, envName string) string {
	if v := clean(fileValue); v != "" {
		return v
	}
	return clean(os.Getenv(envName))
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if isPlaceholder(v) {
		return ""
	}
	return v
}

// isPlaceholder reports whether v is a template value such as
// "YOUR_OPENAI_API_KEY" left in a checked-in config.
func isPlaceholder(v string) bool {
	return strings.HasPrefix(v, "YOUR_")
}
