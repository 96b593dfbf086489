package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"strings"

	"ai_blog_writer/config"
	"ai_blog_writer/convert"
	"ai_blog_writer/export"
	"ai_blog_writer/generator"
	"ai_blog_writer/server"
)

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config.json", "path to config.json")
	title := flag.String("title", "", "blog post title")
	keywordsArg := flag.String("keywords", "", "comma-separated SEO keywords")
	tone := flag.String("tone", "professional", "tone of the post")
	length := flag.String("length", generator.LengthMedium, "short, medium, or long")
	withImage := flag.Bool("image", false, "generate a featured image")
	imagePrompt := flag.String("image-prompt", "", "custom image prompt (defaults to one built from title and keywords)")
	format := flag.String("format", "markdown", "output format: markdown or html")
	outPath := flag.String("out", "", "output file (defaults to the sanitized title)")
	toNotion := flag.Bool("notion", false, "export the draft to Notion")
	toWordPress := flag.Bool("wordpress", false, "export the draft to WordPress")
	mock := flag.Bool("mock", false, "use the mock model instead of the API")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	resolver := config.NewResolver(cfg)

	llm, imgClient, err := buildClients(resolver, *mock)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	agent, err := generator.NewAgent(llm)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if verbose {
		agent.WithVerbose(log.Default())
	}

	var imageAgent *generator.ImageAgent
	if imgClient != nil {
		imageAgent, err = generator.NewImageAgent(imgClient, nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if verbose {
			imageAgent.WithVerbose(log.Default())
		}
	}

	notion := export.NewNotion(resolver, nil)
	wordpress := export.NewWordPress(resolver, nil)
	if verbose {
		notion.WithVerbose(log.Default())
		wordpress.WithVerbose(log.Default())
	}

	// Web server mode
	if *serve {
		srv, err := server.New(agent, imageAgent, notion, wordpress)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Printf("Starting web server on %s", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *title == "" || *keywordsArg == "" {
		fmt.Fprintln(os.Stderr, "--title and --keywords are required")
		os.Exit(1)
	}

	req := generator.Request{
		Title:    *title,
		Keywords: splitKeywords(*keywordsArg),
		Tone:     strings.ToLower(*tone),
		Length:   strings.ToLower(*length),
	}

	ctx := context.Background()
	log.Printf("[cli] generating title=%q keywords=%d tone=%s length=%s", req.Title, len(req.Keywords), req.Tone, req.Length)
	content, err := agent.Generate(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Printf("[cli] draft complete, %d words", content.WordCount)

	var featured *generator.FeaturedImage
	if *withImage {
		if imageAgent == nil {
			fmt.Fprintln(os.Stderr, "image generation requested but no image client is configured")
		} else {
			prompt := *imagePrompt
			if prompt == "" {
				prompt = generator.DefaultImagePrompt(req.Title, req.Keywords)
			}
			img, err := imageAgent.Generate(ctx, prompt)
			if err != nil {
				// A failed image never discards the draft.
				fmt.Fprintf(os.Stderr, "featured image: %v\n", err)
			} else {
				featured = &img
			}
		}
	}

	output := content.Markdown
	ext := ".md"
	if strings.EqualFold(*format, "html") {
		html, err := convert.ToHTML(content.Markdown)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		content.HTML = html
		output = html
		ext = ".html"
	}

	path := *outPath
	if path == "" {
		path = sanitizeFilename(req.Title) + ext
	}
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Printf("[cli] wrote %s", path)

	if featured != nil {
		imgPath := strings.TrimSuffix(path, ext) + ".png"
		if err := writePNG(imgPath, featured); err != nil {
			fmt.Fprintf(os.Stderr, "featured image: %v\n", err)
		} else {
			log.Printf("[cli] wrote %s", imgPath)
		}
	}

	// Exports run in sequence; one destination failing never blocks the next
	// or removes the local files.
	failed := false
	if *toNotion {
		res, err := notion.Export(ctx, req.Title, content.Markdown, featured)
		if err != nil {
			fmt.Fprintf(os.Stderr, "notion: %v\n", err)
			failed = true
		} else {
			log.Printf("[cli] notion draft created: %s", res.URL)
			fmt.Println(res.URL)
		}
	}
	if *toWordPress {
		html := content.HTML
		if html == "" {
			html, err = convert.ToHTML(content.Markdown)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
		res, err := wordpress.Export(ctx, req.Title, html, featured)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wordpress: %v\n", err)
			failed = true
		} else {
			log.Printf("[cli] wordpress draft created: %s", res.URL)
			fmt.Println(res.URL)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func buildClients(resolver *config.Resolver, mock bool) (generator.LLMClient, generator.ImageClient, error) {
	if mock {
		return generator.MockLLM{}, nil, nil
	}
	creds, ok := resolver.OpenAI()
	if !ok {
		return nil, nil, fmt.Errorf("openai: %w; set openai.api_key in config or OPENAI_API_KEY", config.ErrNotConfigured)
	}
	llm, err := generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
		Model:      creds.Model,
		ImageModel: creds.ImageModel,
		APIKey:     creds.APIKey,
		BaseURL:    creds.BaseURL,
	})
	if err != nil {
		return nil, nil, err
	}
	return llm, llm, nil
}

func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func sanitizeFilename(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}

func writePNG(path string, img *generator.FeaturedImage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img.Image)
}
