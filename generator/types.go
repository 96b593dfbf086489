package generator

import "image"

// Length labels and their approximate target word counts.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Request describes the blog post to draft.
type Request struct {
	Title       string
	Keywords    []string
	Tone        string
	Length      string
	TargetWords int
}

// TargetWordCount returns the explicit target when set, otherwise the count
// implied by the length label (500/1000/1500).
func (r Request) TargetWordCount() int {
	if r.TargetWords > 0 {
		return r.TargetWords
	}
	switch r.Length {
	case LengthShort:
		return 500
	case LengthLong:
		return 1500
	default:
		return 1000
	}
}

// Content is a generated draft. HTML is filled in by the convert package when
// the caller asks for it; Markdown is never overwritten.
type Content struct {
	Markdown  string
	WordCount int
	HTML      string
}

// FeaturedImage holds the decoded image together with the prompt that
// produced it and the hosted URL the image API returned. The URL lets
// exporters reference the real image without re-uploading the bytes.
type FeaturedImage struct {
	Image     image.Image
	Prompt    string
	SourceURL string
}
