package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message pair sent to the LLM.
type Prompt struct {
	System string
	User   string
}

const systemRole = "You are an expert blog writer skilled in SEO and creating engaging, well-structured content."

// BuildPrompt turns a Request into the drafting instruction. The structural
// requirements (headers, lists, internal-link placeholders, intro/conclusion)
// are fixed; only title, tone, keywords, and length vary.
func BuildPrompt(req Request) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a comprehensive, engaging, and well-structured blog post titled %q.\n\n", req.Title))
	sb.WriteString("The blog post should:\n")
	sb.WriteString(fmt.Sprintf("- Be written in a %s tone\n", req.Tone))
	sb.WriteString(fmt.Sprintf("- Target these SEO keywords: %s\n", strings.Join(req.Keywords, ", ")))
	sb.WriteString("- Include appropriate H2 and H3 headers\n")
	sb.WriteString("- Use bullet points and numbered lists where appropriate\n")
	sb.WriteString("- Include placeholders for internal links [INTERNAL_LINK: related topic]\n")
	sb.WriteString(fmt.Sprintf("- Be approximately %d words (%s length)\n", req.TargetWordCount(), req.Length))
	sb.WriteString("- Include an introduction and conclusion\n\n")
	sb.WriteString("Format the output as Markdown.\n")

	return Prompt{
		System: systemRole,
		User:   sb.String(),
	}
}

// DefaultImagePrompt builds the featured-image prompt used when the caller
// supplies none, mirroring the drafting inputs (title plus up to three
// keywords).
func DefaultImagePrompt(title string, keywords []string) string {
	topics := keywords
	if len(topics) > 3 {
		topics = topics[:3]
	}
	return fmt.Sprintf("Create a professional featured image for a blog post titled '%s' about %s",
		title, strings.Join(topics, ", "))
}
