package review

import (
	"strings"
)

// SystemPrompt is the reviewer persona sent with every review request
const SystemPrompt = `You are an expert code reviewer. Your task is to analyze the provided code and give constructive feedback. Focus on:

1. **Code Quality**: Readability, naming conventions, structure
2. **Potential Bugs**: Logic errors, edge cases, null handling
3. **Performance**: Inefficiencies, optimization opportunities
4. **Security**: Vulnerabilities, input validation, data exposure
5. **Best Practices**: Design patterns, SOLID principles, language-specific conventions

Provide your review in a clear, organized format with specific line references when applicable.
Be constructive and educational in your feedback. If the code is good, acknowledge what's done well.

Keep your response concise but thorough. Use markdown formatting for better readability.`

// BuildPrompts returns the system and user prompts for a review.
// Blank language and description are treated as absent.
func BuildPrompts(code, language, description string) (system, user string) {
	return SystemPrompt, BuildUserPrompt(code, language, description)
}

// BuildUserPrompt fences the code in a markdown block, preceded by the
// optional language and context lines. The code is inserted verbatim.
func BuildUserPrompt(code, language, description string) string {
	var sb strings.Builder
	sb.WriteString("Please review the following code:\n\n")

	hint := ""
	if strings.TrimSpace(language) != "" {
		hint = language
		sb.WriteString("**Language:** ")
		sb.WriteString(language)
		sb.WriteString("\n\n")
	}

	if strings.TrimSpace(description) != "" {
		sb.WriteString("**Context:** ")
		sb.WriteString(description)
		sb.WriteString("\n\n")
	}

	sb.WriteString("```")
	sb.WriteString(hint)
	sb.WriteString("\n")
	sb.WriteString(code)
	sb.WriteString("\n```")

	return sb.String()
}
