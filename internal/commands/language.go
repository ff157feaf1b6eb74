package commands

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// detectLanguage guesses the language of a source file for the review prompt.
// It returns "" when the language is unknown or the content is binary.
func detectLanguage(path string, content []byte) string {
	if enry.IsBinary(content) {
		return ""
	}

	fileName := filepath.Base(path)

	lang := enry.GetLanguage(fileName, content)
	if lang == "" {
		lang, _ = enry.GetLanguageByExtension(fileName)
	}
	if lang == "" {
		lang, _ = enry.GetLanguageByFilename(fileName)
	}

	return strings.ToLower(lang)
}
