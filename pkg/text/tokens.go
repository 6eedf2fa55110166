package text

import "strings"

// Tokenize splits content into whitespace-delimited tokens.
func Tokenize(content string) []string {
	return strings.Fields(content)
}

// JoinTokens joins tokens with the single space separator used for cell
// content.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
