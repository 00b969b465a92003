package pipeline

import "strings"

// TokenKind discriminates the tokens produced by Tokenize.
type TokenKind int

const (
	TokenText  TokenKind = iota // plain markdown between image directives
	TokenImage                  // ![](URL)
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenImage:
		return "image"
	default:
		return "unknown"
	}
}

// imageOpen starts an image directive with empty alt text.
const imageOpen = "![]("

// Token is a contiguous slice of the source. Start and End are byte offsets.
type Token struct {
	Kind  TokenKind
	Text  string // source text covered by the token
	URL   string // image destination, TokenImage only
	Start int
	End   int
}

// Tokenize splits src into text and image tokens in a single forward scan.
//
// An image directive is "![](" followed by the shortest run of characters up
// to the first ")" on the same line. Concatenating the Text of every token
// reproduces src exactly.
func Tokenize(src string) []Token {
	var tokens []Token
	textStart := 0
	i := 0

	for i < len(src) {
		j := strings.Index(src[i:], imageOpen)
		if j < 0 {
			break
		}
		open := i + j
		urlStart := open + len(imageOpen)

		k := strings.IndexAny(src[urlStart:], ")\n")
		if k < 0 {
			break
		}
		if src[urlStart+k] == '\n' {
			// No opener later on this line can close either.
			i = urlStart + k + 1
			continue
		}
		end := urlStart + k + 1

		if open > textStart {
			tokens = append(tokens, Token{Kind: TokenText, Text: src[textStart:open], Start: textStart, End: open})
		}
		tokens = append(tokens, Token{
			Kind:  TokenImage,
			Text:  src[open:end],
			URL:   src[urlStart : urlStart+k],
			Start: open,
			End:   end,
		})
		textStart = end
		i = end
	}

	if textStart < len(src) {
		tokens = append(tokens, Token{Kind: TokenText, Text: src[textStart:], Start: textStart, End: len(src)})
	}
	return tokens
}
