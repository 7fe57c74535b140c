// Package markdown strips Markdown notation from text so speech synthesis
// reads prose instead of formatting symbols.
package markdown

import "regexp"

var (
	reCodeBlock  = regexp.MustCompile("```[\\s\\S]*?```")
	reInlineCode = regexp.MustCompile("`([^`\n]+)`")
	reBold       = regexp.MustCompile(`\*\*([^\n*]+)\*\*|__([^\n_]+)__`)
	reItalic     = regexp.MustCompile(`\*([^\n*]+)\*|_([^\n_]+)_`)
	reStrike     = regexp.MustCompile(`~~([^\n~]+)~~`)
	reHeader     = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^\)]+\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	reHTMLTag    = regexp.MustCompile(`<[^>]+>`)
	reBlockquote = regexp.MustCompile(`(?m)^\s*>\s*`)
	reListLeader = regexp.MustCompile(`(?m)^\s*([*\-+]|\d+\.)\s+`)
	reHRule      = regexp.MustCompile(`(?m)^\s*([-*_]{3,})\s*$`)
	reNewlines   = regexp.MustCompile(`\n{3,}`)
)

// Filter returns text with Markdown formatting removed. Links collapse to
// their link text, images to their alt text, headers lose their # markers.
func Filter(text string) string {
	result := reCodeBlock.ReplaceAllString(text, "")
	result = reHeader.ReplaceAllString(result, "$1")
	// Bold before italic so ** does not get eaten as two *.
	result = reBold.ReplaceAllString(result, "$1$2")
	result = reStrike.ReplaceAllString(result, "$1")
	result = reItalic.ReplaceAllString(result, "$1$2")
	result = reInlineCode.ReplaceAllString(result, "$1")
	result = reImage.ReplaceAllString(result, "$1")
	result = reLink.ReplaceAllString(result, "$1")
	result = reHTMLTag.ReplaceAllString(result, "")
	result = reBlockquote.ReplaceAllString(result, "")
	result = reListLeader.ReplaceAllString(result, "")
	result = reHRule.ReplaceAllString(result, "")
	result = reNewlines.ReplaceAllString(result, "\n\n")
	return result
}
