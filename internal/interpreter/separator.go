package interpreter

import "strings"

// separator delimits multiline todo blocks. The block form exists because
// the expression patterns cannot tolerate embedded quotes and newlines, so
// this parser is explicit string scanning, not a pattern.
const separator = "<TODO_SEPARATOR>"

// rewriteSeparatorBlocks finds every well-formed separator block, adds the
// enclosed todo, and replaces the whole block with an acknowledgement.
// Malformed blocks are left in place and skipped.
func (in *Interpreter) rewriteSeparatorBlocks(res *Result) {
	pos := 0
	for {
		start := strings.Index(res.Text[pos:], separator)
		if start < 0 {
			return
		}
		start += pos

		contentStart := start + len(separator)
		newline := strings.IndexByte(res.Text[contentStart:], '\n')
		if newline < 0 {
			return
		}
		contentStart += newline + 1

		end := strings.Index(res.Text[contentStart:], "\n"+separator)
		if end < 0 {
			return
		}
		end += contentStart
		blockEnd := end + 1 + len(separator)

		title, description, ok := parseBlock(res.Text[contentStart:end])
		if !ok {
			pos = blockEnd
			continue
		}

		if _, err := in.todos.Add(title, description); err != nil {
			pos = blockEnd
			continue
		}
		res.Ops++

		replacement := "**Added:** " + title
		res.Text = res.Text[:start] + replacement + res.Text[blockEnd:]
		pos = start + len(replacement)
	}
}

// parseBlock extracts the Title: and Description: fields from a block body.
// The description runs from its label to the end of the block, so it may
// span lines and contain quotes.
func parseBlock(content string) (title, description string, ok bool) {
	titleIdx := strings.Index(content, "Title:")
	descIdx := strings.Index(content, "Description:")
	if titleIdx < 0 || descIdx < 0 {
		return "", "", false
	}

	titleStart := titleIdx + len("Title:")
	titleEnd := strings.IndexByte(content[titleStart:], '\n')
	if titleEnd < 0 {
		titleEnd = len(content) - titleStart
	}
	title = strings.TrimSpace(content[titleStart : titleStart+titleEnd])
	description = strings.TrimSpace(content[descIdx+len("Description:"):])

	if title == "" {
		return "", "", false
	}
	return title, description, true
}
