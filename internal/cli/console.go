package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Console writes user-facing output, honoring TERM for colour and rendering
// markdown-ish messages through glamour.
type Console struct {
	out      io.Writer
	colors   bool
	renderer *glamour.TermRenderer

	promptStyle  lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	infoStyle    lipgloss.Style
}

// NewConsole creates a console on stdout. Colour escapes are emitted only
// when TERM names a capable terminal.
func NewConsole() *Console {
	return NewConsoleWithWriter(os.Stdout, supportsColors())
}

// NewConsoleWithWriter is NewConsole with an injected writer, for tests.
func NewConsoleWithWriter(out io.Writer, colors bool) *Console {
	c := &Console{out: out, colors: colors}
	if colors {
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100)); err == nil {
			c.renderer = r
		}
		c.promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
		c.successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		c.errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		c.warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		c.infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	}
	return c
}

func supportsColors() bool {
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// Prompt returns the styled input prompt.
func (c *Console) Prompt() string {
	if c.colors {
		return c.promptStyle.Render("mag>") + " "
	}
	return "mag> "
}

// Print writes a plain line.
func (c *Console) Print(text string) {
	fmt.Fprintln(c.out, text)
}

// Printf writes a formatted plain line.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Success, Error, Warn, and Info write styled one-liners.
func (c *Console) Success(text string) { c.styled(c.successStyle, text) }
func (c *Console) Error(text string)   { c.styled(c.errorStyle, text) }
func (c *Console) Warn(text string)    { c.styled(c.warnStyle, text) }
func (c *Console) Info(text string)    { c.styled(c.infoStyle, text) }

func (c *Console) styled(style lipgloss.Style, text string) {
	if c.colors {
		fmt.Fprintln(c.out, style.Render(text))
		return
	}
	fmt.Fprintln(c.out, text)
}

// Display writes a message, rendering it as markdown when it looks like
// markdown and the terminal can take it.
func (c *Console) Display(text string) {
	if c.renderer != nil && looksLikeMarkdown(text) {
		if rendered, err := c.renderer.Render(text); err == nil {
			fmt.Fprint(c.out, rendered)
			return
		}
	}
	fmt.Fprintln(c.out, text)
}

func looksLikeMarkdown(text string) bool {
	return strings.Contains(text, "**") ||
		strings.Contains(text, "```") ||
		strings.HasPrefix(text, "# ") ||
		strings.Contains(text, "\n- ")
}
