// Package render turns feed state into terminal lines. It holds no state;
// every function is a pure mapping from inputs to strings.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/errors"
)

const (
	// HeaderLines is the fixed height of Header.
	HeaderLines = 2
	// FooterLines is the fixed height of Footer.
	FooterLines = 2
	// SkeletonRows is how many placeholder rows Skeleton draws.
	SkeletonRows = 3

	defaultWidth   = 80
	rowIndent      = "   "
	unreadSymbol   = "●"
	readSymbol     = "○"
	selectedSymbol = "▌"
)

var (
	accent      = lipgloss.Color(ansiColorNumber(colors.Blue))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	unreadStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(accent)
	statusStyle = map[errors.MessageType]lipgloss.Style{
		errors.MessageTypeError:   lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Red))),
		errors.MessageTypeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow))),
		errors.MessageTypeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Blue))),
		errors.MessageTypeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Green))),
	}
)

// HeaderState defines the inputs needed to render the feed header.
type HeaderState struct {
	Name   string
	Domain string
	Icon   string
	Unread int
	Width  int
}

// Header renders the application identity: name and domain, then icon and
// unread count.
func Header(s HeaderState) string {
	width := widthOr(s.Width)
	name := s.Name
	if name == "" {
		name = s.Domain
	}
	first := titleStyle.Render(truncate(name, width/2))
	if s.Domain != "" && s.Domain != name {
		first += "  " + dimStyle.Render(truncate(s.Domain, width/2-2))
	}

	var parts []string
	if s.Icon != "" {
		parts = append(parts, "icon "+s.Icon)
	}
	parts = append(parts, fmt.Sprintf("%d unread", s.Unread))
	second := dimStyle.Render(truncate(strings.Join(parts, "  "), width))
	return first + "\n" + second
}

// Section renders a bucket heading such as "Unread (3)".
func Section(title string, count int) string {
	return titleStyle.Render(fmt.Sprintf("%s (%d)", title, count))
}

// RowState defines the inputs needed to render a notification row.
type RowState struct {
	Notification domain.Notification
	// Image is the type image resolved through the subscription, if any.
	Image    string
	Selected bool
	Width    int
	Now      time.Time
}

// Row renders one notification as two or three lines: read marker, title
// and age; the body; then link and image when present.
func Row(s RowState) []string {
	width := widthOr(s.Width)
	n := s.Notification

	gutter := " "
	if s.Selected {
		gutter = cursorStyle.Render(selectedSymbol)
	}
	symbol := readSymbol
	titleRender := lipgloss.NewStyle().Render
	if !n.IsRead {
		symbol = unreadSymbol
		titleRender = unreadStyle.Render
	}

	age := Age(n.SentAt, s.Now)
	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = n.ID
	}
	title = truncate(title, width-len(rowIndent)-utf8.RuneCountInString(age)-2)
	lines := []string{
		gutter + symbol + " " + titleRender(title) + "  " + dimStyle.Render(age),
		gutter + "  " + truncate(strings.Join(strings.Fields(n.Body), " "), width-len(rowIndent)),
	}

	var extras []string
	if n.URL != "" {
		extras = append(extras, "link "+n.URL)
	}
	if s.Image != "" {
		extras = append(extras, "image "+s.Image)
	}
	if len(extras) > 0 {
		lines = append(lines, gutter+"  "+dimStyle.Render(truncate(strings.Join(extras, "  "), width-len(rowIndent))))
	}
	return lines
}

// Skeleton renders placeholder rows shown while the first page loads.
func Skeleton(width int) []string {
	width = widthOr(width)
	bar := func(frac int) string {
		return dimStyle.Render(strings.Repeat("░", max(4, (width-len(rowIndent))*frac/10)))
	}
	lines := make([]string, 0, SkeletonRows*2)
	for i := 0; i < SkeletonRows; i++ {
		lines = append(lines, rowIndent+bar(5), rowIndent+bar(8))
	}
	return lines
}

// Empty renders the message shown when a loaded feed has no notifications.
func Empty() string {
	return dimStyle.Render("No notifications yet")
}

// FooterState defines the inputs needed to render the footer.
type FooterState struct {
	Loading    bool
	Spinner    string
	Started    bool
	HasMore    bool
	Status     string
	StatusType errors.MessageType
	Help       string
	Width      int
}

// Footer renders the status line followed by the key help line.
func Footer(s FooterState) string {
	width := widthOr(s.Width)
	var status string
	switch {
	case s.Status != "":
		style, ok := statusStyle[s.StatusType]
		if !ok {
			style = dimStyle
		}
		status = style.Render(truncate(s.Status, width))
	case s.Loading:
		status = s.Spinner + " " + dimStyle.Render("Loading...")
	case s.Started && !s.HasMore:
		status = dimStyle.Render("End of feed")
	}
	return status + "\n" + dimStyle.Render(truncate(s.Help, width))
}

// Age renders the time since t, e.g. "5 minutes ago".
func Age(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func widthOr(width int) int {
	if width <= 0 {
		return defaultWidth
	}
	return width
}

func truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(value) <= width {
		return value
	}
	if width <= 3 {
		return string([]rune(value)[:width])
	}
	return string([]rune(value)[:width-3]) + "..."
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
