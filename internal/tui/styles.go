package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcastor/tradepost/pkg/domain"
)

// Shimmer animation for the TRADEPOST logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "T R A D E P O S T" as a flowing wave of
// amber light, dark bronze (#3a2a12) -> bright amber (#fbbf24).
func renderShimmerLogo(frame int) string {
	const text = "TRADEPOST"
	n := len(text)

	var out string

	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		// One smooth wave advancing through the text
		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(58 + b*(251-58))
		g := clampByte(42 + b*(191-42))
		bl := clampByte(18 + b*(36-18))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Search / accent
	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0a824"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	soldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555")).
			Bold(true)

	starStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	wishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06080")).
			Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f0a824")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	// Category colors
	categoryColors = map[string]lipgloss.Color{
		"Independent": lipgloss.Color("#f0944a"),
		"SuperComic":  lipgloss.Color("#60a0e0"),
		"Eclipse":     lipgloss.Color("#b080d0"),
		"Manga":       lipgloss.Color("#e06060"),
	}

	// Condition colors, mint to worn
	conditionColors = map[string]lipgloss.Color{
		"New":       lipgloss.Color("#4ade80"),
		"Semi-used": lipgloss.Color("#fbbf24"),
		"Used":      lipgloss.Color("#8890a0"),
	}
)

// CategoryStyle returns a bold style colored for the given category.
func CategoryStyle(category string) lipgloss.Style {
	if c, ok := categoryColors[category]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// ConditionStyle returns a style colored for the given condition.
func ConditionStyle(condition string) lipgloss.Style {
	if c, ok := conditionColors[condition]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
}

// StatusStyle returns a style for a trade offer status.
func StatusStyle(status int) lipgloss.Style {
	switch status {
	case domain.OfferAccepted:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	case domain.OfferRejected:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#e06060")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24")).Bold(true)
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

var helpItems = []helpItem{
	{"Terms of Service", "trademaster.lat/terms", "https://trademaster.lat/terms"},
	{"Privacy Policy", "trademaster.lat/privacy", "https://trademaster.lat/privacy"},
	{"Website", "trademaster.lat", "https://trademaster.lat"},
}

// helpView renders the interactive help overlay with a cursor.
func helpView(cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fbbf24")).
		Bold(true).
		Render("T R A D E P O S T")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Trade comics, not money.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fbbf24"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"tradepost", "Browse the catalog (interactive TUI)"},
		{"tradepost login", "Sign in with username and password"},
		{"tradepost signup", "Create a new account"},
		{"tradepost logout", "Clear your session"},
		{"tradepost --version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, tagline)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
