package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/pkg/domain"
)

type wishlistModel struct {
	comics *state.Comics
	ctx    context.Context

	me        *domain.User
	snap      state.ComicsSnapshot
	cursor    int
	detail    bool
	loading   bool
	statusMsg string
	err       error
	width     int
	height    int
}

type wishlistLoadedMsg struct {
	snap state.ComicsSnapshot
	err  error
}

func newWishlistModel(comics *state.Comics) wishlistModel {
	return wishlistModel{comics: comics, ctx: context.Background(), loading: true}
}

func (m wishlistModel) load() tea.Cmd {
	comics := m.comics
	ctx := m.ctx
	return func() tea.Msg {
		err := comics.RefreshWishList(ctx)
		return wishlistLoadedMsg{snap: comics.Snapshot(), err: err}
	}
}

func (m wishlistModel) remove(comicID int) tea.Cmd {
	comics := m.comics
	ctx := m.ctx
	return func() tea.Msg {
		err := comics.RemoveFromWishList(ctx, comicID)
		return wishlistLoadedMsg{snap: comics.Snapshot(), err: err}
	}
}

func (m wishlistModel) Init() tea.Cmd {
	return m.load()
}

func (m wishlistModel) Update(msg tea.Msg) (wishlistModel, tea.Cmd) {
	switch msg := msg.(type) {
	case wishlistLoadedMsg:
		m.loading = false
		m.snap = msg.snap
		m.err = msg.err
		if m.cursor >= len(m.snap.Wishlist) {
			m.cursor = 0
		}
		if len(m.snap.Wishlist) == 0 {
			m.detail = false
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if !m.detail && m.cursor < len(m.snap.Wishlist)-1 {
				m.cursor++
			}
		case "k", "up":
			if !m.detail && m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			if _, ok := m.selected(); ok {
				m.detail = true
			}
		case "esc":
			m.detail = false
		case "w":
			if entry, ok := m.selectedEntry(); ok {
				m.detail = false
				return m, m.remove(entry.ComicID())
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m wishlistModel) selectedEntry() (domain.WishListEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Wishlist) {
		return domain.WishListEntry{}, false
	}
	return m.snap.Wishlist[m.cursor], true
}

func (m wishlistModel) selected() (domain.Comic, bool) {
	entry, ok := m.selectedEntry()
	if !ok || entry.Comic == nil {
		return domain.Comic{}, false
	}
	return *entry.Comic, true
}

func (m wishlistModel) View() string {
	var b strings.Builder

	b.WriteString(" " + badgeStyle.Render("WISHLIST") + "\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.statusMsg != "" {
		b.WriteString(" " + okStyle.Render(m.statusMsg) + "\n")
	}

	if m.me == nil {
		b.WriteString(" " + dimStyle.Render("log in to keep a wishlist -- run: tradepost login"))
		return b.String()
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(" " + errStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}

	if m.detail {
		if comic, ok := m.selected(); ok {
			return b.String() + m.viewDetail(comic)
		}
		return b.String()
	}

	if len(m.snap.Wishlist) == 0 {
		b.WriteString(" " + dimStyle.Render("your wishlist is empty (w on a comic to add it)"))
		return b.String()
	}

	for i, entry := range m.snap.Wishlist {
		cursor := "  "
		titleStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			titleStyle = normalStyle.Bold(true)
		}

		title := fmt.Sprintf("comic #%d", entry.ComicID())
		right := ""
		dot := metaStyle.Render("●") + " "
		if entry.Comic != nil {
			title = entry.Comic.Title
			dot = CategoryStyle(entry.Comic.Category).Render("●") + " "
			right = " " + priceStyle.Render(fmt.Sprintf("%12s", formatPrice(entry.Comic.Price)))
			if entry.Comic.IsSold {
				right += " " + soldStyle.Render("SOLD")
			}
		}

		titleWidth := m.width - 20
		if titleWidth < 10 {
			titleWidth = 10
		}
		titlePadded := fmt.Sprintf("%-*s", titleWidth, truncStr(title, titleWidth))

		line := cursor + dot + titleStyle.Render(titlePadded) + right
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}

func (m wishlistModel) viewDetail(comic domain.Comic) string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")

	title := " " + selectedStyle.Render(comic.Title)
	if comic.IsSold {
		title += "  " + soldStyle.Render("SOLD")
	}
	b.WriteString(title + "\n")

	meta := " " + CategoryStyle(comic.Category).Render(comic.Category)
	meta += metaStyle.Render(" · ") + ConditionStyle(comic.Condition).Render(comic.Condition)
	meta += metaStyle.Render(" · ") + priceStyle.Render(formatPrice(comic.Price))
	b.WriteString(meta + "\n\n")

	detailWidth := m.width - 4
	if detailWidth < 40 {
		detailWidth = 40
	}
	wrapped := lipgloss.NewStyle().Width(detailWidth).Render(comic.Description)
	for _, line := range strings.Split(wrapped, "\n") {
		b.WriteString(" " + normalStyle.Render(line) + "\n")
	}

	if comic.Seller != nil {
		b.WriteString("\n " + sectionHeaderStyle.Render("SELLER") + "  " + selectedStyle.Render(comic.Seller.DisplayName()) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
