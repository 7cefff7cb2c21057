package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcastor/tradepost/internal/browser"
	"github.com/mcastor/tradepost/internal/prefs"
	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/pkg/domain"
)

type catalogModel struct {
	comics    *state.Comics
	ctx       context.Context
	prefsPath string

	me        *domain.User
	snap      state.ComicsSnapshot
	cursor    int
	search    string
	editing   bool // true when typing in search
	category  string
	sortOrder string
	detail    bool
	loading   bool
	statusMsg string
	err       error
	width     int
	height    int
}

type comicsLoadedMsg struct {
	snap state.ComicsSnapshot
	err  error
}

type comicResolvedMsg struct {
	snap state.ComicsSnapshot
	err  error
}

type wishlistChangedMsg struct {
	snap state.ComicsSnapshot
	err  error
}

type copyResultMsg struct{ err error }
type openImageResultMsg struct{ err error }

// showOfferFormMsg asks the app to open the make-offer form for a comic.
type showOfferFormMsg struct {
	comic domain.Comic
}

// editListingMsg asks the app to open the publish form seeded with an
// owned listing.
type editListingMsg struct {
	comic domain.Comic
}

func newCatalogModel(comics *state.Comics, p prefs.Prefs, prefsPath string) catalogModel {
	return catalogModel{
		comics:    comics,
		ctx:       context.Background(),
		prefsPath: prefsPath,
		category:  p.Category,
		sortOrder: p.SortOrder,
		loading:   true,
	}
}

func (m catalogModel) load() tea.Cmd {
	comics := m.comics
	ctx := m.ctx
	return func() tea.Msg {
		err := comics.FetchInitialData(ctx)
		return comicsLoadedMsg{snap: comics.Snapshot(), err: err}
	}
}

func (m catalogModel) loadMine() tea.Cmd {
	comics := m.comics
	ctx := m.ctx
	return func() tea.Msg {
		err := comics.FetchMyComics(ctx)
		return comicsLoadedMsg{snap: comics.Snapshot(), err: err}
	}
}

func (m catalogModel) resolve(comicID int) tea.Cmd {
	comics := m.comics
	ctx := m.ctx
	return func() tea.Msg {
		_, err := comics.FetchComicByID(ctx, comicID)
		return comicResolvedMsg{snap: comics.Snapshot(), err: err}
	}
}

func (m catalogModel) toggleWish(comicID int) tea.Cmd {
	comics := m.comics
	ctx := m.ctx
	inList := m.snap.InWishlist(comicID)
	return func() tea.Msg {
		var err error
		if inList {
			err = comics.RemoveFromWishList(ctx, comicID)
		} else {
			err = comics.AddToWishList(ctx, comicID)
		}
		return wishlistChangedMsg{snap: comics.Snapshot(), err: err}
	}
}

// savePrefs persists the catalog view preferences, best effort.
func (m catalogModel) savePrefs() tea.Cmd {
	path := m.prefsPath
	p := prefs.Prefs{SortOrder: m.sortOrder, Category: m.category}
	return func() tea.Msg {
		_ = prefs.Save(path, p)
		return nil
	}
}

func (m catalogModel) Init() tea.Cmd {
	return m.load()
}

func (m catalogModel) Update(msg tea.Msg) (catalogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case comicsLoadedMsg:
		m.loading = false
		m.snap = msg.snap
		m.err = msg.err
		if m.cursor >= len(m.visible()) {
			m.cursor = 0
		}
		return m, nil

	case comicResolvedMsg:
		m.snap = msg.snap
		m.err = msg.err
		return m, nil

	case wishlistChangedMsg:
		m.snap = msg.snap
		if msg.err != nil {
			m.statusMsg = wishErrText(msg.err)
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case openImageResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("open failed: %v", msg.err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.editing {
			return m.updateSearch(msg)
		}
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func wishErrText(err error) string {
	if err == state.ErrNotLoggedIn {
		return "not logged in -- run: tradepost login"
	}
	return fmt.Sprintf("wishlist update failed: %v", err)
}

func (m catalogModel) updateSearch(msg tea.KeyMsg) (catalogModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
		m.cursor = 0
	case "esc":
		m.editing = false
		m.search = ""
		m.cursor = 0
	default:
		m.search = editRune(m.search, msg.String())
	}
	return m, nil
}

func (m catalogModel) updateList(msg tea.KeyMsg) (catalogModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if comic, ok := m.selected(); ok {
			m.detail = true
			return m, m.resolve(comic.ID)
		}
	case "/":
		// Typing a search overrides any category filter.
		m.editing = true
		m.search = ""
		m.category = ""
	case "t":
		// Cycle categories: all -> first -> ... -> last -> all.
		// Picking a category clears the search.
		m.category = nextChoice(m.category, domain.Categories)
		m.search = ""
		m.cursor = 0
		return m, m.savePrefs()
	case "s":
		switch m.sortOrder {
		case prefs.SortAsc:
			m.sortOrder = prefs.SortDesc
		case prefs.SortDesc:
			m.sortOrder = prefs.SortNone
		default:
			m.sortOrder = prefs.SortAsc
		}
		m.cursor = 0
		return m, m.savePrefs()
	case "m":
		if m.snap.ViewMode == state.ViewMine {
			m.comics.SetViewMode(state.ViewAll)
			m.cursor = 0
			m.loading = true
			return m, m.load()
		}
		if m.me == nil {
			m.statusMsg = "not logged in -- run: tradepost login"
			return m, nil
		}
		m.comics.SetViewMode(state.ViewMine)
		m.cursor = 0
		m.loading = true
		return m, m.loadMine()
	case "w":
		if comic, ok := m.selected(); ok {
			return m, m.toggleWish(comic.ID)
		}
	case "r":
		m.loading = true
		if m.snap.ViewMode == state.ViewMine {
			return m, m.loadMine()
		}
		return m, m.load()
	}
	return m, nil
}

func (m catalogModel) updateDetail(msg tea.KeyMsg) (catalogModel, tea.Cmd) {
	comic, ok := m.selected()
	switch msg.String() {
	case "esc":
		m.detail = false
		m.comics.ClearCurrent()
	case "w":
		if ok {
			return m, m.toggleWish(comic.ID)
		}
	case "c":
		if ok {
			text := fmt.Sprintf("%s (%s, %s) %s", comic.Title, comic.Category, comic.Condition, formatPrice(comic.Price))
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(text)}
			}
		}
	case "b":
		if ok && comic.Image != "" {
			url := comic.Image
			return m, func() tea.Msg {
				return openImageResultMsg{err: browser.Open(url)}
			}
		}
	case "o":
		if ok && !m.ownListing(comic) {
			if comic.IsSold {
				m.statusMsg = "listing already sold"
				return m, nil
			}
			c := comic
			return m, func() tea.Msg {
				return showOfferFormMsg{comic: c}
			}
		}
	case "e":
		if ok && m.ownListing(comic) {
			c := comic
			return m, func() tea.Msg {
				return editListingMsg{comic: c}
			}
		}
	}
	return m, nil
}

// nextChoice cycles through choices with "" (no filter) between the
// last and the first.
func nextChoice(current string, choices []string) string {
	if current == "" {
		return choices[0]
	}
	for i, c := range choices {
		if c == current {
			if i+1 < len(choices) {
				return choices[i+1]
			}
			return ""
		}
	}
	return ""
}

func (m catalogModel) ownListing(comic domain.Comic) bool {
	return m.me != nil && comic.Seller != nil && comic.Seller.ID == m.me.ID
}

func (m catalogModel) selected() (domain.Comic, bool) {
	items := m.visible()
	if m.cursor < 0 || m.cursor >= len(items) {
		return domain.Comic{}, false
	}
	return items[m.cursor], true
}

// visible applies search, category filter and sort order to the active
// comic list. The search overrides the category filter entirely.
func (m catalogModel) visible() []domain.Comic {
	base := m.snap.Catalog
	if m.snap.ViewMode == state.ViewMine {
		base = m.snap.Mine
	}

	var items []domain.Comic
	switch {
	case m.search != "":
		needle := strings.ToLower(m.search)
		for _, c := range base {
			if strings.Contains(strings.ToLower(c.Title), needle) {
				items = append(items, c)
			}
		}
	case m.category != "":
		for _, c := range base {
			if c.Category == m.category {
				items = append(items, c)
			}
		}
	default:
		items = append(items, base...)
	}

	switch m.sortOrder {
	case prefs.SortAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})
	case prefs.SortDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) > strings.ToLower(items[j].Title)
		})
	}
	return items
}

func (m catalogModel) View() string {
	if m.detail {
		return m.viewDetail()
	}

	var b strings.Builder

	// Header line (hide tagline at narrow widths)
	if m.width >= 50 {
		b.WriteString(" " + badgeStyle.Render("CATALOG") + "  " + metaStyle.Render("Trade comics, not money.") + "\n")
	} else {
		b.WriteString(" " + badgeStyle.Render("CATALOG") + "\n")
	}

	// Search + all/mine toggle
	if m.editing {
		b.WriteString(" " + searchStyle.Render("/ "+m.search+"█"))
	} else if m.search != "" {
		b.WriteString(" " + searchStyle.Render("/ "+m.search))
	} else {
		b.WriteString(" " + dimStyle.Render("/ search..."))
	}

	b.WriteString("   ")
	if m.snap.ViewMode == state.ViewMine {
		b.WriteString(dimStyle.Render("[all]"))
		b.WriteString(" ")
		b.WriteString(searchStyle.Render("[mine]"))
	} else {
		b.WriteString(searchStyle.Render("[all]"))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render("[mine]"))
	}
	b.WriteString("  " + helpKeyStyle.Render("m"))
	b.WriteString("\n")

	// Category bar + sort indicator
	sortLabel := "a-z"
	switch m.sortOrder {
	case prefs.SortAsc:
		sortLabel = "a-z↑"
	case prefs.SortDesc:
		sortLabel = "z-a↓"
	default:
		sortLabel = "none"
	}
	sortPart := "   " + searchStyle.Render(sortLabel) + " " + helpKeyStyle.Render("s")
	sortWidth := lipgloss.Width(sortPart)

	b.WriteString(" ")
	usedWidth := 1
	for i, cat := range domain.Categories {
		sep := "  "
		if i == 0 {
			sep = ""
		}
		needed := len(sep) + len(cat)
		if usedWidth+needed+sortWidth > m.width {
			break
		}
		b.WriteString(sep)
		if cat == m.category {
			b.WriteString(CategoryStyle(cat).Render(cat))
		} else {
			b.WriteString(dimStyle.Render(cat))
		}
		usedWidth += needed
	}
	b.WriteString(sortPart)
	b.WriteString("\n")

	// Separator
	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.statusMsg != "" {
		b.WriteString(" " + okStyle.Render(m.statusMsg) + "\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(" " + errStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}

	return b.String() + m.viewList()
}

func (m catalogModel) viewList() string {
	items := m.visible()
	if len(items) == 0 {
		if m.snap.ViewMode == state.ViewMine {
			return " " + dimStyle.Render("no listings of yours yet (n to publish)")
		}
		return " " + dimStyle.Render("no comics found")
	}

	var b strings.Builder

	viewChrome := 10
	available := m.height - viewChrome
	if available < 6 {
		available = 6
	}
	maxVisible := available * 2 / 5
	if maxVisible < 3 {
		maxVisible = 3
	}

	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}

	for i := start; i < len(items) && i < start+maxVisible; i++ {
		comic := items[i]

		cursor := "  "
		titleStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			titleStyle = normalStyle.Bold(true)
		}

		dot := CategoryStyle(comic.Category).Render("●") + " "

		// Right columns: condition (9), price (12), markers
		var rightParts []string
		rightWidth := 0
		if m.width >= 60 {
			rightParts = append(rightParts, ConditionStyle(comic.Condition).Render(fmt.Sprintf("%-9s", comic.Condition)))
			rightWidth += 10
		}
		priceCol := formatPrice(comic.Price)
		rightParts = append(rightParts, priceStyle.Render(fmt.Sprintf("%12s", priceCol)))
		rightWidth += 13
		if comic.IsSold {
			rightParts = append(rightParts, soldStyle.Render("SOLD"))
			rightWidth += 5
		}
		if m.snap.InWishlist(comic.ID) {
			rightParts = append(rightParts, wishStyle.Render("♥"))
			rightWidth += 2
		}

		titleWidth := m.width - 4 - rightWidth
		if titleWidth < 10 {
			titleWidth = 10
		}
		title := truncStr(comic.Title, titleWidth)
		titlePadded := fmt.Sprintf("%-*s", titleWidth, title)

		line := cursor + dot + titleStyle.Render(titlePadded) + " " + strings.Join(rightParts, " ")
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	// Preview of the selected comic below the list
	if comic, ok := m.selected(); ok {
		b.WriteString("\n")

		header := " " + CategoryStyle(comic.Category).Render("["+comic.Category+"]")
		header += "  " + ConditionStyle(comic.Condition).Render(comic.Condition)
		header += "  " + priceStyle.Render(formatPrice(comic.Price))
		if comic.Seller != nil {
			header += "  " + metaStyle.Render("by "+comic.Seller.DisplayName())
		}
		b.WriteString(header + "\n")

		detailWidth := m.width - 4
		if detailWidth < 40 {
			detailWidth = 40
		}
		maxDetailLines := available - maxVisible - 2
		if maxDetailLines < 2 {
			maxDetailLines = 2
		}
		wrapped := lipgloss.NewStyle().Width(detailWidth).Render(comic.Description)
		lines := strings.Split(wrapped, "\n")
		if len(lines) > maxDetailLines {
			lines = lines[:maxDetailLines]
		}
		for _, line := range lines {
			b.WriteString(" " + normalStyle.Render(line) + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}

func (m catalogModel) viewDetail() string {
	comic, ok := m.selected()
	if !ok {
		return ""
	}
	if m.snap.Current != nil && m.snap.Current.ID == comic.ID {
		comic = *m.snap.Current
	}

	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")

	title := " " + selectedStyle.Render(comic.Title)
	if comic.IsSold {
		title += "  " + soldStyle.Render("SOLD")
	}
	if m.snap.InWishlist(comic.ID) {
		title += "  " + wishStyle.Render("♥ wishlisted")
	}
	b.WriteString(title + "\n")

	meta := " " + CategoryStyle(comic.Category).Render(comic.Category)
	meta += metaStyle.Render(" · ") + ConditionStyle(comic.Condition).Render(comic.Condition)
	meta += metaStyle.Render(" · ") + priceStyle.Render(formatPrice(comic.Price))
	b.WriteString(meta + "\n")

	if comic.Publisher != "" || comic.Edition != "" {
		b.WriteString(" " + metaStyle.Render(strings.TrimSpace(comic.Publisher+" · "+comic.Edition+" edition")) + "\n")
	}

	b.WriteString("\n")
	detailWidth := m.width - 4
	if detailWidth < 40 {
		detailWidth = 40
	}
	wrapped := lipgloss.NewStyle().Width(detailWidth).Render(comic.Description)
	for _, line := range strings.Split(wrapped, "\n") {
		b.WriteString(" " + normalStyle.Render(line) + "\n")
	}

	if comic.Seller != nil {
		b.WriteString("\n")
		seller := " " + sectionHeaderStyle.Render("SELLER") + "  " + selectedStyle.Render(comic.Seller.DisplayName())
		seller += "  " + starStyle.Render(formatRating(comic.Seller.Rating))
		seller += "  " + metaStyle.Render(fmt.Sprintf("%d trades", comic.Seller.TradesCount))
		b.WriteString(seller + "\n")
	}

	if comic.Image != "" {
		b.WriteString("\n " + metaStyle.Render(comic.Image) + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + okStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
