package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcastor/tradepost/internal/session"
	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/pkg/domain"
)

type offersMode int

const (
	offersModeReceived offersMode = iota
	offersModeSent
)

type offersModel struct {
	offers *state.Offers
	sess   *session.Session
	ctx    context.Context

	me        *domain.User
	snap      state.OffersSnapshot
	notif     session.Notifications
	mode      offersMode
	cursor    int
	detail    bool
	loading   bool
	statusMsg string
	err       error
	width     int
	height    int
}

type offersLoadedMsg struct {
	snap  state.OffersSnapshot
	notif session.Notifications
	err   error
}

type offerResolvedMsg struct {
	snap state.OffersSnapshot
	err  error
}

type offerDecidedMsg struct {
	snap state.OffersSnapshot
	err  error
}

// offerSeenMsg reports that an offer was marked seen in the local
// notification markers.
type offerSeenMsg struct {
	notif session.Notifications
	err   error
}

func newOffersModel(offers *state.Offers, sess *session.Session) offersModel {
	return offersModel{offers: offers, sess: sess, ctx: context.Background(), loading: true}
}

func (m offersModel) load() tea.Cmd {
	offers := m.offers
	sess := m.sess
	ctx := m.ctx
	return func() tea.Msg {
		err := offers.FetchOffersData(ctx)
		notif, nErr := sess.Notifications()
		if err == nil {
			err = nErr
		}
		return offersLoadedMsg{snap: offers.Snapshot(), notif: notif, err: err}
	}
}

func (m offersModel) resolve(offerID int) tea.Cmd {
	offers := m.offers
	ctx := m.ctx
	return func() tea.Msg {
		_, err := offers.FetchOfferByID(ctx, offerID)
		return offerResolvedMsg{snap: offers.Snapshot(), err: err}
	}
}

func (m offersModel) decide(offerID, status int) tea.Cmd {
	offers := m.offers
	ctx := m.ctx
	return func() tea.Msg {
		err := offers.UpdateOfferStatus(ctx, offerID, status)
		return offerDecidedMsg{snap: offers.Snapshot(), err: err}
	}
}

func (m offersModel) markSeen(offerID int) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		n, err := sess.Notifications()
		if err != nil {
			return offerSeenMsg{notif: n, err: err}
		}
		if n.Seen(offerID) {
			return offerSeenMsg{notif: n}
		}
		n.MarkSeen(offerID)
		return offerSeenMsg{notif: n, err: sess.SaveNotifications(n)}
	}
}

func (m offersModel) Init() tea.Cmd {
	return m.load()
}

func (m offersModel) Update(msg tea.Msg) (offersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case offersLoadedMsg:
		m.loading = false
		m.snap = msg.snap
		m.notif = msg.notif
		m.err = msg.err
		if m.cursor >= len(m.list()) {
			m.cursor = 0
		}
		return m, nil

	case offerResolvedMsg:
		m.snap = msg.snap
		m.err = msg.err
		return m, nil

	case offerDecidedMsg:
		m.snap = msg.snap
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("update failed: %v", msg.err)
		} else {
			m.statusMsg = "offer updated"
		}
		if m.cursor >= len(m.list()) {
			m.cursor = 0
		}
		return m, nil

	case offerSeenMsg:
		if msg.err == nil {
			m.notif = msg.notif
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m offersModel) updateList(msg tea.KeyMsg) (offersModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.list())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if offer, ok := m.selected(); ok {
			m.detail = true
			// The detail endpoint only serves the seller; sent offers
			// render from the list record.
			if m.mode == offersModeReceived {
				return m, tea.Batch(m.resolve(offer.ID), m.markSeen(offer.ID))
			}
		}
	case "w":
		if m.mode == offersModeReceived {
			m.mode = offersModeSent
		} else {
			m.mode = offersModeReceived
		}
		m.cursor = 0
		m.detail = false
	case "a":
		return m.decideSelected(domain.OfferAccepted)
	case "x":
		return m.decideSelected(domain.OfferRejected)
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m offersModel) updateDetail(msg tea.KeyMsg) (offersModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.detail = false
		m.offers.ClearCurrent()
	case "a":
		return m.decideSelected(domain.OfferAccepted)
	case "x":
		return m.decideSelected(domain.OfferRejected)
	}
	return m, nil
}

// decideSelected accepts or rejects the selected offer. Only pending
// offers received against the user's listings can be decided.
func (m offersModel) decideSelected(status int) (offersModel, tea.Cmd) {
	if m.mode != offersModeReceived {
		return m, nil
	}
	offer, ok := m.selected()
	if !ok || !offer.Pending() {
		return m, nil
	}
	return m, m.decide(offer.ID, status)
}

func (m offersModel) list() []domain.TradeOffer {
	if m.mode == offersModeSent {
		return m.snap.Sent
	}
	return m.snap.Received
}

func (m offersModel) selected() (domain.TradeOffer, bool) {
	items := m.list()
	if m.cursor < 0 || m.cursor >= len(items) {
		return domain.TradeOffer{}, false
	}
	return items[m.cursor], true
}

// unseenCount reports the pending received offers without a seen marker.
func unseenCount(snap state.OffersSnapshot, notif session.Notifications) int {
	n := 0
	for _, offer := range snap.PendingReceived() {
		if !notif.Seen(offer.ID) {
			n++
		}
	}
	return n
}

func (m offersModel) View() string {
	if m.detail {
		return m.viewDetail()
	}

	var b strings.Builder

	b.WriteString(" " + badgeStyle.Render("OFFERS") + "\n")

	// Received/sent toggle
	b.WriteString(" ")
	if m.mode == offersModeReceived {
		b.WriteString(searchStyle.Render("[received]"))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render("[sent]"))
	} else {
		b.WriteString(dimStyle.Render("[received]"))
		b.WriteString(" ")
		b.WriteString(searchStyle.Render("[sent]"))
	}
	b.WriteString("  " + helpKeyStyle.Render("w"))
	b.WriteString("\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.statusMsg != "" {
		b.WriteString(" " + okStyle.Render(m.statusMsg) + "\n")
	}

	if m.me == nil {
		b.WriteString(" " + dimStyle.Render("log in to trade -- run: tradepost login"))
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

	items := m.list()
	if len(items) == 0 {
		if m.mode == offersModeSent {
			b.WriteString(" " + dimStyle.Render("no offers sent yet (o on a comic to make one)"))
		} else {
			b.WriteString(" " + dimStyle.Render("no offers received yet"))
		}
		return b.String()
	}

	for i, offer := range items {
		cursor := "  "
		titleStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			titleStyle = normalStyle.Bold(true)
		}

		status := StatusStyle(offer.Status).Render(fmt.Sprintf("%-8s", offer.StatusLabel()))

		marker := "  "
		if m.mode == offersModeReceived && offer.Pending() && !m.notif.Seen(offer.ID) {
			marker = badgeStyle.Render("●") + " "
		}

		right := metaStyle.Render(fmt.Sprintf("%-7s", offer.OfferType))
		if !offer.Date.IsZero() {
			right += " " + metaStyle.Render(formatTime(offer.Date.Time))
		}

		titleWidth := m.width - 32
		if titleWidth < 10 {
			titleWidth = 10
		}
		titlePadded := fmt.Sprintf("%-*s", titleWidth, truncStr(offer.Title, titleWidth))

		line := cursor + marker + status + " " + titleStyle.Render(titlePadded) + " " + right
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	// Preview: the comic the selected offer targets
	if offer, ok := m.selected(); ok && offer.Comic != nil {
		b.WriteString("\n")
		preview := " " + sectionHeaderStyle.Render("FOR") + "  " + selectedStyle.Render(offer.Comic.Title)
		preview += "  " + priceStyle.Render(formatPrice(offer.Comic.Price))
		b.WriteString(preview + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m offersModel) viewDetail() string {
	offer, ok := m.selected()
	if !ok {
		return ""
	}
	if m.snap.Current != nil && m.snap.Current.ID == offer.ID {
		offer = *m.snap.Current
	}

	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")
	b.WriteString(" " + selectedStyle.Render(offer.Title) + "\n")

	meta := " " + StatusStyle(offer.Status).Render(offer.StatusLabel())
	meta += metaStyle.Render(" · ") + normalStyle.Render(offer.OfferType)
	if !offer.Date.IsZero() {
		meta += metaStyle.Render(" · " + formatTime(offer.Date.Time))
	}
	b.WriteString(meta + "\n\n")

	detailWidth := m.width - 4
	if detailWidth < 40 {
		detailWidth = 40
	}
	wrapped := lipgloss.NewStyle().Width(detailWidth).Render(offer.Description)
	for _, line := range strings.Split(wrapped, "\n") {
		b.WriteString(" " + normalStyle.Render(line) + "\n")
	}

	if offer.Comic != nil {
		b.WriteString("\n")
		target := " " + sectionHeaderStyle.Render("FOR") + "  " + selectedStyle.Render(offer.Comic.Title)
		target += "  " + priceStyle.Render(formatPrice(offer.Comic.Price))
		b.WriteString(target + "\n")
	}

	if m.mode == offersModeReceived && offer.Trader != nil {
		b.WriteString(" " + sectionHeaderStyle.Render("FROM") + " " + selectedStyle.Render(offer.Trader.DisplayName()) +
			"  " + starStyle.Render(formatRating(offer.Trader.Rating)) + "\n")
	}
	if m.mode == offersModeSent && offer.Seller != nil {
		b.WriteString(" " + sectionHeaderStyle.Render("TO") + "   " + selectedStyle.Render(offer.Seller.DisplayName()) + "\n")
	}

	if offer.Image != "" {
		b.WriteString("\n " + metaStyle.Render(offer.Image) + "\n")
	}

	// Decision controls only while the offer is still pending.
	if m.mode == offersModeReceived && offer.Pending() {
		b.WriteString("\n " + helpEntry("a", "accept") + "  " + helpEntry("x", "reject") + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + okStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
