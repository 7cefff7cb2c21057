package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcastor/tradepost/internal/browser"
	"github.com/mcastor/tradepost/internal/prefs"
	"github.com/mcastor/tradepost/internal/session"
	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/pkg/domain"
)

type view int

const (
	viewCatalog view = iota
	viewWishlist
	viewOffers
	viewProfile
	viewPublish
	viewOfferForm
)

// App is the root Bubbletea model.
type App struct {
	sess *session.Session

	comicsStore  *state.Comics
	offersStore  *state.Offers
	profileStore *state.Profile

	view      view
	catalog   catalogModel
	wishlist  wishlistModel
	offers    offersModel
	profile   profileModel
	publish   publishModel
	offerForm offerFormModel

	// viewCtx scopes the active screen's requests. Switching tabs
	// cancels it so abandoned loads stop instead of racing the next
	// screen's fetches.
	viewCtx    context.Context
	cancelView context.CancelFunc

	helpOpen     bool
	helpCursor   int
	unseen       int
	me           *domain.User
	version      string
	updateNotice string
	width        int
	height       int
	frame        int // logo shimmer animation frame
}

// NewApp creates the TUI application around the shared stores.
func NewApp(comics *state.Comics, offers *state.Offers, profile *state.Profile, sess *session.Session, p prefs.Prefs, prefsPath string) App {
	ctx, cancel := context.WithCancel(context.Background())
	a := App{
		sess:         sess,
		comicsStore:  comics,
		offersStore:  offers,
		profileStore: profile,
		catalog:      newCatalogModel(comics, p, prefsPath),
		wishlist:     newWishlistModel(comics),
		offers:       newOffersModel(offers, sess),
		profile:      newProfileModel(profile),
		publish:      newPublishModel(comics),
		offerForm:    newOfferFormModel(offers),
		viewCtx:      ctx,
		cancelView:   cancel,
	}
	a.catalog.ctx = ctx
	if cached, ok := sess.CachedProfile(); ok {
		profile.Seed(cached)
		a = a.setMe(cached)
	}
	return a
}

// WithVersion sets the build version used for the release check.
func (a App) WithVersion(v string) App {
	a.version = v
	return a
}

func (a App) Init() tea.Cmd {
	// The offers load runs at startup so the tab badge is accurate
	// before the tab is ever opened.
	return tea.Batch(a.catalog.Init(), shimmerTickCmd(), a.profile.load(false), a.offers.load(), checkVersion(a.version))
}

// activate switches to a view, replacing the request context so the
// previous screen's in-flight loads are cancelled.
func (a App) activate(v view) (App, tea.Cmd) {
	if a.cancelView != nil {
		a.cancelView()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.viewCtx = ctx
	a.cancelView = cancel
	a.view = v

	switch v {
	case viewCatalog:
		a.catalog.ctx = ctx
		a.catalog.loading = true
		return a, a.catalog.Init()
	case viewWishlist:
		a.wishlist.ctx = ctx
		a.wishlist.loading = true
		return a, a.wishlist.Init()
	case viewOffers:
		a.offers.ctx = ctx
		a.offers.loading = true
		return a, a.offers.Init()
	case viewProfile:
		a.profile.ctx = ctx
		return a, a.profile.Init()
	case viewPublish:
		a.publish = a.publish.withContext(ctx)
		return a, a.publish.Init()
	case viewOfferForm:
		a.offerForm.ctx = ctx
		return a, a.offerForm.Init()
	}
	return a, nil
}

// setMe pushes the logged-in identity into every screen that needs it.
func (a App) setMe(me *domain.User) App {
	a.me = me
	a.catalog.me = me
	a.wishlist.me = me
	a.offers.me = me
	return a
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + blank(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.catalog, _ = a.catalog.Update(bodyMsg)
		a.wishlist, _ = a.wishlist.Update(bodyMsg)
		a.offers, _ = a.offers.Update(bodyMsg)
		a.profile, _ = a.profile.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case versionCheckMsg:
		if msg.hasUpdate {
			a.updateNotice = msg.latestVersion + " available"
		}
		return a, nil

	case profileLoadedMsg:
		a.profile, _ = a.profile.Update(msg)
		a = a.setMe(msg.snap.User)
		return a, nil

	case profileSavedMsg:
		var cmd tea.Cmd
		a.profile, cmd = a.profile.Update(msg)
		a = a.setMe(a.profileStore.Snapshot().User)
		return a, cmd

	case offersLoadedMsg, offerDecidedMsg, offerSeenMsg:
		var cmd tea.Cmd
		a.offers, cmd = a.offers.Update(msg)
		a.unseen = unseenCount(a.offers.snap, a.offers.notif)
		return a, cmd

	case showOfferFormMsg:
		a, _ = a.activate(viewOfferForm)
		a.offerForm = a.offerForm.begin(msg.comic)
		a.offerForm.ctx = a.viewCtx
		return a, a.offerForm.Init()

	case editListingMsg:
		a, _ = a.activate(viewPublish)
		a.publish = a.publish.beginEdit(msg.comic).withContext(a.viewCtx)
		return a, a.publish.Init()

	case comicPublishedMsg:
		var cmd tea.Cmd
		a.publish, cmd = a.publish.Update(msg)
		if msg.err == nil {
			// Refresh the catalog so the new or edited listing shows
			// up as soon as the user tabs back.
			return a, tea.Batch(cmd, a.catalog.load())
		}
		return a, cmd

	case offerCreatedMsg:
		var cmd tea.Cmd
		a.offerForm, cmd = a.offerForm.Update(msg)
		if msg.err == nil {
			return a, tea.Batch(cmd, a.offers.load())
		}
		return a, cmd

	case logoutRequestedMsg:
		if err := a.sess.Logout(); err != nil {
			a.profile.statusMsg = fmt.Sprintf("logout failed: %v", err)
			return a, nil
		}
		a.comicsStore.Reset()
		a.offersStore.Reset()
		a.profileStore.Reset()
		a = a.setMe(nil)
		a.unseen = 0
		a.profile.statusMsg = "logged out"
		return a, tea.Batch(a.profile.load(false), a.catalog.load())

	case tea.KeyMsg:
		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				item := helpItems[a.helpCursor]
				if item.url != "" {
					browser.Open(item.url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		// Global keys (only when not editing)
		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				if a.view != viewCatalog {
					return a.activate(viewCatalog)
				}
				return a, nil
			case "2":
				if a.view != viewWishlist {
					return a.activate(viewWishlist)
				}
				return a, nil
			case "3":
				if a.view != viewOffers {
					return a.activate(viewOffers)
				}
				return a, nil
			case "4":
				if a.view != viewProfile {
					return a.activate(viewProfile)
				}
				return a, nil
			case "n":
				if a.view != viewPublish {
					a, _ = a.activate(viewPublish)
					a.publish = a.publish.reset().withContext(a.viewCtx)
					return a, a.publish.Init()
				}
				return a, nil
			case "esc":
				if a.view == viewPublish || a.view == viewOfferForm {
					return a.activate(viewCatalog)
				}
			}
		} else if msg.String() == "esc" && (a.view == viewPublish || a.view == viewOfferForm) {
			return a.activate(viewCatalog)
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewCatalog:
		a.catalog, cmd = a.catalog.Update(msg)
	case viewWishlist:
		a.wishlist, cmd = a.wishlist.Update(msg)
	case viewOffers:
		a.offers, cmd = a.offers.Update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.Update(msg)
	case viewPublish:
		a.publish, cmd = a.publish.Update(msg)
	case viewOfferForm:
		a.offerForm, cmd = a.offerForm.Update(msg)
	}

	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewCatalog:
		return a.catalog.editing
	case viewProfile:
		return a.profile.editing()
	case viewPublish, viewOfferForm:
		return true
	}
	return false
}

func (a App) View() string {
	// Header: centered shimmer logo
	logo := renderShimmerLogo(a.frame)

	// Identity line below logo
	statsLine := ""
	if a.me != nil {
		parts := []string{"@" + a.me.Username}
		parts = append(parts, fmt.Sprintf("%d trades", a.me.TradesCount))
		if a.me.Rating > 0 {
			parts = append(parts, formatRating(a.me.Rating))
		}
		statsLine = metaStyle.Render(strings.Join(parts, " . "))
	}
	if a.updateNotice != "" {
		notice := accentStyle.Render(a.updateNotice)
		if statsLine != "" {
			statsLine += metaStyle.Render(" . ") + notice
		} else {
			statsLine = notice
		}
	}

	logoWidth := lipgloss.Width(logo)
	logoPad := (a.width - logoWidth) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	if statsLine != "" {
		statsWidth := lipgloss.Width(statsLine)
		statsPad := (a.width - statsWidth) / 2
		if statsPad < 0 {
			statsPad = 0
		}
		header += "\n" + strings.Repeat(" ", statsPad) + statsLine
	} else {
		header += "\n"
	}

	// Tab bar: 1 Catalog  2 Wishlist  3 Offers  4 Profile
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Catalog", viewCatalog},
		{"2", "Wishlist", viewWishlist},
		{"3", "Offers", viewOffers},
		{"4", "Profile", viewProfile},
	}

	// 4 equal-width columns spread across the terminal
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		active := t.v == a.view
		if a.view == viewPublish || a.view == viewOfferForm {
			active = t.v == viewCatalog
		}
		if active {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		// Offers tab: unseen pending-offer badge
		if t.v == viewOffers && a.unseen > 0 {
			label += " " + badgeStyle.Render(fmt.Sprintf("●%d", a.unseen))
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}
	centeredTabs := tabBar.String()

	// Body + contextual help line
	var body string
	var help string
	switch a.view {
	case viewCatalog:
		body = a.catalog.View()
		switch {
		case a.catalog.editing:
			help = " " + helpEntry("enter", "apply") + "  " + helpEntry("esc", "clear")
		case a.catalog.detail:
			help = " " + helpEntry("w", "wishlist") + "  " + helpEntry("c", "copy") + "  " + helpEntry("b", "image") + "  " + helpEntry("o", "offer") + "  " + helpEntry("e", "edit") + "  " + helpEntry("esc", "back")
		default:
			help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("t", "category") + "  " + helpEntry("s", "sort") + "  " + helpEntry("m", "mine") + "  " + helpEntry("w", "wishlist") + "  " + helpEntry("n", "publish") + "  " + helpEntry("h", "help")
		}
	case viewWishlist:
		body = a.wishlist.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("w", "remove") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("q", "quit")
	case viewOffers:
		body = a.offers.View()
		if a.offers.detail {
			help = " " + helpEntry("a", "accept") + "  " + helpEntry("x", "reject") + "  " + helpEntry("esc", "back")
		} else {
			help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("w", "received/sent") + "  " + helpEntry("enter", "open") + "  " + helpEntry("a/x", "decide") + "  " + helpEntry("q", "quit")
		}
	case viewProfile:
		body = a.profile.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + a.profile.helpKeys()
	case viewPublish:
		body = a.publish.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("h/l", "select") + "  " + helpEntry("ctrl+s", "submit") + "  " + helpEntry("esc", "cancel")
	case viewOfferForm:
		body = a.offerForm.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("h/l", "type") + "  " + helpEntry("ctrl+s", "send") + "  " + helpEntry("esc", "cancel")
	}

	// Help overlay
	if a.helpOpen {
		body = helpView(a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	// Chrome budget: header(2) + tabs(1) + blank(1) + help(1) = 5 lines + body
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", header, centeredTabs, body, help)
}
