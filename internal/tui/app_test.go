package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcastor/tradepost/internal/prefs"
	"github.com/mcastor/tradepost/internal/session"
	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/pkg/client"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	dir := t.TempDir()
	sess, err := session.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	api := client.New("http://127.0.0.1:0", sess)
	app := NewApp(
		state.NewComics(api, sess),
		state.NewOffers(api, sess),
		state.NewProfile(api, sess),
		sess,
		prefs.Default(),
		filepath.Join(dir, "prefs.toml"),
	)
	return update(t, app, tea.WindowSizeMsg{Width: 100, Height: 40})
}

// update routes a message through the root model and casts it back.
func update(t *testing.T, app App, msg tea.Msg) App {
	t.Helper()
	next, _ := app.Update(msg)
	got, ok := next.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", next)
	}
	return got
}

func TestAppTabSwitching(t *testing.T) {
	app := newTestApp(t)

	app = update(t, app, keyMsg("2"))
	if !strings.Contains(app.View(), "WISHLIST") {
		t.Error("tab 2 should show the wishlist")
	}

	app = update(t, app, keyMsg("3"))
	if !strings.Contains(app.View(), "OFFERS") {
		t.Error("tab 3 should show the offers inbox")
	}

	app = update(t, app, keyMsg("4"))
	if !strings.Contains(app.View(), "PROFILE") {
		t.Error("tab 4 should show the profile")
	}

	app = update(t, app, keyMsg("1"))
	if !strings.Contains(app.View(), "CATALOG") {
		t.Error("tab 1 should return to the catalog")
	}
}

func TestAppTabSwitchReplacesContext(t *testing.T) {
	app := newTestApp(t)
	first := app.viewCtx

	app = update(t, app, keyMsg("2"))
	if app.viewCtx == first {
		t.Error("switching tabs should install a fresh request context")
	}
	select {
	case <-first.Done():
	default:
		t.Error("previous view context should be cancelled")
	}
}

func TestAppPublishAndBack(t *testing.T) {
	app := newTestApp(t)

	app = update(t, app, keyMsg("n"))
	if app.view != viewPublish {
		t.Fatal("n should open the publish form")
	}
	if !strings.Contains(app.View(), "PUBLISH") {
		t.Error("publish form missing")
	}

	app = update(t, app, keyMsg("esc"))
	if app.view != viewCatalog {
		t.Error("esc should leave the publish form")
	}
}

func TestAppOffersBadge(t *testing.T) {
	app := newTestApp(t)

	app = update(t, app, offersLoadedMsg{snap: testInbox, notif: session.Notifications{}})
	if !strings.Contains(app.View(), "●1") {
		t.Error("expected an unseen badge on the offers tab")
	}

	var notif session.Notifications
	notif.MarkSeen(1)
	app = update(t, app, offersLoadedMsg{snap: testInbox, notif: notif})
	if strings.Contains(app.View(), "●1") {
		t.Error("badge should clear once the offer is seen")
	}
}

func TestAppOfferFormRouting(t *testing.T) {
	app := newTestApp(t)

	app = update(t, app, showOfferFormMsg{comic: testListings[0]})
	if app.view != viewOfferForm {
		t.Fatal("showOfferFormMsg should open the offer form")
	}
	if view := app.View(); !strings.Contains(view, "MAKE OFFER") || !strings.Contains(view, "Akira") {
		t.Error("offer form should target the requested comic")
	}

	app = update(t, app, keyMsg("esc"))
	if app.view != viewCatalog {
		t.Error("esc should leave the offer form")
	}
}

func TestAppEditListingRouting(t *testing.T) {
	app := newTestApp(t)

	app = update(t, app, editListingMsg{comic: testListings[1]})
	if app.view != viewPublish {
		t.Fatal("editListingMsg should open the publish form")
	}
	if !strings.Contains(app.View(), "EDIT LISTING") {
		t.Error("publish form should be in edit mode")
	}
	if app.publish.editID != 2 {
		t.Errorf("editID = %d, want 2", app.publish.editID)
	}
}

func TestAppProfilePropagatesIdentity(t *testing.T) {
	app := newTestApp(t)

	u := testUser
	app = update(t, app, profileLoadedMsg{snap: state.ProfileSnapshot{User: &u}})

	if app.me == nil || app.me.ID != 5 {
		t.Fatal("profile load should set the app identity")
	}
	if app.catalog.me == nil || app.offers.me == nil || app.wishlist.me == nil {
		t.Error("identity should propagate to every screen")
	}
	if !strings.Contains(app.View(), "@subspace77") {
		t.Error("header should show the logged-in username")
	}
}

func TestAppHelpOverlay(t *testing.T) {
	app := newTestApp(t)

	app = update(t, app, keyMsg("h"))
	if !app.helpOpen {
		t.Fatal("h should open the help overlay")
	}
	if view := app.View(); !strings.Contains(view, "Trade comics, not money.") {
		t.Error("help overlay missing tagline")
	}

	app = update(t, app, keyMsg("j"))
	if app.helpCursor != 1 {
		t.Errorf("helpCursor = %d, want 1", app.helpCursor)
	}

	app = update(t, app, keyMsg("esc"))
	if app.helpOpen {
		t.Error("esc should close the help overlay")
	}
}

func TestAppKeysIgnoredWhileEditing(t *testing.T) {
	app := newTestApp(t)

	// Typing in the catalog search must not switch tabs.
	app = update(t, app, keyMsg("/"))
	app = update(t, app, keyMsg("2"))
	if app.view != viewCatalog {
		t.Error("digits typed into the search should not switch tabs")
	}
	if app.catalog.search != "2" {
		t.Errorf("search = %q, want the typed digit", app.catalog.search)
	}
}

func TestAppLogoutResetsStores(t *testing.T) {
	app := newTestApp(t)
	u := testUser
	app = update(t, app, profileLoadedMsg{snap: state.ProfileSnapshot{User: &u}})
	app = update(t, app, offersLoadedMsg{snap: testInbox, notif: session.Notifications{}})

	app = update(t, app, logoutRequestedMsg{})
	if app.me != nil {
		t.Error("logout should clear the identity")
	}
	if app.unseen != 0 {
		t.Error("logout should clear the offers badge")
	}
}
