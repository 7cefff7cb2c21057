package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/pkg/domain"
)

type pubField int

const (
	pubTitle pubField = iota
	pubPublisher
	pubEdition
	pubCondition
	pubDescription
	pubPrice
	pubCategory
	pubImage
	numPubFields
)

var pubLabels = [numPubFields]string{
	"title", "publisher", "edition", "condition",
	"description", "price", "category", "image",
}

// publishModel is the listing form, used both for publishing a new
// comic and for editing an owned one.
type publishModel struct {
	comics *state.Comics
	ctx    context.Context

	inputs  [numPubFields]textinput.Model
	condIdx int // index into domain.Conditions, -1 when unset
	catIdx  int // index into domain.Categories, -1 when unset
	focus   pubField

	editID     int // 0 when publishing a new listing
	spin       spinner.Model
	submitting bool
	statusMsg  string
}

type comicPublishedMsg struct {
	serverMsg string
	err       error
}

func newPublishModel(comics *state.Comics) publishModel {
	m := publishModel{comics: comics, ctx: context.Background(), condIdx: -1, catIdx: -1}
	for f := pubField(0); f < numPubFields; f++ {
		if f == pubCondition || f == pubCategory {
			continue
		}
		ti := textinput.New()
		ti.CharLimit = maxInputLen
		ti.Prompt = ""
		m.inputs[f] = ti
	}
	m.inputs[pubPrice].Placeholder = "0.00"
	m.inputs[pubImage].Placeholder = "path/to/cover.jpg"
	m.spin = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.inputs[pubTitle].Focus()
	return m
}

// reset clears the form back to a blank new-listing state.
func (m publishModel) reset() publishModel {
	return newPublishModel(m.comics).withContext(m.ctx)
}

func (m publishModel) withContext(ctx context.Context) publishModel {
	m.ctx = ctx
	return m
}

// beginEdit seeds the form from an owned listing. The image field stays
// empty; a value replaces the current image, empty keeps it.
func (m publishModel) beginEdit(comic domain.Comic) publishModel {
	m = m.reset()
	m.editID = comic.ID
	m.inputs[pubTitle].SetValue(comic.Title)
	m.inputs[pubPublisher].SetValue(comic.Publisher)
	m.inputs[pubEdition].SetValue(comic.Edition)
	m.inputs[pubDescription].SetValue(comic.Description)
	m.inputs[pubPrice].SetValue(strconv.FormatFloat(comic.Price, 'f', 2, 64))
	m.inputs[pubImage].Placeholder = "leave empty to keep current image"
	m.condIdx = indexOf(domain.Conditions, comic.Condition)
	m.catIdx = indexOf(domain.Categories, comic.Category)
	return m
}

func indexOf(choices []string, value string) int {
	for i, c := range choices {
		if c == value {
			return i
		}
	}
	return -1
}

func (m publishModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m publishModel) Update(msg tea.Msg) (publishModel, tea.Cmd) {
	switch msg := msg.(type) {
	case comicPublishedMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = msg.err.Error()
			if msg.err == state.ErrNotLoggedIn {
				m.statusMsg = "not logged in -- run: tradepost login"
			}
			return m, nil
		}
		m.statusMsg = msg.serverMsg
		if m.statusMsg == "" {
			m.statusMsg = "listing published"
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m publishModel) updateKeys(msg tea.KeyMsg) (publishModel, tea.Cmd) {
	m.statusMsg = ""
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down", "enter":
		return m.setFocus((m.focus + 1) % numPubFields), nil
	case "shift+tab", "up":
		return m.setFocus((m.focus - 1 + numPubFields) % numPubFields), nil
	}

	if m.focus == pubCondition {
		m.condIdx = cycleIdx(m.condIdx, len(domain.Conditions), msg.String())
		return m, nil
	}
	if m.focus == pubCategory {
		m.catIdx = cycleIdx(m.catIdx, len(domain.Categories), msg.String())
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// cycleIdx moves through n choices with h/l, starting at the first.
func cycleIdx(idx, n int, key string) int {
	switch key {
	case "l":
		return (idx + 1) % n
	case "h":
		if idx <= 0 {
			return n - 1
		}
		return idx - 1
	}
	return idx
}

func (m publishModel) setFocus(f pubField) publishModel {
	m.focus = f
	for i := pubField(0); i < numPubFields; i++ {
		if i == pubCondition || i == pubCategory {
			continue
		}
		if i == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m publishModel) draft() (domain.ComicDraft, string) {
	price, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[pubPrice].Value()), 64)
	if m.inputs[pubPrice].Value() != "" && err != nil {
		return domain.ComicDraft{}, "price must be a number"
	}
	draft := domain.ComicDraft{
		Title:       strings.TrimSpace(m.inputs[pubTitle].Value()),
		Publisher:   strings.TrimSpace(m.inputs[pubPublisher].Value()),
		Edition:     strings.TrimSpace(m.inputs[pubEdition].Value()),
		Description: strings.TrimSpace(m.inputs[pubDescription].Value()),
		Price:       price,
		ImagePath:   strings.TrimSpace(m.inputs[pubImage].Value()),
	}
	if m.condIdx >= 0 {
		draft.Condition = domain.Conditions[m.condIdx]
	}
	if m.catIdx >= 0 {
		draft.Category = domain.Categories[m.catIdx]
	}
	return draft, ""
}

func (m publishModel) submit() (publishModel, tea.Cmd) {
	draft, problem := m.draft()
	if problem != "" {
		m.statusMsg = problem
		return m, nil
	}

	if m.editID != 0 {
		return m.submitEdit(draft)
	}

	if problem := draft.Validate(); problem != "" {
		m.statusMsg = problem
		return m, nil
	}

	m.submitting = true
	comics := m.comics
	ctx := m.ctx
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		serverMsg, err := comics.CreateComic(ctx, draft)
		return comicPublishedMsg{serverMsg: serverMsg, err: err}
	})
}

// submitEdit pushes the listing fields as a partial update and, when an
// image path was entered, replaces the image too.
func (m publishModel) submitEdit(draft domain.ComicDraft) (publishModel, tea.Cmd) {
	fields := map[string]any{
		"title":       draft.Title,
		"publisher":   draft.Publisher,
		"edition":     draft.Edition,
		"condition":   draft.Condition,
		"description": draft.Description,
		"price":       strconv.FormatFloat(draft.Price, 'f', 2, 64),
		"category":    draft.Category,
	}
	if !domain.ValidPrice(draft.Price) {
		m.statusMsg = "price must be greater than 0"
		if draft.Price > domain.MaxPrice {
			m.statusMsg = "price must not exceed 1,000,000,000"
		}
		return m, nil
	}
	if draft.ImagePath != "" && !domain.ValidImagePath(draft.ImagePath) {
		m.statusMsg = "image must be a JPG, JPEG, PNG or GIF file"
		return m, nil
	}

	m.submitting = true
	comics := m.comics
	ctx := m.ctx
	id := m.editID
	imagePath := draft.ImagePath
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		_, err := comics.UpdateComicData(ctx, id, fields)
		if err == nil && imagePath != "" {
			_, err = comics.UpdateComicImage(ctx, id, imagePath)
		}
		return comicPublishedMsg{serverMsg: "listing updated", err: err}
	})
}

func (m publishModel) View() string {
	var b strings.Builder

	if m.editID != 0 {
		b.WriteString(" " + badgeStyle.Render("EDIT LISTING") + "\n\n")
	} else {
		b.WriteString(" " + badgeStyle.Render("PUBLISH") + "  " + metaStyle.Render("list a comic for trade") + "\n\n")
	}

	for f := pubField(0); f < numPubFields; f++ {
		cursor := " "
		style := metaStyle
		if f == m.focus {
			cursor = ">"
			style = selectedStyle
		}
		label := fmt.Sprintf("%-12s", pubLabels[f])

		switch f {
		case pubCondition:
			value := "(h/l to select)"
			rendered := inputPlaceholderStyle.Render(value)
			if m.condIdx >= 0 {
				value = domain.Conditions[m.condIdx]
				rendered = ConditionStyle(value).Render(value)
			}
			fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(label), rendered)
		case pubCategory:
			value := "(h/l to select)"
			rendered := inputPlaceholderStyle.Render(value)
			if m.catIdx >= 0 {
				value = domain.Categories[m.catIdx]
				rendered = CategoryStyle(value).Render(value)
			}
			fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(label), rendered)
		default:
			fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(label), m.inputs[f].View())
		}
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(" " + m.spin.View() + dimStyle.Render(" publishing..."))
	} else if m.statusMsg != "" {
		b.WriteString(" " + okStyle.Render(m.statusMsg))
	}

	return b.String()
}
