package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcastor/tradepost/internal/state"
	"github.com/mcastor/tradepost/pkg/domain"
)

type offerField int

const (
	offerFieldType offerField = iota
	offerFieldTitle
	offerFieldDescription
	offerFieldImage
	numOfferFields
)

var offerLabels = [numOfferFields]string{"type", "title", "description", "image"}

// offerFormModel is the make-offer form, opened from a comic detail.
type offerFormModel struct {
	offers *state.Offers
	ctx    context.Context

	comic   domain.Comic
	inputs  [numOfferFields]textinput.Model
	typeIdx int // index into domain.OfferTypes, -1 when unset
	focus   offerField

	spin       spinner.Model
	submitting bool
	statusMsg  string
}

type offerCreatedMsg struct {
	serverMsg string
	err       error
}

func newOfferFormModel(offers *state.Offers) offerFormModel {
	m := offerFormModel{offers: offers, ctx: context.Background(), typeIdx: -1}
	for f := offerFieldTitle; f < numOfferFields; f++ {
		ti := textinput.New()
		ti.CharLimit = maxInputLen
		ti.Prompt = ""
		m.inputs[f] = ti
	}
	m.inputs[offerFieldImage].Placeholder = "optional: path/to/photo.jpg"
	m.spin = spinner.New(spinner.WithSpinner(spinner.Dot))
	return m
}

// begin resets the form for a new offer against the given comic.
func (m offerFormModel) begin(comic domain.Comic) offerFormModel {
	fresh := newOfferFormModel(m.offers)
	fresh.ctx = m.ctx
	fresh.comic = comic
	fresh.focus = offerFieldType
	return fresh
}

func (m offerFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m offerFormModel) Update(msg tea.Msg) (offerFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case offerCreatedMsg:
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
			m.statusMsg = "offer sent"
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

func (m offerFormModel) updateKeys(msg tea.KeyMsg) (offerFormModel, tea.Cmd) {
	m.statusMsg = ""
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down", "enter":
		return m.setFocus((m.focus + 1) % numOfferFields), nil
	case "shift+tab", "up":
		return m.setFocus((m.focus - 1 + numOfferFields) % numOfferFields), nil
	}

	if m.focus == offerFieldType {
		m.typeIdx = cycleIdx(m.typeIdx, len(domain.OfferTypes), msg.String())
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m offerFormModel) setFocus(f offerField) offerFormModel {
	m.focus = f
	for i := offerFieldTitle; i < numOfferFields; i++ {
		if i == f {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m offerFormModel) submit() (offerFormModel, tea.Cmd) {
	draft := domain.OfferDraft{
		Title:       strings.TrimSpace(m.inputs[offerFieldTitle].Value()),
		Description: strings.TrimSpace(m.inputs[offerFieldDescription].Value()),
		ImagePath:   strings.TrimSpace(m.inputs[offerFieldImage].Value()),
	}
	if m.typeIdx >= 0 {
		draft.OfferType = domain.OfferTypes[m.typeIdx]
	}
	if problem := draft.Validate(); problem != "" {
		m.statusMsg = problem
		return m, nil
	}

	m.submitting = true
	offers := m.offers
	ctx := m.ctx
	comicID := m.comic.ID
	return m, tea.Batch(m.spin.Tick, func() tea.Msg {
		serverMsg, err := offers.CreateOffer(ctx, comicID, draft)
		return offerCreatedMsg{serverMsg: serverMsg, err: err}
	})
}

func (m offerFormModel) View() string {
	var b strings.Builder

	b.WriteString(" " + badgeStyle.Render("MAKE OFFER") + "  " + metaStyle.Render("for ") + selectedStyle.Render(m.comic.Title) + "\n")
	if m.comic.Seller != nil {
		b.WriteString(" " + metaStyle.Render("seller: "+m.comic.Seller.DisplayName()) + "\n")
	}
	b.WriteString("\n")

	for f := offerField(0); f < numOfferFields; f++ {
		cursor := " "
		style := metaStyle
		if f == m.focus {
			cursor = ">"
			style = selectedStyle
		}
		label := fmt.Sprintf("%-12s", offerLabels[f])

		if f == offerFieldType {
			value := "(h/l to select)"
			rendered := inputPlaceholderStyle.Render(value)
			if m.typeIdx >= 0 {
				value = domain.OfferTypes[m.typeIdx]
				rendered = searchStyle.Render(value)
			}
			fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(label), rendered)
			continue
		}
		fmt.Fprintf(&b, " %s %s %s\n", cursor, style.Render(label), m.inputs[f].View())
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(" " + m.spin.View() + dimStyle.Render(" sending offer..."))
	} else if m.statusMsg != "" {
		b.WriteString(" " + okStyle.Render(m.statusMsg))
	}

	return b.String()
}
