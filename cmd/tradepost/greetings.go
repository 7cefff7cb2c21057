package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var counterGreetings = [...]string{
	"The rack got restocked an hour ago. You weren't here.",
	"Somebody just listed a first print. It won't last the afternoon.",
	"Your longbox at home is an archive. A listing is a conversation.",
	"Three trades closed while you were reading the door sign.",
	"No money changes hands here. Just comics and opinions.",
	"The wishlist you never made can't notify you of anything.",
	"A sealed comic is a comic nobody is enjoying. List it.",
	"That manga you've been hunting? Someone has it. They want yours.",
	"The counter doesn't judge your taste. The regulars might.",
	"An offer a day keeps the backlog away.",
	"Every SOLD tag was once a listing somebody hesitated to post.",
	"You've walked past the counter four times. The comics noticed.",
	"Semi-used is a condition, not a lifestyle. Probably.",
	"Somebody rated a trader five stars today. It wasn't you. Yet.",
	"The best trade is the one where both sides think they won.",
	"Your doubles are someone else's grails.",
	"Independent, SuperComic, Eclipse, Manga. Four shelves. Zero excuses.",
	"An unanswered offer is just two people being stubborn.",
	"The register here only rings for stories.",
	"Paper ages. Offers expire. Move.",
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fbbf24")).
		Bold(true).
		Render("T R A D E P O S T")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Trade comics, not money."`)

	attrib := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f0a824")).
		Render("— The Counter")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"tradepost", "Browse the catalog (interactive TUI)"},
		{"tradepost login", "Sign in with username and password"},
		{"tradepost signup", "Create an account"},
		{"tradepost logout", "Clear your session"},
		{"tradepost update", "Check for updates"},
		{"tradepost terms", "Terms of Service"},
		{"tradepost privacy", "Privacy Policy"},
		{"tradepost --version", "Show version"},
		{"tradepost help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n  %s\n\n  Commands:\n", title, quote, attrib)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	url := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("https://trademaster.lat")
	fmt.Printf("\n  %s\n\n", url)
}

func printTradepostGreeting() {
	msg := counterGreetings[rand.IntN(len(counterGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fbbf24")).
		Bold(true).
		Render("TRADEPOST")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	attrib := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f0a824")).
		Render("— The Counter")

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To start trading: tradepost login (or tradepost signup)")

	fmt.Printf("\n%s\n\n%s\n%s\n\n%s\n\n", title, quote, attrib, hint)
}
