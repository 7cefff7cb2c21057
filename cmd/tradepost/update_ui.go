package main

import "fmt"

// ANSI color constants for update output (no lipgloss — runs outside TUI).
const (
	ansiReset      = "\033[0m"
	ansiBold       = "\033[1m"
	ansiItalic     = "\033[3m"
	ansiAmber      = "\033[38;2;251;191;36m"  // #fbbf24
	ansiAmberDeep  = "\033[38;2;240;168;36m"  // #f0a824
	ansiAmberLight = "\033[38;2;250;204;102m" // #facc66
	ansiSlate      = "\033[38;2;136;144;160m" // #8890a0
)

// printUpdateLogo prints the spaced TRADEPOST wordmark in alternating amber.
func printUpdateLogo() {
	letters := "TRADEPOST"
	colors := [2]string{ansiAmber, ansiAmberDeep}
	fmt.Print("\n  ")
	for i, ch := range letters {
		fmt.Printf("%s%s%c%s", colors[i%2], ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// printUpdateSuccess prints the update-complete message in the counter's voice.
func printUpdateSuccess(oldVersion, newVersion string) {
	printUpdateLogo()
	fmt.Printf("\n  %s%s%s  %s%s→%s  %s%s%s%s\n",
		ansiSlate, oldVersion, ansiReset,
		ansiAmber, ansiBold, ansiReset,
		ansiAmber, ansiBold, newVersion, ansiReset,
	)
	fmt.Printf("\n  %s│%s %s%sTHE COUNTER%s\n", ansiAmberDeep, ansiReset, ansiAmberDeep, ansiBold, ansiReset)
	fmt.Printf("  %s│%s %s%sFresh issue on the rack.%s\n\n", ansiAmberDeep, ansiReset, ansiAmberLight, ansiItalic, ansiReset)
}

// printAlreadyCurrent prints the already-up-to-date message in the counter's voice.
func printAlreadyCurrent(currentVersion string) {
	printUpdateLogo()
	fmt.Printf("\n  %s%s%s%s  %s%s✦%s  %s%scurrent%s\n",
		ansiAmber, ansiBold, currentVersion, ansiReset,
		ansiAmberDeep, ansiBold, ansiReset,
		ansiSlate, ansiItalic, ansiReset,
	)
	fmt.Printf("\n  %s│%s %s%sTHE COUNTER%s\n", ansiAmberDeep, ansiReset, ansiAmberDeep, ansiBold, ansiReset)
	fmt.Printf("  %s│%s %s%sNothing new on the rack. You're current.%s\n\n", ansiAmberDeep, ansiReset, ansiAmberLight, ansiItalic, ansiReset)
}
