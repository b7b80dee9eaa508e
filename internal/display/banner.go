package display

import (
	"fmt"
	"os"

	"github.com/stixforge/stixforge/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Magenta != "" {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` ____  _   _      _____
/ ___|| |_(_)_  _|  ___|__  _ __ __ _  ___
\___ \| __| \ \/ / |_ / _ \| '__/ _`+"`"+` |/ _ \
 ___) | |_| |>  <|  _| (_) | | | (_| |  __/
|____/ \__|_/_/\_\_|  \___/|_|  \__, |\___|
                                |___/
`)
	if term.Magenta != "" {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
