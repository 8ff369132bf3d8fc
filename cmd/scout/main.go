// Command scout is the terminal client used at the stands: it renders the
// season's scouting form, stores entries locally, and syncs queued entries
// to the server when a connection comes back.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ssnnd0/Saxon-Scout/client"
	"github.com/ssnnd0/Saxon-Scout/logging"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "scouting server base URL")
	storePath := flag.String("store", "scout.db", "path to the local entry store")
	scoutName := flag.String("scout", "", "name recorded on every entry")
	flag.Parse()

	if *scoutName == "" {
		fmt.Fprintln(os.Stderr, "the -scout flag is required")
		os.Exit(1)
	}

	// The TUI owns the terminal; logs go nowhere unless debugging.
	logging.BoostrapLogger()
	logging.Log.SetOutput(io.Discard)

	api := client.NewAPI(*serverURL)
	store, err := client.OpenStore(*storePath, api)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open entry store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	m := newModel(api, store, *scoutName)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "scout exited with error: %v\n", err)
		os.Exit(1)
	}
}
