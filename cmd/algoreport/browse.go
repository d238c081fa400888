package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/algoreport/internal/config"
	"github.com/abelbrown/algoreport/internal/ui/browse"
)

func runBrowse() {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath(), "Config file path")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)

	// An unopenable backend surfaces again through Load below.
	st, closeStore, _ := openStore(cfg)
	defer closeStore()

	a, err := st.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: archive unreadable: %v\n", err)
	}

	p := tea.NewProgram(browse.New(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatalf("%v", err)
	}
}
