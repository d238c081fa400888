package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/abelbrown/algoreport/internal/config"
	"github.com/abelbrown/algoreport/internal/coord"
)

func runRender() {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath(), "Config file path")
	out := fs.String("o", "", "Output path (default: configured html_path)")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)
	path := cfg.Output.HTMLPath
	if *out != "" {
		path = *out
	}

	// An unopenable backend surfaces again through Load below.
	st, closeStore, _ := openStore(cfg)
	defer closeStore()

	a, err := st.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: archive unreadable, rendering an empty page: %v\n", err)
	}

	if err := coord.RenderTo(path, a, time.Now()); err != nil {
		fatalf("render: %v", err)
	}
	fmt.Printf("wrote %s (%d reports)\n", path, a.Len())
}
