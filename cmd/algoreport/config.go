package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/abelbrown/algoreport/internal/config"
)

func runConfig() {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath(), "Config file path")
	initFile := fs.Bool("init", false, "Write the effective config to the config path")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)

	if *initFile {
		if err := cfg.Save(*cfgPath); err != nil {
			fatalf("save config: %v", err)
		}
		fmt.Printf("wrote %s\n", *cfgPath)
		return
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(string(data))

	// Status goes to stderr so stdout stays valid JSON.
	path := cfg.ArchivePath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "archive: %s %s (not created yet)\n", cfg.Archive.Backend, path)
		return
	}
	st, closeStore, _ := openStore(cfg)
	defer closeStore()
	fmt.Fprintf(os.Stderr, "archive: %s %s, %s\n", cfg.Archive.Backend, path, describeArchive(context.Background(), st))
}
