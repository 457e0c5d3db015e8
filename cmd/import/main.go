// Command import replays legacy inspection exports into a running
// API deployment. It parses the old Ionic markup (and the later <qa>
// XML envelopes), authenticates as the importing employee and submits
// each form through the same endpoint the mobile client uses, so
// ownership and validation rules apply unchanged.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MajesticSpiral/safety-app/internal/client"
	"github.com/MajesticSpiral/safety-app/internal/ingest"
)

func main() {
	log.SetFlags(0)
	_ = godotenv.Load()

	var (
		addr  = flag.String("addr", "http://localhost:4000", "API base URL")
		dir   = flag.String("dir", "", "Directory of legacy exports (.html or .xml)")
		clock = flag.String("clock", "", "Clock number to import as")
	)
	flag.Parse()

	if *dir == "" || *clock == "" {
		log.Fatal("usage: import -dir <exports> -clock <clocknumber> [-addr <url>] (password via IMPORT_PASSWORD)")
	}
	password := os.Getenv("IMPORT_PASSWORD")
	if password == "" {
		log.Fatal("IMPORT_PASSWORD is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	session := client.NewSession(client.New(*addr))
	if _, err := session.LogIn(ctx, *clock, password); err != nil {
		log.Fatalf("login: %v", err)
	}
	defer session.LogOut()

	var imported, failed int
	err := filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		sub, parseErr := parseExport(path)
		if parseErr != nil {
			if errors.Is(parseErr, errUnsupported) {
				return nil
			}
			log.Printf("skip %s: %v", path, parseErr)
			failed++
			return nil
		}

		created, submitErr := session.AddInspection(ctx, sub.Draft())
		if submitErr != nil {
			log.Printf("submit %s: %v", path, submitErr)
			failed++
			return nil
		}
		log.Printf("imported %s as %s (%s)", path, created.ID, sub.TemplateName)
		imported++
		return nil
	})
	if err != nil {
		log.Fatalf("walk %s: %v", *dir, err)
	}

	log.Printf("done: %d imported, %d failed", imported, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

var errUnsupported = errors.New("unsupported extension")

func parseExport(path string) (ingest.Submission, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.Submission{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ingest.ParseMarkup(f)
	case ".xml":
		return ingest.ParseEnvelope(f)
	default:
		return ingest.Submission{}, errUnsupported
	}
}
