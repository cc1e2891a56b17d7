// Command lpcard shows a link preview card in the terminal.
//
//	lpcard [-lang es] [-endpoint URL] [-timeout 10s] [url]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MrSnakeDoc/linkpreview/internal/i18n"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
	"github.com/MrSnakeDoc/linkpreview/internal/tui"
	"github.com/MrSnakeDoc/linkpreview/internal/version"
)

func main() {
	lang := flag.String("lang", "en", "language of the card labels")
	endpoint := flag.String("endpoint", preview.DefaultEndpoint, "metadata service endpoint")
	timeout := flag.Duration("timeout", preview.DefaultFetchTimeout, "metadata request timeout")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("lpcard %s (commit=%s, built=%s)\n", version.Version, version.Commit, version.BuildDate)
		return
	}

	catalog, err := i18n.New("en")
	if err != nil {
		log.Fatalf("❌ failed to load translations: %v", err)
	}

	fetcher, err := preview.NewHTTPFetcher(preview.FetcherOptions{
		Endpoint:  *endpoint,
		Timeout:   *timeout,
		UserAgent: version.UserAgent(),
	})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// The card logs nothing here; output would corrupt the terminal UI.
	card := preview.New(fetcher, preview.WithURL(flag.Arg(0)))

	if err := tui.New(card, preview.TextsFor(catalog, *lang)).Start(); err != nil {
		fmt.Fprintf(os.Stderr, "lpcard: %v\n", err)
		os.Exit(1)
	}
}
