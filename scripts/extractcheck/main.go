// extractcheck runs the price and stock pipeline over saved debug HTML
// files, so extraction misses can be diagnosed offline without re-hitting
// retailer sites.
//
// Usage:
//
//	go run ./scripts/extractcheck -dir out/debug -min 1100 -max 3000
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pricetrack/extract"
)

var (
	dir = flag.String("dir", "out/debug", "directory of saved store documents")
	min = flag.Float64("min", 1100, "lower bound of the plausible price range")
	max = flag.Float64("max", 3000, "upper bound of the plausible price range")
)

func main() {
	flag.Parse()

	paths, err := filepath.Glob(filepath.Join(*dir, "*.html"))
	if err != nil || len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "no documents under %s\n", *dir)
		os.Exit(1)
	}

	extractor := extract.PriceExtractor{Envelope: extract.Envelope{Min: *min, Max: *max}}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tPRICE\tPROVENANCE\tWEIGHT\tSTOCK\tCANDIDATES")

	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		html := string(raw)
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}

		pool := extractor.Collect(doc, html, nil)
		stock := extract.DetectStock(doc, nil, "")

		name := filepath.Base(path)
		if cand, ok := extractor.BestCandidate(doc, html, nil); ok {
			fmt.Fprintf(w, "%s\t%.2f\t%s\t%d\t%s\t%d\n",
				name, cand.Value, cand.Provenance, cand.Weight, stockLabel(stock), len(pool))
		} else {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%s\t%d\n", name, stockLabel(stock), len(pool))
		}
	}
	w.Flush()
}

func stockLabel(s extract.StockState) string {
	switch s {
	case extract.StockIn:
		return "in"
	case extract.StockOut:
		return "out"
	}
	return "?"
}
