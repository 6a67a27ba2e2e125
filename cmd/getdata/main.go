// Command getdata snapshots the memory spreadsheet into the JSON document the
// mirror and local sources serve: {"<sheet>": [[header...], [row...], ...]}.
//
// Usage:
//
//	SHEETS_ID=... SHEETS_API_KEY=... go run ./cmd/getdata -out sheets_data.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/source"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	sheetID := flag.String("sheet-id", os.Getenv("SHEETS_ID"), "spreadsheet id (default $SHEETS_ID)")
	apiKey := flag.String("api-key", os.Getenv("SHEETS_API_KEY"), "sheets API key (default $SHEETS_API_KEY)")
	baseURL := flag.String("base-url", sharedcfg.EnvOrDefault("SHEETS_BASE_URL", "https://sheets.googleapis.com/v4/spreadsheets"), "sheets values API base URL")
	sheets := flag.String("sheets", "map", "comma-separated sheet names to snapshot")
	out := flag.String("out", "sheets_data.json", "output path")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout per sheet")
	flag.Parse()

	if *sheetID == "" || *apiKey == "" {
		flag.Usage()
		return errors.New("missing spreadsheet id or API key")
	}

	ctx := context.Background()
	client := source.NewHTTPClient(*timeout)
	doc := make(map[string][]domain.RawRow)

	for _, name := range strings.Split(*sheets, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		rows, err := source.NewSheets(*baseURL, *sheetID, name, *apiKey, client).Fetch(ctx)
		if err != nil {
			// One failing sheet does not sink the others.
			log.Printf("%s: %v", name, err)
			continue
		}
		doc[name] = rows
		log.Printf("%s: %d rows", name, len(rows))
	}
	if len(doc) == 0 {
		return errors.New("no sheets fetched")
	}

	if err := saveDocument(*out, doc); err != nil {
		return err
	}
	log.Printf("data saved to %s", *out)
	return nil
}

// saveDocument writes doc to path. A failed close is reported, since that is
// where a short write on the last buffer shows up.
func saveDocument(path string, doc map[string][]domain.RawRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeDocument(f, doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// writeDocument encodes the snapshot indented, with non-ASCII text kept as is.
func writeDocument(w io.Writer, doc map[string][]domain.RawRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
