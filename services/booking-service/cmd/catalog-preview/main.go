package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/studionail/nailbook/services/booking-service/internal/catalog"
	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

// catalog-preview prints the slot catalog in effect for each date of a range.
func main() {
	var (
		file   = flag.String("file", getenv("SLOT_CATALOG_FILE", ""), "slot catalog YAML (built-in catalog when empty)")
		from   = flag.String("from", model.DateOf(time.Now()).String(), "first date, YYYY-MM-DD")
		days   = flag.Int("days", 7, "number of days to print")
		asJSON = flag.Bool("json", false, "print JSON lines instead of a table")
	)
	flag.Parse()

	cfg, err := catalog.Load(*file)
	if err != nil {
		fatal(err.Error())
	}
	start, err := model.ParseDate(*from)
	if err != nil {
		fatal(err.Error())
	}
	if *days <= 0 || *days > 366 {
		fatal("days must be between 1 and 366")
	}

	rows, err := preview(cfg, start, *days)
	if err != nil {
		fatal(err.Error())
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		for _, r := range rows {
			if err := enc.Encode(r); err != nil {
				fatal(err.Error())
			}
		}
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCATALOG\tSLOTS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Date, r.Name, strings.Join(r.Slots, " "))
	}
	_ = tw.Flush()
}

type row struct {
	Date     string   `json:"date"`
	Name     string   `json:"name"`
	Seasonal bool     `json:"seasonal"`
	Slots    []string `json:"slots"`
}

func preview(cfg catalog.Config, start model.Date, days int) ([]row, error) {
	t, err := start.Time()
	if err != nil {
		return nil, err
	}
	out := make([]row, 0, days)
	for i := 0; i < days; i++ {
		d := model.DateOf(t.AddDate(0, 0, i))
		info := cfg.Info(d)
		out = append(out, row{Date: d.String(), Name: info.Name, Seasonal: info.Seasonal, Slots: info.Slots.Strings()})
	}
	return out, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
