package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joseph-ayodele/tbcparser/internal/common"
	"github.com/joseph-ayodele/tbcparser/internal/dictionary"
)

type resolution struct {
	Alias       string `json:"alias"`
	Normalized  string `json:"normalized"`
	Operator    string `json:"operator,omitempty"`
	Application string `json:"application,omitempty"`
}

type report struct {
	Path         string              `json:"path"`
	Version      string              `json:"version,omitempty"`
	Checksum     string              `json:"checksum"`
	Entries      int                 `json:"entries"`
	Operators    int                 `json:"operators"`
	Applications int                 `json:"applications"`
	Sources      []dictionary.Source `json:"sources,omitempty"`
	Samples      []resolution        `json:"samples"`
}

// dictcheck validates an operator dictionary and prints how sample aliases resolve.
// Extra arguments are resolved in addition to the built-in samples.
func main() {
	path := flag.String("dict", "", "dictionary file (defaults to OPERATORS_DICTIONARY_PATH)")
	flag.Parse()

	cfg := common.LoadConfig()
	if *path == "" {
		*path = cfg.Dictionary.Path
	}

	snap, err := dictionary.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dictionary %s is invalid: %v\n", *path, err)
		os.Exit(1)
	}
	dict := dictionary.NewFromSnapshot(snap, *path, common.NewLogger(cfg.Log))

	rep := report{
		Path:         *path,
		Version:      snap.Version,
		Checksum:     snap.Checksum,
		Entries:      len(snap.Entries),
		Operators:    len(snap.Operators),
		Applications: len(snap.Applications),
		Sources:      snap.Sources,
	}
	for _, alias := range append(append([]string(nil), dictionary.SampleAliases...), flag.Args()...) {
		r := resolution{Alias: alias, Normalized: dict.Normalize(alias)}
		if e, ok := dict.Lookup(alias); ok {
			r.Operator = e.Operator
			r.Application = e.Application
		}
		rep.Samples = append(rep.Samples, r)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
		os.Exit(1)
	}
}
