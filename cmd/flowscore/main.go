// flowscore applies the preprocessor bundle and the two trained models
// to a flow-feature CSV, producing a scored CSV.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gigersam/nidspipe/internal/config"
	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/scorer"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: flowscore score <in_csv> <out_name>")
	flag.PrintDefaults()
}

func main() {
	fs := flag.NewFlagSet("flowscore", flag.ExitOnError)
	p := config.FlagSet(fs)
	fs.Usage = usage
	fs.Parse(os.Args[1:])
	minilog.Init()

	args := fs.Args()
	if len(args) != 3 || args[0] != "score" {
		usage()
		os.Exit(1)
	}

	s, err := scorer.New(p.BundlePath(), p.ClassifierPath(), p.AnomalyPath())
	if err != nil {
		minilog.Error("flowscore: %v", err)
		os.Exit(1)
	}

	if err := s.ScoreCSV(args[1], args[2]); err != nil {
		minilog.Error("flowscore: %v", err)
		os.Exit(1)
	}
}
