// flowtrain fits the preprocessor bundle (if one is not already
// present) and retrains the classifier and/or anomaly detector. Flag
// validation mirrors the original trainer's argparse rules: at least
// one of --train-rf/--train-if must be given, each requires its own
// data path to exist, and an absent preprocessor requires --rf-data
// regardless of which model is being trained.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gigersam/nidspipe/internal/config"
	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/preprocessor"
	"github.com/gigersam/nidspipe/internal/trainer"
)

var (
	trainRF          bool
	trainIF          bool
	rfData           string
	ifData           string
	targetSampleSize int
	chunkSize        int
	nEstimators      int
	maxDepth         int
	nJobs            int
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: flowtrain train [--train-rf] [--train-if] [--rf-data P] [--if-data P] ...")
	flag.PrintDefaults()
}

func main() {
	fs := flag.NewFlagSet("flowtrain", flag.ExitOnError)
	p := config.FlagSet(fs)
	fs.BoolVar(&trainRF, "train-rf", false, "(re)train the classifier")
	fs.BoolVar(&trainIF, "train-if", false, "(re)train the anomaly detector")
	fs.StringVar(&rfData, "rf-data", "", "labelled CSV for classifier training / preprocessor fitting")
	fs.StringVar(&ifData, "if-data", "", "CSV for anomaly detector training")
	fs.IntVar(&targetSampleSize, "target-sample-size", 16233002, "target rows to sample from the training data")
	fs.IntVar(&chunkSize, "chunk-size", 2000000, "rows per chunk while reading training data")
	fs.IntVar(&nEstimators, "n-estimators", 100, "number of trees in the forests (opaque to this implementation)")
	fs.IntVar(&maxDepth, "max-depth", 50, "maximum tree depth (opaque to this implementation)")
	fs.IntVar(&nJobs, "n-jobs", 3, "CPU cores to use (-1 for all)")
	fs.Usage = usage
	fs.Parse(os.Args[1:])
	minilog.Init()

	args := fs.Args()
	if len(args) < 1 || args[0] != "train" {
		usage()
		os.Exit(1)
	}
	fs.Parse(args[1:])
	if fs.NArg() != 0 {
		usage()
		os.Exit(1)
	}

	if err := validate(p.BundlePath()); err != nil {
		fmt.Fprintln(os.Stderr, "flowtrain:", err)
		os.Exit(2)
	}

	cfg := trainer.Config{
		TrainRF: trainRF, TrainIF: trainIF,
		RFDataPath: rfData, IFDataPath: ifData,
		TargetSampleSize: targetSampleSize, ChunkSize: chunkSize,
		NEstimators: nEstimators, MaxDepth: maxDepth, NJobs: nJobs,
		BundlePath:     p.BundlePath(),
		ClassifierPath: p.ClassifierPath(),
		AnomalyPath:    p.AnomalyPath(),
	}

	if err := trainer.Run(cfg); err != nil {
		minilog.Error("flowtrain: %v", err)
		os.Exit(1)
	}
}

// validate reproduces the original trainer's mutual-flag requirements.
func validate(bundlePath string) error {
	if !trainRF && !trainIF {
		return fmt.Errorf("must specify --train-rf and/or --train-if")
	}

	if trainRF {
		if rfData == "" {
			return fmt.Errorf("--train-rf requires --rf-data")
		}
		if _, err := os.Stat(rfData); err != nil {
			return fmt.Errorf("RF data file not found: %s", rfData)
		}
	}

	if trainIF {
		if ifData == "" {
			return fmt.Errorf("--train-if requires --if-data")
		}
		if _, err := os.Stat(ifData); err != nil {
			return fmt.Errorf("IF data file not found: %s", ifData)
		}
	}

	mgr := preprocessor.NewManager(bundlePath)
	mgr.Load()
	if mgr.State() != preprocessor.BundleReady {
		if rfData == "" {
			return fmt.Errorf("preprocessor not found at %s and no --rf-data given for initial fitting", bundlePath)
		}
		if _, err := os.Stat(rfData); err != nil {
			return fmt.Errorf("preprocessor needs fitting but RF data file not found: %s", rfData)
		}
	}

	if targetSampleSize <= 0 {
		return fmt.Errorf("target-sample-size must be positive, got %d", targetSampleSize)
	}
	if chunkSize <= 0 {
		return fmt.Errorf("chunk-size must be positive, got %d", chunkSize)
	}
	if nEstimators <= 0 {
		return fmt.Errorf("n-estimators must be positive, got %d", nEstimators)
	}
	if maxDepth <= 0 {
		return fmt.Errorf("max-depth must be positive, got %d", maxDepth)
	}
	if !(nJobs >= 1 || nJobs == -1) {
		return fmt.Errorf("n-jobs must be >= 1 or -1, got %d", nJobs)
	}

	return nil
}
