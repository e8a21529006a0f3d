// Package config centralises the Flow Scoring Pipeline's tunables:
// API base URL, credentials, polling cadences, the router threshold,
// flow timeout, and sweep interval (§6).
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Pipeline holds every FSP tunable. Secrets (Username, Password) are
// read from the environment rather than flags, so they never show up
// in a process listing or shell history.
type Pipeline struct {
	APIBaseURL string
	Username   string
	Password   string

	PollInterval time.Duration
	QuietPeriod  time.Duration
	FlowTimeout  time.Duration
	SweepEvery   int

	Threshold float64

	PcapDir       string
	CSVDir        string
	ScoredDir     string
	SuspiciousDir string
	CorpusPath    string
	ModelsDir     string
}

const (
	envAPIBaseURL = "NIDSPIPE_API_BASE_URL"
	envUsername   = "NIDSPIPE_USERNAME"
	envPassword   = "NIDSPIPE_PASSWORD"
)

// FlagSet registers every non-secret Pipeline field onto fs and
// returns a Pipeline whose fields are populated once fs.Parse runs.
// Secrets are filled in immediately from the environment.
func FlagSet(fs *flag.FlagSet) *Pipeline {
	p := &Pipeline{
		Username: os.Getenv(envUsername),
		Password: os.Getenv(envPassword),
	}

	fs.StringVar(&p.APIBaseURL, "api-base-url", os.Getenv(envAPIBaseURL), "base URL of the ingest/auth API")
	fs.DurationVar(&p.PollInterval, "poll-interval", 30*time.Second, "FSP directory polling cadence")
	fs.DurationVar(&p.QuietPeriod, "quiet-period", 30*time.Minute, "minimum mtime-unchanged duration before a staged capture is promoted")
	fs.DurationVar(&p.FlowTimeout, "flow-timeout", 30*time.Second, "flow idle timeout before eviction")
	fs.IntVar(&p.SweepEvery, "sweep-every", 2500, "packets processed between flow-table sweeps")
	fs.Float64Var(&p.Threshold, "anomaly-threshold", -0.75, "anomaly score at/below which a row is routed to suspicious")
	fs.StringVar(&p.PcapDir, "pcap-dir", "analyse/pcap", "capture todo/done root")
	fs.StringVar(&p.CSVDir, "csv-dir", "analyse/csv", "feature CSV todo/done root")
	fs.StringVar(&p.ScoredDir, "scored-dir", "analyse/processed_output", "scored CSV output directory")
	fs.StringVar(&p.SuspiciousDir, "suspicious-dir", "analyse/suspicious", "suspicious batch todo/done root")
	fs.StringVar(&p.CorpusPath, "corpus-path", "datasets/if_training.csv", "rolling anomaly-model training corpus")
	fs.StringVar(&p.ModelsDir, "models-dir", "models", "directory holding the preprocessor bundle and trained models")

	return p
}

// Validate reports the first missing field required to run the FSP
// against a real upload endpoint.
func (p *Pipeline) Validate() error {
	if p.APIBaseURL == "" {
		return fmt.Errorf("api base URL not set (flag -api-base-url or %s)", envAPIBaseURL)
	}
	if p.Username == "" || p.Password == "" {
		return fmt.Errorf("credentials not set (%s / %s)", envUsername, envPassword)
	}
	return nil
}

// BundlePath is the fixed bundle location under ModelsDir (§6).
func (p *Pipeline) BundlePath() string { return p.ModelsDir + "/preprocessor_and_features" }

// ClassifierPath is the fixed RF model location under ModelsDir (§6).
func (p *Pipeline) ClassifierPath() string { return p.ModelsDir + "/rf_model" }

// AnomalyPath is the fixed IF model location under ModelsDir (§6).
func (p *Pipeline) AnomalyPath() string { return p.ModelsDir + "/if_model" }
