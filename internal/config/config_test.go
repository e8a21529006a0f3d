package config

import (
	"flag"
	"os"
	"testing"
)

func TestFlagSetDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p := FlagSet(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Threshold != -0.75 {
		t.Fatalf("Threshold = %v, want -0.75", p.Threshold)
	}
	if p.SweepEvery != 2500 {
		t.Fatalf("SweepEvery = %v, want 2500", p.SweepEvery)
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	os.Unsetenv("NIDSPIPE_USERNAME")
	os.Unsetenv("NIDSPIPE_PASSWORD")
	os.Unsetenv("NIDSPIPE_API_BASE_URL")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	p := FlagSet(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := p.Validate(); err == nil {
		t.Fatal("expected Validate to fail with no API base URL or credentials set")
	}

	p.APIBaseURL = "https://example.test"
	p.Username = "svc"
	p.Password = "secret"
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestModelPathsDeriveFromModelsDir(t *testing.T) {
	p := &Pipeline{ModelsDir: "models"}
	if p.BundlePath() != "models/preprocessor_and_features" {
		t.Fatalf("BundlePath = %q", p.BundlePath())
	}
	if p.ClassifierPath() != "models/rf_model" {
		t.Fatalf("ClassifierPath = %q", p.ClassifierPath())
	}
	if p.AnomalyPath() != "models/if_model" {
		t.Fatalf("AnomalyPath = %q", p.AnomalyPath())
	}
}
