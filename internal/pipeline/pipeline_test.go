package pipeline

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/gigersam/nidspipe/internal/config"
	"github.com/gigersam/nidspipe/internal/preprocessor"
	"github.com/gigersam/nidspipe/internal/router"
	"github.com/gigersam/nidspipe/internal/scorer"
)

func writeTCPFlowPcap(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("write file header: %v", err)
	}

	eth := layers.Ethernet{EthernetType: layers.EthernetTypeIPv4}
	ip := layers.IPv4{Version: 4, IHL: 5, Protocol: layers.IPProtocolTCP, SrcIP: net.IPv4(10, 0, 0, 1), DstIP: net.IPv4(10, 0, 0, 2), TTL: 64}
	tcp := layers.TCP{SrcPort: 1000, DstPort: 80, SYN: true, Window: 1024}
	tcp.SetNetworkLayerForChecksum(&ip)

	for i := 0; i < 3; i++ {
		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
		if err := gopacket.SerializeLayers(buf, opts, &eth, &ip, &tcp, gopacket.Payload([]byte("xy"))); err != nil {
			t.Fatalf("serialize: %v", err)
		}
		ci := gopacket.CaptureInfo{Timestamp: time.Unix(int64(i), 0), CaptureLength: len(buf.Bytes()), Length: len(buf.Bytes())}
		if err := w.WritePacket(ci, buf.Bytes()); err != nil {
			t.Fatalf("write packet: %v", err)
		}
	}
}

func newTestFSP(t *testing.T) (*FSP, *config.Pipeline) {
	t.Helper()
	root := t.TempDir()

	cfg := &config.Pipeline{
		PcapDir:       filepath.Join(root, "analyse/pcap"),
		CSVDir:        filepath.Join(root, "analyse/csv"),
		ScoredDir:     filepath.Join(root, "analyse/processed_output"),
		SuspiciousDir: filepath.Join(root, "analyse/suspicious"),
		CorpusPath:    filepath.Join(root, "datasets/if_training.csv"),
		ModelsDir:     filepath.Join(root, "models"),
		FlowTimeout:   30 * time.Second,
		SweepEvery:    2500,
		Threshold:     router.DefaultThreshold,
	}

	schema := preprocessor.Schema{Numeric: scorer.DefaultNumericFeatures, All: scorer.DefaultNumericFeatures}
	row := make(map[string]float64, len(scorer.DefaultNumericFeatures))
	for _, col := range scorer.DefaultNumericFeatures {
		row[col] = 1
	}
	bundle := preprocessor.Fit(schema, []map[string]float64{row})
	if err := preprocessor.NewManager(cfg.BundlePath()).Save(bundle); err != nil {
		t.Fatalf("save bundle: %v", err)
	}

	sc, err := scorer.New(cfg.BundlePath(), cfg.ClassifierPath(), cfg.AnomalyPath())
	if err != nil {
		t.Fatalf("scorer.New: %v", err)
	}

	tokens := &router.TokenSource{BaseURL: "http://127.0.0.1:0"}
	p := &FSP{cfg: cfg, score: sc, uploader: &router.Uploader{BaseURL: tokens.BaseURL, Tokens: tokens}}
	return p, cfg
}

func TestTickConvertsScoresAndRoutesWithoutModels(t *testing.T) {
	p, cfg := newTestFSP(t)

	todoDir := filepath.Join(cfg.PcapDir, "todo")
	if err := os.MkdirAll(todoDir, 0o755); err != nil {
		t.Fatalf("mkdir todo: %v", err)
	}
	writeTCPFlowPcap(t, filepath.Join(todoDir, "a.pcap"))

	p.tick()

	doneDir := filepath.Join(cfg.PcapDir, "done")
	if _, err := os.Stat(filepath.Join(doneDir, "a.pcap")); err != nil {
		t.Fatalf("expected capture archived to done: %v", err)
	}

	// With no classifier loaded, every row reads rf_prediction=Unknown,
	// which is != "Benign" and therefore routes to suspicious; with no
	// reachable upload endpoint the batch stays in suspicious/todo.
	susTodo := filepath.Join(cfg.SuspiciousDir, "todo")
	entries, err := os.ReadDir(susTodo)
	if err != nil {
		t.Fatalf("read suspicious todo: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("suspicious todo entries = %d, want 1", len(entries))
	}

	data, err := os.ReadFile(cfg.CorpusPath)
	if err != nil {
		t.Fatalf("read corpus: %v", err)
	}
	if got := len(splitLines(data)); got != 1 {
		t.Fatalf("corpus lines = %d, want 1 (header only): every row should have been suspicious", got)
	}
}

func TestTickIsNoOpWithNoPendingCaptures(t *testing.T) {
	p, _ := newTestFSP(t)
	p.tick() // must not panic or error when PcapDir/todo does not exist yet
}

func splitLines(data []byte) []string {
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
