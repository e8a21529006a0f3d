package scorer

import (
	"fmt"

	"github.com/gigersam/nidspipe/internal/minilog"
	"github.com/gigersam/nidspipe/internal/model"
	"github.com/gigersam/nidspipe/internal/preprocessor"
)

// DefaultNumericFeatures is the feature-schema column set the trainer
// fits the preprocessor against: 51 columns, namely every feature
// column except flow_key, src_ip, dst_ip, src_port, the two timestamp
// fields, tot_pkts and tot_bytes. protocol and dst_port are included.
var DefaultNumericFeatures = []string{
	"flow_duration", "fwd_pkts_tot", "bwd_pkts_tot",
	"fwd_bytes_tot", "bwd_bytes_tot", "fwd_pkt_len_min", "fwd_pkt_len_max",
	"fwd_pkt_len_mean", "fwd_pkt_len_std", "bwd_pkt_len_min", "bwd_pkt_len_max",
	"bwd_pkt_len_mean", "bwd_pkt_len_std", "flow_pkt_len_min", "flow_pkt_len_max",
	"flow_pkt_len_mean", "flow_pkt_len_std", "fwd_iat_min", "fwd_iat_max",
	"fwd_iat_mean", "fwd_iat_std", "bwd_iat_min", "bwd_iat_max",
	"bwd_iat_mean", "bwd_iat_std", "flow_iat_min", "flow_iat_max",
	"flow_iat_mean", "flow_iat_std", "fwd_header_len", "bwd_header_len",
	"pkts_per_sec", "bytes_per_sec", "down_up_ratio", "avg_pkt_size",
	"fwd_seg_size_avg", "bwd_seg_size_avg", "init_win_bytes_fwd",
	"init_win_bytes_bwd",
	"fwd_PSH_flags", "bwd_PSH_flags", "fwd_URG_flags", "bwd_URG_flags",
	"SYN_flag_cnt", "FIN_flag_cnt", "RST_flag_cnt", "ACK_flag_cnt",
	"PSH_flag_cnt", "URG_flag_cnt",
	"protocol", "dst_port",
}

// Scorer holds the preprocessor bundle and both models for the
// lifetime of the process. Either model may be absent; Scorer degrades
// per §4.6 rather than refusing to run.
type Scorer struct {
	bundle     *preprocessor.Bundle
	classifier model.Classifier
	anomaly    model.AnomalyDetector
}

// New loads the bundle and both models from their configured paths.
// The bundle is mandatory: Scorer refuses to run without one in
// BundleReady state. Missing model files are logged and tolerated.
func New(bundlePath, rfModelPath, ifModelPath string) (*Scorer, error) {
	mgr := preprocessor.NewManager(bundlePath)
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load preprocessor bundle: %w", err)
	}
	if mgr.State() != preprocessor.BundleReady {
		return nil, preprocessor.ErrBundleInvalid
	}

	s := &Scorer{bundle: mgr.Bundle()}

	if c, err := model.LoadClassifier(rfModelPath); err != nil {
		minilog.Warn("scorer: classifier model unavailable at %s, predictions will read %q: %v",
			rfModelPath, model.UnknownLabel, err)
	} else {
		s.classifier = c
	}

	if a, err := model.LoadAnomaly(ifModelPath); err != nil {
		minilog.Warn("scorer: anomaly model unavailable at %s, scores will read 0.0: %v", ifModelPath, err)
	} else {
		s.anomaly = a
	}

	return s, nil
}
