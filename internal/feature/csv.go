package feature

import (
	"strconv"
)

// Columns is the fixed, ordered CSV header for the flow feature schema.
// Row must produce values in exactly this order.
var Columns = []string{
	"flow_key", "src_ip", "dst_ip", "src_port", "dst_port", "protocol",
	"flow_start_ts", "flow_last_ts", "flow_duration",
	"fwd_pkts_tot", "bwd_pkts_tot", "tot_pkts",
	"fwd_bytes_tot", "bwd_bytes_tot", "tot_bytes",
	"fwd_pkt_len_min", "fwd_pkt_len_max", "fwd_pkt_len_mean", "fwd_pkt_len_std",
	"bwd_pkt_len_min", "bwd_pkt_len_max", "bwd_pkt_len_mean", "bwd_pkt_len_std",
	"flow_pkt_len_min", "flow_pkt_len_max", "flow_pkt_len_mean", "flow_pkt_len_std",
	"avg_pkt_size",
	"fwd_iat_min", "fwd_iat_max", "fwd_iat_mean", "fwd_iat_std",
	"bwd_iat_min", "bwd_iat_max", "bwd_iat_mean", "bwd_iat_std",
	"flow_iat_min", "flow_iat_max", "flow_iat_mean", "flow_iat_std",
	"fwd_header_len", "bwd_header_len",
	"fwd_seg_size_avg", "bwd_seg_size_avg",
	"pkts_per_sec", "bytes_per_sec",
	"fwd_PSH_flags", "bwd_PSH_flags", "fwd_URG_flags", "bwd_URG_flags",
	"SYN_flag_cnt", "FIN_flag_cnt", "RST_flag_cnt", "ACK_flag_cnt",
	"PSH_flag_cnt", "URG_flag_cnt",
	"down_up_ratio",
	"init_win_bytes_fwd", "init_win_bytes_bwd",
}

// Row renders r as a CSV record matching Columns.
func Row(r Record) []string {
	f := strconv.FormatFloat
	i := strconv.Itoa
	return []string{
		r.FlowKey, r.SrcIP, r.DstIP, i(int(r.SrcPort)), i(int(r.DstPort)), i(int(r.Protocol)),
		f(r.FlowStartTS, 'f', 6, 64), f(r.FlowLastTS, 'f', 6, 64), f(r.FlowDuration, 'f', 9, 64),
		i(r.FwdPktsTot), i(r.BwdPktsTot), i(r.TotPkts),
		i(r.FwdBytesTot), i(r.BwdBytesTot), i(r.TotBytes),
		f(r.FwdPktLenMin, 'f', -1, 64), f(r.FwdPktLenMax, 'f', -1, 64), f(r.FwdPktLenMean, 'f', -1, 64), f(r.FwdPktLenStd, 'f', -1, 64),
		f(r.BwdPktLenMin, 'f', -1, 64), f(r.BwdPktLenMax, 'f', -1, 64), f(r.BwdPktLenMean, 'f', -1, 64), f(r.BwdPktLenStd, 'f', -1, 64),
		f(r.FlowPktLenMin, 'f', -1, 64), f(r.FlowPktLenMax, 'f', -1, 64), f(r.FlowPktLenMean, 'f', -1, 64), f(r.FlowPktLenStd, 'f', -1, 64),
		f(r.AvgPktSize, 'f', -1, 64),
		f(r.FwdIatMin, 'f', -1, 64), f(r.FwdIatMax, 'f', -1, 64), f(r.FwdIatMean, 'f', -1, 64), f(r.FwdIatStd, 'f', -1, 64),
		f(r.BwdIatMin, 'f', -1, 64), f(r.BwdIatMax, 'f', -1, 64), f(r.BwdIatMean, 'f', -1, 64), f(r.BwdIatStd, 'f', -1, 64),
		f(r.FlowIatMin, 'f', -1, 64), f(r.FlowIatMax, 'f', -1, 64), f(r.FlowIatMean, 'f', -1, 64), f(r.FlowIatStd, 'f', -1, 64),
		i(r.FwdHeaderLen), i(r.BwdHeaderLen),
		f(r.FwdSegSizeAvg, 'f', -1, 64), f(r.BwdSegSizeAvg, 'f', -1, 64),
		f(r.PktsPerSec, 'f', -1, 64), f(r.BytesPerSec, 'f', -1, 64),
		i(r.FwdPSHFlags), i(r.BwdPSHFlags), i(r.FwdURGFlags), i(r.BwdURGFlags),
		i(r.SYNFlagCnt), i(r.FINFlagCnt), i(r.RSTFlagCnt), i(r.ACKFlagCnt),
		i(r.PSHFlagCnt), i(r.URGFlagCnt),
		f(r.DownUpRatio, 'f', -1, 64),
		i(r.InitWinBytesFwd), i(r.InitWinBytesBwd),
	}
}
