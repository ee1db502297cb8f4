// Author: Eryk Kulikowski @ KU Leuven (2023). Apache 2.0 License

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FoldersScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_folders_scanned_total",
			Help: "Total number of folders scanned during discovery",
		},
		[]string{"strategy"},
	)

	FilesDiscovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_files_total",
			Help: "Total number of model files discovered",
		},
		[]string{"strategy"},
	)

	FoldersSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "discovery_folders_skipped_total",
			Help: "Folders skipped because their listing failed",
		},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Export requests by outcome",
		},
		[]string{"outcome"},
	)

	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "Time taken by the export pipeline",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600},
		},
	)

	DownloadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "derivative_downloaded_bytes_total",
			Help: "Total bytes downloaded from signed derivative URLs",
		},
	)
)
