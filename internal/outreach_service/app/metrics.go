package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "imports_total",
			Help:      "Total number of import operations.",
		},
		[]string{"mode", "status"}, // mode="json"|"spreadsheet"|"file", status="success"|"failure"
	)

	importedContactsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "imported_contacts_total",
			Help:      "Total number of contacts created by imports.",
		},
	)

	importRowsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "import_rows_skipped_total",
			Help:      "Total number of spreadsheet rows skipped during import.",
		},
	)

	dispatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "dispatches_total",
			Help:      "Total number of outbound message dispatches.",
		},
	)

	followUpTransitionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "follow_up_transitions_total",
			Help:      "Total number of automatic message_sent to awaiting_reply transitions.",
		},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Name:      "exports_total",
			Help:      "Total number of export operations.",
		},
		[]string{"status"},
	)
)
