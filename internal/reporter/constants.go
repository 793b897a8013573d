package reporter

const (
	DefaultReportTemplateName = "compare_report.html.tmpl"

	// Embedded asset paths
	EmbeddedCSSPath = "assets/css/compare_report.css"
	EmbeddedJSPath  = "assets/js/compare_report.js"

	DefaultReportTitle = "OCR Comparison Report"

	// File permissions
	DirPermissions  = 0755
	FilePermissions = 0644

	// Snapshot files written next to a report when they are not inlined
	snapshotDirSuffix = "_snapshots"
	snapshotFileName  = "diff-%03d.png"

	generatedAtLayout = "2006-01-02 15:04:05 MST"
)
