package pipeline

// Outcome classifies how a run ended. Each value maps to a stable exit code
// so the external scheduler can distinguish failure categories.
type Outcome int

const (
	OutcomePublished Outcome = iota
	OutcomeSkipped
	OutcomeManualReview
	OutcomeLockContention
	OutcomeFetchFailed
	OutcomeDownloadFailed
	OutcomeExtractionFailed
	OutcomeUploadFailed
	OutcomeFailed
)

// String implements fmt.Stringer for log output.
func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeManualReview:
		return "needs_manual_review"
	case OutcomeLockContention:
		return "lock_contention"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeDownloadFailed:
		return "download_failed"
	case OutcomeExtractionFailed:
		return "extraction_failed"
	case OutcomeUploadFailed:
		return "upload_failed"
	default:
		return "failed"
	}
}

// ExitCode maps the outcome to the process exit code contract. Published and
// skipped both exit zero; the skip is distinguished by its log line.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomePublished, OutcomeSkipped:
		return 0
	case OutcomeManualReview:
		return 2
	case OutcomeLockContention:
		return 3
	case OutcomeFetchFailed:
		return 4
	case OutcomeDownloadFailed:
		return 5
	case OutcomeExtractionFailed:
		return 6
	case OutcomeUploadFailed:
		return 7
	default:
		return 1
	}
}
