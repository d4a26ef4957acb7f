package model

// Status represents the lifecycle state of a download item
type Status string

const (
	// StatusPending means the item is queued and waiting for a free slot
	StatusPending Status = "Pending"

	// StatusDownloading means the item holds a slot and its download is running
	StatusDownloading Status = "Downloading"

	// StatusSuccess means the download finished and produced a file
	StatusSuccess Status = "Success"

	// StatusFailed means the download ended with an error
	StatusFailed Status = "Failed"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsActive returns true if the item currently occupies a concurrency slot
func (s Status) IsActive() bool {
	return s == StatusDownloading
}

// IsFinished returns true if the status is terminal (success or failed)
func (s Status) IsFinished() bool {
	return s == StatusSuccess || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
// Terminal states never transition; items have to be removed and resubmitted.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusDownloading
	case StatusDownloading:
		return next == StatusSuccess || next == StatusFailed
	default:
		return false
	}
}
