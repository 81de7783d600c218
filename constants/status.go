package constants

// IngestStatus is the outcome of processing one inbox file.
type IngestStatus string

const (
	IngestStatusQueued    IngestStatus = "QUEUED"
	IngestStatusStored    IngestStatus = "STORED"
	IngestStatusDuplicate IngestStatus = "DUPLICATE" // raw text already stored
	IngestStatusInvalid   IngestStatus = "INVALID"   // failed validation
	IngestStatusFailed    IngestStatus = "FAILED"
)
