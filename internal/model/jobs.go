package model

// JobPhase is a service-neutral reading of an async job's status.
type JobPhase int

const (
	JobPending JobPhase = iota
	JobSucceeded
	JobFailed
)

// OCRCheck is one status observation of an async document-text-detection job.
// Lines is populated only when the job has succeeded.
type OCRCheck struct {
	Phase JobPhase
	Lines []string
}

// TranscriptionRequest starts one async transcription job.
type TranscriptionRequest struct {
	JobName      string
	LanguageCode string
	MediaFormat  string
	Media        ObjectRef
	OutputBucket string
}

// TranscriptionCheck is one status observation of an async transcription job.
// OutputKey names the transcript object within the output bucket once the job
// has completed.
type TranscriptionCheck struct {
	Phase     JobPhase
	OutputKey string
}
