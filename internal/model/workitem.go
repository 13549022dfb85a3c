package model

// ObjectRef points at one stored object.
type ObjectRef struct {
	Bucket string
	Key    string
}

func (r ObjectRef) Location() string {
	return r.Bucket + "/" + r.Key
}

// WorkItem is one document reference queued for enrichment. It is created by an
// upstream listener, consumed exactly once by the pipeline driver, and never
// mutated.
type WorkItem struct {
	Bucket     string
	Key        string
	DocumentID string
	FileType   string
}

func (w WorkItem) Ref() ObjectRef {
	return ObjectRef{Bucket: w.Bucket, Key: w.Key}
}

func (w WorkItem) Location() string {
	return w.Bucket + "/" + w.Key
}
