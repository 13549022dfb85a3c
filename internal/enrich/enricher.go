package enrich

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/velora-health/docenrich/internal/poll"
)

// Deps are the external collaborators one Enricher works against.
type Deps struct {
	Objects    ObjectStore
	Images     ImageAnalyzer
	OCR        DocumentReader
	Transcribe Transcriber
	Entities   EntityDetector
	Sink       RecordSink
}

// Enricher runs the per-file-type extraction strategies. It is constructed
// once per invocation and holds no mutable state across work items.
type Enricher struct {
	deps   Deps
	poll   poll.Config
	norm   *Normalizer
	logger *slog.Logger

	// newJobName generates transcription job names, unique per invocation.
	newJobName func() string
}

func NewEnricher(deps Deps, pollCfg poll.Config, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		deps:       deps,
		poll:       pollCfg,
		norm:       NewNormalizer(),
		logger:     logger,
		newJobName: uuid.NewString,
	}
}
