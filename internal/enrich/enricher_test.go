package enrich

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-health/docenrich/constants"
	"github.com/velora-health/docenrich/internal/common"
	"github.com/velora-health/docenrich/internal/model"
	"github.com/velora-health/docenrich/internal/poll"
)

type fakeObjects struct {
	texts   map[string]string
	deleted []string
}

func (f *fakeObjects) GetText(ctx context.Context, bucket, key string) (string, error) {
	return f.texts[bucket+"/"+key], nil
}

func (f *fakeObjects) Delete(ctx context.Context, bucket, key string) error {
	f.deleted = append(f.deleted, bucket+"/"+key)
	return nil
}

type fakeImages struct {
	labels     []model.Label
	faces      []model.Face
	lines      []model.TextLine
	facesCalls int
}

func (f *fakeImages) DetectLabels(ctx context.Context, ref model.ObjectRef) ([]model.Label, error) {
	return f.labels, nil
}

func (f *fakeImages) DetectFaces(ctx context.Context, ref model.ObjectRef) ([]model.Face, error) {
	f.facesCalls++
	return f.faces, nil
}

func (f *fakeImages) DetectTextLines(ctx context.Context, ref model.ObjectRef) ([]model.TextLine, error) {
	return f.lines, nil
}

type fakeOCR struct {
	checks []model.OCRCheck
	calls  int
}

func (f *fakeOCR) StartTextDetection(ctx context.Context, ref model.ObjectRef) (string, error) {
	return "job-1", nil
}

func (f *fakeOCR) CheckTextDetection(ctx context.Context, jobID string) (model.OCRCheck, error) {
	check := f.checks[f.calls]
	if f.calls < len(f.checks)-1 {
		f.calls++
	}
	return check, nil
}

type fakeTranscriber struct {
	started []model.TranscriptionRequest
	check   model.TranscriptionCheck
}

func (f *fakeTranscriber) Start(ctx context.Context, req model.TranscriptionRequest) error {
	f.started = append(f.started, req)
	return nil
}

func (f *fakeTranscriber) Check(ctx context.Context, jobName string) (model.TranscriptionCheck, error) {
	return f.check, nil
}

type fakeEntities struct {
	entities []model.Entity
	gotText  string
	calls    int
}

func (f *fakeEntities) DetectEntities(ctx context.Context, text string) ([]model.Entity, error) {
	f.calls++
	f.gotText = text
	return f.entities, nil
}

type fakeSink struct {
	batches [][]model.TagRecord
}

func (f *fakeSink) PutBatch(ctx context.Context, tagRecords []model.TagRecord) error {
	f.batches = append(f.batches, tagRecords)
	return nil
}

func (f *fakeSink) all() []model.TagRecord {
	var out []model.TagRecord
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

type testDeps struct {
	objects    *fakeObjects
	images     *fakeImages
	ocr        *fakeOCR
	transcribe *fakeTranscriber
	entities   *fakeEntities
	sink       *fakeSink
}

func newTestEnricher() (*Enricher, *testDeps) {
	d := &testDeps{
		objects:    &fakeObjects{texts: map[string]string{}},
		images:     &fakeImages{},
		ocr:        &fakeOCR{},
		transcribe: &fakeTranscriber{},
		entities:   &fakeEntities{},
		sink:       &fakeSink{},
	}
	e := NewEnricher(Deps{
		Objects:    d.objects,
		Images:     d.images,
		OCR:        d.ocr,
		Transcribe: d.transcribe,
		Entities:   d.entities,
		Sink:       d.sink,
	}, poll.Config{Interval: time.Millisecond, MaxWait: 100 * time.Millisecond}, nil)
	return e, d
}

func TestRouteUnsupportedExtension(t *testing.T) {
	e, _ := newTestEnricher()
	strategy, _, err := e.Route("image.bmp")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	assert.Nil(t, strategy)
}

func TestProcessUnsupportedExtension(t *testing.T) {
	e, d := newTestEnricher()
	err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "image.bmp"})
	require.NoError(t, err, "unsupported extensions are skipped, not failed")
	assert.Empty(t, d.sink.batches)
}

func TestProcessTwiceAppendsRecords(t *testing.T) {
	e, d := newTestEnricher()
	d.images.labels = []model.Label{{Name: "Pill", Confidence: 95}}
	item := model.WorkItem{Bucket: "b", Key: "photo.jpg"}

	require.NoError(t, e.Process(context.Background(), item))
	require.NoError(t, e.Process(context.Background(), item))

	// Records have no natural key, so a redelivered item writes a second
	// batch with fresh ids rather than overwriting the first.
	require.Len(t, d.sink.batches, 2)
	recs := d.sink.all()
	require.Len(t, recs, 2)
	assert.Equal(t, recs[0].Tag, recs[1].Tag)
	assert.NotEqual(t, recs[0].RecordID, recs[1].RecordID)
}

func TestProcessImage(t *testing.T) {
	t.Run("labels and text only without a person", func(t *testing.T) {
		e, d := newTestEnricher()
		d.images.labels = []model.Label{{Name: "Pill", Confidence: 95}}
		d.images.lines = []model.TextLine{{Text: "RX-500", Confidence: 90}}

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "photo.jpg"})
		require.NoError(t, err)
		assert.Equal(t, 0, d.images.facesCalls)

		recs := d.sink.all()
		require.Len(t, recs, 2)
		assert.Equal(t, constants.OpDetectLabel, recs[0].Operation)
		assert.Equal(t, constants.OpDetectText, recs[1].Operation)
		require.Len(t, d.sink.batches, 1, "one work item produces one persisted batch")
	})

	t.Run("a high-confidence person triggers face analysis", func(t *testing.T) {
		e, d := newTestEnricher()
		d.images.labels = []model.Label{{Name: "Person", Confidence: 92}}
		d.images.faces = []model.Face{{Confidence: 99, Emotions: []model.Emotion{{Type: "CALM", Confidence: 80}}}}

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "photo.png"})
		require.NoError(t, err)
		assert.Equal(t, 1, d.images.facesCalls)

		recs := d.sink.all()
		require.Len(t, recs, 2)
		assert.Equal(t, constants.OpDetectFace, recs[1].Operation)
		assert.Equal(t, "CALM", recs[1].Tag)
	})
}

func TestProcessTextFile(t *testing.T) {
	t.Run("entities from stored text", func(t *testing.T) {
		e, d := newTestEnricher()
		d.objects.texts["b/notes.txt"] = "patient reports headache"
		d.entities.entities = []model.Entity{{Text: "headache", Score: 0.97, Category: constants.CategoryCondition}}

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "notes.txt", DocumentID: "9"})
		require.NoError(t, err)

		recs := d.sink.all()
		require.Len(t, recs, 1)
		assert.Equal(t, constants.AssetTypeText, recs[0].AssetType)
		assert.Equal(t, "headache", recs[0].Tag)
		assert.Equal(t, "9", recs[0].DocumentID)
	})

	t.Run("empty text produces no detection calls", func(t *testing.T) {
		e, d := newTestEnricher()
		d.objects.texts["b/empty.txt"] = ""

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "empty.txt"})
		require.NoError(t, err)
		assert.Equal(t, 0, d.entities.calls)
		assert.Empty(t, d.sink.batches)
	})

	t.Run("long text is truncated by characters", func(t *testing.T) {
		e, d := newTestEnricher()
		d.objects.texts["b/long.txt"] = strings.Repeat("é", entityTextLimit+50)

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "long.txt"})
		require.NoError(t, err)
		assert.Equal(t, entityTextLimit, len([]rune(d.entities.gotText)))
	})
}

func TestProcessPDF(t *testing.T) {
	t.Run("lines join with newlines once the job succeeds", func(t *testing.T) {
		e, d := newTestEnricher()
		d.ocr.checks = []model.OCRCheck{
			{Phase: model.JobPending},
			{Phase: model.JobSucceeded, Lines: []string{"Discharge Summary", "Follow up in 2 weeks"}},
		}
		d.entities.entities = []model.Entity{{Text: "follow up", Score: 0.5, Category: constants.CategoryTestProcedure}}

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "report.pdf"})
		require.NoError(t, err)
		assert.Equal(t, "Discharge Summary\nFollow up in 2 weeks", d.entities.gotText)

		recs := d.sink.all()
		require.Len(t, recs, 1)
		assert.Equal(t, constants.AssetTypePDF, recs[0].AssetType)
	})

	t.Run("a failed job writes nothing", func(t *testing.T) {
		e, d := newTestEnricher()
		d.ocr.checks = []model.OCRCheck{{Phase: model.JobFailed}}

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "report.pdf"})
		assert.Error(t, err)
		assert.Empty(t, d.sink.batches)
	})
}

func TestProcessAudio(t *testing.T) {
	transcriptJSON := `{"results":{"transcripts":[{"transcript":"patient is doing well"}]}}`

	t.Run("transcript runs through entity detection and is cleaned up", func(t *testing.T) {
		e, d := newTestEnricher()
		e.newJobName = func() string { return "job-abc" }
		d.transcribe.check = model.TranscriptionCheck{Phase: model.JobSucceeded, OutputKey: "job-abc.json"}
		d.objects.texts["b/job-abc.json"] = transcriptJSON
		d.entities.entities = []model.Entity{{Text: "well", Score: 0.4, Category: constants.CategoryBehavioral}}

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "visit.mp3"})
		require.NoError(t, err)

		require.Len(t, d.transcribe.started, 1)
		req := d.transcribe.started[0]
		assert.Equal(t, "job-abc", req.JobName)
		assert.Equal(t, "en-US", req.LanguageCode)
		assert.Equal(t, "mp3", req.MediaFormat)
		assert.Equal(t, "b", req.OutputBucket)

		assert.Equal(t, "patient is doing well", d.entities.gotText)
		assert.Equal(t, []string{"b/job-abc.json"}, d.objects.deleted)

		recs := d.sink.all()
		require.Len(t, recs, 1)
		assert.Equal(t, constants.AssetTypeAudio, recs[0].AssetType)
	})

	t.Run("an empty transcript is skipped after cleanup", func(t *testing.T) {
		e, d := newTestEnricher()
		e.newJobName = func() string { return "job-empty" }
		d.transcribe.check = model.TranscriptionCheck{Phase: model.JobSucceeded, OutputKey: "job-empty.json"}
		d.objects.texts["b/job-empty.json"] = `{"results":{"transcripts":[{"transcript":""}]}}`

		err := e.Process(context.Background(), model.WorkItem{Bucket: "b", Key: "silence.wav"})
		require.NoError(t, err)
		assert.Equal(t, 0, d.entities.calls)
		assert.Empty(t, d.sink.batches)
		assert.Equal(t, []string{"b/job-empty.json"}, d.objects.deleted)
	})
}

func TestParseTranscript(t *testing.T) {
	got, err := parseTranscript([]byte(`{"results":{"transcripts":[{"transcript":"part one"},{"transcript":"part two"}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "part one part two", got)

	_, err = parseTranscript([]byte(`not json`))
	assert.Error(t, err)
}
