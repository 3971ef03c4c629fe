package usecase

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starkspan-backend/internal/domain/entity"
)

type fakeRasterizer struct {
	err    error
	called bool
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, pdfPath, outPath string) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte("page"), 0o600)
}

type fakeNormalizer struct {
	err    error
	called bool
}

func (f *fakeNormalizer) Normalize(srcPath, dstPath string) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dstPath, []byte("normalized"), 0o600)
}

type fakeExtractor struct {
	text   string
	err    error
	called bool
}

func (f *fakeExtractor) ExtractText(ctx context.Context, imagePath string) (string, error) {
	f.called = true
	return f.text, f.err
}

type fakeCache struct {
	hit   *entity.QuoteResult
	saved chan *entity.QuoteResult
}

func newFakeCache(hit *entity.QuoteResult) *fakeCache {
	return &fakeCache{hit: hit, saved: make(chan *entity.QuoteResult, 1)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (*entity.QuoteResult, error) {
	return f.hit, nil
}

func (f *fakeCache) Save(ctx context.Context, key string, res *entity.QuoteResult) error {
	f.saved <- res
	return nil
}

func newTestOrchestrator(rast *fakeRasterizer, norm *fakeNormalizer, ext *fakeExtractor, cache *fakeCache) *Orchestrator {
	o := &Orchestrator{
		materials: entity.DefaultMaterials(),
		params:    PriceParams{MachiningRatePerHour: 60},
		log:       zerolog.Nop(),
	}
	if rast != nil {
		o.rasterizer = rast
	}
	if norm != nil {
		o.normalizer = norm
	}
	if ext != nil {
		o.extractor = ext
	}
	if cache != nil {
		o.cache = cache
	}
	return o
}

func TestExecuteFilenameOnly(t *testing.T) {
	o := newTestOrchestrator(nil, nil, nil, nil)

	res, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:         "Ø20x100.pdf",
		MaterialKey:      "aluminium",
		Quantity:         1,
		MachineTimeHours: 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.KindCylinder, res.Geometry)
	assert.Equal(t, entity.SourceFilenameStrict, res.GeometrySource)
	require.NotNil(t, res.Dims.DMM)
	assert.Equal(t, 20.0, *res.Dims.DMM)
	require.NotNil(t, res.VolumeCm3)
	assert.Equal(t, 31.42, *res.VolumeCm3)
	require.NotNil(t, res.WeightKg)
	assert.Equal(t, 0.08, *res.WeightKg)
	assert.Equal(t, 30.59, res.TotalPerPiece)
	assert.False(t, res.NeedsManual)
}

func TestExecutePDFRunsFullPipeline(t *testing.T) {
	rast := &fakeRasterizer{}
	norm := &fakeNormalizer{}
	ext := &fakeExtractor{text: "ø 20 x 100 mm"}
	o := newTestOrchestrator(rast, norm, ext, nil)

	res, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:         "zeichnung.pdf",
		Data:             []byte("%PDF-1.4"),
		ContentType:      "application/pdf",
		Quantity:         1,
		MachineTimeHours: 0.5,
	})
	require.NoError(t, err)

	assert.True(t, rast.called)
	assert.True(t, norm.called)
	assert.True(t, ext.called)
	assert.Equal(t, entity.KindCylinder, res.Geometry)
	assert.Equal(t, entity.SourceOCR, res.GeometrySource)
	assert.False(t, res.NeedsManual)
}

func TestExecuteImageSkipsRasterizer(t *testing.T) {
	rast := &fakeRasterizer{}
	norm := &fakeNormalizer{}
	ext := &fakeExtractor{text: "100 x 50 x 10"}
	o := newTestOrchestrator(rast, norm, ext, nil)

	res, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:    "scan.png",
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
	})
	require.NoError(t, err)

	assert.False(t, rast.called)
	assert.Equal(t, entity.KindBlock, res.Geometry)
}

func TestExecuteUnsupportedInputStopsBeforePipeline(t *testing.T) {
	rast := &fakeRasterizer{}
	norm := &fakeNormalizer{}
	ext := &fakeExtractor{}
	o := newTestOrchestrator(rast, norm, ext, nil)

	_, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:    "part.step",
		Data:        []byte("solid"),
		ContentType: "application/octet-stream",
	})
	require.ErrorIs(t, err, entity.ErrUnsupportedInput)
	assert.False(t, rast.called)
	assert.False(t, norm.called)
	assert.False(t, ext.called)
}

func TestExecuteNoRasterizerConfigured(t *testing.T) {
	norm := &fakeNormalizer{}
	ext := &fakeExtractor{}
	o := newTestOrchestrator(nil, norm, ext, nil)

	_, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:    "zeichnung.pdf",
		Data:        []byte("%PDF-1.4"),
		ContentType: "application/pdf",
	})
	require.ErrorIs(t, err, entity.ErrRasterizationUnavailable)
	assert.False(t, ext.called)
}

func TestExecuteRasterizationFailureIsTyped(t *testing.T) {
	rast := &fakeRasterizer{err: errors.New("mupdf exploded")}
	o := newTestOrchestrator(rast, &fakeNormalizer{}, &fakeExtractor{}, nil)

	_, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:    "zeichnung.pdf",
		Data:        []byte("%PDF-1.4"),
		ContentType: "application/pdf",
	})
	require.ErrorIs(t, err, entity.ErrRasterization)
}

func TestExecuteExtractionFailureIsTyped(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("tesseract crashed")}
	o := newTestOrchestrator(&fakeRasterizer{}, &fakeNormalizer{}, ext, nil)

	_, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:    "scan.png",
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
	})
	require.ErrorIs(t, err, entity.ErrExtraction)
}

func TestExecuteEmptyExtractionIsNotAFailure(t *testing.T) {
	ext := &fakeExtractor{text: ""}
	o := newTestOrchestrator(&fakeRasterizer{}, &fakeNormalizer{}, ext, nil)

	res, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:         "scan.png",
		Data:             []byte("png-bytes"),
		ContentType:      "image/png",
		MachineTimeHours: 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.KindUnknown, res.Geometry)
	assert.True(t, res.NeedsManual)
	assert.Nil(t, res.VolumeCm3)
	assert.Nil(t, res.WeightKg)
	assert.Nil(t, res.MaterialPrice)
	// Machining is still billable even without a recognized geometry.
	assert.Equal(t, 30.0, res.Machining)
}

func TestExecuteKeepsExplicitZeroMachineTime(t *testing.T) {
	o := newTestOrchestrator(nil, nil, nil, nil)

	// Zero hours is a legitimate value (raw stock, no machining). The
	// absent-field default lives in the delivery layer, not here.
	res, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename: "Ø20x100",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Machining)
	assert.Equal(t, 31.42, *res.VolumeCm3)
}

func TestExecuteFallsBackToFilenameWhenOCRFails(t *testing.T) {
	ext := &fakeExtractor{text: "mm m x"}
	o := newTestOrchestrator(&fakeRasterizer{}, &fakeNormalizer{}, ext, nil)

	res, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:    "Platte_100x50x10.png",
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.KindBlock, res.Geometry)
	assert.Equal(t, entity.SourceFilenameStrict, res.GeometrySource)
	assert.False(t, res.NeedsManual)
}

func TestExecuteUnknownMaterialFallsBack(t *testing.T) {
	o := newTestOrchestrator(nil, nil, nil, nil)

	res, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:    "Ø20x100",
		MaterialKey: "unobtainium",
	})
	require.NoError(t, err)

	assert.Equal(t, "aluminium", res.Material)
	assert.Equal(t, 7.0, res.PricePerKg)
	assert.False(t, res.NeedsManual)
}

func TestExecuteAppliesDefaults(t *testing.T) {
	o := newTestOrchestrator(nil, nil, nil, nil)

	res, err := o.Execute(context.Background(), entity.QuoteRequest{
		Filename:         "Ø20x100",
		Quantity:         0,
		MachineTimeHours: -3,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Quantity)
	assert.Equal(t, 30.0, res.Machining) // 0.5h * 60
}

func TestExecuteCacheHit(t *testing.T) {
	cached := &entity.QuoteResult{ReceivedFile: "Ø20x100", Geometry: entity.KindCylinder}
	cache := newFakeCache(cached)
	o := newTestOrchestrator(nil, nil, nil, cache)

	res, err := o.Execute(context.Background(), entity.QuoteRequest{Filename: "Ø20x100"})
	require.NoError(t, err)

	assert.True(t, res.Cached)
	assert.Equal(t, entity.KindCylinder, res.Geometry)
}

func TestExecuteSavesToCacheInBackground(t *testing.T) {
	cache := newFakeCache(nil)
	o := newTestOrchestrator(nil, nil, nil, cache)

	_, err := o.Execute(context.Background(), entity.QuoteRequest{Filename: "Ø20x100"})
	require.NoError(t, err)

	select {
	case saved := <-cache.saved:
		assert.Equal(t, entity.KindCylinder, saved.Geometry)
	case <-time.After(2 * time.Second):
		t.Fatal("quote was never saved to the cache")
	}
}
