package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"starkspan-backend/internal/domain/entity"
	"starkspan-backend/internal/domain/repository"
)

// Orchestrator runs the quote pipeline: classify → (rasterize) → normalize →
// extract → parse → price. Every request gets its own temp workspace, torn
// down on all exit paths; nothing is shared between in-flight requests
// except the read-only material table.
type Orchestrator struct {
	rasterizer repository.Rasterizer // nil means the PDF route is unavailable
	extractor  repository.TextExtractor
	normalizer repository.ImageNormalizer
	cache      repository.QuoteCache // optional
	materials  entity.Materials
	params     PriceParams
	log        zerolog.Logger
}

func NewOrchestrator(
	rasterizer repository.Rasterizer,
	extractor repository.TextExtractor,
	normalizer repository.ImageNormalizer,
	cache repository.QuoteCache,
	materials entity.Materials,
	params PriceParams,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		rasterizer: rasterizer,
		extractor:  extractor,
		normalizer: normalizer,
		cache:      cache,
		materials:  materials,
		params:     params,
		log:        log,
	}
}

// Execute turns one QuoteRequest into a QuoteResult. Invalid quantity or
// machine time falls back to the documented defaults before anything runs.
func (o *Orchestrator) Execute(ctx context.Context, req entity.QuoteRequest) (*entity.QuoteResult, error) {
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	if math.IsNaN(req.MachineTimeHours) || math.IsInf(req.MachineTimeHours, 0) || req.MachineTimeHours < 0 {
		req.MachineTimeHours = 0.5
	}

	reqID := uuid.NewString()
	log := o.log.With().Str("request_id", reqID).Str("file", req.Filename).Logger()

	kind, err := ClassifyInput(req.Filename, req.ContentType, len(req.Data) > 0)
	if err != nil {
		log.Warn().Err(err).Msg("input rejected")
		return nil, err
	}

	key := cacheKey(req)
	if o.cache != nil {
		if hit, err := o.cache.Get(ctx, key); err == nil && hit != nil {
			hit.Cached = true
			log.Info().Msg("quote served from cache")
			return hit, nil
		}
	}

	hyp, err := o.recognize(ctx, reqID, kind, req, log)
	if err != nil {
		return nil, err
	}

	res := o.assemble(req, hyp)
	log.Info().
		Str("geometry", string(res.Geometry)).
		Str("source", string(res.GeometrySource)).
		Bool("needs_manual", res.NeedsManual).
		Float64("total_per_piece", res.TotalPerPiece).
		Msg("quote completed")

	if o.cache != nil {
		// The request context dies with the response; the save must not.
		go func() {
			if err := o.cache.Save(context.Background(), key, res); err != nil {
				log.Warn().Err(err).Msg("cache save failed")
			}
		}()
	}
	return res, nil
}

// recognize runs the document stages and produces a geometry hypothesis.
// Filename-only input skips straight to parsing.
func (o *Orchestrator) recognize(ctx context.Context, reqID string, kind entity.InputKind, req entity.QuoteRequest, log zerolog.Logger) (entity.Hypothesis, error) {
	if kind == entity.InputFilenameOnly {
		return ParseFilename(req.Filename), nil
	}

	workDir, err := os.MkdirTemp("", "starkspan-"+reqID+"-")
	if err != nil {
		return entity.Hypothesis{}, fmt.Errorf("%w: create workspace: %v", entity.ErrNormalization, err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "input"+strings.ToLower(filepath.Ext(req.Filename)))
	if err := os.WriteFile(inputPath, req.Data, 0o600); err != nil {
		return entity.Hypothesis{}, fmt.Errorf("%w: store upload: %v", entity.ErrNormalization, err)
	}

	imagePath := inputPath
	if kind == entity.InputPDFDocument {
		if o.rasterizer == nil {
			return entity.Hypothesis{}, fmt.Errorf("%w: no rasterizer configured", entity.ErrRasterizationUnavailable)
		}
		imagePath = filepath.Join(workDir, "page1.png")
		if err := o.rasterizer.Rasterize(ctx, inputPath, imagePath); err != nil {
			return entity.Hypothesis{}, typed(err, entity.ErrRasterization)
		}
		// The original upload is no longer needed once page 1 is rendered.
		_ = os.Remove(inputPath)
		log.Debug().Msg("rasterized first page")
	}

	normPath := filepath.Join(workDir, "normalized.png")
	if err := o.normalizer.Normalize(imagePath, normPath); err != nil {
		return entity.Hypothesis{}, typed(err, entity.ErrNormalization)
	}
	if imagePath != inputPath {
		_ = os.Remove(imagePath)
	}

	text, err := o.extractor.ExtractText(ctx, normPath)
	if err != nil {
		return entity.Hypothesis{}, typed(err, entity.ErrExtraction)
	}
	log.Debug().Int("chars", len(text)).Msg("text extracted")

	hyp := ParseOCRText(text)
	if _, unknown := hyp.Shape.(entity.Unknown); unknown {
		// Drawings often encode the dimensions in the file name too; try
		// that before degrading the quote to manual handling.
		if fb := ParseFilename(req.Filename); fb.Shape.Kind() != entity.KindUnknown {
			return fb, nil
		}
	}
	return hyp, nil
}

// assemble prices the hypothesis and builds the final payload. It cannot
// fail: absent volume or weight yields null monetary fields plus the
// escalation flag.
func (o *Orchestrator) assemble(req entity.QuoteRequest, hyp entity.Hypothesis) *entity.QuoteResult {
	matKey, mat := o.materials.Resolve(req.MaterialKey)
	bd := Price(hyp.Shape, mat, req.Quantity, req.MachineTimeHours, o.params)

	res := &entity.QuoteResult{
		ReceivedFile:   req.Filename,
		Geometry:       hyp.Shape.Kind(),
		GeometrySource: hyp.Source,
		Dims:           dimsOf(hyp.Shape),
		VolumeCm3:      bd.VolumeCm3,
		WeightKg:       bd.WeightKg,
		Material:       matKey,
		PricePerKg:     mat.PricePerKg,
		MaterialPrice:  bd.MaterialPrice,
		Machining:      bd.Machining,
		TotalPerPiece:  bd.TotalPerPiece,
		Quantity:       req.Quantity,
		TotalAll:       bd.TotalAll,
	}
	res.NeedsManual = res.Geometry == entity.KindUnknown || res.WeightKg == nil
	return res
}

func dimsOf(s entity.Shape) entity.Dims {
	switch v := s.(type) {
	case entity.Cylinder:
		return entity.Dims{DMM: f64(v.DiameterMM), LMM: f64(v.LengthMM)}
	case entity.Block:
		return entity.Dims{LMM: f64(v.LengthMM), BMM: f64(v.WidthMM), HMM: f64(v.HeightMM)}
	case entity.Plate:
		return entity.Dims{LMM: f64(v.LengthMM), BMM: f64(v.WidthMM)}
	}
	return entity.Dims{}
}

// cacheKey addresses a finished quote by everything that influences it.
func cacheKey(req entity.QuoteRequest) string {
	h := sha256.New()
	h.Write(req.Data)
	fmt.Fprintf(h, "|%s|%s|%d|%g", req.Filename, req.MaterialKey, req.Quantity, req.MachineTimeHours)
	return "quote:" + hex.EncodeToString(h.Sum(nil))
}

// typed makes sure err carries one of the pipeline sentinels so the delivery
// layer can map it; untyped collaborator errors get wrapped with the
// stage's kind.
func typed(err, sentinel error) error {
	for _, known := range []error{
		entity.ErrUnsupportedInput,
		entity.ErrRasterizationUnavailable,
		entity.ErrRasterization,
		entity.ErrNormalization,
		entity.ErrExtraction,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
