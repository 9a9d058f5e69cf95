package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/w-h-a/redflag/enricher"
	"github.com/w-h-a/redflag/imagestore"
	"github.com/w-h-a/redflag/recognizer"
	"github.com/w-h-a/redflag/retriever"
	"github.com/w-h-a/redflag/storer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/w-h-a/redflag/internal/service/analysis"

type UploadResult struct {
	AnalysisId uuid.UUID `json:"analysisId"`
	ImageUrl   string    `json:"imageUrl"`
}

type Service struct {
	options    Options
	recognizer recognizer.Recognizer
	retriever  retriever.Retriever
	enricher   *enricher.Enricher
	images     imagestore.ImageStore
	storer     storer.Storer
	tracer     trace.Tracer
}

// Upload runs the whole pipeline for one screenshot. External calls happen
// first; the record, its findings and its matches are then written in one
// transaction, so a failure anywhere leaves nothing behind.
func (s *Service) Upload(ctx context.Context, userId uuid.UUID, upload Upload) (result UploadResult, err error) {
	log := s.options.Logger.With(zap.Stringer("userId", userId), zap.String("filename", upload.Filename))

	if err := s.validate(ctx, upload); err != nil {
		log.Info("upload rejected", zap.Error(err))
		return UploadResult{}, err
	}

	data, err := readImage(upload)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: read upload: %v", recognizer.ErrRecognitionFailed, err)
	}
	upload.Size = int64(len(data))
	if err := Validate(upload); err != nil {
		log.Info("upload rejected after read", zap.Error(err))
		return UploadResult{}, err
	}

	key, imageUrl, err := s.storeImage(ctx, upload, data)
	if err != nil {
		return UploadResult{}, err
	}
	log.Info("image stored", zap.String("key", key))

	defer func() {
		if err == nil {
			return
		}
		cleanup, cancel := s.withTimeout(context.WithoutCancel(ctx))
		defer cancel()
		if derr := s.images.Delete(cleanup, key); derr != nil && !errors.Is(derr, imagestore.ErrNotFound) {
			log.Warn("failed to delete image of failed upload", zap.String("key", key), zap.Error(derr))
		}
	}()

	recognized, err := s.recognize(ctx, upload.Filename, data)
	if err != nil {
		log.Error("recognition failed", zap.Error(err))
		return UploadResult{}, err
	}
	log.Info("recognition complete",
		zap.Int("riskScore", recognized.RiskScore),
		zap.String("riskLevel", recognized.RiskLevel),
		zap.Int("patterns", len(recognized.Patterns)),
		zap.Int("dimensions", len(recognized.Embedding)),
	)

	candidates, err := s.similar(ctx, recognized.Embedding)
	if err != nil {
		log.Error("similar case retrieval failed", zap.Error(err))
		return UploadResult{}, err
	}

	matches := s.enrich(ctx, candidates, recognized)

	record, err := s.persist(ctx, userId, imageUrl, recognized, matches)
	if err != nil {
		log.Error("failed to persist analysis", zap.Error(err))
		return UploadResult{}, err
	}

	log.Info("analysis complete",
		zap.Stringer("analysisId", record.Id),
		zap.Int("matches", len(matches)),
	)

	return UploadResult{AnalysisId: record.Id, ImageUrl: imageUrl}, nil
}

func (s *Service) validate(ctx context.Context, upload Upload) error {
	_, span := s.tracer.Start(ctx, "analysis.validate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("upload.size", upload.Size),
		attribute.String("upload.content_type", upload.ContentType),
	)

	err := Validate(upload)
	fail(span, err)

	return err
}

func (s *Service) storeImage(ctx context.Context, upload Upload, data []byte) (string, string, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.store_image")
	defer span.End()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := imagestore.NewKey(upload.Filename, upload.ContentType)

	url, err := s.images.Put(ctx, key, mediaType(upload.ContentType), data)
	if err != nil {
		fail(span, err)
		return "", "", fmt.Errorf("store image: %w", err)
	}

	return key, url, nil
}

func (s *Service) recognize(ctx context.Context, filename string, data []byte) (recognizer.Result, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.recognize")
	defer span.End()

	result, err := s.recognizer.Recognize(ctx, filename, data)
	if err != nil {
		fail(span, err)
		if !errors.Is(err, recognizer.ErrRecognitionFailed) {
			err = fmt.Errorf("%w: %v", recognizer.ErrRecognitionFailed, err)
		}
		return recognizer.Result{}, err
	}

	span.SetAttributes(attribute.Int("risk.score", result.RiskScore))

	return result, nil
}

func (s *Service) similar(ctx context.Context, embedding []float32) ([]Candidate, error) {
	if len(embedding) == 0 {
		s.options.Logger.Warn("recognition returned no embedding; skipping similar case search")
		return nil, nil
	}

	ctx, span := s.tracer.Start(ctx, "analysis.retrieve")
	defer span.End()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	neighbors, err := s.retriever.Search(ctx, embedding, s.options.MatchLimit)
	if err != nil {
		fail(span, err)
		return nil, fmt.Errorf("retrieve similar cases: %w", err)
	}

	if len(neighbors) == 0 {
		s.options.Logger.Warn("no similar cases found; is the case catalog seeded?")
		return nil, nil
	}

	candidates := rank(neighbors, s.options.MatchLimit)

	span.SetAttributes(attribute.Int("matches", len(candidates)))

	for _, c := range candidates {
		s.options.Logger.Debug("similar case",
			zap.Int("rank", c.Rank),
			zap.Stringer("caseId", c.CaseId),
			zap.Float64("distance", c.Distance),
			zap.Float64("similarity", c.Similarity),
		)
	}

	return candidates, nil
}

func (s *Service) enrich(ctx context.Context, candidates []Candidate, recognized recognizer.Result) []storer.Match {
	if len(candidates) == 0 {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "analysis.enrich")
	defer span.End()

	highlightUser := strings.Join(recognized.Keywords(), ", ")
	sentences := recognized.Sentences()

	highlights := make([]string, len(candidates))

	highlight := func(i int) {
		highlights[i] = s.enricher.Highlight(ctx, enricher.Request{
			CaseContent: candidates[i].Content,
			Keywords:    highlightUser,
			Sentences:   sentences,
		})
	}

	if s.options.HighlightConcurrency > 1 {
		var g errgroup.Group
		g.SetLimit(s.options.HighlightConcurrency)
		for i := range candidates {
			g.Go(func() error {
				highlight(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range candidates {
			highlight(i)
		}
	}

	matches := make([]storer.Match, 0, len(candidates))
	for i, c := range candidates {
		matches = append(matches, storer.Match{
			CaseId:        c.CaseId,
			Similarity:    c.Similarity,
			Rank:          c.Rank,
			HighlightUser: highlightUser,
			HighlightCase: highlights[i],
		})
	}

	return matches
}

func (s *Service) persist(ctx context.Context, userId uuid.UUID, imageUrl string, recognized recognizer.Result, matches []storer.Match) (storer.History, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.persist")
	defer span.End()

	tx, err := s.storer.Begin(ctx)
	if err != nil {
		fail(span, err)
		return storer.History{}, fmt.Errorf("begin analysis transaction: %w", err)
	}
	defer tx.Rollback()

	uow := NewUnitOfWork(tx)

	record, err := uow.SaveHistory(ctx, userId, imageUrl, recognized)
	if err != nil {
		fail(span, err)
		return storer.History{}, err
	}

	if err := uow.SaveFindings(ctx, record, recognized.Patterns); err != nil {
		fail(span, err)
		return storer.History{}, err
	}

	if err := uow.SaveMatches(ctx, record, matches); err != nil {
		fail(span, err)
		return storer.History{}, err
	}

	if err := tx.Commit(); err != nil {
		fail(span, err)
		return storer.History{}, fmt.Errorf("commit analysis %s: %w", record.Id, err)
	}

	span.SetAttributes(attribute.String("analysis.id", record.Id.String()))

	return record, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.Timeout > 0 {
		return context.WithTimeout(ctx, s.options.Timeout)
	}
	return context.WithCancel(ctx)
}

func fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func New(
	rec recognizer.Recognizer,
	ret retriever.Retriever,
	enr *enricher.Enricher,
	images imagestore.ImageStore,
	store storer.Storer,
	opts ...Option,
) *Service {
	options := NewOptions(opts...)

	return &Service{
		options:    options,
		recognizer: rec,
		retriever:  ret,
		enricher:   enr,
		images:     images,
		storer:     store,
		tracer:     otel.Tracer(tracerName),
	}
}
