package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/redflag/retriever"
	"github.com/w-h-a/redflag/storer"
	"go.uber.org/zap"
)

type Detail struct {
	AnalysisId            string        `json:"analysisId"`
	ImageUrl              string        `json:"imageUrl"`
	RawText               string        `json:"rawText"`
	RiskScore             int           `json:"riskScore"`
	RiskLevel             string        `json:"riskLevel"`
	Description           string        `json:"description"`
	PsychologicalPatterns []PatternView `json:"psychologicalPatterns"`
	SimilarCases          []SimilarCase `json:"similarCases"`
	CreatedAt             time.Time     `json:"createdAt"`
}

type PatternView struct {
	PatternType      string `json:"patternType"`
	DetectedSentence string `json:"detectedSentence"`
	Keyword          string `json:"keyword"`
	PatternScore     int    `json:"patternScore"`
}

type SimilarCase struct {
	MatchedRank     int     `json:"matchedRank"`
	CaseId          string  `json:"caseId"`
	Category        string  `json:"category"`
	SimilarityScore float64 `json:"similarityScore"`
	Content         string  `json:"content"`
	HighlightUser   string  `json:"highlightUser"`
	HighlightCase   string  `json:"highlightCase"`
}

// Detail assembles a stored analysis for its owner. It never writes.
func (s *Service) Detail(ctx context.Context, userId uuid.UUID, analysisId uuid.UUID) (Detail, error) {
	record, err := s.storer.GetHistory(ctx, analysisId)
	if errors.Is(err, storer.ErrNotFound) {
		return Detail{}, ErrNotFound
	}
	if err != nil {
		return Detail{}, fmt.Errorf("load analysis %s: %w", analysisId, err)
	}

	if record.UserId != userId {
		s.options.Logger.Warn("analysis read by non-owner",
			zap.Stringer("analysisId", analysisId),
			zap.Stringer("userId", userId),
		)
		return Detail{}, ErrForbidden
	}

	findings, err := s.storer.ListFindings(ctx, analysisId)
	if err != nil {
		return Detail{}, fmt.Errorf("load findings of %s: %w", analysisId, err)
	}

	matches, err := s.storer.ListMatches(ctx, analysisId)
	if err != nil {
		return Detail{}, fmt.Errorf("load matches of %s: %w", analysisId, err)
	}

	cases, err := s.cases(ctx, matches)
	if err != nil {
		return Detail{}, fmt.Errorf("load cases of %s: %w", analysisId, err)
	}

	return assemble(record, findings, matches, cases), nil
}

// cases resolves matched catalog entries through the vector store.
func (s *Service) cases(ctx context.Context, matches []storer.Match) (map[uuid.UUID]retriever.Case, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.CaseId)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	found, err := s.retriever.Get(ctx, ids)
	if err != nil {
		return nil, err
	}

	byId := make(map[uuid.UUID]retriever.Case, len(found))
	for _, c := range found {
		byId[c.Id] = c
	}

	for _, id := range ids {
		if _, ok := byId[id]; !ok {
			s.options.Logger.Warn("matched case missing from catalog", zap.Stringer("caseId", id))
		}
	}

	return byId, nil
}

func assemble(record storer.History, findings []storer.Finding, matches []storer.Match, cases map[uuid.UUID]retriever.Case) Detail {
	detail := Detail{
		AnalysisId:            record.Id.String(),
		ImageUrl:              record.ImageUrl,
		RawText:               record.RawText,
		RiskScore:             record.RiskScore,
		RiskLevel:             record.RiskLevel,
		Description:           record.Description,
		PsychologicalPatterns: make([]PatternView, 0, len(findings)),
		SimilarCases:          make([]SimilarCase, 0, len(matches)),
		CreatedAt:             record.CreatedAt,
	}

	for _, f := range findings {
		detail.PsychologicalPatterns = append(detail.PsychologicalPatterns, PatternView{
			PatternType:      f.PatternType,
			DetectedSentence: f.DetectedSentence,
			Keyword:          f.Keyword,
			PatternScore:     f.PatternScore,
		})
	}

	for _, m := range matches {
		c := cases[m.CaseId]
		detail.SimilarCases = append(detail.SimilarCases, SimilarCase{
			MatchedRank:     m.Rank,
			CaseId:          m.CaseId.String(),
			Category:        c.Category,
			SimilarityScore: m.Similarity,
			Content:         c.Content,
			HighlightUser:   m.HighlightUser,
			HighlightCase:   m.HighlightCase,
		})
	}

	sort.SliceStable(detail.SimilarCases, func(i, j int) bool {
		return detail.SimilarCases[i].MatchedRank < detail.SimilarCases[j].MatchedRank
	})

	return detail
}
