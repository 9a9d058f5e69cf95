package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/w-h-a/redflag/recognizer"
	"github.com/w-h-a/redflag/storer"
)

// UnitOfWork is the only writer of analysis records, findings and matches.
// Every write goes through one storer transaction owned by the caller.
type UnitOfWork struct {
	tx storer.Tx
}

// SaveHistory inserts the owning user if unseen, then the analysis record.
func (u *UnitOfWork) SaveHistory(ctx context.Context, userId uuid.UUID, imageUrl string, result recognizer.Result) (storer.History, error) {
	if err := u.tx.UpsertUser(ctx, userId); err != nil {
		return storer.History{}, err
	}

	record, err := u.tx.SaveHistory(ctx, storer.History{
		Id:          uuid.New(),
		UserId:      userId,
		ImageUrl:    imageUrl,
		RawText:     result.OcrText,
		RiskScore:   result.RiskScore,
		RiskLevel:   result.RiskLevel,
		Description: result.Description,
	})
	if err != nil {
		return storer.History{}, err
	}

	return record, nil
}

func (u *UnitOfWork) SaveFindings(ctx context.Context, record storer.History, patterns []recognizer.Pattern) error {
	findings := make([]storer.Finding, 0, len(patterns))
	for _, p := range patterns {
		findings = append(findings, storer.Finding{
			HistoryId:        record.Id,
			PatternType:      p.PatternType,
			DetectedSentence: p.DetectedSentence,
			Keyword:          p.Keyword,
			PatternScore:     p.PatternScore,
		})
	}

	if err := u.tx.SaveFindings(ctx, record.Id, findings); err != nil {
		return fmt.Errorf("save %d findings: %w", len(findings), err)
	}

	return nil
}

func (u *UnitOfWork) SaveMatches(ctx context.Context, record storer.History, matches []storer.Match) error {
	for i := range matches {
		matches[i].HistoryId = record.Id
	}

	if err := u.tx.SaveMatches(ctx, record.Id, matches); err != nil {
		return fmt.Errorf("save %d matches: %w", len(matches), err)
	}

	return nil
}

func NewUnitOfWork(tx storer.Tx) *UnitOfWork {
	return &UnitOfWork{tx: tx}
}
