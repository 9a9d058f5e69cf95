package storer

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type History struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	ImageUrl    string
	RawText     string
	RiskScore   int
	RiskLevel   string
	Description string
	CreatedAt   time.Time
}

type Finding struct {
	Id               int64
	HistoryId        uuid.UUID
	PatternType      string
	DetectedSentence string
	Keyword          string
	PatternScore     int
}

type Match struct {
	HistoryId     uuid.UUID
	CaseId        uuid.UUID
	Similarity    float64
	Rank          int
	HighlightUser string
	HighlightCase string
}

// RoundScore rounds a similarity to the two decimals kept at rest.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
