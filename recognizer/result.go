package recognizer

type Result struct {
	AnalysisId  string    `json:"analysisId,omitempty"`
	OcrText     string    `json:"ocrText"`
	RiskScore   int       `json:"riskScore"`
	RiskLevel   string    `json:"riskLevel"`
	Description string    `json:"description"`
	Patterns    []Pattern `json:"psychologicalPatterns"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

type Pattern struct {
	PatternType      string `json:"patternType"`
	DetectedSentence string `json:"detectedSentence"`
	Keyword          string `json:"keyword"`
	PatternScore     int    `json:"patternScore"`
}

// Keywords returns the non-empty keywords in detection order.
func (r Result) Keywords() []string {
	var keywords []string
	for _, p := range r.Patterns {
		if len(p.Keyword) > 0 {
			keywords = append(keywords, p.Keyword)
		}
	}
	return keywords
}

// Sentences returns the non-empty detected sentences in detection order.
func (r Result) Sentences() []string {
	var sentences []string
	for _, p := range r.Patterns {
		if len(p.DetectedSentence) > 0 {
			sentences = append(sentences, p.DetectedSentence)
		}
	}
	return sentences
}
