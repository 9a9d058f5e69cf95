package enricher

import (
	"fmt"
	"strings"
)

const promptTemplate = `### Past scam case:
%s

### Keywords detected in the current chat:
%s%s

### Task:
Find the key words or phrases in the past scam case text that are semantically similar or related to the current keywords.

### Rules:
1. Extract only 2-4 keywords
2. Separate them with commas
3. Return only the keywords, no explanation
4. Prefer words central to phishing or scams
5. Include words with similar meaning (e.g. site -> website, points -> rewards)

Extracted keywords:`

func buildPrompt(req Request) string {
	context := ""
	if len(req.Sentences) > 0 {
		context = "\n\nReference - original sentences detected in the user's chat:\n" + strings.Join(req.Sentences, "\n")
	}
	return fmt.Sprintf(promptTemplate, req.CaseContent, req.Keywords, context)
}

var separators = strings.NewReplacer("，", ",", "、", ",", "\n", ",", ";", ",")

// normalize reduces model output to at most max comma-separated keywords.
func normalize(output string, max int) string {
	parts := strings.Split(separators.Replace(output), ",")

	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		keyword := strings.Trim(strings.TrimSpace(part), "\"'`*-•· ")
		if len(keyword) == 0 {
			continue
		}
		keywords = append(keywords, keyword)
		if max > 0 && len(keywords) == max {
			break
		}
	}

	return strings.Join(keywords, ", ")
}

// Truncate returns the first n characters of content.
func Truncate(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n])
}
