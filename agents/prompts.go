package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/citesearch/core"
)

const verdictResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "relevant": {
      "type": "boolean"
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    },
    "reasoning": {
      "type": "string"
    }
  },
  "required": ["relevant", "confidence"],
  "additionalProperties": false
}`

const filterPromptTemplate = `You are a citation relevance evaluator. Determine whether the given chunk is relevant to the user's query.

Evaluate:
1. Does the chunk directly address the query topic?
2. Is the information substantive, not just a tangential mention?
3. Would this be a good citation for someone writing about the query topic?
4. Is the source credible and relevant?

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Confidence is a number from 0.0 (certainly irrelevant) to 1.0 (certainly relevant).
- Keep reasoning to one short sentence.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Query: transformer attention mechanisms
Chunk: "Self-attention allows the model to weigh the relevance of each token against every other token in the sequence."
Output:
{"relevant": true, "confidence": 0.92, "reasoning": "Directly explains the attention mechanism named in the query."}

Example:
Query: transformer attention mechanisms
Chunk: "The study surveyed 200 undergraduates about their sleep habits."
Output:
{"relevant": false, "confidence": 0.05, "reasoning": "Sleep survey content is unrelated to the query topic."}`

const rankOrderResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "ranked_ids": {
      "type": "array",
      "items": {
        "type": "integer",
        "minimum": 0
      }
    },
    "reasoning": {
      "type": "string"
    }
  },
  "required": ["ranked_ids"],
  "additionalProperties": false
}`

const rankPromptTemplate = `You are a citation ranking specialist. Rank the given chunks by their importance and relevance to the user's query.

Rank by:
1. Direct relevance to the query (primary factor).
2. Strength and quality of evidence.
3. Source credibility and impact.
4. Recency, preferring newer work unless historical context is needed.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- ranked_ids must contain every chunk id exactly once, most important first.
- Ids are the integer ids given in the input, nothing else.
- Keep reasoning to one short sentence.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: 3 chunks with ids 0, 1, 2
Output:
{"ranked_ids": [2, 0, 1], "reasoning": "Chunk 2 addresses the query directly with strong recent evidence."}`

const formatPromptTemplate = `You are a citation formatting specialist. Format the given chunks as professional citations ready to paste into a document.

Requirements:
1. Proper %s citation style formatting.
2. Include relevance indicators using stars out of five (for example %s for high relevance).
3. Group chunks from the same source together.
4. Include key quotes from the text%s.
5. Separate entries with a line of %s characters for readability.

Output the formatted citations as plain text. Do not include any preamble or commentary outside the citations themselves.`

func filterSystemPrompt() string {
	return fmt.Sprintf(filterPromptTemplate, verdictResponseSchema)
}

func rankSystemPrompt() string {
	return fmt.Sprintf(rankPromptTemplate, rankOrderResponseSchema)
}

func formatSystemPrompt(style core.CitationStyle, includeContext bool) string {
	quoteNote := ""
	if !includeContext {
		quoteNote = " only when essential"
	}
	return fmt.Sprintf(formatPromptTemplate, style, "★★★★☆", quoteNote, "─")
}

func filterUserPrompt(query, queryContext string, chunk core.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	if queryContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", queryContext)
	}
	fmt.Fprintf(&b, "\nChunk Text:\n%s\n", chunk.Text)
	fmt.Fprintf(&b, "\nSource: %s (%d)", chunk.Source.Title, chunk.Source.Year)
	return b.String()
}

// rankEntry is the per-chunk summary sent to the ranking model. Text is
// truncated so large batches stay inside the model context window.
type rankEntry struct {
	ID              int     `json:"id"`
	TextPreview     string  `json:"text_preview"`
	Source          string  `json:"source"`
	Year            int     `json:"year"`
	SimilarityScore float64 `json:"similarity_score"`
}

const rankPreviewLength = 200

func rankUserPrompt(query, queryContext string, chunks []core.Chunk) (string, error) {
	entries := make([]rankEntry, len(chunks))
	for i, chunk := range chunks {
		preview := chunk.Text
		if len(preview) > rankPreviewLength {
			preview = preview[:rankPreviewLength]
		}
		entries[i] = rankEntry{
			ID:              i,
			TextPreview:     preview,
			Source:          chunk.Source.Title,
			Year:            chunk.Source.Year,
			SimilarityScore: chunk.SimilarityScore,
		}
	}

	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	if queryContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", queryContext)
	}
	fmt.Fprintf(&b, "\nChunks to rank:\n%s", payload)
	return b.String(), nil
}

type formatEntry struct {
	Rank      int          `json:"rank"`
	Text      string       `json:"text"`
	Source    formatSource `json:"source"`
	Relevance float64      `json:"relevance"`
}

type formatSource struct {
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Year     int      `json:"year"`
	Citation string   `json:"citation"`
}

func formatUserPrompt(chunks []core.RankedChunk) (string, error) {
	entries := make([]formatEntry, len(chunks))
	for i, rc := range chunks {
		entries[i] = formatEntry{
			Rank: rc.Rank,
			Text: rc.Chunk.Text,
			Source: formatSource{
				Title:    rc.Chunk.Source.Title,
				Authors:  rc.Chunk.Source.Authors,
				Year:     rc.Chunk.Source.Year,
				Citation: rc.Chunk.Source.Citation,
			},
			Relevance: rc.Chunk.RelevanceScore,
		}
	}

	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Chunks to format:\n%s", payload), nil
}
