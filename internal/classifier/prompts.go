package classifier

import "fmt"

// maxClaimChars bounds each claim text sent to the relationship
// classifier.
const maxClaimChars = 500

// maxDocumentChars bounds the document text sent to the extraction
// capability.
const maxDocumentChars = 10000

const relationshipPromptTemplate = `Analyze the semantic relationship between these two research claims:

Claim A (ID: %s):
Text: "%s"
Type: %s

Claim B (ID: %s):
Text: "%s"
Type: %s

Determine the PRIMARY relationship type:
- CAUSAL: A causes or enables B (or vice versa)
- EVIDENTIAL: A provides evidence supporting B (or vice versa)
- TEMPORAL: A precedes B chronologically
- PREREQUISITE: B requires A to be true
- CONTRADICTORY: A and B are mutually exclusive
- REFINES: B is a more specific version of A
- NONE: No significant relationship

Return ONLY valid JSON:
{
  "relationship_type": "EVIDENTIAL",
  "direction": "A_to_B",
  "confidence": 0.85,
  "explanation": "Clear reasoning here",
  "semantic_markers": ["keyword1", "keyword2"],
  "strength": "moderate"
}

Direction options: A_to_B, B_to_A, or bidirectional
Strength options: weak, moderate, strong
`

const extractionPromptTemplate = `Extract atomic, verifiable claims from the following research document.

--- BEGIN TEXT ---
%s
--- END TEXT ---

Source: %s
Source LLM: %s

Return a JSON object with this exact structure:
{
  "claims": [
    {
      "text": "exact claim text",
      "type": "factual|statistical|causal|opinion|hypothesis",
      "confidence": 0.95,
      "evidence_type": "empirical|theoretical|anecdotal",
      "surrounding_context": "brief context around claim"
    }
  ]
}

Focus on:
- Factual assertions
- Statistical findings
- Causal relationships
- Key conclusions
- Hypotheses and predictions

Ignore:
- Boilerplate text
- References and citations
- Methodology details (unless they're claims themselves)

Output ONLY valid JSON. Extract at least 5-10 claims if the text is substantial.
`

// buildRelationshipPrompt renders the pairwise relationship prompt with
// claim texts truncated to keep token cost bounded
func buildRelationshipPrompt(a, b ClaimInput) string {
	return fmt.Sprintf(relationshipPromptTemplate,
		a.ID, truncate(a.Text, maxClaimChars), claimTypeOrUnknown(a),
		b.ID, truncate(b.Text, maxClaimChars), claimTypeOrUnknown(b),
	)
}

// buildExtractionPrompt renders the claim extraction prompt
func buildExtractionPrompt(text, sourceName, sourceLLM string) string {
	if sourceLLM == "" {
		sourceLLM = "unknown"
	}
	return fmt.Sprintf(extractionPromptTemplate,
		truncate(text, maxDocumentChars), sourceName, sourceLLM,
	)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func claimTypeOrUnknown(c ClaimInput) string {
	if c.Type == "" {
		return "unknown"
	}
	return string(c.Type)
}
