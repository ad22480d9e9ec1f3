package extract

import (
	"encoding/json"
	"fmt"
)

// systemPrompt carries the merge-by-identity, canonicalization, and
// strict-JSON rules for the extraction call.
const systemPrompt = `You are a strict information extractor. Use only provided snippets/URLs. Do not invent data.
Rules:
- Merge records that refer to the same person across sources (match by LinkedIn, email, phone, or strong name+employer).
- Consolidate synonymous professions into a single canonical label per person (e.g., "Software Developer" and "Software Engineer" -> "Software Engineer").
- Put the primary role first in "professions". Keep all arrays unique, de-duplicated, and concise.
- Normalize institutions and locations (e.g., use full university names; map common abbreviations like NYC -> New York, USA; USA/US/United States -> United States; UK/United Kingdom -> United Kingdom; Bay Area -> San Francisco Bay Area, USA).
- Prefer direct, canonical URLs (e.g., https://www.linkedin.com/in/...); avoid redirector/tracking URLs.
- When a snippet mentions a person tied to an organization-focused result (founder, owner, director, "also known as", etc.), extract that individual even if the title is about the venue/company. Use snippet context to determine the person's canonical name and relation.
- Capture alias or nickname variants mentioned in snippets and map them to the same candidate when evidence shows they refer to the same person.
- For each candidate, include ALL relevant URLs from the search results where that person (or their alias) is mentioned. Always populate the sources array with the provider and url fields.
- If unknown, output null or omit.
- Never fabricate information.
Output only raw JSON as a single object. No markdown, no code fences, no additional text.`

const userPromptFormat = `From these search results, extract real people and return STRICT JSON per the schema.
Provide candidates even when a result primarily describes an organization but the snippet supplies a person clearly linked to the query. Use snippet context to resolve aliases and confirm relevance.

Schema:
{
  "candidates": [{
    "fullName": "string",
    "firstName": "string|null",
    "middleName": "string|null",
    "lastName": "string|null",
    "professions": ["string"],
    "employers": ["string"],
    "education": ["string"],
    "emails": ["string"],
    "phones": ["string"],
    "social": { "instagram": "string|null", "facebook": "string|null", "twitter": "string|null", "linkedin": "string|null", "tiktok": "string|null" },
    "age": "number|null",
    "gender": "male|female|other|null",
    "locations": ["string"],
    "relatedPeople": [{"fullName":"string","relation":"string|null","linkedin":"string|null"}],
    "sources": [{"provider":"perplexity|brave","url":"string","note":"string"}],
    "confidence": 0.0-1.0
  }]
}

Rules:
- Merge duplicates across sources into one candidate.
- Canonicalize professions (avoid near-duplicate titles like "Software Developer" vs "Software Engineer").
- Use direct URLs only; if a LinkedIn handle is present, convert to full LinkedIn profile URL.
- Every candidate MUST have at least one source entry with provider and url.

Strictly return only the JSON object. No backticks or explanations.
INPUT: %s`

// BuildUserPrompt renders the compacted hits into the extraction prompt.
func BuildUserPrompt(hits []CompactHit) (string, error) {
	payload, err := json.Marshal(hits)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(userPromptFormat, string(payload)), nil
}
