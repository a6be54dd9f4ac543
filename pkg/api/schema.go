package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const reviewsPageSchemaJSON = `{
  "type": "object",
  "properties": {
    "reviews": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": { "type": "integer" },
          "location": { "type": ["string", "null"] },
          "date": { "type": ["string", "null"] },
          "text": { "type": ["string", "null"] },
          "rating": { "type": ["integer", "null"] },
          "sentiment": { "type": ["string", "null"] },
          "topic": { "type": ["string", "null"] },
          "reply": { "type": ["string", "null"] }
        }
      }
    },
    "pagination": {
      "type": ["object", "null"],
      "properties": {
        "page": { "type": "integer" },
        "total": { "type": "integer" },
        "total_pages": { "type": "integer" },
        "has_prev": { "type": "boolean" },
        "has_next": { "type": "boolean" }
      }
    }
  }
}`

const analyticsSchemaJSON = `{
  "type": "object",
  "properties": {
    "total_reviews": { "type": ["integer", "null"] },
    "avg_rating": { "type": ["number", "null"] },
    "sentiment": {
      "type": ["object", "null"],
      "additionalProperties": { "type": "integer" }
    },
    "topics": {
      "type": ["object", "null"],
      "additionalProperties": { "type": "integer" }
    }
  }
}`

const suggestedReplySchemaJSON = `{
  "type": "object",
  "required": ["reply"],
  "properties": {
    "reply": { "type": "string" }
  }
}`

var (
	reviewsPageSchema    = mustSchema("reviews page", reviewsPageSchemaJSON)
	analyticsSchema      = mustSchema("analytics", analyticsSchemaJSON)
	suggestedReplySchema = mustSchema("suggested reply", suggestedReplySchemaJSON)
)

func mustSchema(name, doc string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("invalid %s schema: %v", name, err))
	}
	return s
}

// validateBody checks a response body against schema and returns a
// readable summary of the violations
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var issues []string
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return fmt.Errorf("invalid response: %s", strings.Join(issues, "; "))
}
