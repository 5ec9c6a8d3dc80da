// Package schemas holds the embedded JSON Schemas for judge responses.
package schemas

// EvaluationSchemaJSON validates an assertion-evaluation reply.
const EvaluationSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Judge evaluation response",
  "type": "object",
  "required": ["results"],
  "additionalProperties": false,
  "properties": {
    "results": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["assertion_id", "answer", "confidence", "evidence"],
        "additionalProperties": false,
        "properties": {
          "assertion_id": {
            "type": "string",
            "pattern": "^[A-Z][0-9]+$"
          },
          "answer": {
            "type": "string",
            "enum": ["yes", "no"]
          },
          "confidence": {
            "type": "integer",
            "minimum": 1,
            "maximum": 5
          },
          "evidence": {
            "type": "string",
            "minLength": 1
          }
        }
      }
    }
  }
}`

// RankingSchemaJSON validates a holistic style-ranking reply.
const RankingSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Judge ranking response",
  "type": "object",
  "required": ["ranking"],
  "additionalProperties": false,
  "properties": {
    "ranking": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["style", "rank"],
        "additionalProperties": true,
        "properties": {
          "style": {
            "type": "string",
            "minLength": 1
          },
          "rank": {
            "type": "integer",
            "minimum": 1
          },
          "reason": {
            "type": "string"
          }
        }
      }
    }
  }
}`
