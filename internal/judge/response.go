package judge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/restylelab/stylebench/internal/models"
	"github.com/restylelab/stylebench/internal/rubric"
	"github.com/restylelab/stylebench/schemas"
)

// defaultPrinter formats schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var (
	evaluationSchema *jsonschema.Schema
	rankingSchema    *jsonschema.Schema
)

func init() {
	evaluationSchema = mustCompileSchema(schemas.EvaluationSchemaJSON, "evaluation.schema.json")
	rankingSchema = mustCompileSchema(schemas.RankingSchemaJSON, "ranking.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ExtractJSON pulls the JSON payload out of a model reply. Replies wrapped
// in a ```json fence yield the fenced content; bare replies come back
// trimmed as-is.
func ExtractJSON(responseText string) string {
	lines := strings.Split(responseText, "\n")
	var jsonBuffer bytes.Buffer
	inJSONBlock := false
	foundJSON := false

	for _, line := range lines {
		if !inJSONBlock && strings.TrimSpace(line) == "```json" {
			inJSONBlock = true
			foundJSON = true
			continue
		}

		if inJSONBlock && strings.TrimSpace(line) == "```" {
			break
		}

		if inJSONBlock {
			if jsonBuffer.Len() > 0 {
				jsonBuffer.WriteString("\n")
			}
			jsonBuffer.WriteString(line)
		}
	}

	if foundJSON {
		return strings.TrimSpace(jsonBuffer.String())
	}
	return strings.TrimSpace(responseText)
}

// evaluationResponse is the wire shape of an assertion-evaluation reply.
type evaluationResponse struct {
	Results []struct {
		AssertionID string `json:"assertion_id"`
		Answer      string `json:"answer"`
		Confidence  int    `json:"confidence"`
		Evidence    string `json:"evidence"`
	} `json:"results"`
}

// rankingResponse is the wire shape of a holistic ranking reply.
type rankingResponse struct {
	Ranking []struct {
		Style  string `json:"style"`
		Rank   int    `json:"rank"`
		Reason string `json:"reason"`
	} `json:"ranking"`
}

// ParseEvaluation validates and decodes a judge's evaluation reply against
// the given rubric. The reply must answer every assertion exactly once.
func ParseEvaluation(judgeName, raw string, r *rubric.Rubric) ([]models.AssertionResult, error) {
	payload := ExtractJSON(raw)

	var instance any
	if err := json.Unmarshal([]byte(payload), &instance); err != nil {
		return nil, &MalformedResponseError{
			Judge:    judgeName,
			Problems: []string{fmt.Sprintf("invalid JSON: %v", err)},
			Raw:      raw,
		}
	}

	if problems := validateAgainstSchema(evaluationSchema, instance); len(problems) > 0 {
		return nil, &MalformedResponseError{Judge: judgeName, Problems: problems, Raw: raw}
	}

	var resp evaluationResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, &MalformedResponseError{
			Judge:    judgeName,
			Problems: []string{err.Error()},
			Raw:      raw,
		}
	}

	known := make(map[string]bool, len(r.Assertions))
	for _, a := range r.Assertions {
		known[a.ID] = true
	}

	results := make([]models.AssertionResult, 0, len(resp.Results))
	answered := map[string]bool{}
	incomplete := &IncompleteResponseError{Judge: judgeName}
	for _, res := range resp.Results {
		if !known[res.AssertionID] || answered[res.AssertionID] {
			incomplete.Extra = append(incomplete.Extra, res.AssertionID)
			continue
		}
		answered[res.AssertionID] = true
		results = append(results, models.AssertionResult{
			AssertionID: res.AssertionID,
			Answer:      res.Answer == "yes",
			Confidence:  res.Confidence,
			Evidence:    res.Evidence,
		})
	}

	for _, a := range r.Assertions {
		if !answered[a.ID] {
			incomplete.Missing = append(incomplete.Missing, a.ID)
		}
	}
	sort.Strings(incomplete.Missing)

	if len(incomplete.Missing) > 0 || len(incomplete.Extra) > 0 {
		return nil, incomplete
	}
	return results, nil
}

// ParseRanking validates and decodes a judge's ranking reply. The reply
// must rank every expected style exactly once with ranks forming a
// permutation of 1..n.
func ParseRanking(judgeName, raw string, styles []string) (map[string]int, error) {
	payload := ExtractJSON(raw)

	var instance any
	if err := json.Unmarshal([]byte(payload), &instance); err != nil {
		return nil, &MalformedResponseError{
			Judge:    judgeName,
			Problems: []string{fmt.Sprintf("invalid JSON: %v", err)},
			Raw:      raw,
		}
	}

	if problems := validateAgainstSchema(rankingSchema, instance); len(problems) > 0 {
		return nil, &MalformedResponseError{Judge: judgeName, Problems: problems, Raw: raw}
	}

	var resp rankingResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, &MalformedResponseError{
			Judge:    judgeName,
			Problems: []string{err.Error()},
			Raw:      raw,
		}
	}

	expected := make(map[string]bool, len(styles))
	for _, s := range styles {
		expected[strings.ToLower(s)] = true
	}

	ranks := make(map[string]int, len(resp.Ranking))
	seenRanks := map[int]bool{}
	incomplete := &IncompleteResponseError{Judge: judgeName}
	for _, entry := range resp.Ranking {
		key := strings.ToLower(entry.Style)
		if !expected[key] {
			incomplete.Extra = append(incomplete.Extra, entry.Style)
			continue
		}
		if _, dup := ranks[key]; dup {
			incomplete.Extra = append(incomplete.Extra, entry.Style+" (duplicate)")
			continue
		}
		if entry.Rank < 1 || entry.Rank > len(styles) || seenRanks[entry.Rank] {
			return nil, &MalformedResponseError{
				Judge:    judgeName,
				Problems: []string{fmt.Sprintf("ranks must be a permutation of 1..%d, got %d for %s", len(styles), entry.Rank, entry.Style)},
				Raw:      raw,
			}
		}
		seenRanks[entry.Rank] = true
		ranks[key] = entry.Rank
	}

	for _, s := range styles {
		if _, ok := ranks[strings.ToLower(s)]; !ok {
			incomplete.Missing = append(incomplete.Missing, s)
		}
	}
	sort.Strings(incomplete.Missing)

	if len(incomplete.Missing) > 0 || len(incomplete.Extra) > 0 {
		return nil, incomplete
	}

	// Re-key on the caller's style casing.
	out := make(map[string]int, len(styles))
	for _, s := range styles {
		out[s] = ranks[strings.ToLower(s)]
	}
	return out, nil
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
