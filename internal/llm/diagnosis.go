package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnparseableAnswer is returned when the model reply holds no usable JSON
var ErrUnparseableAnswer = errors.New("model answer is not valid diagnosis JSON")

// DiagnosisSystemPrompt instructs the model to answer in a fixed JSON shape
const DiagnosisSystemPrompt = `You are a cautious medical triage assistant. ` +
	`Given a list of symptoms, reply with a single JSON object and nothing else, using exactly these keys: ` +
	`"possible_diseases" (array of up to 3 short condition names, most likely first), ` +
	`"first_aid" (array of short first-aid or self-care steps), ` +
	`"urgency" (one of "ROUTINE", "URGENT", "EMERGENCY"). ` +
	`Do not give a definitive diagnosis and always recommend seeing a doctor when in doubt.`

// SymptomQuery describes the patient for the prompt
type SymptomQuery struct {
	Symptoms []string
	Age      *int
	Gender   string
}

// BuildDiagnosisPrompt renders the user message for a symptom query
func BuildDiagnosisPrompt(q SymptomQuery) string {
	var b strings.Builder
	b.WriteString("Symptoms: ")
	b.WriteString(strings.Join(q.Symptoms, ", "))
	if q.Age != nil {
		b.WriteString("\nAge: ")
		b.WriteString(strconv.Itoa(*q.Age))
	}
	if g := strings.TrimSpace(q.Gender); g != "" {
		b.WriteString("\nGender: ")
		b.WriteString(g)
	}
	return b.String()
}

// DiagnosisAnswer is the parsed model reply
type DiagnosisAnswer struct {
	PossibleDiseases []string `json:"possible_diseases"`
	FirstAid         []string `json:"first_aid"`
	Urgency          string   `json:"urgency"`
}

// ParseDiagnosisAnswer extracts the JSON object from a model reply,
// tolerating markdown fences and surrounding prose, and normalizes urgency
func ParseDiagnosisAnswer(text string) (*DiagnosisAnswer, error) {
	raw := extractJSON(text)
	if raw == "" {
		return nil, ErrUnparseableAnswer
	}

	var answer DiagnosisAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableAnswer, err)
	}

	answer.PossibleDiseases = compact(answer.PossibleDiseases)
	answer.FirstAid = compact(answer.FirstAid)
	if len(answer.PossibleDiseases) == 0 {
		return nil, fmt.Errorf("%w: no possible diseases", ErrUnparseableAnswer)
	}
	answer.Urgency = NormalizeUrgency(answer.Urgency)
	return &answer, nil
}

// NormalizeUrgency maps free-form urgency wording onto ROUTINE, URGENT or EMERGENCY
func NormalizeUrgency(urgency string) string {
	u := strings.ToUpper(strings.TrimSpace(urgency))
	switch {
	case strings.Contains(u, "EMERGENCY"), strings.Contains(u, "CRITICAL"), strings.Contains(u, "IMMEDIATE"):
		return "EMERGENCY"
	case strings.Contains(u, "URGENT"), strings.Contains(u, "HIGH"):
		return "URGENT"
	default:
		return "ROUTINE"
	}
}

// extractJSON returns the first balanced JSON object in text, or "" if none
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escape:
			escape = false
		case ch == '\\' && inString:
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func compact(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
