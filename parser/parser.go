package parser

import (
	"encoding/json"
	"errors"
	"strings"

	"plant-diagnosis-service/models"
)

// ExtractJSON extracts a JSON object from a model reply, stripping markdown
// code fences when present.
func ExtractJSON(response string) string {
	// Look for JSON code blocks with ``` markers
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		// No code block found, try to find JSON object directly
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx == -1 {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	// Find the end of the first code block
	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	// Extract content between the markers
	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ParseDiagnosis parses a model reply into a DiagnosisResult. It fails only
// when the reply contains no decodable JSON object at all. Missing or mistyped
// fields get explicit defaults: planta_saudavel false, descricao empty,
// sugestoes_tratamento empty; nome_doenca_praga falls back to "Nenhuma" for a
// healthy plant and "Não identificado" otherwise.
func ParseDiagnosis(response string) (*models.DiagnosisResult, error) {
	cleaned := strings.TrimSpace(response)
	if cleaned == "" {
		return nil, errors.New("empty model reply")
	}

	jsonContent := ExtractJSON(cleaned)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonContent), &fields); err != nil {
		return nil, errors.New("failed to parse JSON response: " + err.Error())
	}

	result := models.DiagnosisResult{
		PlantaSaudavel:      boolField(fields, "planta_saudavel"),
		NomeDoencaPraga:     stringField(fields, "nome_doenca_praga"),
		Descricao:           stringField(fields, "descricao"),
		SugestoesTratamento: treatmentField(fields, "sugestoes_tratamento"),
	}

	if result.NomeDoencaPraga == "" {
		if result.PlantaSaudavel {
			result.NomeDoencaPraga = models.NoDiseaseName
		} else {
			result.NomeDoencaPraga = models.UnidentifiedName
		}
	}
	return &result, nil
}

// boolField reads a boolean, also accepting the quoted "true"/"false" some
// models emit. Anything else is false.
func boolField(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "true")
	}
	return false
}

// stringField reads a string; missing, null or mistyped values become "".
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

func treatmentField(fields map[string]json.RawMessage, key string) models.TreatmentList {
	raw, ok := fields[key]
	if !ok {
		return models.TreatmentList{}
	}
	var list models.TreatmentList
	// TreatmentList.UnmarshalJSON is total, it never returns an error.
	_ = json.Unmarshal(raw, &list)
	if list == nil {
		list = models.TreatmentList{}
	}
	return list
}
