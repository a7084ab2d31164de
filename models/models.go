package models

import "encoding/json"

// Sentinel values for NomeDoencaPraga, part of the public API contract.
const (
	// NoDiseaseName is reported when the plant looks healthy.
	NoDiseaseName = "Nenhuma"
	// UnidentifiedName is reported when no reliable assessment could be made.
	UnidentifiedName = "Não identificado"
)

// DiagnosisResult is the four-field outcome returned to the API caller.
// It is built once per request from the model reply and never persisted.
type DiagnosisResult struct {
	PlantaSaudavel      bool          `json:"planta_saudavel"`
	NomeDoencaPraga     string        `json:"nome_doenca_praga"`
	Descricao           string        `json:"descricao"`
	SugestoesTratamento TreatmentList `json:"sugestoes_tratamento"`
}

// ErrorResponse is the JSON body for all non-200 responses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// TreatmentList is an ordered list of treatment suggestions. Model replies
// sometimes put a bare string where the list belongs; that is accepted and
// coerced to a single-element list. null decodes to an empty list.
type TreatmentList []string

func (t *TreatmentList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*t = items
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*t = TreatmentList{}
		} else {
			*t = TreatmentList{single}
		}
		return nil
	}

	var null interface{}
	if err := json.Unmarshal(data, &null); err == nil && null == nil {
		*t = TreatmentList{}
		return nil
	}

	// Unusable shape (number, object): treat as absent rather than failing
	// the whole reply.
	*t = TreatmentList{}
	return nil
}

// MarshalJSON always emits a JSON array, never null.
func (t TreatmentList) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}
