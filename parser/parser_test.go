package parser

import (
	"testing"

	"plant-diagnosis-service/models"
)

func TestParseDiagnosis(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
		expected *models.DiagnosisResult
	}{
		{
			name: "diseased plant with two treatments",
			response: `{
				"planta_saudavel": false,
				"nome_doenca_praga": "Ferrugem do cafeeiro",
				"descricao": "Manchas amareladas na face superior das folhas com pústulas alaranjadas na face inferior, típicas de infecção por Hemileia vastatrix favorecida por umidade alta.",
				"sugestoes_tratamento": [
					"Aplicar fungicida à base de cobre a cada 15 dias durante o período chuvoso.",
					"Realizar poda de limpeza, removendo e descartando as folhas infectadas."
				]
			}`,
			wantErr: false,
			expected: &models.DiagnosisResult{
				PlantaSaudavel:  false,
				NomeDoencaPraga: "Ferrugem do cafeeiro",
				Descricao:       "Manchas amareladas na face superior das folhas com pústulas alaranjadas na face inferior, típicas de infecção por Hemileia vastatrix favorecida por umidade alta.",
				SugestoesTratamento: models.TreatmentList{
					"Aplicar fungicida à base de cobre a cada 15 dias durante o período chuvoso.",
					"Realizar poda de limpeza, removendo e descartando as folhas infectadas.",
				},
			},
		},
		{
			name: "healthy plant",
			response: `{
				"planta_saudavel": true,
				"nome_doenca_praga": "Nenhuma",
				"descricao": "A planta apresenta folhagem vigorosa, sem manchas, deformações ou sinais de pragas.",
				"sugestoes_tratamento": []
			}`,
			wantErr: false,
			expected: &models.DiagnosisResult{
				PlantaSaudavel:      true,
				NomeDoencaPraga:     "Nenhuma",
				Descricao:           "A planta apresenta folhagem vigorosa, sem manchas, deformações ou sinais de pragas.",
				SugestoesTratamento: models.TreatmentList{},
			},
		},
		{
			name: "JSON wrapped in markdown fences",
			response: "```json\n" + `{
				"planta_saudavel": false,
				"nome_doenca_praga": "Oídio",
				"descricao": "Camada branca pulverulenta sobre as folhas.",
				"sugestoes_tratamento": ["Pulverizar enxofre molhável nas horas mais frescas do dia."]
			}` + "\n```",
			wantErr: false,
			expected: &models.DiagnosisResult{
				PlantaSaudavel:      false,
				NomeDoencaPraga:     "Oídio",
				Descricao:           "Camada branca pulverulenta sobre as folhas.",
				SugestoesTratamento: models.TreatmentList{"Pulverizar enxofre molhável nas horas mais frescas do dia."},
			},
		},
		{
			name: "JSON surrounded by prose",
			response: `Here is the analysis you asked for: {"planta_saudavel": true, "nome_doenca_praga": "Nenhuma", "descricao": "Sem sinais de doença.", "sugestoes_tratamento": []} Hope this helps!`,
			wantErr:  false,
			expected: &models.DiagnosisResult{
				PlantaSaudavel:      true,
				NomeDoencaPraga:     "Nenhuma",
				Descricao:           "Sem sinais de doença.",
				SugestoesTratamento: models.TreatmentList{},
			},
		},
		{
			name: "treatments given as a bare string",
			response: `{
				"planta_saudavel": false,
				"nome_doenca_praga": "Cochonilha",
				"descricao": "Insetos escamiformes aderidos ao caule.",
				"sugestoes_tratamento": "Aplicar óleo de neem semanalmente até o desaparecimento dos insetos."
			}`,
			wantErr: false,
			expected: &models.DiagnosisResult{
				PlantaSaudavel:      false,
				NomeDoencaPraga:     "Cochonilha",
				Descricao:           "Insetos escamiformes aderidos ao caule.",
				SugestoesTratamento: models.TreatmentList{"Aplicar óleo de neem semanalmente até o desaparecimento dos insetos."},
			},
		},
		{
			name:     "missing fields default, unhealthy",
			response: `{"planta_saudavel": false}`,
			wantErr:  false,
			expected: &models.DiagnosisResult{
				PlantaSaudavel:      false,
				NomeDoencaPraga:     "Não identificado",
				Descricao:           "",
				SugestoesTratamento: models.TreatmentList{},
			},
		},
		{
			name:     "missing name defaults for healthy plant",
			response: `{"planta_saudavel": true, "descricao": "Planta saudável."}`,
			wantErr:  false,
			expected: &models.DiagnosisResult{
				PlantaSaudavel:      true,
				NomeDoencaPraga:     "Nenhuma",
				Descricao:           "Planta saudável.",
				SugestoesTratamento: models.TreatmentList{},
			},
		},
		{
			name:     "quoted boolean and null suggestions",
			response: `{"planta_saudavel": "true", "nome_doenca_praga": "Nenhuma", "descricao": "Saudável.", "sugestoes_tratamento": null}`,
			wantErr:  false,
			expected: &models.DiagnosisResult{
				PlantaSaudavel:      true,
				NomeDoencaPraga:     "Nenhuma",
				Descricao:           "Saudável.",
				SugestoesTratamento: models.TreatmentList{},
			},
		},
		{
			name:     "empty reply",
			response: "",
			wantErr:  true,
		},
		{
			name:     "no JSON object at all",
			response: "I am sorry, I cannot analyze this image.",
			wantErr:  true,
		},
		{
			name:     "malformed JSON",
			response: `{"planta_saudavel": true, "nome_doenca_praga": `,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDiagnosis(tt.response)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDiagnosis() expected error, got result %+v", result)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseDiagnosis() unexpected error: %v", err)
			}
			if result.PlantaSaudavel != tt.expected.PlantaSaudavel {
				t.Errorf("PlantaSaudavel = %v, want %v", result.PlantaSaudavel, tt.expected.PlantaSaudavel)
			}
			if result.NomeDoencaPraga != tt.expected.NomeDoencaPraga {
				t.Errorf("NomeDoencaPraga = %q, want %q", result.NomeDoencaPraga, tt.expected.NomeDoencaPraga)
			}
			if result.Descricao != tt.expected.Descricao {
				t.Errorf("Descricao = %q, want %q", result.Descricao, tt.expected.Descricao)
			}
			if len(result.SugestoesTratamento) != len(tt.expected.SugestoesTratamento) {
				t.Fatalf("SugestoesTratamento has %d items, want %d", len(result.SugestoesTratamento), len(tt.expected.SugestoesTratamento))
			}
			for i := range result.SugestoesTratamento {
				if result.SugestoesTratamento[i] != tt.expected.SugestoesTratamento[i] {
					t.Errorf("SugestoesTratamento[%d] = %q, want %q", i, result.SugestoesTratamento[i], tt.expected.SugestoesTratamento[i])
				}
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"planta_saudavel": true}`,
			expected: `{"planta_saudavel": true}`,
		},
		{
			name:     "fenced with language tag",
			input:    "```json\n{\"planta_saudavel\": true}\n```",
			expected: `{"planta_saudavel": true}`,
		},
		{
			name:     "fenced without language tag",
			input:    "```\n{\"planta_saudavel\": false}\n```",
			expected: `{"planta_saudavel": false}`,
		},
		{
			name:     "no JSON at all",
			input:    "nothing here",
			expected: "nothing here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.expected {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.expected)
			}
		})
	}
}
