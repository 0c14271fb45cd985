package advisor

import (
	"strconv"
	"strings"
	"text/template"

	"kujang-advisor/api/internal/advisor/types"
	"kujang-advisor/api/internal/ai"
)

// Temperature is the default sampling temperature. Low values keep dosage
// numbers stable across repeated calls.
const Temperature float32 = 0.2

var promptTmpl = template.Must(template.New("calculate").Parse(`Peran: Anda adalah Ahli Agronomi Senior di Indonesia.
Konteks: Bantu petani menghitung kebutuhan pupuk berdasarkan Standar Pertanian Indonesia.

Data Produk Pupuk Kujang (HTML dalam JSON): {{.Catalog}}

Input Petani:
- Tanaman: {{.Crop}}
- Luas Lahan: {{.LandSize}} Hektar
- Target Panen: {{.Target}} Ton

Tugas:
1. Ekstrak kandungan N,P,K dari Data Produk.
2. Analisa apakah target panen tersebut REALISTIS untuk kondisi di Indonesia?
3. Hitung dosis pupuk. PRIORITASKAN Produk Kujang. Jika kurang, gunakan nama generik.

ATURAN PENTING:
- GUNAKAN BAHASA INDONESIA yang sopan, jelas, dan memotivasi petani.
- Output HARUS JSON murni (tanpa markdown ` + "```json" + `).
- Struktur JSON (Keys dalam bahasa inggris, Values dalam BAHASA INDONESIA):
{
    "validation_message": "Kalimat analisa kelayakan target (Contoh: Target 5 Ton sangat realistis untuk...)",
    "is_realistic": true,
    "kujang_recommendations": [{"product_name": "Nama Produk", "dosage_kg": 100, "reason": "Alasan singkat (Bahasa Indonesia)"}],
    "generic_recommendations": [{"product_name": "Nama Generik", "dosage_kg": 50, "reason": "Alasan singkat (Bahasa Indonesia)"}]
}
`))

// BuildPrompt embeds the catalog text verbatim together with the farmer's input.
func BuildPrompt(catalogText string, req types.CalculationRequest) string {
	var b strings.Builder
	_ = promptTmpl.Execute(&b, struct {
		Catalog  string
		Crop     string
		LandSize string
		Target   string
	}{
		Catalog:  catalogText,
		Crop:     req.Crop,
		LandSize: formatNumber(req.LandSize),
		Target:   formatNumber(req.Target),
	})
	return b.String()
}

// formatNumber keeps a trailing ".0" on whole numbers so "2" reads as 2.0 ha.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func recommendationList(desc string) *ai.Schema {
	return &ai.Schema{
		Type:        ai.TypeArray,
		Description: desc,
		Items: &ai.Schema{
			Type:     ai.TypeObject,
			Required: []string{"product_name", "dosage_kg", "reason"},
			Properties: map[string]*ai.Schema{
				"product_name": {Type: ai.TypeString},
				"dosage_kg":    {Type: ai.TypeNumber, Description: "total dosis untuk seluruh lahan, kg"},
				"reason":       {Type: ai.TypeString},
			},
		},
	}
}

// ResultSchema constrains the model to the RecommendationResult shape.
var ResultSchema = &ai.Schema{
	Type: ai.TypeObject,
	Required: []string{
		"validation_message",
		"is_realistic",
		"kujang_recommendations",
		"generic_recommendations",
	},
	Properties: map[string]*ai.Schema{
		"validation_message":      {Type: ai.TypeString},
		"is_realistic":            {Type: ai.TypeBoolean},
		"kujang_recommendations":  recommendationList("produk Pupuk Kujang"),
		"generic_recommendations": recommendationList("pupuk generik"),
	},
}
