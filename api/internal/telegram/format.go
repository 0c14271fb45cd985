package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"kujang-advisor/api/internal/advisor"
	"kujang-advisor/api/internal/advisor/types"
)

// ParseArgs reads "<tanaman> <luas_ha> <target_ton>". The crop may span
// several words; numbers accept a decimal comma ("1,5").
func ParseArgs(text string) (types.CalculationRequest, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return types.CalculationRequest{}, eris.New("expected crop, land size and target")
	}
	n := len(fields)

	landSize, err := parseNumber(fields[n-2])
	if err != nil {
		return types.CalculationRequest{}, eris.Wrap(err, "land size")
	}
	target, err := parseNumber(fields[n-1])
	if err != nil {
		return types.CalculationRequest{}, eris.Wrap(err, "target")
	}

	req := types.CalculationRequest{
		Crop:     strings.Join(fields[:n-2], " "),
		LandSize: landSize,
		Target:   target,
	}
	return req, req.Validate()
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSuffix(strings.ToLower(s), "ha")
	s = strings.TrimSuffix(s, "ton")
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func FormatResult(req types.CalculationRequest, res types.RecommendationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🌾 %s, %s ha, target %s ton\n\n", req.Crop, formatAmount(req.LandSize), formatAmount(req.Target))
	if res.IsRealistic {
		b.WriteString("✅ Target realistis\n")
	} else {
		b.WriteString("⚠️ Target kurang realistis\n")
	}
	b.WriteString(res.ValidationMessage)
	b.WriteString("\n\n")

	writeRecommendations(&b, "Rekomendasi Pupuk Kujang:", res.KujangRecommendations)
	b.WriteString("\n")
	writeRecommendations(&b, "Rekomendasi pupuk generik:", res.GenericRecommendations)

	return strings.TrimRight(b.String(), "\n")
}

func writeRecommendations(b *strings.Builder, title string, recs []types.Recommendation) {
	b.WriteString(title)
	b.WriteString("\n")
	if len(recs) == 0 {
		b.WriteString("• (tidak ada)\n")
		return
	}
	for _, r := range recs {
		fmt.Fprintf(b, "• %s: %s kg", r.ProductName, formatAmount(r.DosageKg))
		if r.Reason != "" {
			fmt.Fprintf(b, " (%s)", r.Reason)
		}
		b.WriteString("\n")
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ErrorText mirrors the HTTP error messages for chat replies.
func ErrorText(err error) string {
	if advisor.KindOf(err) == advisor.KindValidation {
		return "Format data input tidak valid.\n\n" + helpText
	}
	return "Terjadi kesalahan sistem: " + err.Error()
}
