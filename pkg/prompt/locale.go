package prompt

import (
	"strconv"

	"github.com/reviewloop/engine/pkg/models"
)

// localeInstruction returns the locale-specific instruction block every
// prompt is prefixed with.
func localeInstruction(locale models.Locale) string {
	if locale == models.LocaleZH {
		return "請使用繁體中文回答，並嚴格遵守下列格式要求。\n\n"
	}
	return "Respond in English and strictly follow the format requirements below.\n\n"
}

// difficultyLabel renders a Difficulty for prompt text.
func difficultyLabel(d models.Difficulty) string {
	if d == "" {
		return string(models.DifficultyMedium)
	}
	return string(d)
}

// defectLines renders one line per defect, for inclusion in a prompt body.
func defectLines(defects []models.Defect, locale models.Locale) string {
	var out string
	for i, d := range defects {
		out += formatDefectLine(i+1, d, locale)
	}
	return out
}

func formatDefectLine(n int, d models.Defect, locale models.Locale) string {
	name := d.Name.Pick(locale, d.Code)
	desc := d.Description.Pick(locale, "")
	line := "ERROR " + strconv.Itoa(n) + ": " + name
	if desc != "" {
		line += " - " + desc
	}
	return line + "\n"
}
