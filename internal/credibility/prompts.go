package credibility

// Prompts - каталог версий промптов для LLM-оценщика. Версия выбирается
// конфигурацией; сами тексты - фиксированные данные, не алгоритм.
var Prompts = map[string]string{
	"v1": "You are a credibility auditor for city emergency incidents. " +
		"Given a list of sources that reported the same incident, assign a credibility score 1-5. " +
		"5 = official agencies or multiple major outlets; 1 = unverified single community posts. " +
		`Return JSON: {"score": <number>, "reason": <one sentence>}`,
	"v2": "Act as a media reliability analyst. Evaluate source trust and corroboration. " +
		"Prioritize NYPD/FDNY/NYC OEM highest, then ABC7NY/NBC/CBS/NY1/Gothamist, then tabloids, then citizen apps. " +
		"Use the distribution of sources to calibrate score. Return JSON with score and reason.",
	"v3": "You are verifying incident authenticity. Score 1-5 based on: (1) presence of official sources, " +
		"(2) number of independent outlets >=3, (3) absence of only low-cred sources. " +
		"Give concise reasoning. Return JSON with score and reason.",
	"v4": "Assess credibility using evidence weighting and corroboration thresholds. " +
		"Source weights: Official (NYPD/FDNY/NYC OEM)=high; Major local TV/news=medium-high; " +
		"Tabloids/community apps/blogs/scanners=low. Increase score with >=3 independent sources; " +
		"penalize when majority are low-cred. Return strictly JSON with numeric score (1-5) and short reason.",
	"v5": "Use a rubric: start at 2.5. +1.5 if any official source is present; +1.0 if >=3 independent major outlets; " +
		"-1.0 if only low-cred sources; +0.02 per corroborating source up to +0.5. Clamp 1-5. " +
		"Write one-sentence reason referencing source mix. Output JSON {score, reason}.",
}

// PromptCatalog возвращает копию каталога промптов
func PromptCatalog() map[string]string {
	out := make(map[string]string, len(Prompts))
	for k, v := range Prompts {
		out[k] = v
	}
	return out
}
