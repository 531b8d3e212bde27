package catalog

// BuiltinVersion identifies the compiled-in rule set.
const BuiltinVersion = "builtin-1"

// Default returns the compiled-in catalog. It is used when no catalog file
// is configured and as the last-known-good fallback at startup.
func Default() *Catalog {
	c, err := New(BuiltinVersion, defaultRules())
	if err != nil {
		// The compiled-in rule set is validated by tests; reaching this
		// means the binary itself is broken.
		panic(err)
	}
	return c
}

func defaultRules() []Rule {
	return []Rule{
		// Cardiovascular.
		{ID: "chest_pain", Term: "胸痛", Category: CategoryCardiovascular, Level: LevelCritical},
		{ID: "chest_tightness", Term: "胸悶", Category: CategoryCardiovascular, Level: LevelHigh},
		{ID: "palpitations", Term: "心悸", Category: CategoryCardiovascular, Level: LevelModerate},

		// Respiratory.
		{ID: "dyspnea", Term: "呼吸困難", Category: CategoryRespiratory, Level: LevelCritical},
		{ID: "tachypnea", Term: "呼吸急促", Category: CategoryRespiratory, Level: LevelHigh},
		{ID: "hemoptysis", Term: "咳血", Category: CategoryRespiratory, Level: LevelCritical},
		{ID: "cough", Term: "咳嗽", Category: CategoryRespiratory, Level: LevelLow},

		// Neurological.
		{ID: "unconscious", Term: "意識不清", Category: CategoryNeurological, Level: LevelCritical},
		{ID: "seizure", Term: "抽搐", Category: CategoryNeurological, Level: LevelCritical},
		{ID: "slurred_speech", Term: "口齒不清", Category: CategoryNeurological, Level: LevelCritical},
		{ID: "thunderclap_headache", Term: "劇烈頭痛", Category: CategoryNeurological, Level: LevelHigh},
		{ID: "headache", Term: "頭痛", Category: CategoryNeurological, Level: LevelLow},
		{ID: "numbness", Term: "麻木", Category: CategoryNeurological, Level: LevelHigh},
		// Dizziness after drinking is not an emergency signal.
		{ID: "dizziness", Term: "頭暈", Category: CategoryNeurological, Level: LevelModerate,
			ExcludeTerms: []string{"喝酒", "宿醉"}},
		// Bulging fontanelle is only meaningful in infants.
		{ID: "bulging_fontanelle", Term: "囟門凸起", Category: CategoryNeurological, Level: LevelCritical,
			AgeRange: &AgeRange{Min: 0, Max: 2}},

		// Trauma.
		{ID: "major_bleeding", Term: "大量出血", Category: CategoryTrauma, Level: LevelCritical},
		{ID: "fracture", Term: "骨折", Category: CategoryTrauma, Level: LevelHigh},
		{ID: "burn", Term: "燒燙傷", Category: CategoryTrauma, Level: LevelHigh},
		{ID: "sprain", Term: "扭傷", Category: CategoryTrauma, Level: LevelLow},

		// Psychiatric.
		{ID: "suicidal", Term: "自殺", Category: CategoryPsychiatric, Level: LevelCritical},
		{ID: "self_harm", Term: "自殘", Category: CategoryPsychiatric, Level: LevelHigh},
		{ID: "panic_attack", Term: "恐慌發作", Category: CategoryPsychiatric, Level: LevelModerate},

		// Gastrointestinal.
		{ID: "hematemesis", Term: "吐血", Category: CategoryGastrointestinal, Level: LevelCritical},
		{ID: "severe_abdominal_pain", Term: "劇烈腹痛", Category: CategoryGastrointestinal, Level: LevelHigh},
		{ID: "abdominal_pain", Term: "腹痛", Category: CategoryGastrointestinal, Level: LevelModerate},
		{ID: "diarrhea", Term: "腹瀉", Category: CategoryGastrointestinal, Level: LevelLow},

		// Other. A bare mention of fever is not enough; it needs a high
		// reading or persistence in the same description.
		{ID: "fever", Term: "燒", Category: CategoryOther, Level: LevelHigh,
			ContextRequired: true,
			ContextTerms:    []string{"39", "40", "41", "持續", "不退"}},
	}
}
