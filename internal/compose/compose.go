// Package compose turns a resolved urgency level and its categories into the
// user-facing response: advice text, next steps, disclaimer and emergency
// contacts.
package compose

import (
	"fmt"

	"github.com/triage-ai/triage/internal/catalog"
	"github.com/triage-ai/triage/internal/directory"
)

// DefaultDisclaimer carries the three mandatory clauses: limitation of
// scope, professional referral and the emergency number reference.
const DefaultDisclaimer = "本系統僅供參考，不提供醫療診斷；實際病情請諮詢專業醫師或醫療機構。如情況危急，請立即撥打119。"

// Payload is the composed, user-facing classification response.
type Payload struct {
	Level             catalog.Level `json:"level"`
	Advice            string        `json:"advice"`
	NextSteps         []string      `json:"next_steps"`
	Disclaimer        string        `json:"disclaimer"`
	EmergencyContacts []string      `json:"emergency_contacts"`
}

type levelTemplate struct {
	advice   string
	steps    []string
	contacts []string
}

// The critical template is emitted verbatim, with no category enrichment,
// so the critical path stays predictable and auditable.
var criticalTemplate = levelTemplate{
	advice: "您描述的症狀可能危及生命。請立即撥打119請求救護車，留在原地等待救援，不要自行開車或騎車前往醫院。",
	steps: []string{
		"保持冷靜，維持呼吸道暢通",
		"若患者意識不清，讓其側臥",
		"不要進食或飲水",
		"準備好健保卡與隨身藥物清單",
	},
	contacts: []string{"119", "112"},
}

var levelTemplates = map[catalog.Level]levelTemplate{
	catalog.LevelHigh: {
		advice: "您的症狀屬於高風險，請儘速就醫，必要時撥打119。",
		steps: []string{
			"盡快前往急診，並請人陪同",
			"記錄症狀開始時間與變化",
			"攜帶平時的藥物資訊",
		},
		contacts: []string{"119"},
	},
	catalog.LevelModerate: {
		advice: "建議您於今日內就醫檢查，並密切留意症狀變化。",
		steps: []string{
			"就近掛號門診或診所",
			"若症狀加重，改撥119或前往急診",
		},
	},
	catalog.LevelLow: {
		advice: "目前症狀看來屬於輕度，可先自我照護並觀察。",
		steps: []string{
			"多休息並補充水分",
			"觀察48小時，若症狀持續或加重請就醫",
		},
	},
}

var categorySteps = map[catalog.Category]string{
	catalog.CategoryCardiovascular:   "停止活動，靜坐或平躺休息",
	catalog.CategoryRespiratory:      "保持坐姿，鬆開頸部與胸口衣物",
	catalog.CategoryNeurological:     "記下症狀開始的確切時間，就醫時告知",
	catalog.CategoryTrauma:           "未經專業指導，不要自行固定或復位患肢",
	catalog.CategoryPsychiatric:      "可撥打1925安心專線，尋求即時協談",
	catalog.CategoryGastrointestinal: "暫時禁食，記錄嘔吐或排便情形",
}

// categoryContacts lists extra contacts added for high-level signals.
var categoryContacts = map[catalog.Category][]string{
	catalog.CategoryPsychiatric: {"1925"},
}

// Composer builds response payloads, enriching contact entries with service
// directory metadata.
type Composer struct {
	dir *directory.Directory
}

// New returns a composer backed by the given directory; nil selects the
// compiled-in default.
func New(dir *directory.Directory) *Composer {
	if dir == nil {
		dir = directory.Default()
	}
	return &Composer{dir: dir}
}

// Compose builds the payload for a resolved level and its category set.
// Categories must already be in canonical order.
func (c *Composer) Compose(level catalog.Level, categories []catalog.Category) Payload {
	if level == catalog.LevelCritical {
		return c.composeCritical()
	}

	tmpl, ok := levelTemplates[level]
	if !ok {
		tmpl = levelTemplates[catalog.LevelLow]
	}

	steps := append([]string(nil), tmpl.steps...)
	for _, cat := range categories {
		if extra, ok := categorySteps[cat]; ok {
			steps = append(steps, extra)
		}
	}

	contacts := append([]string(nil), tmpl.contacts...)
	if level == catalog.LevelHigh {
		for _, cat := range categories {
			for _, code := range categoryContacts[cat] {
				if !containsString(contacts, code) {
					contacts = append(contacts, code)
				}
			}
		}
	}
	steps = append(steps, c.contactSteps(contacts)...)

	return Payload{
		Level:             level,
		Advice:            tmpl.advice,
		NextSteps:         steps,
		Disclaimer:        DefaultDisclaimer,
		EmergencyContacts: contacts,
	}
}

func (c *Composer) composeCritical() Payload {
	return Payload{
		Level:             catalog.LevelCritical,
		Advice:            criticalTemplate.advice,
		NextSteps:         append([]string(nil), criticalTemplate.steps...),
		Disclaimer:        DefaultDisclaimer,
		EmergencyContacts: append([]string(nil), criticalTemplate.contacts...),
	}
}

// contactSteps renders one descriptive line per contact from the directory.
func (c *Composer) contactSteps(contacts []string) []string {
	var out []string
	for _, code := range contacts {
		svc, ok := c.dir.Lookup(code)
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("%s %s（%s，%s）", code, svc.Name, svc.Availability, svc.Description))
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
