package boq

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// WorkType is a category of the work-type taxonomy.
type WorkType string

const (
	Demolition    WorkType = "demolition"
	Earthworks    WorkType = "earthworks"
	Structural    WorkType = "structural"
	Masonry       WorkType = "masonry"
	Waterproofing WorkType = "waterproofing"
	Plumbing      WorkType = "plumbing"
	HVAC          WorkType = "hvac"
	Electrical    WorkType = "electrical"
	Finishing     WorkType = "finishing"
	Landscaping   WorkType = "landscaping"
	Unclassified  WorkType = "unclassified"
)

// Rule maps a set of keywords onto one work type.
type Rule struct {
	WorkType WorkType `yaml:"workType" json:"workType"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// RuleTable is an ordered list of rules; the first rule with a keyword
// contained in the description wins.
type RuleTable []Rule

// DefaultRules returns the built-in rule table. Callers may modify the
// returned slice freely.
func DefaultRules() RuleTable {
	return RuleTable{
		{Demolition, []string{"demolition", "demolish", "dismantl", "break out", "هدم", "ازاله", "تكسير"}},
		{Earthworks, []string{
			"excavat", "earthwork", "earth work", "backfill", "back fill", "fill material", "site grading", "compaction",
			"trench", "cut and fill", "levelling", "leveling", "topsoil", "soil replacement", "soil stabili", "dewatering",
			"حفر", "ردم", "دك", "تسويه", "اتربه", "نزح",
		}},
		{Waterproofing, []string{
			"waterproof", "water proof", "insulation", "membrane", "bitumen", "damp proof",
			"عزل", "ممبرين", "بيتومين",
		}},
		{Structural, []string{
			"concrete", "reinforc", "rebar", "formwork", "shuttering", "footing", "foundation", "column", "beam", "slab",
			"structural steel", "steel structure", "wire mesh", "steel mesh", "pile", "precast",
			"خرسانه", "خرسانيه", "حديد تسليح", "تسليح", "شده", "قواعد", "اساسات", "اعمده", "كمرات", "بلاطه", "خوازيق",
		}},
		{Masonry, []string{"masonry", "blockwork", "block work", "brick", "hollow block", "stone wall", "مباني", "طوب", "بلوك", "حجر"}},
		{HVAC, []string{"hvac", "air condition", "ductwork", "duct work", "ducting", "ducts", "air duct", "supply duct", "return duct", "chiller", "ventilation", "fan coil", "split unit", "تكييف", "تهويه", "مجاري هواء"}},
		{Electrical, []string{
			"cable", "wiring", "wire", "panel", "switch", "socket", "lighting", "luminaire", "conduit", "earthing",
			"transformer", "generator", "breaker", "db board",
			"كابل", "كابلات", "اسلاك", "لوحه", "لوحات", "مفاتيح", "برايز", "انار", "كهرباء", "مواسير كهرباء", "تاريض",
		}},
		{Plumbing, []string{
			"pipe", "plumbing", "sanitary", "drainage", "sewer", "manhole", "water supply", "valve", "wc", "water closet",
			"basin", "fire fighting", "sprinkler",
			"مواسير", "ماسوره", "صرف", "صحي", "تغذيه", "غرفه تفتيش", "محابس", "حريق",
		}},
		{Finishing, []string{
			"paint", "tile", "tiling", "plaster", "ceramic", "porcelain", "marble", "granite", "gypsum", "false ceiling",
			"skirting", "screed", "finish", "cladding", "door", "window", "glazing", "epoxy",
			"دهان", "دهانات", "بلاط", "سيراميك", "بورسلين", "رخام", "جرانيت", "لياسه", "محاره", "جبس", "تشطيب", "ابواب", "شبابيك",
		}},
		{Landscaping, []string{"landscap", "planting", "irrigation", "turf", "grass", "tree", "paving", "interlock", "تنسيق", "زراعه", "ري", "انترلوك"}},
	}
}

// Classifier assigns work types using a fixed rule table. It holds folded
// copies of the keywords and is safe for concurrent use.
type Classifier struct {
	rules []foldedRule
}

type foldedRule struct {
	workType WorkType
	keywords []string
}

// NewClassifier builds a classifier over rules. Empty keywords are ignored.
func NewClassifier(rules RuleTable) *Classifier {
	c := &Classifier{rules: make([]foldedRule, 0, len(rules))}
	for _, r := range rules {
		fr := foldedRule{workType: r.WorkType}
		for _, kw := range r.Keywords {
			if k := foldText(kw); k != "" {
				fr.keywords = append(fr.keywords, k)
			}
		}
		if len(fr.keywords) > 0 && r.WorkType != "" {
			c.rules = append(c.rules, fr)
		}
	}
	return c
}

// Classify maps a free-text description onto a work type. Matching is
// case-insensitive and substring based; no match yields Unclassified.
func (c *Classifier) Classify(description string) WorkType {
	d := foldText(description)
	if d == "" {
		return Unclassified
	}
	toks := tokens(d)
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if keywordIn(d, toks, kw) {
				return r.workType
			}
		}
	}
	return Unclassified
}

// keywordIn matches kw as a substring of d. Keywords of two runes or less
// ("wc", "ري") must match a whole token. Latin keywords must start a word,
// so "grading" does not match "upgrading"; Arabic keywords match anywhere
// because words carry attached prefixes such as "ال" and "لل".
func keywordIn(d string, toks []string, kw string) bool {
	if utf8.RuneCountInString(kw) <= 2 {
		for _, t := range toks {
			if t == kw {
				return true
			}
		}
		return false
	}
	if !startsLatinWord(kw) {
		return strings.Contains(d, kw)
	}
	for from := 0; from < len(d); {
		i := strings.Index(d[from:], kw)
		if i < 0 {
			return false
		}
		i += from
		if i == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(d[:i])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		// kw starts with an ASCII letter, so i+1 is a rune boundary.
		from = i + 1
	}
	return false
}

func startsLatinWord(kw string) bool {
	r, _ := utf8.DecodeRuneInString(kw)
	return r <= unicode.MaxASCII && unicode.IsLetter(r)
}
