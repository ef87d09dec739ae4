package feed

import (
	"strings"
)

// classificationRule maps a content kind to its title keyword set and tag
// set. Rules are evaluated in declaration order and the first match wins, so
// an item matching several kinds is classified by priority, not match count.
type classificationRule struct {
	kind          ContentKind
	titleKeywords []string
	tags          []string
}

var classificationRules = []classificationRule{
	{
		kind:          KindJob,
		titleKeywords: []string{"vacancy", "recruitment", "job"},
		tags:          []string{"jobs", "vacancies", "recruitment"},
	},
	{
		kind:          KindResult,
		titleKeywords: []string{"result", "score", "merit list"},
		tags:          []string{"results", "scores"},
	},
	{
		kind:          KindAdmission,
		titleKeywords: []string{"admission", "application", "course"},
		tags:          []string{"admissions", "education"},
	},
}

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Run classifies an item by its title and category tags. Title matching is
// case-insensitive substring, tag matching is case-insensitive exact
// membership. No match on any rule yields KindUnknown.
func (c *Classifier) Run(title string, categories []string) ContentKind {
	loweredTitle := strings.ToLower(title)

	loweredTags := make([]string, 0, len(categories))
	for _, category := range categories {
		loweredTags = append(loweredTags, strings.ToLower(category))
	}

	for _, rule := range classificationRules {
		if c.matches(rule, loweredTitle, loweredTags) {
			return rule.kind
		}
	}

	return KindUnknown
}

func (c *Classifier) matches(rule classificationRule, title string, tags []string) bool {
	for _, keyword := range rule.titleKeywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}

	for _, tag := range tags {
		for _, ruleTag := range rule.tags {
			if tag == ruleTag {
				return true
			}
		}
	}

	return false
}
