package entity

import "strings"

// LocatorStep is one query in a locator chain: a CSS selector, optionally
// narrowed to elements whose text contains HasText (case-insensitive).
type LocatorStep struct {
	Selector string `json:"selector"`
	HasText  string `json:"hasText,omitempty"`
}

// Locator is a deferred element reference. It is resolved by the driver at
// the moment an action runs, each step searching inside the previous step's
// matches.
type Locator struct {
	Steps []LocatorStep
}

func Locate(selector string) Locator {
	return Locator{Steps: []LocatorStep{{Selector: selector}}}
}

// WithText narrows the last step to elements containing text.
func (l Locator) WithText(text string) Locator {
	if len(l.Steps) == 0 {
		return l
	}
	steps := make([]LocatorStep, len(l.Steps))
	copy(steps, l.Steps)
	steps[len(steps)-1].HasText = text
	return Locator{Steps: steps}
}

// Locator chains a descendant query.
func (l Locator) Locator(selector string) Locator {
	steps := make([]LocatorStep, len(l.Steps), len(l.Steps)+1)
	copy(steps, l.Steps)
	return Locator{Steps: append(steps, LocatorStep{Selector: selector})}
}

func (l Locator) Valid() bool {
	if len(l.Steps) == 0 {
		return false
	}
	for _, s := range l.Steps {
		if strings.TrimSpace(s.Selector) == "" {
			return false
		}
	}
	return true
}

func (l Locator) String() string {
	parts := make([]string, 0, len(l.Steps))
	for _, s := range l.Steps {
		if s.HasText != "" {
			parts = append(parts, s.Selector+`:has-text("`+s.HasText+`")`)
		} else {
			parts = append(parts, s.Selector)
		}
	}
	return strings.Join(parts, " >> ")
}
