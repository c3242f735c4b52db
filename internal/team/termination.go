package team

import (
	"fmt"
	"strings"
)

// Termination decides, after every message, whether the current run stops.
// It sees only the messages of the current run, task included.
type Termination interface {
	Check(run []Message) (stop bool, reason string)
}

type textMention struct{ text string }

// TextMention stops as soon as an agent (not the user) says text.
func TextMention(text string) Termination { return textMention{text: text} }

func (t textMention) Check(run []Message) (bool, string) {
	for _, m := range run {
		if m.Source == UserSource || m.Type != TypeText {
			continue
		}
		if strings.Contains(m.Content, t.text) {
			return true, fmt.Sprintf("Text '%s' mentioned", t.text)
		}
	}
	return false, ""
}

type maxMessages struct{ n int }

// MaxMessages stops once the run holds n messages.
func MaxMessages(n int) Termination { return maxMessages{n: n} }

func (t maxMessages) Check(run []Message) (bool, string) {
	count := 0
	for _, m := range run {
		if m.Type == TypeText {
			count++
		}
	}
	if count >= t.n {
		return true, fmt.Sprintf("Maximum number of messages %d reached, current message count: %d", t.n, count)
	}
	return false, ""
}

type anyOf []Termination

// Or stops when any of conds stops.
func Or(conds ...Termination) Termination { return anyOf(conds) }

func (a anyOf) Check(run []Message) (bool, string) {
	for _, c := range a {
		if stop, reason := c.Check(run); stop {
			return true, reason
		}
	}
	return false, ""
}
