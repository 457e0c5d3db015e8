// Package ingest converts legacy inspection exports into drafts the
// records service can store. The retired mobile client saved each
// completed form as Ionic markup: an ion-title naming the template and
// one ion-card per question, with an ion-label for the question text
// and ion-buttons for the answers, the chosen one marked with the
// "selected" class. Later exports wrapped the same data in a small
// <qa> XML envelope.
package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/MajesticSpiral/safety-app/internal/records"
)

// Submission is a parsed legacy form, ready to become an
// InspectionDraft.
type Submission struct {
	TemplateName string
	Items        []records.QAPair
}

// Draft converts the parsed form to a store draft.
func (s Submission) Draft() records.InspectionDraft {
	return records.InspectionDraft{
		TemplateName: s.TemplateName,
		Items:        s.Items,
	}
}

// ParseMarkup reads one Ionic-markup export. Question order follows
// document order.
func ParseMarkup(r io.Reader) (Submission, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Submission{}, fmt.Errorf("ingest: parse markup: %w", err)
	}

	var sub Submission
	if title := findElement(root, "ion-title"); title != nil {
		sub.TemplateName = strings.TrimSpace(nodeText(title))
	}
	if sub.TemplateName == "" {
		return Submission{}, fmt.Errorf("ingest: missing ion-title")
	}

	for _, card := range findElements(root, "ion-card") {
		label := findElement(card, "ion-label")
		if label == nil {
			return Submission{}, fmt.Errorf("ingest: card %d has no ion-label", len(sub.Items)+1)
		}
		question := strings.TrimSpace(nodeText(label))
		if question == "" {
			return Submission{}, fmt.Errorf("ingest: card %d has an empty question", len(sub.Items)+1)
		}

		answer, found := selectedAnswer(card)
		if !found {
			return Submission{}, fmt.Errorf("ingest: question %q has no selected answer", question)
		}
		sub.Items = append(sub.Items, records.QAPair{Question: question, Answer: answer})
	}
	if len(sub.Items) == 0 {
		return Submission{}, fmt.Errorf("ingest: no ion-card entries found")
	}
	return sub, nil
}

func selectedAnswer(card *html.Node) (string, bool) {
	for _, btn := range findElements(card, "ion-button") {
		if hasClass(btn, "selected") {
			return strings.TrimSpace(nodeText(btn)), true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		// Do not descend into a matched element; cards never nest.
		return []*html.Node{n}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findElements(c, tag)...)
	}
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

type xmlItem struct {
	Question string `xml:"question"`
	Answer   string `xml:"answer"`
}

type xmlEnvelope struct {
	XMLName   xml.Name  `xml:"qa"`
	Template  string    `xml:"template,attr"`
	Submitted string    `xml:"submitted,attr,omitempty"`
	Items     []xmlItem `xml:"item"`
}

// ParseEnvelope reads a <qa> XML export.
func ParseEnvelope(r io.Reader) (Submission, error) {
	var env xmlEnvelope
	if err := xml.NewDecoder(r).Decode(&env); err != nil {
		return Submission{}, fmt.Errorf("ingest: parse envelope: %w", err)
	}
	if strings.TrimSpace(env.Template) == "" {
		return Submission{}, fmt.Errorf("ingest: envelope missing template attribute")
	}
	if len(env.Items) == 0 {
		return Submission{}, fmt.Errorf("ingest: envelope has no items")
	}
	sub := Submission{TemplateName: env.Template}
	for i, item := range env.Items {
		q := strings.TrimSpace(item.Question)
		if q == "" {
			return Submission{}, fmt.Errorf("ingest: envelope item %d has an empty question", i+1)
		}
		sub.Items = append(sub.Items, records.QAPair{Question: q, Answer: strings.TrimSpace(item.Answer)})
	}
	return sub, nil
}

// RenderEnvelope writes a stored submission back out in the legacy
// <qa> format, for systems that still consume the old exports.
func RenderEnvelope(sub records.InspectionSubmission) ([]byte, error) {
	env := xmlEnvelope{
		Template:  sub.TemplateName,
		Submitted: sub.SubmittedAt.UTC().Format(time.RFC3339),
	}
	for _, item := range sub.Items {
		env.Items = append(env.Items, xmlItem{Question: item.Question, Answer: item.Answer})
	}
	out, err := xml.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ingest: render envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
