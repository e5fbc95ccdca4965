// Package keyword implements an offline ChatProvider that answers from a
// fixed rule table. It is used when no language-model API is configured.
package keyword

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

var _ ports.ChatProvider = (*Provider)(nil)

// Rule maps any of its keywords to a canned reply.
type Rule struct {
	Keywords []string
	Reply    string
}

// DefaultRules covers the common sales-assistant questions. Earlier rules win.
var DefaultRules = []Rule{
	{
		Keywords: []string{"price", "pricing", "cost", "quote", "budget", "价格", "报价"},
		Reply:    "Share the customer's budget and seat count and I can draft a quote. Standard plans are billed annually.",
	},
	{
		Keywords: []string{"demo", "presentation", "演示"},
		Reply:    "Schedule the demo within a week of the last meeting and focus on the customer's stated requirement.",
	},
	{
		Keywords: []string{"follow up", "follow-up", "followup", "remind", "跟进"},
		Reply:    "Check the next follow-up date on the customer card; a short recap email the day before works well.",
	},
	{
		Keywords: []string{"hello", "hi", "hey", "你好"},
		Reply:    "Hello! Ask me about pricing, demos or follow-ups for your customers.",
	},
}

const defaultReply = "I can help with pricing, demos and follow-ups. Could you tell me more?"

type Provider struct {
	rules []Rule
}

// NewProvider returns a Provider using rules, or DefaultRules when rules is
// empty.
func NewProvider(rules []Rule) *Provider {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Provider{rules: rules}
}

func (p *Provider) Name() string { return "keyword" }

// Complete returns a JSON {"text","tone"} object, the same shape a
// configured language model is prompted to produce.
func (p *Provider) Complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := json.Marshal(domain.ChatReply{Text: p.match(req.Message), Tone: domain.ToneNormal})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (p *Provider) match(message string) string {
	msg := strings.ToLower(message)
	words := strings.FieldsFunc(msg, func(r rune) bool {
		return !(r == '-' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, rule := range p.rules {
		for _, kw := range rule.Keywords {
			if containsKeyword(msg, words, kw) {
				return rule.Reply
			}
		}
	}
	return defaultReply
}

// containsKeyword matches single ASCII words exactly so "hi" does not fire
// on "this"; phrases and non-ASCII keywords use substring matching.
func containsKeyword(msg string, words []string, kw string) bool {
	if strings.ContainsAny(kw, " ") || !isASCIIWord(kw) {
		return strings.Contains(msg, kw)
	}
	for _, w := range words {
		if w == kw {
			return true
		}
	}
	return false
}

func isASCIIWord(s string) bool {
	for _, r := range s {
		if !(r == '-' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
