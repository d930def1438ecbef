package recommendations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"haircare-backend/internal/llm"
	"haircare-backend/internal/quiz"
)

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

	errNoJSON       = errors.New("rerank reply has no JSON object")
	errEmptyRanking = errors.New("rerank reply has no usable ranking")
)

const rerankSystemPrompt = `You are a hair-care product expert. Re-rank the candidate products for the user's hair profile.
Reply with JSON only, in this shape:
{"ranking":[{"productId":"<id>","reason":"<one sentence for the user>"}],"summary":"<two sentences about the user's routine>"}
Only use productId values from the candidate list. Do not invent products.`

// Reranker asks a language model to reorder and explain the top products.
type Reranker struct {
	Client llm.Client
}

type rerankCandidate struct {
	ProductID   string   `json:"productId"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Ingredients []string `json:"ingredients,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Score       float64  `json:"score"`
}

type rerankReply struct {
	Ranking []struct {
		ProductID string `json:"productId"`
		Reason    string `json:"reason"`
	} `json:"ranking"`
	Summary string `json:"summary"`
}

// Rerank sends the first RerankN items to the model and returns the items in
// the model's order, followed by the rest in their existing order.
func (r *Reranker) Rerank(ctx context.Context, a quiz.Answers, items []Item) ([]Item, string, error) {
	if r == nil || r.Client == nil {
		return nil, "", llm.ErrNotConfigured
	}
	top := items
	if len(top) > RerankN {
		top = top[:RerankN]
	}
	prompt, err := buildRerankPrompt(a, top)
	if err != nil {
		return nil, "", err
	}
	resp, err := r.Client.Chat(ctx, llm.ChatRequest{
		System:      rerankSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		JSON:        true,
		Temperature: llm.Temperature(0.2),
	})
	if err != nil {
		return nil, "", err
	}
	reply, err := parseRerankReply(resp.Content)
	if err != nil {
		return nil, "", err
	}
	ordered, err := applyRanking(items, len(top), reply)
	if err != nil {
		return nil, "", err
	}
	return ordered, strings.TrimSpace(reply.Summary), nil
}

func buildRerankPrompt(a quiz.Answers, items []Item) (string, error) {
	candidates := make([]rerankCandidate, 0, len(items))
	for _, it := range items {
		ings := it.Product.Ingredients
		if len(ings) > 15 {
			ings = ings[:15]
		}
		candidates = append(candidates, rerankCandidate{
			ProductID:   it.Product.ID,
			Name:        it.Product.Name,
			Brand:       it.Product.Brand,
			Category:    it.Product.Category,
			Price:       it.Product.Price,
			Ingredients: ings,
			Tags:        it.Product.Tags,
			Score:       it.Score,
		})
	}
	raw, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}
	var b strings.Builder
	b.WriteString("User profile: ")
	b.WriteString(a.Summary())
	b.WriteString("\nCandidates:\n")
	b.Write(raw)
	return b.String(), nil
}

func parseRerankReply(content string) (rerankReply, error) {
	match := jsonObjectRe.FindString(content)
	if match == "" {
		return rerankReply{}, errNoJSON
	}
	var reply rerankReply
	if err := json.Unmarshal([]byte(match), &reply); err != nil {
		return rerankReply{}, fmt.Errorf("parse rerank reply: %w", err)
	}
	return reply, nil
}

// applyRanking drops repeated ids and ids outside the first sent items. It
// fails when nothing usable remains so the caller keeps the deterministic order.
func applyRanking(items []Item, sent int, reply rerankReply) ([]Item, error) {
	index := make(map[string]int, sent)
	for i := 0; i < sent && i < len(items); i++ {
		index[items[i].Product.ID] = i
	}
	used := make(map[int]bool, len(reply.Ranking))
	out := make([]Item, 0, len(items))
	for _, entry := range reply.Ranking {
		i, ok := index[strings.TrimSpace(entry.ProductID)]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		it := items[i]
		it.AIRanked = true
		if reason := strings.TrimSpace(entry.Reason); reason != "" {
			it.Explanation = reason
		}
		out = append(out, it)
	}
	if len(out) == 0 {
		return nil, errEmptyRanking
	}
	for i, it := range items {
		if !used[i] {
			out = append(out, it)
		}
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}
