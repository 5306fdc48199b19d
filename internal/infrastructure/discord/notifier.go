package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"TrendScout/internal/domain"
	"TrendScout/internal/ports"
)

// Notifier posts rich embeds to a Discord webhook when a profitable item is
// found. An empty webhook URL turns every send into a silent no-op.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the webhook endpoint.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
	Image       *embedImage  `json:"image,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

// NotifyProfitable sends one embed for the item. Only ranks S and A clear
// the gate; B items are persisted and shown on the dashboard but never
// alerted.
func (n *Notifier) NotifyProfitable(ctx context.Context, item domain.ListingItem, verdict domain.Verdict) error {
	if n.webhookURL == "" {
		return nil
	}

	if !domain.Alertable(verdict) {
		return nil
	}

	payload := map[string]any{
		"embeds": []embed{buildEmbed(item, verdict)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook error: %s", resp.Status)
	}

	return nil
}

func buildEmbed(item domain.ListingItem, verdict domain.Verdict) embed {
	color := 0xffff00
	if verdict.InvestmentValue == domain.RankS {
		color = 0x00ff00
	}

	e := embed{
		Title:       fmt.Sprintf("%s 【ランク %s】お宝商品を発見！", rankEmoji(verdict.InvestmentValue), verdict.InvestmentValue),
		Description: fmt.Sprintf("**%s**", item.Title),
		URL:         item.ProductURL,
		Color:       color,
		Fields: []embedField{
			{Name: "価格", Value: "¥" + FormatYen(item.Price), Inline: true},
			{Name: "熱狂度", Value: verdict.HeatLevel, Inline: true},
			{Name: "分析理由", Value: verdict.TrendReason},
			{Name: "未来予測", Value: verdict.FuturePrediction},
		},
	}

	if item.ImageURL != "" {
		e.Image = &embedImage{URL: item.ImageURL}
	}

	return e
}

func rankEmoji(rank domain.InvestmentRank) string {
	switch rank {
	case domain.RankS:
		return "💎"
	case domain.RankA:
		return "🔥"
	case domain.RankB:
		return "✅"
	case domain.RankC:
		return "👀"
	default:
		return "✨"
	}
}

// FormatYen renders an integer price with thousands separators.
func FormatYen(price int) string {
	s := strconv.Itoa(price)
	if price < 0 {
		s = s[1:]
	}

	var out []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digit)
	}

	if price < 0 {
		return "-" + string(out)
	}
	return string(out)
}
