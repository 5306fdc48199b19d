package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TrendScout/internal/config"
	"TrendScout/internal/domain"
	"TrendScout/internal/ports"
)

const judgePrompt = `あなたはプロの「トレンド分析官」です。
Googleトレンドで急上昇し、フリマアプリでも活発に取引されている以下の商品について、
「なぜ今、価格が上がっているのか？」という背景と、今後の予測を行ってください。

【商品情報】
タイトル: %s
現在価格: ¥%d

【分析要件】
1. trend_reason: 価格上昇や注目の理由を推測。
2. heat_level: 熱狂度を "High", "Medium", "Low" で判定。
3. future_prediction: 今後の価格推移予測。
4. investment_value: 投資価値判定（S/A/B/C）。
5. genre: この商品のジャンルを1語で特定（例：家電, ファッション, ゲーム, おもちゃ, 車, スポーツ, その他）。

【出力フォーマット(JSONのみ)】
{"trend_reason": "...", "heat_level": "...", "future_prediction": "...", "investment_value": "...", "genre": "..."}`

const extractPrompt = `以下のニュース見出しから、フリマアプリで検索できる具体的な商品名・製品名を最大%d個抽出してください。
「スマホ」「ゲーム」のような一般的な語は除外し、固有の製品を指す語のみを返してください。

【見出し】
%s

【出力フォーマット(JSONのみ)】
{"keywords": ["...", "..."]}`

// GeminiClient talks to the Gemini generateContent API for both the per-item
// verdict and headline keyword extraction.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.JudgmentClient = (*GeminiClient)(nil)
var _ ports.KeywordExtractor = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.GeminiConfig) *GeminiClient {
	return &GeminiClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Judge asks for a structured verdict on one listing. Any response that
// fails to parse into the verdict shape comes back as an error and the
// caller leaves the item untouched.
func (c *GeminiClient) Judge(ctx context.Context, title string, price int) (domain.Verdict, error) {
	prompt := fmt.Sprintf(judgePrompt, title, price)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return domain.Verdict{}, err
	}

	var verdict domain.Verdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if err := validateVerdict(verdict); err != nil {
		return domain.Verdict{}, err
	}

	return verdict, nil
}

// ExtractKeywords pulls up to limit concrete product terms out of headlines.
func (c *GeminiClient) ExtractKeywords(ctx context.Context, headlines []string, limit int) ([]string, error) {
	prompt := fmt.Sprintf(extractPrompt, limit, strings.Join(headlines, "\n"))

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}

	if limit > 0 && len(parsed.Keywords) > limit {
		parsed.Keywords = parsed.Keywords[:limit]
	}

	return parsed.Keywords, nil
}

// generate posts a single-prompt request and returns the model's JSON text.
func (c *GeminiClient) generate(ctx context.Context, prompt string) ([]byte, error) {
	if c.apiKey == "" || c.model == "" || c.endpoint == "" {
		return nil, fmt.Errorf("gemini client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]string{
			"response_mime_type": "application/json",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var envelope struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	return []byte(envelope.Candidates[0].Content.Parts[0].Text), nil
}

func validateVerdict(v domain.Verdict) error {
	switch v.InvestmentValue {
	case domain.RankS, domain.RankA, domain.RankB, domain.RankC:
	default:
		return fmt.Errorf("verdict has unknown investment value %q", v.InvestmentValue)
	}

	switch v.HeatLevel {
	case "High", "Medium", "Low":
	default:
		return fmt.Errorf("verdict has unknown heat level %q", v.HeatLevel)
	}

	if v.TrendReason == "" {
		return fmt.Errorf("verdict missing trend reason")
	}
	if v.FuturePrediction == "" {
		return fmt.Errorf("verdict missing future prediction")
	}
	if v.Genre == "" {
		return fmt.Errorf("verdict missing genre")
	}

	return nil
}
