package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"campus-companion/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// judgeAnswerLimit truncates the matched answer inside the relevance prompt.
const judgeAnswerLimit = 200

// LLMService talks to GigaChat for the three external-model concerns:
// free-text answer generation, the yes/no relevance judgment, and sentence
// embeddings. Without credentials the service stays disabled and every call
// degrades per its caller's policy instead of failing the pipeline.
type LLMService struct {
	client      *gigago.Client
	judgeModel  *gigago.GenerativeModel
	config      *config.GigaChatConfig
	logger      *zap.Logger
	httpClient  *http.Client
	baseURL     string
	tokenMu     sync.RWMutex
	accessToken string
}

func (s *LLMService) token() string {
	s.tokenMu.RLock()
	defer s.tokenMu.RUnlock()
	return s.accessToken
}

func (s *LLMService) setToken(token string) {
	s.tokenMu.Lock()
	s.accessToken = token
	s.tokenMu.Unlock()
}

func NewLLMService(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	if cfg.APIKey == "" {
		logger.Warn("GIGACHAT_API_KEY not set, LLM features are disabled")
		return &LLMService{config: cfg, logger: logger}, nil
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	// Deterministic decoding keeps the yes/no verdict stable across repeated
	// calls at the same score.
	judgeModel := client.GenerativeModel("GigaChat")
	judgeModel.Temperature = 0

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	service := &LLMService{
		client:     client,
		judgeModel: judgeModel,
		config:     cfg,
		logger:     logger,
		httpClient: httpClient,
		// Base URL for the GigaChat REST API, used for the embeddings
		// endpoint which the SDK client does not cover.
		// Documentation: https://developers.sber.ru/docs/ru/gigachat/api/main
		baseURL: "https://gigachat.devices.sberbank.ru/api/v1",
	}

	accessToken, err := getAccessToken(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	service.accessToken = accessToken

	return service, nil
}

// Enabled reports whether credentials were configured.
func (s *LLMService) Enabled() bool {
	return s.client != nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint.
// The API key is expected to be Base64-encoded already, per the GigaChat docs.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, error) {
	oauthURL := "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
		)
		return "", fmt.Errorf("OAuth failed with status %d", resp.StatusCode)
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	return oauthResp.AccessToken, nil
}

// GenerateAnswer asks the model to answer a query the knowledge base could
// not, with a system context naming the topics the service covers.
func (s *LLMService) GenerateAnswer(ctx context.Context, query string, topics []string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("LLM service is disabled: no credentials configured")
	}

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: query},
	}

	// Each call gets its own model value, so concurrent fallbacks carry their
	// own instruction and never serialize on shared state.
	model := s.client.GenerativeModel("GigaChat")
	model.Temperature = 0.7
	model.SystemInstruction = answerInstruction(topics)

	resp, err := model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func answerInstruction(topics []string) string {
	return fmt.Sprintf(
		"You are a helpful AI assistant for university students in Barcelona. You help with: %s. Be concise and helpful.",
		strings.Join(topics, ", "),
	)
}

// Judge asks for a single yes/no verdict on whether the matched item answers
// the query. Any transport failure or off-format reply is Inconclusive; the
// caller decides what that means.
func (s *LLMService) Judge(ctx context.Context, query, matchedQuestion, matchedAnswer string) Judgment {
	if !s.Enabled() {
		return JudgmentInconclusive
	}

	answer := matchedAnswer
	if runes := []rune(answer); len(runes) > judgeAnswerLimit {
		answer = string(runes[:judgeAnswerLimit])
	}

	prompt := fmt.Sprintf(`A student asked: %q

The knowledge base matched this entry:
Question: %q
Answer: %q

Does the matched entry actually answer the student's question? Reply with exactly one word: YES or NO.`,
		query, matchedQuestion, answer)

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.judgeModel.Generate(ctx, messages)
	if err != nil {
		s.logger.Warn("Relevance judgment call failed", zap.Error(err))
		return JudgmentInconclusive
	}
	if len(resp.Choices) == 0 {
		return JudgmentInconclusive
	}

	verdict := parseVerdict(resp.Choices[0].Message.Content)
	if verdict == JudgmentInconclusive {
		s.logger.Warn("Unexpected relevance verdict", zap.String("reply", resp.Choices[0].Message.Content))
	}
	return verdict
}

// parseVerdict maps a judge reply onto a Judgment by its leading word. Models
// sometimes pad the verdict ("Yes, it does"), so only the prefix counts.
func parseVerdict(content string) Judgment {
	verdict := strings.ToUpper(strings.TrimSpace(content))
	switch {
	case strings.HasPrefix(verdict, "YES"):
		return JudgmentAffirmative
	case strings.HasPrefix(verdict, "NO"):
		return JudgmentNegative
	default:
		return JudgmentInconclusive
	}
}

// Embed encodes texts with the frozen GigaChat embedding model via the REST
// API. Endpoint: POST /embeddings.
func (s *LLMService) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("embedding model requires GigaChat credentials")
	}

	requestBody := map[string]interface{}{
		"model": s.config.EmbeddingModel,
		"input": texts,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired: refresh once and retry.
		resp.Body.Close()
		accessToken, err := getAccessToken(ctx, s.config, s.httpClient, s.logger)
		if err != nil {
			return nil, fmt.Errorf("embeddings failed with 401, token refresh also failed: %w", err)
		}
		s.setToken(accessToken)

		req, err = http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.token())

		resp, err = s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("embeddings request failed: %w", err)
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}
	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(embResp.Data), len(texts))
	}

	vectors := make([][]float64, len(texts))
	for _, d := range embResp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings response has out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
