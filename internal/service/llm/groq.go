package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"medchat/internal/config"
	"medchat/internal/logger"
	"medchat/internal/repository/db"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// ErrMissingAPIKey is returned by the first call made without GROQ_API_KEY
var ErrMissingAPIKey = errors.New("GROQ_API_KEY not configured")

const (
	translationTemperature = 0.3
	summaryTemperature     = 0.5

	defaultAudioFilename    = "audio.webm"
	defaultAudioContentType = "audio/webm"
)

const translationSystemPrompt = "You are a professional medical translator specializing in English-Hindi translation. " +
	"Provide accurate translations while preserving medical terminology. " +
	"Only provide the translation, no explanations or extra text."

const summarySystemPrompt = "You are a medical AI assistant that analyzes doctor-patient conversations. " +
	"Always respond with valid JSON only, no markdown, no backticks, no extra text."

const summaryUserPrompt = `Analyze this doctor-patient conversation and return ONLY a JSON object with this exact structure:
{
  "summary": "Brief overview of the consultation",
  "medicalHighlights": {
    "symptoms": ["symptom1", "symptom2"],
    "diagnoses": ["diagnosis1"],
    "medications": ["medication1"],
    "followUp": ["action1", "action2"]
  }
}

Conversation:
%s`

// Ensure GroqProvider implements LanguageService
var _ LanguageService = (*GroqProvider)(nil)

// GroqProvider implements LanguageService against Groq's OpenAI-compatible API
type GroqProvider struct {
	config *config.LLMConfig
	models *config.ModelsConfig

	mu     sync.Mutex
	client *openai.Client
}

// NewGroqProvider creates a provider. The HTTP client is built on first use.
func NewGroqProvider(llmConfig *config.LLMConfig, modelsConfig *config.ModelsConfig) *GroqProvider {
	return &GroqProvider{
		config: llmConfig,
		models: modelsConfig,
	}
}

func (p *GroqProvider) getClient() (*openai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(p.config.APIKey),
		option.WithMaxRetries(0),
	}
	if p.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(p.config.BaseURL, "/")+"/"))
	}

	client := openai.NewClient(opts...)
	p.client = &client

	logger.Log.WithField("base_url", p.config.BaseURL).Info("Initialized language service client")
	return p.client, nil
}

func (p *GroqProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.config.RequestTimeout)
}

// Translate translates text between English and Hindi
func (p *GroqProvider) Translate(ctx context.Context, text string, src, tgt db.Language) (string, error) {
	userPrompt := fmt.Sprintf("Translate the following %s text to %s:\n\n%s", src.Name(), tgt.Name(), text)

	out, err := p.chat(ctx, "translate", translationSystemPrompt, userPrompt, translationTemperature)
	if err != nil {
		return "", err
	}

	translated := strings.TrimSpace(out)
	if translated == "" {
		return "", errors.New("empty translation returned")
	}
	return translated, nil
}

// Summarize asks the chat model for a JSON summary of the transcript
func (p *GroqProvider) Summarize(ctx context.Context, transcript string) (string, error) {
	userPrompt := fmt.Sprintf(summaryUserPrompt, transcript)
	return p.chat(ctx, "summarize", summarySystemPrompt, userPrompt, summaryTemperature)
}

// Transcribe sends the clip to the speech-to-text model
func (p *GroqProvider) Transcribe(ctx context.Context, audio []byte, filename, contentType, language string) (string, error) {
	client, err := p.getClient()
	if err != nil {
		return "", err
	}

	if filename == "" {
		filename = defaultAudioFilename
	}
	if contentType == "" {
		contentType = defaultAudioContentType
	}
	model := p.models.ModelForTask(config.TaskTranscription)

	log := logger.Log.WithFields(logrus.Fields{
		"operation":   "transcribe",
		"model":       model,
		"audio_bytes": len(audio),
		"language":    language,
	})
	log.Info("Calling language service")

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filename, contentType),
		Model: openai.AudioModel(model),
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	callCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := client.Audio.Transcriptions.New(callCtx, params)
	if err != nil {
		log.WithError(err).Error("Transcription request failed")
		return "", fmt.Errorf("error transcribing audio: %w", err)
	}

	log.WithFields(logrus.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
		"text_chars":  len(resp.Text),
	}).Info("Transcription completed")

	return resp.Text, nil
}

func (p *GroqProvider) chat(ctx context.Context, operation, systemPrompt, userPrompt string, temperature float64) (string, error) {
	client, err := p.getClient()
	if err != nil {
		return "", err
	}

	model := p.models.ModelForTask(config.TaskChat)
	log := logger.Log.WithFields(logrus.Fields{
		"operation":   operation,
		"model":       model,
		"temperature": fmt.Sprintf("%.2f", temperature),
	})
	log.Info("Calling language service")

	callCtx, cancel := p.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		log.WithError(err).Error("Chat completion request failed")
		return "", fmt.Errorf("error calling chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in chat completion response")
	}

	log.WithFields(logrus.Fields{
		"duration_ms":       time.Since(start).Milliseconds(),
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Info("Chat completion finished")

	return resp.Choices[0].Message.Content, nil
}
