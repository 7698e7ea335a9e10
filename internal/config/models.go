package config

import (
	"encoding/json"
	"os"
)

// Tasks a model can be assigned to
const (
	TaskChat          = "chat"
	TaskTranscription = "transcription"
)

// Built-in models used when no models file is configured
const (
	DefaultChatModel          = "llama-3.3-70b-versatile"
	DefaultTranscriptionModel = "whisper-large-v3"
	DefaultProvider           = "Groq"
)

// Model represents an available language model
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Task     string `json:"task"`
}

// ModelsConfig holds the available models configuration
type ModelsConfig struct {
	models []Model
}

// NewModelsConfig creates a new models configuration from a file
func NewModelsConfig(configPath string) (*ModelsConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var models []Model
	err = json.Unmarshal(data, &models)
	if err != nil {
		return nil, err
	}

	return &ModelsConfig{models: models}, nil
}

// LoadModelsConfig reads configPath when set and falls back to the built-in
// defaults otherwise
func LoadModelsConfig(configPath string) (*ModelsConfig, error) {
	if configPath == "" {
		return DefaultModelsConfig(), nil
	}
	return NewModelsConfig(configPath)
}

// DefaultModelsConfig returns the built-in Groq model set
func DefaultModelsConfig() *ModelsConfig {
	return &ModelsConfig{models: []Model{
		{ID: DefaultChatModel, Name: "Llama 3.3 70B Versatile", Provider: DefaultProvider, Task: TaskChat},
		{ID: DefaultTranscriptionModel, Name: "Whisper Large v3", Provider: DefaultProvider, Task: TaskTranscription},
	}}
}

// GetAvailableModels returns the list of available models
func (mc *ModelsConfig) GetAvailableModels() []Model {
	return mc.models
}

// ModelForTask returns the first model configured for task, falling back to
// the built-in default
func (mc *ModelsConfig) ModelForTask(task string) string {
	for _, model := range mc.models {
		if model.Task == task {
			return model.ID
		}
	}
	if task == TaskTranscription {
		return DefaultTranscriptionModel
	}
	return DefaultChatModel
}

// Override puts modelID first for task so that ModelForTask returns it.
// A model already listed for task keeps its name and provider; an unlisted
// one takes the provider of the entry it shadows.
func (mc *ModelsConfig) Override(task, modelID string) {
	entry := Model{ID: modelID, Name: modelID, Provider: DefaultProvider, Task: task}
	var listed *Model
	shadowedProvider := ""

	rest := make([]Model, 0, len(mc.models))
	for i, model := range mc.models {
		if model.Task != task {
			rest = append(rest, model)
			continue
		}
		if model.ID == modelID {
			listed = &mc.models[i]
			continue
		}
		if shadowedProvider == "" {
			shadowedProvider = model.Provider
		}
		rest = append(rest, model)
	}

	switch {
	case listed != nil:
		entry = *listed
	case shadowedProvider != "":
		entry.Provider = shadowedProvider
	}
	mc.models = append([]Model{entry}, rest...)
}
