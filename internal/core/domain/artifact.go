package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

type ArtifactKey string

const (
	ArtifactChatMessages ArtifactKey = "chatMessages"
	ArtifactQuestions    ArtifactKey = "questions"
	ArtifactFlashcards   ArtifactKey = "flashcards"
	ArtifactSummary      ArtifactKey = "summary"
	ArtifactKeywords     ArtifactKey = "keywords"
)

// ArtifactKeys lists every cached tool output in a stable order.
var ArtifactKeys = []ArtifactKey{
	ArtifactChatMessages,
	ArtifactQuestions,
	ArtifactFlashcards,
	ArtifactSummary,
	ArtifactKeywords,
}

// Artifact is the cached output of one tool.
type Artifact interface {
	ArtifactKey() ArtifactKey
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatMessage struct {
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Sources []Source `json:"sources,omitempty"`
}

type Source struct {
	Page PageNumber `json:"page"`
	Text string     `json:"text"`
}

// PageNumber decodes numeric or numeric-string pages; anything else becomes 0.
type PageNumber int

func (p *PageNumber) UnmarshalJSON(raw []byte) error {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		*p = PageNumber(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*p = PageNumber(parsed)
			return nil
		}
	}
	*p = 0
	return nil
}

type ChatTranscript []ChatMessage

func (ChatTranscript) ArtifactKey() ArtifactKey { return ArtifactChatMessages }

type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

type QuestionSet []Question

func (QuestionSet) ArtifactKey() ArtifactKey { return ArtifactQuestions }

type Flashcard struct {
	Front    string `json:"front"`
	Back     string `json:"back"`
	Location string `json:"location"`
}

type FlashcardSet []Flashcard

func (FlashcardSet) ArtifactKey() ArtifactKey { return ArtifactFlashcards }

type Summary string

func (Summary) ArtifactKey() ArtifactKey { return ArtifactSummary }

// KeywordText is the raw markdown returned by the keyword tool.
type KeywordText string

func (KeywordText) ArtifactKey() ArtifactKey { return ArtifactKeywords }

type KeywordCategory struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// ChatReply is the decoded /api/chat response.
type ChatReply struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
}
