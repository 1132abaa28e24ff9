package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Smear6uard/CloseOut/internal/config"
	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const classifyPrompt = `Analyze this construction defect photo. Return a JSON array of tags describing the defect. Tags should be short (1-3 words) and relevant to construction (e.g., "crack", "water damage", "missing fixture", "paint defect", "electrical issue"). Return ONLY a JSON array of strings, no other text. Example: ["crack", "concrete damage", "structural"]`

const comparePrompt = `Compare these two construction photos. The first shows a defect, the second shows the repair/completion. Determine if the defect has been properly addressed. Return ONLY a JSON object with these fields:
- "match": boolean (true if the defect appears to be fixed)
- "confidence": number between 0 and 1
- "summary": string (1-2 sentence description of the comparison)

Example: {"match": true, "confidence": 0.85, "summary": "The crack in the drywall has been properly patched and painted. The repair appears complete."}`

const (
	jobClassify = "classify"
	jobCompare  = "compare"
)

type visionJob struct {
	kind               string
	punchItemID        uuid.UUID
	defectPhotoURL     string
	completionPhotoURL string
}

// VisionService runs the fire-and-forget photo annotation pipeline: jobs are
// queued on a channel, processed one at a time by a worker goroutine with a
// bounded per-call timeout, and every failure is logged and swallowed. The
// triggering write never learns whether annotation succeeded.
type VisionService struct {
	db      *gorm.DB
	client  *openai.Client
	model   string
	timeout time.Duration
	jobs    chan visionJob
	wg      sync.WaitGroup
}

func NewVisionService(db *gorm.DB, cfg *config.Config) *VisionService {
	s := &VisionService{
		db:      db,
		model:   cfg.OpenAIModel,
		timeout: cfg.AITimeout,
		jobs:    make(chan visionJob, 64),
	}
	if cfg.OpenAIAPIKey != "" {
		s.client = openai.NewClient(cfg.OpenAIAPIKey)
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	return s
}

// Start launches the worker goroutine.
func (s *VisionService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for job := range s.jobs {
			s.process(job)
		}
	}()
}

// Stop drains the queue and waits for the worker to finish.
func (s *VisionService) Stop() {
	close(s.jobs)
	s.wg.Wait()
}

func (s *VisionService) DispatchClassify(punchItemID uuid.UUID, defectPhotoURL string) {
	s.enqueue(visionJob{kind: jobClassify, punchItemID: punchItemID, defectPhotoURL: defectPhotoURL})
}

func (s *VisionService) DispatchCompare(punchItemID uuid.UUID, defectPhotoURL, completionPhotoURL string) {
	s.enqueue(visionJob{
		kind:               jobCompare,
		punchItemID:        punchItemID,
		defectPhotoURL:     defectPhotoURL,
		completionPhotoURL: completionPhotoURL,
	})
}

func (s *VisionService) enqueue(job visionJob) {
	if s.client == nil {
		slog.Info("AI annotation skipped: no API key configured", "punch_item_id", job.punchItemID)
		return
	}
	select {
	case s.jobs <- job:
	default:
		slog.Warn("AI annotation queue full, dropping job", "kind", job.kind, "punch_item_id", job.punchItemID)
	}
}

func (s *VisionService) process(job visionJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var err error
	switch job.kind {
	case jobClassify:
		err = s.classify(ctx, job)
	case jobCompare:
		err = s.compare(ctx, job)
	}
	if err != nil {
		slog.Error("AI annotation failed", "kind", job.kind, "punch_item_id", job.punchItemID, "error", err)
	}
}

func (s *VisionService) classify(ctx context.Context, job visionJob) error {
	if job.defectPhotoURL == "" {
		return fmt.Errorf("missing defect photo URL")
	}

	content, err := s.complete(ctx, classifyPrompt, 200, job.defectPhotoURL)
	if err != nil {
		return err
	}

	var raw []interface{}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &raw); err != nil {
		return fmt.Errorf("response is not a JSON array: %w", err)
	}

	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			tags = append(tags, str)
		} else {
			tags = append(tags, fmt.Sprint(v))
		}
	}

	b, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return s.patch(job.punchItemID, map[string]interface{}{
		"ai_tags":    datatypes.JSON(b),
		"updated_at": time.Now(),
	})
}

func (s *VisionService) compare(ctx context.Context, job visionJob) error {
	if job.defectPhotoURL == "" || job.completionPhotoURL == "" {
		return fmt.Errorf("missing photo URL(s)")
	}

	content, err := s.complete(ctx, comparePrompt, 300, job.defectPhotoURL, job.completionPhotoURL)
	if err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &raw); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}

	match, okMatch := raw["match"].(bool)
	confidence, okConfidence := raw["confidence"].(float64)
	summary, okSummary := raw["summary"].(string)
	if !okMatch || !okConfidence || !okSummary {
		return fmt.Errorf("comparison result has wrong shape")
	}

	b, err := json.Marshal(models.AIComparison{Match: match, Confidence: confidence, Summary: summary})
	if err != nil {
		return err
	}
	return s.patch(job.punchItemID, map[string]interface{}{
		"ai_comparison_result": datatypes.JSON(b),
		"updated_at":           time.Now(),
	})
}

func (s *VisionService) complete(ctx context.Context, prompt string, maxTokens int, photoURLs ...string) (string, error) {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt},
	}
	for _, url := range photoURLs {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: url},
		})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *VisionService) patch(punchItemID uuid.UUID, updates map[string]interface{}) error {
	return s.db.Model(&models.PunchItem{}).Where("id = ?", punchItemID).Updates(updates).Error
}

// stripCodeFences unwraps ```json ... ``` blocks some models emit despite the
// "ONLY JSON" instruction.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
