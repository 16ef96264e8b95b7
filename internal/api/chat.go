package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/schollz/closestmatch"

	"github.com/greenbasket/greenbasket-web/config"
	"github.com/greenbasket/greenbasket-web/internal/llm"
	"github.com/greenbasket/greenbasket-web/internal/logger"
	"github.com/greenbasket/greenbasket-web/internal/services"
	"github.com/greenbasket/greenbasket-web/internal/tts"
)

const assistantPrompt = `You are the GreenBasket shopping assistant. You help customers find
sustainable products and understand their environmental impact. Answer
briefly and concretely. Customer message: %s`

// Intents the proxy answers locally instead of forwarding to the model.
const (
	intentMyChallenges = "my_challenges"
	intentMyBadges     = "my_badges"
	intentGeneral      = "general"
)

// intentPhrases maps example utterances to intents; the closest match to
// the incoming message decides. Anything mapping to general goes to the
// LLM.
var intentPhrases = map[string]string{
	"how are my challenges doing":       intentMyChallenges,
	"show my challenge progress":        intentMyChallenges,
	"my challenges":                     intentMyChallenges,
	"challenge progress":                intentMyChallenges,
	"how much co2 have i saved":         intentMyChallenges,
	"am i done with my challenge":       intentMyChallenges,
	"show my badges":                    intentMyBadges,
	"what badges do i have":             intentMyBadges,
	"my badges":                         intentMyBadges,
	"what is a good eco product":        intentGeneral,
	"recommend me something":            intentGeneral,
	"tell me about this product":        intentGeneral,
	"how does shipping work":            intentGeneral,
	"what do you sell":                  intentGeneral,
	"help me find a sustainable option": intentGeneral,
}

type ChatHandler struct {
	cfg        *config.Config
	challenges *services.ChallengeService
	matcher    *closestmatch.ClosestMatch
	log        *logger.Log
}

func NewChatHandler(cfg *config.Config, challenges *services.ChallengeService) *ChatHandler {
	phrases := make([]string, 0, len(intentPhrases))
	for p := range intentPhrases {
		phrases = append(phrases, p)
	}

	return &ChatHandler{
		cfg:        cfg,
		challenges: challenges,
		matcher:    closestmatch.New(phrases, []int{2, 3}),
		log:        logger.New(),
	}
}

type chatRequest struct {
	Message string `json:"message"`
	Voice   bool   `json:"voice,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
	Intent   string `json:"intent"`
	AudioMP3 string `json:"audio_mp3,omitempty"` // base64 when voice requested
}

// POST /api/v1/chat
func (c *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := requireUser(w, r)
	if userID == 0 {
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	intent := c.classify(req.Message)
	var (
		reply string
		err   error
	)
	switch intent {
	case intentMyChallenges:
		reply, err = c.challengeSummary(userID)
	case intentMyBadges:
		reply, err = c.badgeSummary(userID)
	default:
		reply, err = c.forwardToLLM(r.Context(), req.Message)
	}
	if err != nil {
		c.log.WithError(err).Error("chat request failed")
		http.Error(w, "Assistant unavailable", http.StatusBadGateway)
		return
	}

	resp := chatResponse{Response: reply, Intent: intent}
	if req.Voice && c.cfg.Tts.Enabled {
		if audio := c.synthesize(r.Context(), reply); len(audio) > 0 {
			resp.AudioMP3 = base64.StdEncoding.EncodeToString(audio)
		}
	}
	writeJSON(w, resp)
}

func (c *ChatHandler) classify(message string) string {
	match := c.matcher.Closest(strings.ToLower(message))
	if intent, ok := intentPhrases[match]; ok {
		return intent
	}
	return intentGeneral
}

// challengeSummary answers the progress intent from the engine itself,
// through the same shared path the recheck endpoint uses. Completions
// newly detected here award and persist their badge like anywhere else.
func (c *ChatHandler) challengeSummary(userID int) (string, error) {
	views, err := c.challenges.CheckProgress(userID)
	if err != nil {
		return "", err
	}
	if len(views) == 0 {
		return "You haven't joined any challenges yet. Place an eco-friendly order and you'll be enrolled automatically!", nil
	}

	var b strings.Builder
	b.WriteString("Here's where you stand:\n")
	for _, v := range views {
		status := "in progress"
		if v.Completed {
			status = "completed 🎉"
		}
		fmt.Fprintf(&b, "• %s — %s (%s)\n", v.Challenge.Name, v.Progress.Description, status)
	}
	return b.String(), nil
}

func (c *ChatHandler) badgeSummary(userID int) (string, error) {
	badges, err := c.challenges.Badges(userID)
	if err != nil {
		return "", err
	}
	if len(badges) == 0 {
		return "No badges yet. Complete a challenge to earn your first one!", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You've earned %d badge(s):\n", len(badges))
	for _, badge := range badges {
		fmt.Fprintf(&b, "• %s — %s (earned %s)\n", badge.Name, badge.Description, badge.DateEarned.Format("Jan 2, 2006"))
	}
	return b.String(), nil
}

func (c *ChatHandler) forwardToLLM(ctx context.Context, message string) (string, error) {
	client, err := llm.NewLLMClient(c.cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create LLM client: %w", err)
	}
	if err := client.IsModelAvailable(ctx); err != nil {
		return "", fmt.Errorf("model not available: %w", err)
	}
	return client.GenerateResponse(ctx, fmt.Sprintf(assistantPrompt, message))
}

func (c *ChatHandler) synthesize(ctx context.Context, text string) []byte {
	client, err := tts.New(c.cfg.Tts.Type, c.cfg.Tts.CredentialsFile)
	if err != nil {
		c.log.WithError(err).Warn("tts unavailable")
		return nil
	}
	audio, err := client.GenerateAudio(ctx, text, c.cfg.Tts.Voice)
	if err != nil {
		c.log.WithError(err).Warn("tts synthesis failed")
		return nil
	}
	return audio
}
