package recommend

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/planwell/planwell/internal/course"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = `Return ONLY a JSON object exactly like: {"courseID":""}.
No commentary.
If nothing fits, return {"courseID":""}.`

// completionClient is the slice of the OpenAI client the recommender needs;
// tests substitute a fake.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI asks a chat-completion model to pick one candidate course. The
// prompt carries only a slim view of each candidate (ID, title, instructor)
// and a minimal preference summary, never the full records.
type OpenAI struct {
	client completionClient
	model  string
}

// NewOpenAI builds the primary recommendation stage from the environment.
// Returns nil when OPENAI_API_KEY is unset: the stage is simply absent from
// the chain and the pipeline falls through to the next strategy.
func NewOpenAI(model string) *OpenAI {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		slog.Debug("OPENAI_API_KEY not set, AI recommendation stage disabled")
		return nil
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

// Name implements Recommender.
func (o *OpenAI) Name() string { return "openai" }

// Choose implements Recommender. Malformed responses and transport errors
// are reported to the chain, which logs and falls through; the pick must be
// one of the given candidate IDs or the stage declines.
func (o *OpenAI) Choose(ctx context.Context, owner string, candidates []course.Course, prefs Preferences) (*course.Course, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	prompt, err := buildPrompt(owner, candidates, prefs)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	picked := parsePick(resp.Choices[0].Message.Content)
	if picked == "" {
		return nil, nil
	}
	for _, c := range candidates {
		if c.CourseID == picked {
			found := c
			return &found, nil
		}
	}
	// The model invented an ID; decline rather than error.
	slog.Debug("model picked an unknown course id", "picked", picked)
	return nil, nil
}

// slimCandidate is the reduced candidate view sent to the model.
type slimCandidate struct {
	CourseID   string `json:"courseID"`
	Title      string `json:"title"`
	Instructor string `json:"instructor"`
}

// buildPrompt assembles the user message: a compact JSON summary of the
// student and the slim candidate list.
func buildPrompt(owner string, candidates []course.Course, prefs Preferences) (string, error) {
	slim := make([]slimCandidate, len(candidates))
	for i, c := range candidates {
		slim[i] = slimCandidate{CourseID: c.CourseID, Title: c.Title, Instructor: c.Instructor}
	}

	user, err := json.Marshal(map[string]any{
		"id":        owner,
		"major":     prefs.Major,
		"interests": prefs.Interests,
	})
	if err != nil {
		return "", err
	}
	cands, err := json.Marshal(slim)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("USER=")
	b.Write(user)
	b.WriteString("\nCANDIDATES=")
	b.Write(cands)
	return b.String(), nil
}

var pickPattern = regexp.MustCompile(`"courseID"\s*:\s*"([^"]+)"`)

// parsePick extracts the chosen course ID from the model's reply. Code
// fences are stripped, JSON is tried first, and a regex fallback handles
// replies with stray commentary. Anything unparseable yields "".
func parsePick(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var obj struct {
		CourseID string `json:"courseID"`
	}
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj.CourseID
	}

	if m := pickPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
