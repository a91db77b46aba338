package models

import "time"

// SceneTask is one objective the player has to complete in a practice scene
type SceneTask struct {
	TaskID         string   `json:"task_id"`
	ExpectedIntent string   `json:"expected_intent,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// TaskResult is the completion service's verdict for one scene task.
// A task counts as completed at score >= 70.
type TaskResult struct {
	TaskID    string `json:"task_id"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
	Feedback  string `json:"feedback"`
}

// NPCResponse is the in-character reply produced for the player
type NPCResponse struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Emotion     string `json:"emotion"`
}

// SceneEvaluation is the structured result of one practice exchange
type SceneEvaluation struct {
	SceneID     string           `json:"scene_id"`
	InputText   string           `json:"input_text"`
	Tasks       []TaskResult     `json:"tasks"`
	NPCResponse NPCResponse      `json:"npc_response"`
	Hint        string           `json:"hint,omitempty"`
	WordsToAdd  []VocabularyItem `json:"words_to_add"`
}

// MemorySnapshot records progression right after an exchange was applied
type MemorySnapshot struct {
	XP         int    `json:"xp"`
	Level      int    `json:"level"`
	Difficulty string `json:"difficulty"`
}

// ConversationEntry is one row of the raw interaction log
type ConversationEntry struct {
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	SceneID     string           `json:"scene_id"`
	UserInput   string           `json:"user_input"`
	Tasks       []SceneTask      `json:"tasks"`
	Evaluation  *SceneEvaluation `json:"evaluation,omitempty"`
	XPGained    int              `json:"xp_gained"`
	MemoryAfter MemorySnapshot   `json:"memory_after"`
}
