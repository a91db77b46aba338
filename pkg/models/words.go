package models

// WordEntry is one word in the exposure log. Source lists keep separate
// entries: user_used words carry a strength and a context sentence.
type WordEntry struct {
	Word     string  `json:"word"`
	Meaning  string  `json:"meaning"`
	Context  string  `json:"context,omitempty"`
	Strength float64 `json:"strength,omitempty"`
}

// Words is the per-word exposure document. "all" is every word ever seen,
// "user_used" words the learner produced themselves, "scene_used" words
// only encountered passively in scene material.
type Words struct {
	All       []WordEntry `json:"all"`
	UserUsed  []WordEntry `json:"user_used"`
	SceneUsed []WordEntry `json:"scene_used"`
}

// DefaultWords returns the empty exposure log
func DefaultWords() *Words {
	return &Words{All: []WordEntry{}, UserUsed: []WordEntry{}, SceneUsed: []WordEntry{}}
}
