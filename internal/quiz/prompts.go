package quiz

import (
	"fmt"
	"strings"

	"github.com/example/lingobot/pkg/models"
)

// buildGenerationPrompt asks the completion service to author a quiz over
// the target words, calibrated to the learner's standing.
func buildGenerationPrompt(language string, numQuestions int, profile *models.LearnerProfile, targets []models.ProfileVocab) (system, user string) {
	system = fmt.Sprintf(`You are a %[1]s language assessment designer. You create short adaptive quizzes that mix listening comprehension with spoken production.

Return ONLY a valid JSON object, no markdown fences and no commentary, with this exact shape:
{
  "questions": [
    {"type": "listening_mcq", "word": "<%[1]s word>", "word_romanized": "<romanization>", "correct_answer": "<English meaning>", "options": ["<4 English options including the correct one>"], "audio_text": "<%[1]s text to speak aloud>"},
    {"type": "speaking", "sentence_en": "<English sentence to say in %[1]s>", "expected_answer": "<%[1]s answer>", "expected_answer_romanized": "<romanization>", "acceptable_variations": ["<variant>"], "hint_words": [{"word": "<word>", "meaning": "<meaning>"}]}
  ],
  "quiz_metadata": {"theme": "<short theme>", "focus_area": "<what this quiz reinforces>", "estimated_difficulty": "<easy|medium|hard>"}
}

Rules:
- Exactly %[2]d questions, roughly 60%% listening_mcq and 40%% speaking.
- Every question must be built around one of the TARGET WORDS. Never use the same target word twice.
- listening_mcq options are plausible distractors at the learner's level; shuffle the correct answer's position.
- speaking sentences are short and practical, using vocabulary the learner has seen.`, language, numQuestions)

	var b strings.Builder
	fmt.Fprintf(&b, "LEARNER: level %d (%s), %d known words, average fluency %d/100.\n",
		profile.Level, profile.Difficulty, profile.VocabCount, profile.AvgFluency)
	if len(profile.WeakTopics) > 0 {
		fmt.Fprintf(&b, "Weak topics: %s.\n", strings.Join(profile.WeakTopics, ", "))
	}
	b.WriteString("\nTARGET WORDS (weakest first):\n")
	for _, target := range targets {
		fmt.Fprintf(&b, "- %q meaning %q (strength %.2f)\n", target.Word, target.Meaning, target.Strength)
	}
	return system, b.String()
}

// buildSpeakingGradingPrompt asks for one holistic grading pass over every
// speaking answer in the quiz.
func buildSpeakingGradingPrompt(language string, questions []models.Question, answers map[int]string) (system, user string) {
	system = fmt.Sprintf(`You grade spoken %[1]s answers from a language learner. Grade on MEANING first: accept phonetic spellings, transliteration, and minor grammar slips if the intent is clearly right.

Return ONLY a valid JSON object, no markdown fences, with this exact shape:
{"evaluations": [{"questionId": <id>, "score": <0-100>, "correct": <true|false>, "feedback": "<one encouraging sentence>", "corrected_answer": "<the ideal %[1]s answer>", "pronunciation_tip": "<short tip, optional>"}]}

Include one evaluation for every question listed, matching its questionId.`, language)

	var b strings.Builder
	for _, q := range questions {
		fmt.Fprintf(&b, "Question %d: say in %s: %q\nExpected: %q", q.ID, language, q.SentenceEN, q.ExpectedAnswer)
		if len(q.AcceptableVariations) > 0 {
			fmt.Fprintf(&b, " (also acceptable: %s)", strings.Join(q.AcceptableVariations, "; "))
		}
		fmt.Fprintf(&b, "\nLearner answered: %q\n\n", answers[q.ID])
	}
	return system, b.String()
}
