package llm

import (
	"fmt"
	"strings"
)

// OutOfScopeReply is what the model is told to say for non-technical questions.
const OutOfScopeReply = "This question is out of technical scope."

const answerSystemPrompt = `You are an AI interview assistant.
Answer only technical or programming-related questions in 5-8 short, point-wise statements.
Write one statement per line, numbered "1.", "2.", and so on. Do not add an introduction or a conclusion.
If the question is non-technical, respond with "` + OutOfScopeReply + `"`

const snippetSystemPrompt = `You are an AI interview assistant that writes short, runnable code examples.
Reply with a single code block of at most 30 lines and nothing else. Prefer clarity over cleverness.`

// AnswerPrompt builds the user message for the answer call.
func AnswerPrompt(question string) string {
	return "Question: " + strings.TrimSpace(question)
}

// SnippetPrompt builds the user message for the snippet call.
func SnippetPrompt(question, language string) string {
	question = strings.TrimSpace(question)
	if language == "" {
		return fmt.Sprintf("Write a minimal code example that illustrates the answer to this interview question.\nQuestion: %s", question)
	}
	return fmt.Sprintf("Write a minimal %s code example that illustrates the answer to this interview question.\nQuestion: %s", language, question)
}
