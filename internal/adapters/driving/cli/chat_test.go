package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

func TestChatCmd_OneShot(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute([]string{"chat", "session-1", "what", "is", "mitosis?"}, "")

	require.NoError(t, err)
	assert.Equal(t, []string{"what is mitosis?"}, currentMocks.chat.questions)
	assert.Contains(t, out, "Answer to: what is mitosis?")
	assert.Contains(t, out, "Biology / Week 1 / 01 Cells.srt (0.87)")
}

func TestChatCmd_OneShotJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute([]string{"chat", "--json", "session-1", "q"}, "")

	require.NoError(t, err)
	var answer domain.ChatAnswer
	require.NoError(t, json.Unmarshal([]byte(out), &answer))
	assert.Equal(t, "Answer to: q", answer.Answer)
	assert.True(t, answer.Grounded)
}

func TestChatCmd_Ungrounded(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	currentMocks.chat.answer = &domain.ChatAnswer{Answer: "General knowledge."}

	out, err := execute([]string{"chat", "session-1", "q"}, "")

	require.NoError(t, err)
	assert.Contains(t, out, "not grounded")
}

func TestChatCmd_LoopCarriesHistory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute([]string{"chat", "session-1"}, "first question\n\nsecond question\nexit\nignored\n")

	require.NoError(t, err)
	assert.Equal(t, []string{"first question", "second question"}, currentMocks.chat.questions)
	require.Len(t, currentMocks.chat.histories, 2)
	assert.Empty(t, currentMocks.chat.histories[0])
	assert.Equal(t, []domain.ChatTurn{
		{Role: domain.RoleUser, Content: "first question"},
		{Role: domain.RoleAssistant, Content: "Answer to: first question"},
	}, currentMocks.chat.histories[1])
	assert.Contains(t, out, "Answer to: second question")
}

func TestChatCmd_LoopEndsAtEOFWithoutNewline(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute([]string{"chat", "session-1"}, "only question")

	require.NoError(t, err)
	assert.Equal(t, []string{"only question"}, currentMocks.chat.questions)
}

func TestChatCmd_LLMUnavailable(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	currentMocks.chat.err = domain.ErrLLMUnavailable

	_, err := execute([]string{"chat", "session-1", "q"}, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "settings llm")
}
