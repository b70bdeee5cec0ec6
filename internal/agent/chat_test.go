package agent

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type stubResponder struct {
	reply string
	calls int
	last  []llms.MessageContent
}

func (s *stubResponder) Generate(ctx context.Context, prompt string, history []llms.MessageContent) (string, string, string, error) {
	s.calls++
	s.last = history
	return s.reply, "stub", "stub-model", nil
}

func TestChat_ActionableObjectiveSkipsResponder(t *testing.T) {
	stack := newTestStack(t)
	responder := &stubResponder{reply: "chatty"}
	chat := &Chat{Coordinator: stack.coordinator, Responder: responder, History: stack.store}

	reply, err := chat.Handle(context.Background(), "s1", "write file chat.txt::hi")
	require.NoError(t, err)
	require.NotEqual(t, "chatty", reply)
	require.Zero(t, responder.calls)
}

func TestChat_ConfirmationPrompt(t *testing.T) {
	stack := newTestStack(t)
	chat := &Chat{Coordinator: stack.coordinator}

	reply, err := chat.Handle(context.Background(), "s1", "delete the staging data")
	require.NoError(t, err)
	require.Contains(t, reply, "That looks risky (high)")
	require.Contains(t, reply, "Reply 'confirm ")
	require.Contains(t, reply, "delete the staging data")

	// Echo the token back the way the prompt asks.
	token := extractToken(t, reply)
	done, err := chat.Handle(context.Background(), "s1", "confirm "+token)
	require.NoError(t, err)
	require.NotContains(t, done, "That looks risky")
}

func extractToken(t *testing.T, reply string) string {
	t.Helper()
	_, after, found := strings.Cut(reply, "confirm ")
	require.True(t, found, "prompt should carry a token: %q", reply)
	token, _, found := strings.Cut(after, "'")
	require.True(t, found)
	return token
}

func TestChat_FallsBackToResponder(t *testing.T) {
	stack := newTestStack(t)
	responder := &stubResponder{reply: "the capital of France is Paris"}
	chat := &Chat{Coordinator: stack.coordinator, Responder: responder, History: stack.store}

	reply, err := chat.Handle(context.Background(), "s1", "what is the capital of France")
	require.NoError(t, err)
	require.Equal(t, "the capital of France is Paris", reply)
	require.Equal(t, 1, responder.calls)

	// Both turns landed in history.
	history, err := stack.store.GetHistory("s1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestChat_ResponderSeesHistory(t *testing.T) {
	stack := newTestStack(t)
	responder := &stubResponder{reply: "ok"}
	chat := &Chat{Coordinator: stack.coordinator, Responder: responder, History: stack.store}

	for i := 0; i < 3; i++ {
		_, err := chat.Handle(context.Background(), "s1", fmt.Sprintf("chitchat %d", i))
		require.NoError(t, err)
	}
	require.Equal(t, 3, responder.calls)
	require.Len(t, responder.last, 4) // two prior turns, doubled human/ai
}
