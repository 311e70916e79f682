package chat

import "testing"

func TestBuildConversationSystemFirstExactlyOnce(t *testing.T) {
	system := SystemMessage("You are Magnus Liber.")
	h := NewHistory(6)
	h.AppendTurn(UserMessage("Who was Trajan?"), AssistantMessage("An emperor."))

	conv := BuildConversation(system, h, UserMessage("And Hadrian?"))
	if len(conv) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(conv))
	}
	if conv[0] != system {
		t.Fatalf("expected system message first, got %#v", conv[0])
	}
	systems := 0
	for _, m := range conv {
		if m.Role == RoleSystem {
			systems++
		}
	}
	if systems != 1 {
		t.Fatalf("expected exactly one system message, got %d", systems)
	}
	if last := conv[len(conv)-1]; last != UserMessage("And Hadrian?") {
		t.Fatalf("expected new user message last, got %#v", last)
	}
}

func TestBuildConversationCopiesHistory(t *testing.T) {
	h := NewHistory(6)
	h.AppendTurn(UserMessage("q"), AssistantMessage("a"))

	conv := BuildConversation(SystemMessage("sys"), h, UserMessage("hi"))
	conv[1].Content = "mutated"

	if got := h.Messages()[0].Content; got != "q" {
		t.Fatalf("expected history entry to stay %q, got %q", "q", got)
	}
	if h.Len() != 2 {
		t.Fatalf("expected history length 2, got %d", h.Len())
	}
}

func TestBuildConversationNilHistory(t *testing.T) {
	conv := BuildConversation(SystemMessage("sys"), nil, UserMessage("hi"))
	if len(conv) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv))
	}
}

func TestToOpenAIMessagesRejectsInvalidRole(t *testing.T) {
	_, err := toOpenAIMessages([]Message{{Role: "tool", Content: "bad"}})
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestDefaultSampling(t *testing.T) {
	s := DefaultSampling(1500)
	if s.MaxTokens != 1500 || s.N != 1 {
		t.Fatalf("unexpected token settings: %+v", s)
	}
	if s.Temperature != 0.7 || s.TopP != 0.95 {
		t.Fatalf("unexpected sampling: %+v", s)
	}
	if s.FrequencyPenalty != 0 || s.PresencePenalty != 0 {
		t.Fatalf("unexpected penalties: %+v", s)
	}
}
