package goquery

// uiFiller are action labels rendered next to chat messages. An element whose
// entire text is one of these is never a message.
var uiFiller = []string{
	"Copy",
	"Copy code",
	"Regenerate",
	"Retry",
	"Edit",
	"Share",
	"Save",
	"Read aloud",
	"Good response",
	"Bad response",
}

// DefaultFiller returns the UI action labels the built-in adapters treat
// as filler.
func DefaultFiller() []string {
	return append([]string(nil), uiFiller...)
}

// NewGenericAdapter returns the adapter for generic chat-style sites.
// It is tuned for ChatGPT markup (data-testid="conversation-turn" and
// data-message-author-role attributes) and also serves as the default for
// hosts no other adapter matches, trying a chain of common chat markup
// conventions when the ChatGPT selectors find nothing.
func NewGenericAdapter() *Adapter {
	return &Adapter{
		Name:  "generic",
		Hosts: []string{"chatgpt.com", "chat.openai.com"},
		RootSelectors: []string{
			`:has(> [data-testid="conversation-turn"])`,
			`.flex.flex-col`,
			`[data-testid="conversation-list"]`,
			`.conversation-container`,
			`#conversation-container`,
		},
		TurnSelectors: []string{
			`[data-testid="conversation-turn"]`,
			`[data-message-author-role]`,
			`.message`,
			`.conversation-message`,
			`[role="message"]`,
			`.user-message`,
			`.assistant-message`,
			`[data-message-role]`,
			`.chat-message`,
			`.message-wrapper`,
			`.conversation-item`,
		},
		HeadingContainers: `[data-testid="conversation-turn"], .group, .markdown`,
		Rules: []Rule{
			FillerRule(uiFiller...),

			SelectorRule(`[data-message-author-role="user"]`, VerdictUser),
			SelectorRule(`[data-message-role="user"]`, VerdictUser),
			ClassTokenRule("user", VerdictUser),
			SelectorRule(`[data-message-author-role="assistant"]`, VerdictAssistant),
			SelectorRule(`[data-message-role="assistant"]`, VerdictAssistant),
			ClassTokenRule("assistant", VerdictAssistant),

			ClassFragmentRule(VerdictUser, "user-message"),
			ClassFragmentRule(VerdictAssistant, "assistant-message"),

			TextContainsRule(VerdictUser, true, "You :"),
			TextContainsRule(VerdictAssistant, true, "Assistant:", "AI :"),
			TextContainsRule(VerdictUser, false, "you:", "user:", "human:"),
			TextContainsRule(VerdictAssistant, false, "assistant:", "ai:", "bot:"),
		},
		Prefixes: []string{"You:", "Assistant:", "User:", "AI:", "Human:", "Bot:"},
	}
}
