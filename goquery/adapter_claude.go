package goquery

// claudeContainer matches Claude message containers, which carry either a
// message test id, a message id, or a font class naming the author.
const claudeContainer = `[data-testid*="message"], [data-message-id], [class*="font-user-message"], [class*="font-claude-message"]`

// NewClaudeAdapter returns the adapter for claude.ai.
//
// Claude markup rarely puts the author on the element holding the text, so
// message containers are expanded into their prose elements and each one is
// classified through its enclosing container. Content heuristics are the
// last resort for elements whose container carries no author markers.
func NewClaudeAdapter() *Adapter {
	return &Adapter{
		Name:  "claude",
		Hosts: []string{"claude.ai"},
		RootSelectors: []string{
			`[data-testid="conversation-main"]`,
			`[data-scroller="true"]`,
			`.conversation-container`,
			`.flex.flex-col.gap-3`,
			`.flex.flex-col.items-start`,
			`[role="main"]`,
		},
		TurnSelectors: []string{
			`[data-testid*="message"], [data-message-id], .group[data-message-id]`,
			`[class*="font-user-message"], [class*="font-claude-message"], [class*="font-assistant-message"]`,
		},
		ContentSelectors:  []string{".prose", ".whitespace-pre-wrap", "p", "div", "span"},
		ContentMinLength:  11,
		ContentExclude:    []string{"Sonnet", "model", "Claude.ai", "Save", "Copy", "Regenerate"},
		ContainerSelector: claudeContainer,
		HeadingContainers: `[data-message-role], [data-testid="conversation-turn"], .group, .markdown, .message-container, [data-message-id]`,
		Rules: []Rule{
			FillerRule(uiFiller...),

			ContainerAttrRule("data-message-role", "user", VerdictUser),
			ContainerAttrRule("data-is-user-message", "true", VerdictUser),
			ContainerAttrRule("data-message-role", "assistant", VerdictAssistant),
			ContainerAttrRule("data-is-user-message", "false", VerdictAssistant),

			ClassFragmentRule(VerdictUser, "font-user-message", "user-message"),
			ClassFragmentRule(VerdictAssistant, "font-claude-message", "font-assistant-message", "claude-message", "assistant-message"),

			ContentHeuristics{
				MinLength:      10,
				NoiseMaxLength: 50,
				Noise:          []string{"sonnet", "claude.ai", "model", "save", "copy", "regenerate"},
				Assistant: []string{
					"i'm claude",
					"as claude",
					"here's",
					"i'll help",
					"i can help",
					"let me",
					"i'd be happy to",
				},
				SelfName:          "claude",
				SelfNameMinLength: 100,
				User:              []string{"you said:", "you:"},
				UserMaxLength:     500,
				NotUser:           []string{"here's", "i'll", "i can"},
			}.Rule(),
		},
		Prefixes: []string{
			"You said:",
			"You:",
			"Claude:",
			"Assistant:",
			"Human:",
			"User:",
			"AI:",
			"Bot:",
			"Claude AI:",
		},
	}
}
