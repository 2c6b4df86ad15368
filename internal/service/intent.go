package service

import "strings"

// Intent classifies a question
type Intent string

const (
	IntentDatabase     Intent = "database"
	IntentConversation Intent = "conversation"
)

var greetings = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	"thanks", "thank you", "bye", "goodbye", "see you", "how are you",
	"what can you do", "help", "who are you", "what are you",
}

var dbKeywords = []string{
	"show", "list", "get", "find", "select", "query", "count", "sum",
	"average", "max", "min", "table", "data", "record", "row", "column",
	"where", "from", "join", "group by", "order by", "all", "top", "first",
	"last", "between", "like", "contains", "state", "user", "product",
	"order", "sales", "customer", "employee", "department", "revenue",
}

// DetectIntent tells small talk from data questions using keywords
func DetectIntent(question string) Intent {
	q := strings.ToLower(strings.TrimSpace(question))
	words := strings.Fields(q)

	for _, g := range greetings {
		if q == g || (len(q) < 50 && containsPhrase(words, g)) {
			return IntentConversation
		}
	}

	for _, k := range dbKeywords {
		if strings.Contains(q, k) {
			return IntentDatabase
		}
	}

	if len(words) <= 3 {
		return IntentConversation
	}
	return IntentDatabase
}

// containsPhrase matches whole words so "hi" does not match "this"
func containsPhrase(words []string, phrase string) bool {
	target := strings.Fields(phrase)
	for i := 0; i+len(target) <= len(words); i++ {
		match := true
		for j, t := range target {
			if strings.Trim(words[i+j], "!?.,") != t {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// ConversationalReply answers small talk
func ConversationalReply(question string) string {
	words := strings.Fields(strings.ToLower(question))

	switch {
	case containsAny(words, "hi", "hello", "hey"):
		return "Hello! I'm your database assistant. Ask me about your data in plain language, " +
			"for example \"show revenue by month\"."
	case containsAny(words, "thanks", "thank you"):
		return "You're welcome! Feel free to ask anything about your data."
	case containsAny(words, "help", "what can you do"):
		return "I turn questions into SQL, run them, and show the results as tables or charts. " +
			"Just ask your question naturally."
	default:
		return "I'm here to help you query your database. Please ask a data-related question."
	}
}

func containsAny(words []string, phrases ...string) bool {
	for _, p := range phrases {
		if containsPhrase(words, p) {
			return true
		}
	}
	return false
}
