package feature

// Kind identifies one independently invokable analysis capability. The set is
// closed; canonical string values double as wire identifiers in requests and
// stored history records.
type Kind string

const (
	Sentiment  Kind = "sentiment"
	KeyPhrases Kind = "keyPhrases"
	Entities   Kind = "entities"
	Summary    Kind = "summary"
	Language   Kind = "language"
)

// All returns every kind in display order.
func All() []Kind {
	return []Kind{Sentiment, KeyPhrases, Entities, Summary, Language}
}

// Parse maps a wire identifier to its Kind. Unknown identifiers report ok=false.
func Parse(raw string) (Kind, bool) {
	switch Kind(raw) {
	case Sentiment, KeyPhrases, Entities, Summary, Language:
		return Kind(raw), true
	}
	return "", false
}

// String returns the canonical wire identifier.
func (k Kind) String() string {
	return string(k)
}
