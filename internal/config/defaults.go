package config

import "github.com/phobologic/declmap/internal/model"

// DefaultMaxFileSize is the largest source file scanned, in bytes.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// DefaultDiscovery returns the default file discovery settings.
func DefaultDiscovery() Discovery {
	return Discovery{
		Extensions:  []string{".cs"},
		MaxFileSize: DefaultMaxFileSize,
	}
}

// DefaultTemplate returns the default template tokens. Each kind accepts
// both "{{class}}" and "{{ class }}".
func DefaultTemplate() Template {
	placeholders := make(map[model.Kind][]string, len(model.Kinds))
	for _, k := range model.Kinds {
		placeholders[k] = []string{
			"{{" + k.Keyword() + "}}",
			"{{ " + k.Keyword() + " }}",
		}
	}
	return Template{
		Placeholders:     placeholders,
		SummaryToken:     "[summary]",
		OneSentenceToken: "[one_sentence_summary]",
		Fallback:         "No summary provided",
	}
}
