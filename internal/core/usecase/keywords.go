package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/doc-study-gateway/internal/core/domain"
)

var (
	categoryHeading = regexp.MustCompile(`^##\s*`)
	itemHeading     = regexp.MustCompile(`^###\s*`)
	bulletMarker    = regexp.MustCompile(`^[-*]\s+`)
	numberedMarker  = regexp.MustCompile(`^\d+\.\s+`)
	punctuationOnly = regexp.MustCompile(`^[*_-]+$`)
)

// ParseKeywordCategories turns keyword markdown into ordered categories.
// Categories that end up without items are dropped.
func ParseKeywordCategories(text string) []domain.KeywordCategory {
	categories := make([]domain.KeywordCategory, 0)
	var current *domain.KeywordCategory

	flush := func() {
		if current != nil && len(current.Items) > 0 {
			categories = append(categories, *current)
		}
	}
	add := func(item string) {
		item = strings.TrimSpace(item)
		if item == "" || current == nil {
			return
		}
		current.Items = append(current.Items, item)
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "## "):
			flush()
			current = &domain.KeywordCategory{
				Name:  strings.TrimSpace(categoryHeading.ReplaceAllString(trimmed, "")),
				Items: []string{},
			}
		case strings.HasPrefix(trimmed, "### "):
			add(itemHeading.ReplaceAllString(trimmed, ""))
		case bulletMarker.MatchString(trimmed) || numberedMarker.MatchString(trimmed):
			item := bulletMarker.ReplaceAllString(trimmed, "")
			add(numberedMarker.ReplaceAllString(item, ""))
		case trimmed != "" && !strings.HasPrefix(trimmed, "#") && current != nil:
			if utf8.RuneCountInString(trimmed) > 2 && !punctuationOnly.MatchString(trimmed) {
				add(trimmed)
			}
		}
	}
	flush()

	return categories
}

// FormatKeywordCategories renders categories back into the markdown shape
// ParseKeywordCategories reads. Items are written as ### headings so an item
// that itself starts with a list marker survives a re-parse.
func FormatKeywordCategories(categories []domain.KeywordCategory) string {
	var b strings.Builder
	for i, category := range categories {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## ")
		b.WriteString(category.Name)
		b.WriteString("\n")
		for _, item := range category.Items {
			b.WriteString("### ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// KeywordView is what a caller shows for the keyword artifact: parsed
// categories when the text has structure, otherwise the raw text.
type KeywordView struct {
	Categories []domain.KeywordCategory `json:"categories"`
	Raw        string                   `json:"raw,omitempty"`
}

func NewKeywordView(text domain.KeywordText) KeywordView {
	categories := ParseKeywordCategories(string(text))
	if len(categories) > 0 {
		return KeywordView{Categories: categories}
	}
	return KeywordView{Categories: categories, Raw: string(text)}
}
