package i18n

import (
	"io/fs"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Locale files bundled with the launcher
var localeFiles = []string{
	"locales/en-us.json",
	"locales/ko-kr.json",
}

// defaultLanguage must match the tag of a bundled file so that unmatched
// locales fall back to it
var defaultLanguage = language.AmericanEnglish

var (
	mu        sync.RWMutex
	localizer *i18n.Localizer
)

// Init initializes the i18n bundle with the given locale files
func Init(localeFS fs.FS, lang string) error {
	b := i18n.NewBundle(defaultLanguage)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	var firstErr error
	for _, name := range localeFiles {
		if _, err := b.LoadMessageFileFS(localeFS, name); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	mu.Lock()
	localizer = i18n.NewLocalizer(b, lang, defaultLanguage.String())
	mu.Unlock()
	return firstErr
}

// T translates a message by its ID with optional template data and plural count
func T(messageID string, templateData map[string]interface{}, pluralCount ...int) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		return messageID
	}

	config := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if len(pluralCount) > 0 {
		config.PluralCount = pluralCount[0]
	}

	msg, err := l.Localize(config)
	if err != nil {
		// Return message ID if translation fails
		return messageID
	}
	return msg
}

// Normalize turns a system locale such as "ko_KR.UTF-8" into a BCP 47 tag,
// falling back to English.
func Normalize(locale string) string {
	for i, r := range locale {
		if r == '.' || r == '@' {
			locale = locale[:i]
			break
		}
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English.String()
	}
	return tag.String()
}
