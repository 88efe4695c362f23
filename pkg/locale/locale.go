// Package locale translates user-facing messages: queue status lines,
// alerts and category names. English keys are the messages themselves.
package locale

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/user/ainspire/pkg/pipeline"
)

const (
	English = "en"
	Korean  = "ko"
)

// ErrUnsupportedLanguage is returned by New for languages without a lexicon.
var ErrUnsupportedLanguage = errors.New("locale: unsupported language")

// Message keys shared by the orchestrator, server and CLI.
const (
	MsgExtracting        = "Extracting frames from %s... (%d more video(s) in queue)"
	MsgClassifying       = "Classifying frame from %s (%d more frame(s) in queue)..."
	MsgIdle              = "Idle"
	MsgInvalidAPIKey     = "Invalid API Key. Please check your key and try again."
	MsgInvalidJSON       = "Invalid JSON file format."
	MsgJSONParseError    = "Failed to parse JSON file."
	MsgNoImagesToZip     = "There are no images to download."
	MsgZipError          = "Failed to create zip file."
	MsgNotAVideo         = "%s is not a video file."
	MsgImported          = "Imported %d image(s)."
	MsgMissingAPIKey     = "No API key is configured. Run \"ainspire key set\" or set AINSPIRE_API_KEY."
	MsgCredentialSaved   = "API key saved."
	MsgCredentialCleared = "API key cleared."
)

var lexicons = map[string]l10n.LexiconMap{
	Korean: korean,
}

func init() {
	l10n.Register(Korean, korean)
}

// Register adds translations for lang, both to go-l10n and to every
// Localizer. Packages that own log or CLI messages call it from init.
func Register(lang string, lex l10n.LexiconMap) {
	l10n.Register(lang, lex)
	dst, ok := lexicons[lang]
	if !ok {
		dst = make(l10n.LexiconMap, len(lex))
		lexicons[lang] = dst
	}
	for k, v := range lex {
		dst[k] = v
	}
}

// Localizer renders messages in one language.
type Localizer struct {
	lang string
}

// New creates a Localizer. Region suffixes are ignored, so "ko-KR" and
// "ko_KR.UTF-8" select Korean.
func New(lang string) (*Localizer, error) {
	normalized := Normalize(lang)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return &Localizer{lang: normalized}, nil
}

// MustNew is like New but falls back to English.
func MustNew(lang string) *Localizer {
	l, err := New(lang)
	if err != nil {
		return &Localizer{lang: English}
	}
	return l
}

// Supported lists the available languages.
func Supported() []string {
	return []string{English, Korean}
}

// Normalize maps a locale string to a supported language, or "".
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_."); i >= 0 {
		lang = lang[:i]
	}
	switch lang {
	case English, Korean:
		return lang
	case "":
		return English
	default:
		return ""
	}
}

// Detect picks a language from AINSPIRE_LANG, then the usual POSIX locale
// variables. It returns English when none names a supported language.
func Detect() string {
	for _, name := range []string{"AINSPIRE_LANG", "LANGUAGE", "LC_ALL", "LANG"} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if lang := Normalize(strings.Split(v, ":")[0]); lang != "" {
			return lang
		}
	}
	return English
}

// Language returns the active language code.
func (l *Localizer) Language() string {
	return l.lang
}

// T translates key, returning key itself when there is no translation.
// go-l10n holds a single process-wide language, so each Localizer reads the
// lexicons Register mirrors here instead of calling l10n.T.
func (l *Localizer) T(key string) string {
	if lex, ok := lexicons[l.lang]; ok {
		if v, ok := lex[key]; ok {
			return v
		}
	}
	return key
}

// F translates key and formats it with args.
func (l *Localizer) F(key string, args ...interface{}) string {
	return fmt.Sprintf(l.T(key), args...)
}

// Category returns the display name of a category.
func (l *Localizer) Category(c pipeline.Category) string {
	name := string(c)
	if name == "" {
		return name
	}
	return l.T(strings.ToUpper(name[:1]) + name[1:])
}
