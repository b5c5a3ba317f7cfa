// Package i18n loads the bot's translations. Each locale is a file named
// after its BCP 47 tag, such as fr-FR.lang, holding key=value lines. Values
// may contain :name placeholders filled in by Get.
package i18n

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// ErrNoLocales is returned when a file system holds no .lang file.
var ErrNoLocales = errors.New("no locale files found")

//go:embed locales/*.lang
var embedded embed.FS

// Locale is one loaded translation.
type Locale struct {
	tag    language.Tag
	values map[string]string
}

// Bundle holds every loaded locale and picks one for a requested language.
// It is read-only after loading.
type Bundle struct {
	locales  []*Locale
	fallback *Locale
	matcher  language.Matcher
}

// LoadEmbedded loads the locales shipped with the binary.
func LoadEmbedded(defaultLocale string) (*Bundle, error) {
	return Load(defaultLocale, nil)
}

// Load loads the locales shipped with the binary, then the *.lang files at
// the root of overrides when it is not nil. An override file for a shipped
// locale replaces the keys it defines; any other file adds a locale.
func Load(defaultLocale string, overrides fs.FS) (*Bundle, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	locs, err := readLocales(sub)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		extra, err := readLocales(overrides)
		if err != nil {
			return nil, err
		}
		locs = merge(locs, extra)
	}
	return newBundle(locs, defaultLocale)
}

// LoadFromFS loads every *.lang file at the root of fsys. defaultLocale must
// be one of them; it answers requests no other locale matches.
func LoadFromFS(fsys fs.FS, defaultLocale string) (*Bundle, error) {
	locs, err := readLocales(fsys)
	if err != nil {
		return nil, err
	}
	return newBundle(locs, defaultLocale)
}

func readLocales(fsys fs.FS) ([]*Locale, error) {
	paths, err := fs.Glob(fsys, "*.lang")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	sort.Strings(paths)

	locs := make([]*Locale, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimSuffix(path.Base(p), ".lang")
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("locale file %s: %w", p, err)
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", p, err)
		}
		locs = append(locs, &Locale{tag: tag, values: parse(data)})
	}
	return locs, nil
}

func merge(base, extra []*Locale) []*Locale {
	for _, loc := range extra {
		i := slices.IndexFunc(base, func(b *Locale) bool { return b.tag.String() == loc.tag.String() })
		if i < 0 {
			base = append(base, loc)
			continue
		}
		maps.Copy(base[i].values, loc.values)
	}
	return base
}

func newBundle(locs []*Locale, defaultLocale string) (*Bundle, error) {
	if len(locs) == 0 {
		return nil, ErrNoLocales
	}
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("default locale %q: %w", defaultLocale, err)
	}

	b := &Bundle{}
	for _, loc := range locs {
		if loc.tag.String() == def.String() {
			b.fallback = loc
			break
		}
	}
	if b.fallback == nil {
		return nil, fmt.Errorf("default locale %s is not defined", def)
	}

	// The matcher falls back to its first tag.
	tags := []language.Tag{b.fallback.tag}
	ordered := []*Locale{b.fallback}
	for _, loc := range locs {
		if loc != b.fallback {
			tags = append(tags, loc.tag)
			ordered = append(ordered, loc)
		}
	}
	b.locales = ordered
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// parse reads key=value lines. The value runs to the end of the line and may
// contain '='. Lines without '=' and lines starting with '#' are skipped.
func parse(data []byte) map[string]string {
	values := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = value
	}
	return values
}

// Default returns the fallback locale.
func (b *Bundle) Default() *Locale { return b.fallback }

// Locales returns the loaded locales, the default first.
func (b *Bundle) Locales() []*Locale { return b.locales }

// Lookup returns the locale closest to the requested language tag, or the
// default when none is close enough or the tag does not parse.
func (b *Bundle) Lookup(locale string) *Locale {
	if locale == "" {
		return b.fallback
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return b.fallback
	}
	return b.locales[idx]
}

// Tag is the locale's language tag.
func (l *Locale) Tag() language.Tag { return l.tag }

func (l *Locale) String() string { return l.tag.String() }

// Has reports whether key is translated in this locale.
func (l *Locale) Has(key string) bool {
	_, ok := l.values[key]
	return ok
}

// Get returns the translation of key with placeholders replaced. vars are
// name, value pairs: Get("ping.response", "latency", "42ms") replaces
// :latency. A missing key is returned unchanged.
func (l *Locale) Get(key string, vars ...string) string {
	s, ok := l.values[key]
	if !ok {
		return key
	}
	if len(vars) < 2 {
		return s
	}
	pairs := make([]string, 0, len(vars)&^1)
	for i := 0; i+1 < len(vars); i += 2 {
		pairs = append(pairs, ":"+vars[i], vars[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
