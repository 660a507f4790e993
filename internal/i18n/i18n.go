// internal/i18n/i18n.go
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed locales/*.json
var bundled embed.FS

// Catalog holds one message table per language. Missing keys fall back to
// the default language and then to the key itself.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
}

var (
	instance *Catalog
	once     sync.Once
)

// Initialize loads the global catalog once. An empty localesPath uses the
// locale files compiled into the binary.
func Initialize(localesPath, defaultLang string) error {
	var err error
	once.Do(func() {
		var fsys fs.FS
		if localesPath == "" {
			fsys, err = fs.Sub(bundled, "locales")
			if err != nil {
				return
			}
		} else {
			fsys = os.DirFS(localesPath)
		}

		var catalog *Catalog
		if catalog, err = Load(fsys, defaultLang); err == nil {
			instance = catalog
		}
	})
	return err
}

// Load reads every <lang>.json file at the root of fsys.
func Load(fsys fs.FS, defaultLang string) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}

	catalog := &Catalog{
		translations: make(map[string]map[string]string, len(files)),
		defaultLang:  defaultLang,
	}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", file, err)
		}

		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal locale file %s: %w", file, err)
		}
		catalog.translations[strings.TrimSuffix(path.Base(file), ".json")] = messages
	}

	if _, ok := catalog.translations[defaultLang]; !ok {
		return nil, fmt.Errorf("default locale %q has no locale file", defaultLang)
	}
	return catalog, nil
}

func (c *Catalog) T(lang, key string, args ...interface{}) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	text, ok := c.translations[lang][key]
	if !ok {
		text, ok = c.translations[c.defaultLang][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	langs := make([]string, 0, len(c.translations))
	for lang := range c.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// T translates with the global catalog; before Initialize it returns the key.
func T(lang, key string, args ...interface{}) string {
	if instance != nil {
		return instance.T(lang, key, args...)
	}
	return key
}

func GetSupportedLanguages() []string {
	if instance == nil {
		return []string{"en"}
	}
	return instance.Languages()
}
