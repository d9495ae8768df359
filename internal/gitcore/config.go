package gitcore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sectionKey identifies a config section: Subsection is "" when the
// section has none (e.g. [core] vs [remote "origin"]).
type sectionKey struct {
	Section    string
	Subsection string
}

// Config is the nested-section key/value store at <gitDir>/config:
//
//	[section]
//	  key = value
//	[section "subsection"]
//	  key = value
type Config struct {
	path string
}

// NewConfig opens the config file at <gitDir>/config.
func NewConfig(gitDir string) *Config {
	return &Config{path: filepath.Join(gitDir, "config")}
}

// Read parses the whole config file into section -> key -> value.
func (c *Config) Read() (map[sectionKey]map[string]string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[sectionKey]map[string]string{}, nil
		}
		return nil, fmt.Errorf("gitcore: reading config: %w", err)
	}

	sections := map[sectionKey]map[string]string{}
	var current sectionKey
	var haveCurrent bool

	for _, rawLine := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = parseSectionHeader(line)
			if _, ok := sections[current]; !ok {
				sections[current] = map[string]string{}
			}
			haveCurrent = true
			continue
		}
		if !haveCurrent {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		sections[current][strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return sections, nil
}

func parseSectionHeader(line string) sectionKey {
	body := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
	name, quoted, hasSub := strings.Cut(body, " ")
	if !hasSub {
		return sectionKey{Section: name}
	}
	sub := strings.Trim(quoted, `"`)
	return sectionKey{Section: name, Subsection: sub}
}

// Write serializes sections back to the config file in a stable order.
func (c *Config) Write(sections map[sectionKey]map[string]string) error {
	keys := make([]sectionKey, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Section != keys[j].Section {
			return keys[i].Section < keys[j].Section
		}
		return keys[i].Subsection < keys[j].Subsection
	})

	var b strings.Builder
	for _, sk := range keys {
		if sk.Subsection == "" {
			fmt.Fprintf(&b, "[%s]\n", sk.Section)
		} else {
			fmt.Fprintf(&b, "[%s \"%s\"]\n", sk.Section, sk.Subsection)
		}
		entryKeys := make([]string, 0, len(sections[sk]))
		for k := range sections[sk] {
			entryKeys = append(entryKeys, k)
		}
		sort.Strings(entryKeys)
		for _, k := range entryKeys {
			fmt.Fprintf(&b, "  %s = %s\n", k, sections[sk][k])
		}
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("gitcore: creating config dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("gitcore: staging config: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpPath)
		return fmt.Errorf("gitcore: writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, c.path)
}

// Get reads a single key, returning ok=false if the section or key is
// absent.
func (c *Config) Get(section, subsection, key string) (string, bool, error) {
	sections, err := c.Read()
	if err != nil {
		return "", false, err
	}
	entries, ok := sections[sectionKey{Section: section, Subsection: subsection}]
	if !ok {
		return "", false, nil
	}
	v, ok := entries[key]
	return v, ok, nil
}

// Set writes a single key, creating its section if needed.
func (c *Config) Set(section, subsection, key, value string) error {
	sections, err := c.Read()
	if err != nil {
		return err
	}
	sk := sectionKey{Section: section, Subsection: subsection}
	if sections[sk] == nil {
		sections[sk] = map[string]string{}
	}
	sections[sk][key] = value
	return c.Write(sections)
}

// IsBare reports whether core.bare is "true".
func (c *Config) IsBare() (bool, error) {
	v, ok, err := c.Get("core", "", "bare")
	if err != nil {
		return false, err
	}
	return ok && v == "true", nil
}

// SetBare sets core.bare.
func (c *Config) SetBare(bare bool) error {
	v := "false"
	if bare {
		v = "true"
	}
	return c.Set("core", "", "bare", v)
}

// Remotes returns every configured remote name -> url.
func (c *Config) Remotes() (map[string]string, error) {
	sections, err := c.Read()
	if err != nil {
		return nil, err
	}
	remotes := map[string]string{}
	for sk, entries := range sections {
		if sk.Section != "remote" || sk.Subsection == "" {
			continue
		}
		if url, ok := entries["url"]; ok {
			remotes[sk.Subsection] = url
		}
	}
	return remotes, nil
}

// AddRemote persists remote.<name>.url = url, rejecting a duplicate name.
func (c *Config) AddRemote(name, url string) error {
	remotes, err := c.Remotes()
	if err != nil {
		return err
	}
	if _, exists := remotes[name]; exists {
		return fmt.Errorf("gitcore: remote %s already exists", name)
	}
	return c.Set("remote", name, "url", url)
}

// RemoteURL looks up a single remote's url.
func (c *Config) RemoteURL(name string) (string, bool, error) {
	return c.Get("remote", name, "url")
}
