package blog

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	yamlFence = "---"
	tomlFence = "+++"
)

// splitFrontMatter separates a leading YAML (---) or TOML (+++) block from
// the Markdown body. Files without one yield empty data and the whole input
// as body.
func splitFrontMatter(raw []byte) (map[string]any, []byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))

	firstLine, rest, found := bytes.Cut(raw, []byte("\n"))
	if !found {
		return map[string]any{}, raw, nil
	}
	fence := string(bytes.TrimSpace(firstLine))
	if fence != yamlFence && fence != tomlFence {
		return map[string]any{}, raw, nil
	}

	block, body, ok := cutFence(rest, fence)
	if !ok {
		return nil, nil, fmt.Errorf("front matter opened with %s is never closed", fence)
	}

	data := map[string]any{}
	switch fence {
	case yamlFence:
		if err := yaml.Unmarshal(block, &data); err != nil {
			return nil, nil, fmt.Errorf("parsing YAML front matter: %w", err)
		}
	case tomlFence:
		if err := toml.Unmarshal(block, &data); err != nil {
			return nil, nil, fmt.Errorf("parsing TOML front matter: %w", err)
		}
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, body, nil
}

// cutFence finds the closing fence line in s.
func cutFence(s []byte, fence string) (block, body []byte, ok bool) {
	offset := 0
	for offset <= len(s) {
		line := s[offset:]
		end := bytes.IndexByte(line, '\n')
		if end >= 0 {
			line = line[:end]
		}
		if string(bytes.TrimSpace(line)) == fence {
			block = s[:offset]
			if end < 0 {
				return block, nil, true
			}
			return block, s[offset+end+1:], true
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return nil, nil, false
}
