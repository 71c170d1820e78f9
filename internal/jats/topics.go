package jats

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Metadata files shipped alongside the paper corpus. Each maps paper titles
// to curated topic labels.
var metadataFiles = []string{
	"medical_papers_metadata.json",
	"replacement_papers_metadata.json",
}

// TopicCache resolves paper titles to curated topic labels. The mapping is
// loaded from the metadata directory on first lookup and then shared
// read-only for the life of the process.
type TopicCache struct {
	dir     string
	once    sync.Once
	mapping map[string]string
}

func NewTopicCache(metadataDir string) *TopicCache {
	return &TopicCache{dir: metadataDir}
}

// NewStaticTopicCache returns a cache pre-populated with the given mapping,
// bypassing file loading. Used by tests and callers that resolve topics
// elsewhere.
func NewStaticTopicCache(mapping map[string]string) *TopicCache {
	c := &TopicCache{mapping: mapping}
	c.once.Do(func() {})
	return c
}

// Lookup returns the topic for a title, or "" when the title is unknown.
// An unknown title is not an error: papers outside the curated set simply
// carry no topic.
func (c *TopicCache) Lookup(title string) string {
	c.once.Do(c.load)
	return c.mapping[title]
}

func (c *TopicCache) load() {
	c.mapping = map[string]string{}
	for _, name := range metadataFiles {
		path := filepath.Join(c.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("warning: could not read metadata %s: %v", path, err)
			}
			continue
		}
		var parsed struct {
			Papers []struct {
				Title string `json:"title"`
				Topic string `json:"topic"`
			} `json:"papers"`
		}
		if err := json.Unmarshal(data, &parsed); err != nil {
			log.Printf("warning: could not parse metadata %s: %v", path, err)
			continue
		}
		for _, p := range parsed.Papers {
			if p.Title != "" && p.Topic != "" {
				c.mapping[p.Title] = p.Topic
			}
		}
	}
}
