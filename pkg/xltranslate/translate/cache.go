package translate

// Cache maps source text to translated text for the lifetime of one engine.
// Entries are only added, never evicted. It is not safe for concurrent use.
type Cache struct {
	entries map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Lookup returns the translation of text, if any.
func (c *Cache) Lookup(text string) (string, bool) {
	translated, ok := c.entries[text]
	return translated, ok
}

// Record stores the translation of text. A second call for the same text
// overwrites the first.
func (c *Cache) Record(text, translated string) {
	c.entries[text] = translated
}

// Len returns the number of cached translations.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Missing returns the distinct texts absent from the cache, in input order.
// Empty strings are skipped.
func (c *Cache) Missing(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	var missing []string
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := c.entries[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
