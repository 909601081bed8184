package entity

// FAQEntry is one question/answer pair. Its identity is its position in the
// catalog, so entries are never reordered after load.
type FAQEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	Embedding []float32 `json:"-"`
}

// Catalog is the flattened, ordered FAQ set.
type Catalog struct {
	Entries    []FAQEntry
	Categories []string
}

func (c *Catalog) Len() int { return len(c.Entries) }

// Questions returns the question texts in catalog order.
func (c *Catalog) Questions() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Question
	}
	return out
}

// HasEmbeddings reports whether every entry carries a vector.
func (c *Catalog) HasEmbeddings() bool {
	if len(c.Entries) == 0 {
		return false
	}
	for _, e := range c.Entries {
		if len(e.Embedding) == 0 {
			return false
		}
	}
	return true
}
