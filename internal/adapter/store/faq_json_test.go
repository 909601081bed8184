package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"faqbot/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFAQ = `[
  {"category": "Admissions", "questions": [
    {"question": "What is the KCET cutoff for CSE?", "answer": "KCET CSE closing rank is around 3500."},
    {"question": "What is the COMEDK cutoff for CSE?", "answer": "COMEDK CSE closing rank is around 2100."}
  ]},
  {"category": "Hostel", "questions": [
    {"question": "Is hostel available?", "answer": "Yes, separate hostels for boys and girls."}
  ]}
]`

func TestDecodeFAQ_FlattensInOrder(t *testing.T) {
	c, err := DecodeFAQ(strings.NewReader(sampleFAQ))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"Admissions", "Hostel"}, c.Categories)
	assert.Equal(t, "What is the KCET cutoff for CSE?", c.Entries[0].Question)
	assert.Equal(t, "Hostel", c.Entries[2].Category)
	assert.False(t, c.HasEmbeddings())
}

func TestDecodeFAQ_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":         `{`,
		"missing category": `[{"questions": []}]`,
		"missing list":     `[{"category": "A"}]`,
		"list not array":   `[{"category": "A", "questions": "x"}]`,
		"empty answer":     `[{"category": "A", "questions": [{"question": "q", "answer": ""}]}]`,
		"no questions":     `[{"category": "A", "questions": []}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFAQ(strings.NewReader(doc))
			assert.ErrorIs(t, err, entity.ErrDataLoad)
		})
	}
}

func TestLoadFAQ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFAQ), 0o644))

	c, err := LoadFAQ(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadFAQ(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, entity.ErrDataLoad)
}
