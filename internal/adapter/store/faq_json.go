package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"faqbot/internal/domain/entity"
)

type faqCategory struct {
	Category  *string    `json:"category"`
	Questions *[]faqPair `json:"questions"`
}

type faqPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// LoadFAQ reads the category/questions JSON document at path.
func LoadFAQ(path string) (*entity.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDataLoad, err)
	}
	defer f.Close()
	return DecodeFAQ(f)
}

// DecodeFAQ flattens categories into one catalog, keeping source order.
func DecodeFAQ(r io.Reader) (*entity.Catalog, error) {
	var raw []faqCategory
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDataLoad, err)
	}

	catalog := &entity.Catalog{}
	for i, cat := range raw {
		if cat.Category == nil || strings.TrimSpace(*cat.Category) == "" {
			return nil, fmt.Errorf("%w: category %d has no \"category\" name", entity.ErrDataLoad, i)
		}
		if cat.Questions == nil {
			return nil, fmt.Errorf("%w: category %q has no \"questions\" list", entity.ErrDataLoad, *cat.Category)
		}
		catalog.Categories = append(catalog.Categories, *cat.Category)
		for j, qa := range *cat.Questions {
			if strings.TrimSpace(qa.Question) == "" || strings.TrimSpace(qa.Answer) == "" {
				return nil, fmt.Errorf("%w: category %q item %d needs both question and answer", entity.ErrDataLoad, *cat.Category, j)
			}
			catalog.Entries = append(catalog.Entries, entity.FAQEntry{
				Question: qa.Question,
				Answer:   qa.Answer,
				Category: *cat.Category,
			})
		}
	}
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("%w: no questions found", entity.ErrDataLoad)
	}
	return catalog, nil
}
