package config

import "whenwin/model"

// categories is the fixed id / display name / emoji lookup table. It is
// read-only to the rest of the app; the pipeline receives it as a plain
// slice and never owns it.
var categories = []model.Category{
	{ID: model.CategoryAll, Name: "All Events", Emoji: "🎉"},
	{ID: "music", Name: "Music", Emoji: "🎵"},
	{ID: "food", Name: "Food & Drink", Emoji: "🍔"},
	{ID: "sports", Name: "Sports", Emoji: "⚽"},
	{ID: "arts", Name: "Arts & Culture", Emoji: "🎨"},
	{ID: "community", Name: "Community", Emoji: "🤝"},
	{ID: "education", Name: "Education", Emoji: "📚"},
	{ID: "nightlife", Name: "Nightlife", Emoji: "🌙"},
}

// DefaultCategoryID is used when a create form does not pick a category.
const DefaultCategoryID = "community"

func Categories() []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryName resolves a category id to its display name. Unknown ids
// resolve to the default category's name, matching how the create form
// falls back.
func CategoryName(id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return CategoryName(DefaultCategoryID)
}
