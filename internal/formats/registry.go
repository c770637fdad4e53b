package formats

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fileforge/internal/services"
)

// Category groups related formats that share one converter.
type Category struct {
	ID          string
	DisplayName string
	Description string
	Converter   string
	Inputs      []string
	Outputs     []string
}

// AcceptsInput reports whether the category can take format as input.
func (c Category) AcceptsInput(format string) bool {
	return containsFormat(c.Inputs, format)
}

// ProducesOutput reports whether the category can produce format.
func (c Category) ProducesOutput(format string) bool {
	return containsFormat(c.Outputs, format)
}

func containsFormat(set []string, format string) bool {
	for _, entry := range set {
		if entry == format {
			return true
		}
	}
	return false
}

// Registry is the static catalog of format categories. It is populated once
// by NewRegistry and read-only afterwards. Every format id belongs to exactly
// one category.
type Registry struct {
	categories []Category
	byFormat   map[string]int
}

// NewRegistry builds the built-in catalog.
func NewRegistry() *Registry {
	titler := cases.Title(language.English)
	categories := []Category{
		{
			ID:          "document",
			Description: "Office documents, text, and markup",
			Converter:   "document",
			Inputs:      []string{"pdf", "docx", "txt", "md", "html", "rtf", "odt"},
			Outputs:     []string{"pdf", "docx", "txt", "html", "rtf", "odt"},
		},
		{
			ID:          "image",
			Description: "Raster and vector images",
			Converter:   "image",
			Inputs:      []string{"jpg", "jpeg", "png", "gif", "webp", "bmp", "tiff", "svg"},
			Outputs:     []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff"},
		},
		{
			ID:          "audio",
			Description: "Audio streams and containers",
			Converter:   "media",
			Inputs:      []string{"mp3", "wav", "flac", "aac", "ogg", "m4a"},
			Outputs:     []string{"mp3", "wav", "flac", "aac", "ogg", "m4a"},
		},
		{
			ID:          "video",
			Description: "Video containers",
			Converter:   "media",
			Inputs:      []string{"mp4", "avi", "mov", "mkv", "webm", "flv"},
			Outputs:     []string{"mp4", "avi", "mov", "mkv", "webm"},
		},
		{
			ID:          "archive",
			Description: "Compressed archives",
			Converter:   "archive",
			Inputs:      []string{"zip", "tar", "gz", "7z", "rar"},
			Outputs:     []string{"zip", "tar", "gz"},
		},
		{
			ID:          "data",
			Description: "Structured data interchange",
			Converter:   "data",
			Inputs:      []string{"json", "csv", "xml", "yaml", "xlsx"},
			Outputs:     []string{"json", "csv", "xml"},
		},
		{
			ID:          "model",
			Description: "3D meshes and CAD exchange",
			Converter:   "model",
			Inputs:      []string{"stl", "obj", "fbx", "dae", "step"},
			Outputs:     []string{"stl", "obj", "dae"},
		},
	}

	byFormat := make(map[string]int)
	for idx := range categories {
		categories[idx].DisplayName = titler.String(categories[idx].ID)
		for _, format := range categories[idx].Inputs {
			byFormat[format] = idx
		}
		for _, format := range categories[idx].Outputs {
			byFormat[format] = idx
		}
	}
	return &Registry{categories: categories, byFormat: byFormat}
}

// CategoryFor returns the category owning format.
func (r *Registry) CategoryFor(format string) (Category, bool) {
	idx, ok := r.byFormat[Normalize(format)]
	if !ok {
		return Category{}, false
	}
	return r.categories[idx], true
}

// Known reports whether format exists anywhere in the catalog.
func (r *Registry) Known(format string) bool {
	_, ok := r.byFormat[Normalize(format)]
	return ok
}

// ValidateConversion succeeds iff output belongs to the output set of the
// category owning input. There are no implicit cross-category conversions.
func (r *Registry) ValidateConversion(input, output string) error {
	input = Normalize(input)
	output = Normalize(output)

	category, ok := r.CategoryFor(input)
	if !ok {
		return services.Wrap(services.ErrUnknownFormat, "formats", "validate", "input format "+input+" is not in the catalog", nil)
	}
	if !category.AcceptsInput(input) {
		return services.Wrap(services.ErrIncompatibleFormat, "formats", "validate", input+" is output-only in category "+category.ID, nil)
	}
	if !category.ProducesOutput(output) {
		return services.Wrap(services.ErrIncompatibleFormat, "formats", "validate", "category "+category.ID+" cannot produce "+output, nil)
	}
	return nil
}

// Categories lists the catalog in stable id order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Formats lists every known format id, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for format := range r.byFormat {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

// Normalize lowercases a format id and strips a leading dot.
func Normalize(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	return strings.TrimPrefix(format, ".")
}
