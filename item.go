package filequeue

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidSize     = errors.New("size out of range")
)

// Category is the type of a generated file.
type Category int

const (
	CategoryXML Category = iota
	CategoryJSON
	CategoryXLS
)

var categoryNames = [...]string{
	CategoryXML:  "XML",
	CategoryJSON: "JSON",
	CategoryXLS:  "XLS",
}

// AllCategories returns every known category in declaration order.
func AllCategories() []Category {
	return []Category{CategoryXML, CategoryJSON, CategoryXLS}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(categoryNames)
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory parses a category name, ignoring case.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// SizeRange is an inclusive range of item sizes.
type SizeRange struct {
	Min int
	Max int
}

// Contains reports whether size lies within [Min, Max].
func (r SizeRange) Contains(size int) bool {
	return size >= r.Min && size <= r.Max
}

// WorkItem is a generated file waiting to be processed. The zero value is
// not a valid item; use NewWorkItem.
type WorkItem struct {
	id        uuid.UUID
	category  Category
	size      int
	createdAt time.Time
}

// NewWorkItem builds an item and checks it against the allowed sizes.
func NewWorkItem(category Category, size int, sizes SizeRange) (WorkItem, error) {
	if !category.Valid() {
		return WorkItem{}, fmt.Errorf("%w: %d", ErrUnknownCategory, int(category))
	}
	if !sizes.Contains(size) {
		return WorkItem{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidSize, size, sizes.Min, sizes.Max)
	}
	return WorkItem{
		id:        uuid.New(),
		category:  category,
		size:      size,
		createdAt: time.Now(),
	}, nil
}

func (w WorkItem) ID() uuid.UUID        { return w.id }
func (w WorkItem) Category() Category   { return w.category }
func (w WorkItem) Size() int            { return w.size }
func (w WorkItem) CreatedAt() time.Time { return w.createdAt }

// String renders the item as File{type=XML, size=42}.
func (w WorkItem) String() string {
	return fmt.Sprintf("File{type=%s, size=%d}", w.category, w.size)
}

// LogValue groups the item fields when the item is passed to slog.
func (w WorkItem) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", w.id.String()),
		slog.String("type", w.category.String()),
		slog.Int("size", w.size),
	)
}
