package models

import (
	"strconv"
	"strings"

	"catalogconsole/internal/errs"
)

// Field names a Draft key. Values match the JSON keys sent to the backend.
type Field string

const (
	FieldName        Field = "name"
	FieldCategory    Field = "category"
	FieldSize        Field = "size"
	FieldPrice       Field = "price"
	FieldQuantity    Field = "quantity"
	FieldImage       Field = "image"
	FieldPriority    Field = "priority"
	FieldDescription Field = "description"
)

// Fields lists every Draft key in form order.
var Fields = []Field{
	FieldName,
	FieldCategory,
	FieldSize,
	FieldPrice,
	FieldQuantity,
	FieldImage,
	FieldPriority,
	FieldDescription,
}

// ParseField resolves a key coming from a request.
func ParseField(key string) (Field, error) {
	f := Field(key)
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", errs.New(errs.KindValidation, "field", "unknown field "+strconv.Quote(key))
}

// Draft is the transient form copy of a product, without the id.
type Draft struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Size        Size     `json:"size"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Image       string   `json:"image"`
	Priority    int      `json:"priority"`
	Description string   `json:"description"`
}

// Value returns the typed value held for f.
func (d Draft) Value(f Field) any {
	switch f {
	case FieldName:
		return d.Name
	case FieldCategory:
		return d.Category
	case FieldSize:
		return d.Size
	case FieldPrice:
		return d.Price
	case FieldQuantity:
		return d.Quantity
	case FieldImage:
		return d.Image
	case FieldPriority:
		return d.Priority
	case FieldDescription:
		return d.Description
	}
	return nil
}

// Text renders the value of f the way a form input shows it.
func (d Draft) Text(f Field) string {
	switch f {
	case FieldPrice:
		return strconv.FormatFloat(d.Price, 'f', -1, 64)
	case FieldQuantity:
		return strconv.Itoa(d.Quantity)
	case FieldPriority:
		return strconv.Itoa(d.Priority)
	}
	switch v := d.Value(f).(type) {
	case string:
		return v
	case Category:
		return string(v)
	case Size:
		return string(v)
	}
	return ""
}

// Set parses raw and stores it under f. Numbers are coerced, not range checked;
// on a parse error the draft is left untouched.
func (d *Draft) Set(f Field, raw string) error {
	switch f {
	case FieldName:
		d.Name = raw
	case FieldCategory:
		d.Category = Category(raw)
	case FieldSize:
		d.Size = Size(raw)
	case FieldImage:
		d.Image = raw
	case FieldDescription:
		d.Description = raw
	case FieldPrice:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return errs.Wrap(err, errs.KindValidation, "price")
		}
		d.Price = v
	case FieldQuantity, FieldPriority:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return errs.Wrap(err, errs.KindValidation, string(f))
		}
		if f == FieldQuantity {
			d.Quantity = v
		} else {
			d.Priority = v
		}
	default:
		return errs.New(errs.KindValidation, "field", "unknown field "+strconv.Quote(string(f)))
	}
	return nil
}

// Patch is a partial update body keyed by field.
type Patch map[Field]any

// Keys returns the patch keys in form order.
func (p Patch) Keys() []Field {
	keys := make([]Field, 0, len(p))
	for _, f := range Fields {
		if _, ok := p[f]; ok {
			keys = append(keys, f)
		}
	}
	return keys
}
