package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found in category")
)

// PlanItem is an entry the plan moves into a category
type PlanItem struct {
	Name string    `json:"name" validate:"required,entry_name"`
	Kind EntryKind `json:"type" validate:"oneof=file folder"`
}

// PlanCategory is a destination folder with the items assigned to it
type PlanCategory struct {
	Name   string     `json:"-" validate:"required,category_name"`
	Reason string     `json:"reason"`
	Items  []PlanItem `json:"items" validate:"dive"`
}

// Plan is an ordered list of categories with unique names. On the wire it
// is a JSON object keyed by category name; key order is preserved in both
// directions.
type Plan struct {
	Categories []PlanCategory `validate:"dive"`
}

// planCategoryBody is the canonical wire form of one category
type planCategoryBody struct {
	Reason string     `json:"reason"`
	Items  []PlanItem `json:"items"`
}

func (p Plan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range p.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		items := c.Items
		if items == nil {
			items = []PlanItem{}
		}
		body, err := json.Marshal(planCategoryBody{Reason: c.Reason, Items: items})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a plan object. Categories go through DecodeCategory,
// so the older "files" list and bare-string items are accepted. A repeated
// key keeps its first position and takes the last value.
func (p *Plan) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		p.Categories = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("plan must be a JSON object")
	}

	var out Plan
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		cat, err := DecodeCategory(name, value)
		if err != nil {
			return err
		}
		out.Set(cat)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}

type rawCategory struct {
	Reason json.RawMessage   `json:"reason"`
	Items  []json.RawMessage `json:"items"`
	Files  []json.RawMessage `json:"files"`
}

type rawItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Kind string `json:"kind"`
}

// DecodeCategory normalizes one category value. The value is either an
// object with "items" (or the older "files") or a bare item array; each
// item is a file name or a {name, type|kind} object. Items without a name
// are dropped and unknown kinds become files.
func DecodeCategory(name string, value json.RawMessage) (PlanCategory, error) {
	cat := PlanCategory{Name: name, Items: []PlanItem{}}
	trimmed := bytes.TrimSpace(value)

	var entries []json.RawMessage
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		var rc rawCategory
		if err := json.Unmarshal(trimmed, &rc); err != nil {
			return cat, fmt.Errorf("category %q: %w", name, err)
		}
		var reason string
		if json.Unmarshal(rc.Reason, &reason) == nil {
			cat.Reason = reason
		}
		entries = rc.Items
		if entries == nil {
			entries = rc.Files
		}
	case len(trimmed) > 0 && trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return cat, fmt.Errorf("category %q: %w", name, err)
		}
	default:
		return cat, fmt.Errorf("category %q: expected an object", name)
	}

	for _, e := range entries {
		if item, ok := decodeItem(e); ok {
			cat.Items = append(cat.Items, item)
		}
	}
	return cat, nil
}

func decodeItem(e json.RawMessage) (PlanItem, bool) {
	var name string
	if json.Unmarshal(e, &name) == nil {
		return PlanItem{Name: name, Kind: KindFile}, name != ""
	}

	var ri rawItem
	if err := json.Unmarshal(e, &ri); err != nil || ri.Name == "" {
		return PlanItem{}, false
	}
	kind := ri.Type
	if kind == "" {
		kind = ri.Kind
	}
	return PlanItem{Name: ri.Name, Kind: ParseEntryKind(kind)}, true
}

// Set replaces the category with the same name in place, or appends it.
func (p *Plan) Set(c PlanCategory) {
	for i := range p.Categories {
		if p.Categories[i].Name == c.Name {
			p.Categories[i] = c
			return
		}
	}
	p.Categories = append(p.Categories, c)
}

func (p *Plan) Category(name string) (*PlanCategory, bool) {
	for i := range p.Categories {
		if p.Categories[i].Name == name {
			return &p.Categories[i], true
		}
	}
	return nil, false
}

func (p Plan) IsEmpty() bool {
	return len(p.Categories) == 0
}

// TotalItems counts items across all categories.
func (p Plan) TotalItems() int {
	n := 0
	for _, c := range p.Categories {
		n += len(c.Items)
	}
	return n
}

// MoveItem reassigns the item called name from one category to the end of
// another. Moving within the same category is a no-op.
func (p *Plan) MoveItem(name, from, to string) error {
	src, ok := p.Category(from)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, from)
	}
	dst, ok := p.Category(to)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, to)
	}

	idx := -1
	for i, it := range src.Items {
		if it.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s in %s", ErrItemNotFound, name, from)
	}
	if from == to {
		return nil
	}

	item := src.Items[idx]
	kept := make([]PlanItem, 0, len(src.Items)-1)
	for _, it := range src.Items {
		if it.Name != name {
			kept = append(kept, it)
		}
	}
	src.Items = kept
	dst.Items = append(dst.Items, item)
	return nil
}

// CategoryCount is the number of items assigned to one category
type CategoryCount struct {
	Name    string `json:"name"`
	Items   int    `json:"items"`
	Files   int    `json:"files"`
	Folders int    `json:"folders"`
}

// PlanSummary is what the review screen shows before applying a plan
type PlanSummary struct {
	Categories  int             `json:"categories"`
	TotalItems  int             `json:"totalItems"`
	Files       int             `json:"files"`
	Folders     int             `json:"folders"`
	PerCategory []CategoryCount `json:"perCategory"`
}

func (p Plan) Summary() PlanSummary {
	s := PlanSummary{
		Categories:  len(p.Categories),
		PerCategory: make([]CategoryCount, 0, len(p.Categories)),
	}
	for _, c := range p.Categories {
		cc := CategoryCount{Name: c.Name, Items: len(c.Items)}
		for _, it := range c.Items {
			if it.Kind == KindFolder {
				cc.Folders++
			} else {
				cc.Files++
			}
		}
		s.TotalItems += cc.Items
		s.Files += cc.Files
		s.Folders += cc.Folders
		s.PerCategory = append(s.PerCategory, cc)
	}
	return s
}
