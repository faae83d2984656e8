package comment

// Comment is the structured documentation parsed from a raw source comment.
// ShortText holds the first paragraph, Text everything after the first blank
// line. Returns is populated during reconciliation when a returns tag is
// migrated into it.
type Comment struct {
	ShortText string
	Text      string
	Returns   string
	Tags      []*Tag
}

// Tag is a single @-tag parsed from a comment body. ParamName is only set
// for the param family of tags. Text may span multiple lines, newline-joined.
type Tag struct {
	TagName   string
	ParamName string
	Text      string
}

// New returns a comment with the given short text and no tags.
func New(shortText string) *Comment {
	return &Comment{ShortText: shortText}
}

// HasTag reports whether the comment carries at least one tag with the name.
func (c *Comment) HasTag(name string) bool {
	return c.Tag(name) != nil
}

// Tag returns the first tag with the given name, or nil.
func (c *Comment) Tag(name string) *Tag {
	if c == nil {
		return nil
	}
	for _, t := range c.Tags {
		if t.TagName == name {
			return t
		}
	}
	return nil
}

// ParamTag returns the first tag with the given name whose ParamName equals
// paramName, or nil.
func (c *Comment) ParamTag(name, paramName string) *Tag {
	if c == nil {
		return nil
	}
	for _, t := range c.Tags {
		if t.TagName == name && t.ParamName == paramName {
			return t
		}
	}
	return nil
}

// RemoveTags removes every tag with the given name.
func (c *Comment) RemoveTags(name string) {
	if c == nil {
		return
	}
	kept := c.Tags[:0]
	for _, t := range c.Tags {
		if t.TagName != name {
			kept = append(kept, t)
		}
	}
	c.Tags = kept
}

// Remove removes the given tag instance from the comment, if present.
func (c *Comment) Remove(tag *Tag) {
	if c == nil {
		return
	}
	kept := c.Tags[:0]
	for _, t := range c.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	c.Tags = kept
}
