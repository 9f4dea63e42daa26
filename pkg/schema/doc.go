// Package schema declares the shape of block content and style bags.
//
// Every block type declares an ordered list of Fields. A Field pairs a key with a
// Type used for validation and a literal Default used to fill absent keys. List
// fields also declare the shape of their items, so editors can append a
// default-shaped entry.
//
// Defaults are applied once, at the store boundary (on create and on load), so that
// editors and renderers always see the same values:
//
//	headline := schema.BlockSchema{
//	    Content: []schema.Field{
//	        schema.Text("title", "Your headline here"),
//	        schema.Text("subtitle", ""),
//	    },
//	    Style: schema.CommonStyle(),
//	}
//
//	content := headline.FillContent(map[string]any{"title": "Hello"})
//	// content == {"title": "Hello", "subtitle": ""}
//
// Validation only inspects the keys that are present: content bags are free-form,
// so unknown keys are accepted and missing keys are defaulted rather than reported.
package schema
