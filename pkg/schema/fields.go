package schema

// Text declares a string field.
func Text(key, def string) Field {
	return Field{Key: key, Type: String(), Default: def}
}

// Num declares a numeric field. Defaults are float64 so JSON round-trips are lossless.
func Num(key string, def float64) Field {
	return Field{Key: key, Type: Number(), Default: def}
}

// Flag declares a boolean field.
func Flag(key string, def bool) Field {
	return Field{Key: key, Type: Bool(), Default: def}
}

// Choice declares a string field restricted to options.
func Choice(key, def string, options ...string) Field {
	return Field{Key: key, Type: Enum(options...), Default: def}
}

// Hex declares a color field.
func Hex(key, def string) Field {
	return Field{Key: key, Type: Color(), Default: def}
}

// List declares a list of objects shaped by item. The default is an empty list.
func List(key string, item ...Field) Field {
	return Field{Key: key, Type: Slice(Object(item...)), Default: []any{}}
}

// StringList declares a list of strings seeded with defaults.
func StringList(key string, defaults ...string) Field {
	def := make([]any, len(defaults))
	for i, d := range defaults {
		def[i] = d
	}
	return Field{Key: key, Type: Slice(String()), Default: def}
}

// CommonStyle returns the style fields shared by every block type.
func CommonStyle() []Field {
	return []Field{
		Hex("backgroundColor", "transparent"),
		Hex("textColor", "#1f2937"),
		Choice("alignment", "center", "left", "center", "right"),
		Text("padding", "16px"),
		Choice("borderRadius", "none", "none", "small", "medium", "large", "full"),
	}
}

// WithDefault returns a copy of f with another default, e.g. a seeded list.
func (f Field) WithDefault(v any) Field {
	f.Default = v
	return f
}
