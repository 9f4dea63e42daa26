/*
Package dsl provides a fluent Go builder for Lattice templates.

It lets applications ship templates in code instead of YAML or a Loam repository, with
IDE completion and compile-time checks.

Example usage:

	b := dsl.New()

	b.Template("launch").
		Name("Product launch").
		Category("sales").
		Block(domain.BlockHeadline).Set("title", "Coming soon").
		Block(domain.BlockCountdown).Set("minutes", 30).Hidden().
		Block(domain.BlockCTA).Set("buttonText", "Notify me").Style("padding", "24px")

	source, err := b.Build()
	// ... pass source to lattice.New(lattice.WithTemplateSource(source))
*/
package dsl
