/*
Package dsl provides a fluent builder for choicefsm graphs.

Declarations may appear in any order; Build registers them on a new Fsm,
collects every registration error at once and then validates the graph.

Example usage:

	b := dsl.New[string, string, string]()

	b.State("menu").
		On("scan").Do(startScan).Go("scanning").
		On("show").Choose("has-scan")

	b.State("scanning").Parent("menu").
		On("done").Go("menu")

	b.State("results").
		On("back").Go("menu")

	b.Choice("has-scan", func() bool { return scanned }).
		Then().Go("results").
		Else().Do(warn).Go("menu")

	m, err := b.Build()
*/
package dsl
