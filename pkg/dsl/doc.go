/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically constructing splash catalogs.

It allows developers to define the loading stages and their timing using a type-safe, fluent builder
instead of relying on a Loam catalog directory. This is particularly useful for embedding a custom
sequence in a binary, for unit testing, and for IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"context"

		"github.com/aretw0/splash"
		"github.com/aretw0/splash/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Step("Warming up").Icon("settings")
		b.Step("Syncing orders").Icon("database").Faulty(0.5, "Sync delayed. Retrying...")
		b.Step("Opening register").Icon("cart")

		opts, err := b.Options()
		if err != nil {
			panic(err)
		}

		s, _ := splash.New(opts...)
		_ = s.Start(context.Background())
	}
*/
package dsl
