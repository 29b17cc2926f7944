package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/loam"
	loamAdapter "github.com/aretw0/splash/pkg/adapters/loam"
	"github.com/aretw0/splash/pkg/domain"
)

// gen-catalog writes the default step catalog and timing profile as Markdown
// documents, ready to be edited and passed to `splash run --catalog`.
func main() {
	targetDir := "examples/pos-catalog"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		fail(err)
	}

	fmt.Printf("Generating step catalog in: %s\n", targetDir)

	repo, err := loam.Init(targetDir, loam.WithVersioning(false))
	if err != nil {
		fail(err)
	}

	timing := domain.DefaultTiming()
	if err := loamAdapter.WriteCatalog(context.Background(), repo, domain.DefaultCatalog(), &timing); err != nil {
		fail(err)
	}

	fmt.Println("Done. Verify contents in", targetDir)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
