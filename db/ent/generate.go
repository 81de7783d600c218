package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

// Generates the typed client for users, operators and transactions into gen/ent.
// The repositories in internal/repository talk to the same tables through
// entgo.io/ent/dialect/sql and do not depend on the generated code.
func main() {
	err := entc.Generate(
		"./db/ent/schema",
		&gen.Config{
			Target:  "gen/ent",
			Package: "github.com/joseph-ayodele/tbcparser/gen/ent",
			Schema:  "github.com/joseph-ayodele/tbcparser/db/ent/schema",
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
