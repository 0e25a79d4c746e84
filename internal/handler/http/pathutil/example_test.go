package pathutil_test

import (
	"fmt"

	"credit-gateway/internal/handler/http/pathutil"
)

// ExampleNormalizePath shows that every DNI maps to the same metrics label.
func ExampleNormalizePath() {
	fmt.Println(pathutil.NormalizePath("/api/sentinel/person/12345678"))
	fmt.Println(pathutil.NormalizePath("/api/sentinel/person/87654321"))

	// Output:
	// /api/sentinel/person/:dni
	// /api/sentinel/person/:dni
}

// ExampleNormalizePath_static demonstrates that static endpoints remain unchanged.
func ExampleNormalizePath_static() {
	fmt.Println(pathutil.NormalizePath("/health"))
	fmt.Println(pathutil.NormalizePath("/api/sentinel/cache/stats"))

	// Output:
	// /health
	// /api/sentinel/cache/stats
}

// ExampleParseID parses the client id of a credit check route.
func ExampleParseID() {
	id, err := pathutil.ParseID("42")
	fmt.Println(id, err)

	_, err = pathutil.ParseID("abc")
	fmt.Println(err)

	// Output:
	// 42 <nil>
	// invalid id
}
