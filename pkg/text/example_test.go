package text_test

import (
	"fmt"

	"github.com/walteh/ifdef/pkg/text"
)

func ExampleTemplate_Expand() {
	tmpl := text.Parse("console.log($2, $1)")

	out := tmpl.Expand(text.Match{
		Groups: []text.Group{
			{Text: "swap(a, b)", Matched: true},
			{Text: "a", Matched: true},
			{Text: "b", Matched: true},
		},
	})

	fmt.Println(out)

	// Output:
	// console.log(b, a)
}
