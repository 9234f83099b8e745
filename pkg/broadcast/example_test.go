package broadcast_test

import (
	"context"
	"fmt"

	"github.com/c360/ringcast/pkg/broadcast"
)

func Example() {
	ctx := context.Background()
	ring, _ := broadcast.New[string](4)

	first, _ := ring.Register()
	second, _ := ring.Register()

	for _, v := range []string{"a", "b", "c"} {
		_ = ring.Put(ctx, v)
	}
	_ = ring.Close()

	for _, rd := range []*broadcast.Reader[string]{first, second} {
		for res := rd.Next(ctx); res.Ok(); res = rd.Next(ctx) {
			fmt.Print(res.Value)
		}
		fmt.Println()
	}
	// Output:
	// abc
	// abc
}

func ExampleRing_TryPut() {
	ring, _ := broadcast.New[int](1)
	rd, _ := ring.Register()

	fmt.Println(ring.TryPut(1))
	fmt.Println(ring.TryPut(2))
	rd.TryNext()
	fmt.Println(ring.TryPut(2))
	// Output:
	// true
	// false
	// true
}
