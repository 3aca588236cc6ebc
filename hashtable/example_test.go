package hashtable_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/vex/hashtable"
)

func Example() {
	t, err := hashtable.New[string, int](hashtable.String[string]{})
	if err != nil {
		log.Fatal(err)
	}
	defer t.Release()

	_ = t.Put("apples", 3)
	_ = t.Put("pears", 5)
	_ = t.Put("apples", 4)
	t.Remove("plums")

	v, ok := t.Get("apples")
	fmt.Println(*v, ok, t.Len())
	// Output: 4 true 2
}

func ExampleTable_Iterate() {
	// Hashing a byte to itself makes the iteration order predictable.
	t, err := hashtable.New[byte, string](hashtable.Funcs[byte]{
		HashFunc:  func(c byte) uint64 { return uint64(c) },
		EqualFunc: func(a, b byte) bool { return a == b },
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, c := range []byte("cab") {
		_ = t.Put(c, string(c)+string(c))
	}

	it := t.Iterate()
	for it.Next() {
		fmt.Println(string(*it.Key()), *it.Value())
	}
	// Output:
	// a aa
	// b bb
	// c cc
}
