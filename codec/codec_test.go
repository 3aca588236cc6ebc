package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Key   string `json:"k"`
	Value []byte `json:"v"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("gob")
	assert.False(t, ok)
}

func TestCodecsAreInterchangeable(t *testing.T) {
	in := []pair{{Key: "a", Value: []byte{0, 1, 2}}, {Key: "b"}}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				var out []pair
				require.NoError(t, dec.Unmarshal(MustMarshal(enc, in), &out))
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"k":"x","v":null}`, string(MustMarshal(nil, pair{Key: "x"})))
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
