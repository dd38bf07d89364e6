package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	c, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default.Name(), c.Name())

	_, err = Parse("msgpack")
	assert.ErrorContains(t, err, `unknown codec "msgpack"`)
}

func TestCodecsInteroperate(t *testing.T) {
	in := manifestFixture()

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				var out benchManifest
				require.NoError(t, dec.Unmarshal(MustMarshal(enc, in), &out))
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestMustMarshalPanics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
