package topology

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eps(hosts ...string) []Endpoint {
	out := make([]Endpoint, 0, len(hosts))
	for i, h := range hosts {
		out = append(out, Endpoint{Host: h, Port: 1000 + i})
	}
	return out
}

func TestMap_LookupAbsent(t *testing.T) {
	c := NewMap()

	got, ok := c.Lookup("m")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMap_UpdateReplaces(t *testing.T) {
	c := NewMap()

	c.Update("m", eps("a", "b"))
	got, ok := c.Lookup("m")
	require.True(t, ok)
	assert.Len(t, got, 2)

	// Full replace, not merge.
	c.Update("m", eps("c"))
	got, ok = c.Lookup("m")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Host)
}

func TestMap_EmptyEqualsAbsent(t *testing.T) {
	c := NewMap()

	c.Update("m", eps("a"))
	c.Update("m", nil)

	_, ok := c.Lookup("m")
	assert.False(t, ok)

	c.Update("m", eps("a"))
	c.Update("m", []Endpoint{})

	_, ok = c.Lookup("m")
	assert.False(t, ok)
}

func TestMap_Forget(t *testing.T) {
	c := NewMap()

	c.Update("m", eps("a"))
	c.Forget("m")

	_, ok := c.Lookup("m")
	assert.False(t, ok)

	// Forgetting an unknown module is a no-op.
	c.Forget("unknown")
}

func TestMap_LookupReturnsCopy(t *testing.T) {
	c := NewMap()
	c.Update("m", eps("a", "b"))

	got, _ := c.Lookup("m")
	got[0].Host = "mutated"

	again, _ := c.Lookup("m")
	assert.Equal(t, "a", again[0].Host)
}

func TestMap_Concurrent(t *testing.T) {
	c := NewMap()

	const workers = 16
	const ops = 500

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			module := fmt.Sprintf("m-%d", id%4)
			for j := 0; j < ops; j++ {
				c.Update(module, eps("a", "b", "c"))
				if got, ok := c.Lookup(module); ok {
					// Never a torn read: the full list or nothing.
					assert.Len(t, got, 3)
				}
			}
		}(i)
	}
	wg.Wait()
}
