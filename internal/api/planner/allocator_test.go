package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateCities(t *testing.T) {
	t.Run("three cities over five days", func(t *testing.T) {
		got := allocateCities([]string{"Cairo", "Aswan", "Alexandria"}, 5)
		assert.Equal(t, []string{"Cairo", "Cairo", "Aswan", "Aswan", "Alexandria"}, got)
	})

	t.Run("single city covers every day", func(t *testing.T) {
		got := allocateCities([]string{"Cairo"}, 3)
		assert.Equal(t, []string{"Cairo", "Cairo", "Cairo"}, got)
	})

	t.Run("no cities yields empty assignments", func(t *testing.T) {
		got := allocateCities(nil, 2)
		assert.Equal(t, []string{"", ""}, got)
	})

	t.Run("even split", func(t *testing.T) {
		got := allocateCities([]string{"Luxor", "Aswan"}, 4)
		assert.Equal(t, []string{"Luxor", "Luxor", "Aswan", "Aswan"}, got)
	})

	t.Run("more cities than days drops trailing cities", func(t *testing.T) {
		got := allocateCities([]string{"Cairo", "Luxor", "Aswan"}, 2)
		assert.Equal(t, []string{"Cairo", "Luxor"}, got)
	})

	t.Run("blocks are contiguous and ordered", func(t *testing.T) {
		got := allocateCities([]string{"Cairo", "Luxor"}, 7)
		assert.Len(t, got, 7)
		seen := map[string]bool{}
		var last string
		for _, city := range got {
			if city != last {
				assert.False(t, seen[city], "city %q appears in two separate blocks", city)
				seen[city] = true
				last = city
			}
		}
	})
}
