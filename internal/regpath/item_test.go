package regpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitHive(t *testing.T) {
	t.Parallel()

	hive, subkey, ok := NewItem(`HKCU\Software\MyGame\Settings`).SplitHive()
	assert.True(t, ok)
	assert.Equal(t, "HKEY_CURRENT_USER", hive)
	assert.Equal(t, `Software\MyGame\Settings`, subkey)

	_, _, ok = NewItem(`NotAHive\Foo`).SplitHive()
	assert.False(t, ok)
}

func TestItemEqualIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	a := NewItem(`HKEY_CURRENT_USER\Software\MyGame`)
	b := NewItem(`hkey_current_user/software/mygame`)
	assert.True(t, a.Equal(b))
}

func TestItemIsPrefixOf(t *testing.T) {
	t.Parallel()

	parent := NewItem(`HKCU\Software\MyGame`)
	child := NewItem(`HKCU\Software\MyGame\Settings`)
	assert.True(t, parent.IsPrefixOf(child))
	assert.False(t, child.IsPrefixOf(parent))
	assert.False(t, parent.IsPrefixOf(parent))
}

func TestItemRenderInterpretRoundTrip(t *testing.T) {
	t.Parallel()

	item := NewItem(`HKCU\Software\MyGame`)
	assert.Equal(t, "HKCU/Software/MyGame", item.Render())
	assert.Equal(t, `HKCU\Software\MyGame`, item.Interpret())
}

func TestNearestPrefix(t *testing.T) {
	t.Parallel()

	candidates := []Item{
		NewItem(`HKCU\Software`),
		NewItem(`HKCU\Software\MyGame`),
		NewItem(`HKLM\Software`),
	}

	target := NewItem(`HKCU\Software\MyGame\Settings`)
	nearest, ok := target.NearestPrefix(candidates)
	assert.True(t, ok)
	assert.Equal(t, `HKCU\Software\MyGame`, nearest.Raw())
}
