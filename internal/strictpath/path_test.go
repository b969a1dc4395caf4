package strictpath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitDrive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantDrive string
		wantRest  string
	}{
		{"posix root", "/home/user/save.dat", "/", "home/user/save.dat"},
		{"windows drive", `C:\Users\user\save.dat`, "C:", "Users/user/save.dat"},
		{"relative has no drive", "save.dat", "", "save.dat"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			drive, rest := New(tt.raw).SplitDrive()
			assert.Equal(t, tt.wantDrive, drive)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestEqualIgnoresCanonicalCache(t *testing.T) {
	t.Parallel()

	a := New("/tmp/whatever")
	b := New("/tmp/whatever")
	assert.True(t, a.Equal(b))

	// Forcing canonicalization on a must not affect equality with b, since
	// Equal is defined on (raw, basis) only.
	_, _ = a.Interpret()
	assert.True(t, a.Equal(b))
}

func TestIsPrefixOf(t *testing.T) {
	t.Parallel()

	parent := New("/home/user/saves")
	child := New("/home/user/saves/slot1/save.dat")
	sibling := New("/home/user/other")

	assert.True(t, parent.IsPrefixOf(child))
	assert.False(t, parent.IsPrefixOf(sibling))
	assert.False(t, parent.IsPrefixOf(parent))
}

func TestNearestPrefix(t *testing.T) {
	t.Parallel()

	candidates := []Path{
		New("/home/user"),
		New("/home/user/saves"),
		New("/var"),
	}

	target := New("/home/user/saves/slot1/save.dat")
	nearest, ok := target.NearestPrefix(candidates)
	assert.True(t, ok)
	assert.Equal(t, "/home/user/saves", nearest.Render())
}

func TestClampToZipEpoch(t *testing.T) {
	t.Parallel()

	before := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, zipEpoch, ClampToZipEpoch(before))

	after := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, after, ClampToZipEpoch(after))
}
