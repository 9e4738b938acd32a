package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetOrder(t *testing.T) {
	r := New()
	r.Put("b", "2")
	r.Put("a", "1")
	r.Put("b", "3") // update keeps position

	assert.Equal(t, []string{"b", "a"}, r.Keys())
	assert.Equal(t, "3", r.Get("b"))
	assert.Equal(t, "1", r.Get("a"))
	assert.Equal(t, "", r.Get("missing"))
	assert.Equal(t, 2, r.Len())
}

func TestTypedAccessors(t *testing.T) {
	r := New()
	r.Put("int", "42")
	r.Put("neg", "-7")
	r.Put("float", "2.5")
	r.Put("boolT", "TRUE")
	r.Put("boolF", "FALSE")
	r.Put("hex", "0xFF")
	r.Put("junk", "banana")

	assert.Equal(t, 42, r.GetInt("int"))
	assert.Equal(t, -7, r.GetInt("neg"))
	assert.Equal(t, uint(0), r.GetUint("neg"))
	assert.Equal(t, float32(2.5), r.GetFloat("float"))
	assert.True(t, r.GetBool("boolT"))
	assert.False(t, r.GetBool("boolF"))
	assert.False(t, r.GetBool("missing"))
	assert.Equal(t, uint64(255), r.GetUint64("hex"))
	assert.Zero(t, r.GetInt("junk"))
	assert.Zero(t, r.GetInt("missing"))

	assert.Equal(t, 9, r.GetIntDefault("missing", 9))
	assert.Equal(t, 42, r.GetIntDefault("int", 9))
	assert.Equal(t, float32(1.5), r.GetFloatDefault("missing", 1.5))
}

func TestPutTyped(t *testing.T) {
	r := New()
	r.PutInt("i", 13)
	r.PutFloat("f", 0.25)
	r.PutBool("t", true)
	r.PutBool("f2", false)

	assert.Equal(t, 13, r.GetInt("i"))
	assert.Equal(t, float32(0.25), r.GetFloat("f"))
	assert.Equal(t, "TRUE", r.Get("t"))
	assert.Equal(t, "FALSE", r.Get("f2"))
}

func TestMustGetPanicsOnMissing(t *testing.T) {
	r := New()
	r.Put("present", "x")
	assert.Equal(t, "x", r.MustGet("present"))
	assert.Panics(t, func() { r.MustGet("absent") })
}

func TestRemove(t *testing.T) {
	r := New()
	r.Put("a", "1")
	r.Put("b", "2")
	r.Put("c", "3")
	r.Remove("b")
	r.Remove("nope")

	assert.Equal(t, []string{"a", "c"}, r.Keys())
	assert.False(t, r.Contains("b"))
}

func TestPrefixOps(t *testing.T) {
	pop := New()
	pop.Put("numFleets", "2")
	pop.Put("fleet1.fleetName", "Simple")
	pop.Put("fleet1.numWins", "4")
	pop.Put("fleet2.fleetName", "Dummy")

	f1 := pop.SplitOnPrefix("fleet1.")
	assert.Equal(t, []string{"fleetName", "numWins"}, f1.Keys())
	assert.Equal(t, "Simple", f1.Get("fleetName"))

	out := New()
	out.PutAllWithPrefix(f1, "fleet9.")
	assert.Equal(t, "4", out.Get("fleet9.numWins"))
}

func TestCopyIsDeep(t *testing.T) {
	r := New()
	r.Put("k", "v")
	c := r.Copy()
	c.Put("k", "w")
	c.Put("extra", "1")

	assert.Equal(t, "v", r.Get("k"))
	assert.False(t, r.Contains("extra"))
}

func TestLoadFileParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sc")
	content := "# comment\n\nwidth = 1600\nheight=1200\n  tickLimit =  500  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := New()
	require.NoError(t, r.LoadFile(path))
	assert.Equal(t, 1600, r.GetInt("width"))
	assert.Equal(t, 1200, r.GetInt("height"))
	assert.Equal(t, 500, r.GetInt("tickLimit"))
}

func TestLoadFileErrors(t *testing.T) {
	r := New()
	assert.Error(t, r.LoadFile(filepath.Join(t.TempDir(), "absent.sc")))

	bad := filepath.Join(t.TempDir(), "bad.sc")
	require.NoError(t, os.WriteFile(bad, []byte("no equals sign here\n"), 0o644))
	assert.Error(t, r.LoadFile(bad))
}

// Save -> load -> save must produce byte-identical files.
func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.sc")
	second := filepath.Join(dir, "second.sc")

	r := New()
	r.Put("width", "1600")
	r.Put("powerCoreDropRate", "0.25")
	r.Put("restrictedStart", "TRUE")
	require.NoError(t, r.SaveFile(first))

	loaded := New()
	require.NoError(t, loaded.LoadFile(first))
	require.NoError(t, loaded.SaveFile(second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
